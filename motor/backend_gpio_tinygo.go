//go:build tinygo

package motor

import "camslider/core"

// holdPulse busy-waits on the free-running hardware tick counter, matching
// the original firmware's _delay_us(2) inside pulse().
func holdPulse() {
	waitTicks := core.TimerFromUS(pulseWidthUs)
	start := core.GetTime()
	for core.GetTime()-start < waitTicks {
	}
}
