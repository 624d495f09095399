//go:build !tinygo

package motor

import "time"

// holdPulse holds the step line asserted for the minimum pulse width using
// a real wall-clock sleep. On host builds core.GetTime() is a test-settable
// counter, not a free-running clock, so busy-waiting on it (as the tinygo
// build does) would never return.
func holdPulse() {
	time.Sleep(pulseWidthUs * time.Microsecond)
}
