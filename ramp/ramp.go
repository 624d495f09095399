// Package ramp computes the per-step interval ("Cn") for a linear or
// quadratic acceleration profile, using the discrete recurrences that
// approximate the constant-angular-acceleration square-root law without
// calling sqrt on the step-rate hot path. The correction factor and
// recurrence shapes come from David Austin's stepper-ramp paper, as used
// by the original firmware's set_accel/compute_c.
package ramp

import "math"

// Profile selects which acceleration recurrence Up and Down apply.
type Profile uint8

const (
	Linear Profile = iota
	Quadratic
)

// CminMax is the largest representable step interval: a 16-bit hardware
// timer compare register can't hold more than this, so C0 for the
// quadratic profile (which runs hotter at low step rates) is clamped to it.
const CminMax = 65535

// AccelCorrection is the David Austin correction factor applied to the
// ideal c0 = F_MOTOR * sqrt(2/a). Exported so callers that need to invert
// C0 back into an effective acceleration (planner.Motion.EffectiveAccel)
// don't have to duplicate the constant.
const AccelCorrection = 0.676

// C0 returns the initial step interval for the first step of a move,
// given the motor's pulse-rate clock fMotor (Hz) and the requested
// acceleration a (steps/s^2). For Quadratic the result is clamped to
// CminMax, since the uncorrected value can exceed a 16-bit timer's range.
func C0(profile Profile, fMotor, a float64) float64 {
	c0 := AccelCorrection * fMotor * math.Sqrt(2.0/a)
	if profile == Quadratic && c0 > CminMax {
		return CminMax
	}
	return c0
}

// Cmin returns the cruise-phase step interval corresponding to a speed
// expressed as a percentage (1-100) of the motor's rated maximum speed
// speedMax (steps/s), given the pulse-rate clock fMotor (Hz).
func Cmin(fMotor, speedMax float64, percent int) float64 {
	b := speedMax * (float64(percent) / 100.0)
	return fMotor/b - 1.0
}

// Up advances the acceleration-phase recurrence by one step: n is
// incremented first, then cn is recomputed from the new n. c0 is only
// consulted for the Quadratic profile's n==1 correction (cn = 0.9*c0
// before the recurrence is applied, per the quadratic profile's documented
// edge case).
func Up(profile Profile, cn float64, n uint32, c0 float64) (float64, uint32) {
	n++
	if profile == Quadratic && n == 1 {
		cn = 0.9 * c0
	}
	switch profile {
	case Quadratic:
		cn = cn - (6.0*cn)/(9.0*float64(n)+3.0)
	default:
		cn = cn - (2.0*cn)/(4.0*float64(n)+1.0)
	}
	return cn, n
}

// Down advances the deceleration-phase recurrence by one step. The caller
// is responsible for deciding when n itself changes (position mode
// re-anchors n to the remaining step count every tick; speed mode
// decrements n after this call — see planner for the exact order and the
// Open Question it resolves).
func Down(profile Profile, cn float64, n uint32) float64 {
	switch profile {
	case Quadratic:
		return cn - (6.0*cn)/(-9.0*float64(n)+3.0)
	default:
		return cn - (2.0*cn)/(-4.0*float64(n)+1.0)
	}
}
