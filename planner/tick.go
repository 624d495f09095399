package planner

import (
	"camslider/core"
	"camslider/ramp"
)

// tickPosition implements the position-mode UP/FLAT/DOWN/HALT transition
// from original_source/main/motor.c's compute_c, generalized to the two
// profiles via the ramp package.
func (m *Motion) tickPosition() {
	stepsAhead := abs64(m.targetPos - m.currentPos)

	// Standing on the target ends the move in any phase: a hard stop (or a
	// soft stop with n==1) can land on it before DOWN has been entered.
	if stepsAhead == 0 {
		m.n = 0
		m.cn = m.c0
		m.phase = HALT
		return
	}

	switch m.phase {
	case UP:
		m.cn, m.n = ramp.Up(m.profile, m.cn, m.n, m.c0)
		if m.cn <= m.cmin {
			m.cn = m.cmin
			m.phase = FLAT
		}
		// Short-move (triangular profile) safeguard: if the remaining
		// distance is already down to n steps, start decelerating now
		// rather than waiting to reach cruise speed first and overshoot.
		if stepsAhead <= int64(m.n) {
			m.phase = DOWN
		}
	case FLAT:
		m.cn = m.cmin
		if stepsAhead <= int64(m.n) {
			m.phase = DOWN
			m.cn = ramp.Down(m.profile, m.cn, m.n)
		}
	case DOWN:
		m.n = uint32(stepsAhead)
		if m.n > 0 {
			m.cn = ramp.Down(m.profile, m.cn, m.n)
		} else {
			m.cn = m.c0
			m.phase = HALT
		}
	}
}

// tickSpeed implements the speed-mode UP/FLAT/DOWN/HALT transition from
// original_source/accelStepper/motor.c's compute_c_speed. The rail-limit
// pre-guard (Limits Guard, C7) runs first and can force an early DOWN
// regardless of what the mode's own transition logic would otherwise do.
func (m *Motion) tickSpeed() {
	if m.phase != HALT && m.phase != DOWN && m.limitGuardTripped() {
		core.RecordTiming(core.EvtLimitTrip, 0, core.GetTime(), uint32(m.currentPos), uint32(m.n))
		m.phase = DOWN
		m.speedStop = true
	}

	switch m.phase {
	case UP:
		m.cn, m.n = ramp.Up(m.profile, m.cn, m.n, m.c0)
		if m.cn <= m.cmin {
			m.cn = m.cmin
			m.phase = FLAT
		}
	case FLAT:
		m.cn = m.cmin
	case DOWN:
		// spec.md's literal order: advance cn using the not-yet-decremented
		// n, then decrement n once. n>1 (rather than n>0) is the "still has
		// at least one more decel step after this one" test, so the settle-
		// to-FLAT branch and the terminate branch are mutually exclusive
		// within a single tick -- there is no second decrement after a
		// mid-deceleration settle. This is the opposite decrement order from
		// the original firmware's compute_c_speed (which decrements n
		// first); the divergence is deliberate, see the Open Question
		// resolution.
		if m.n > 1 {
			m.cn = ramp.Down(m.profile, m.cn, m.n)
			if !m.speedStop && m.cn >= m.cTarget {
				m.cmin = m.cn
				m.phase = FLAT
			}
			m.n--
		} else {
			m.n = 0
			m.cn = m.c0
			m.phase = HALT
		}
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
