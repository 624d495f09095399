package planner

// limitGuardTripped implements the Limits Guard's (C7) continuous
// pre-guard used during speed-mode motion: current_pos<=n && dir==CCW,
// or MAX_COUNT-current_pos<=n && dir==CW. SafetyMarginSteps (a
// supplement with no equivalent in the original firmware, default 0)
// pads the test so braking can start a configurable number of steps
// early.
func (m *Motion) limitGuardTripped() bool {
	margin := int64(m.n) + m.cfg.SafetyMarginSteps
	if m.dir {
		return m.cfg.MaxCount-m.currentPos <= margin
	}
	return m.currentPos <= margin
}

// ClampToRail clamps a candidate absolute target into [0, MAX_COUNT],
// used by command.Surface's move_to when check_limits is requested.
func (m *Motion) ClampToRail(target int64) int64 {
	if target < 0 {
		return 0
	}
	if target > m.cfg.MaxCount {
		return m.cfg.MaxCount
	}
	return target
}

// RailLength converts a physical rail length into a step count, using
// the stepper's steps-per-revolution and the linear distance one
// revolution of the lead screw/pulley advances the carriage. Supplements
// spec.md, which specifies MAX_COUNT only as an opaque configured step
// count; this derivation is how the original's build-time CPP macro
// arrived at it from the physical rail.
func RailLength(maxLengthCM, stepsPerRev, cmPerRev int64) int64 {
	if cmPerRev == 0 {
		return 0
	}
	return maxLengthCM * stepsPerRev / cmPerRev
}
