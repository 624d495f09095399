package planner

import "errors"

// Error taxonomy (spec 7), grounded on the original's plain errors.New
// style (core/stepper.go before it was trimmed used the same pattern).
var (
	// ErrInvalidParameter: a command argument is out of its legal range
	// (e.g. a speed percentage outside -100..100).
	ErrInvalidParameter = errors.New("planner: invalid parameter")

	// ErrWrongPhase: an operation that requires HALT (a configuration
	// setter) was attempted while moving.
	ErrWrongPhase = errors.New("planner: wrong phase for this operation")

	// ErrLimitTripped: the limit switch fired during move_to_blocking. The
	// Limits Guard's speed-mode pre-guard stops the axis without reporting
	// an error.
	ErrLimitTripped = errors.New("planner: limit tripped")
)
