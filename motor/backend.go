// Package motor is the Step Driver Gateway: the narrow interface the
// planner and command surface use to turn an abstract pulse/direction/
// enable decision into real driver-chip signals. Concrete backends
// decouple the motion core from any particular pin-level implementation,
// the same separation the teacher draws between its stepper logic and
// its StepperBackend hardware abstraction.
package motor

// Backend is the hardware abstraction a planner drives. Implementations
// own pulse-width timing and must be safe to call from a step-rate timer
// callback (a few hundred microseconds of budget).
type Backend interface {
	// Init prepares the backend for use. invertStep/invertDir flip pin
	// polarity for drivers wired active-low.
	Init(stepPin, dirPin, enablePin uint32, invertStep, invertDir bool) error

	// Pulse asserts the step signal, holds it for at least the driver's
	// minimum pulse width, then deasserts it. Called once per step.
	Pulse()

	// SetDirection sets the direction output ahead of the next Pulse.
	// true selects the "CW"/forward sense defined by the caller.
	SetDirection(forward bool)

	// SetEnabled drives the driver's enable input. A planner disables the
	// driver whenever it reaches HALT and enables it before the first
	// pulse of a new move, mirroring the original firmware's drv_set.
	SetEnabled(enabled bool) error

	// Name identifies the backend for diagnostics.
	Name() string
}

// Info describes a backend's performance characteristics, surfaced so a
// caller can sanity-check a configured acceleration/speed against what the
// hardware can actually deliver.
type Info struct {
	Name          string
	MaxStepRate   uint32 // steps/second
	MinPulseNs    uint32 // minimum step pulse width
	TypicalJitter uint32 // nanoseconds
}
