// Package slider is the public facade: it wires a motor.Backend, a
// planner.Motion, and a command.Surface together into the single type an
// application embeds, the same composition role standalone/manager.go
// played in the teacher repo, narrowed here to one axis.
package slider

import (
	"camslider/command"
	"camslider/core"
	"camslider/motor"
	"camslider/planner"
	"camslider/ramp"
)

// Slider is a single-axis stepper-driven camera slider.
type Slider struct {
	surface *command.Surface
}

// New builds a Slider from a backend and configuration. The backend must
// already be Init'd with its pin assignments; New only arms the motion
// state machine, it doesn't touch pins directly.
func New(backend motor.Backend, cfg planner.Config) *Slider {
	motion := planner.NewMotion(cfg, backend)
	s := &Slider{surface: command.NewSurface(motion)}

	// A rescheduled timer found in the past means TimerDispatch shut the
	// scheduler down without ever calling tick() for it -- the running
	// move can no longer be trusted to converge on its own. Force the
	// driver off directly rather than waiting on a tick that won't come.
	core.SetShutdownHandler(func(reason string) {
		motion.ForceHalt()
	})
	return s
}

// SetLimitSwitch attaches the end-of-travel sensor MoveToBlocking polls.
func (s *Slider) SetLimitSwitch(sw command.LimitSwitch) { s.surface.SetLimitSwitch(sw) }

// MoveTo requests a position-mode move. See command.Surface.MoveTo.
func (s *Slider) MoveTo(pos int64, kind command.Kind, checkLimits bool) error {
	return s.surface.MoveTo(pos, kind, checkLimits)
}

// MoveToBlocking requests a position-mode move and waits for it to
// finish, a limit switch trip, or cancellation.
func (s *Slider) MoveToBlocking(pos int64, kind command.Kind, checkLimits bool, cancel <-chan struct{}) error {
	return s.surface.MoveToBlocking(pos, kind, checkLimits, cancel)
}

// MoveAtSpeed requests a speed-mode move at a signed percentage of the
// configured maximum speed.
func (s *Slider) MoveAtSpeed(percent int) error {
	return s.surface.MoveAtSpeed(percent)
}

// Stop requests a soft or hard stop.
func (s *Slider) Stop(kind command.StopKind) { s.surface.Stop(kind) }

// Configure applies a new planner.Config. Rejected unless at rest.
func (s *Slider) Configure(cfg planner.Config) error { return s.surface.Configure(cfg) }

// SetMaxSpeedPercent sets the persistent max-speed percentage
// position-mode moves cruise at. Rejected unless at rest.
func (s *Slider) SetMaxSpeedPercent(pct int) error { return s.surface.SetMaxSpeedPercent(pct) }

// SetAccelPercent sets the persistent acceleration percentage. Rejected
// unless at rest.
func (s *Slider) SetAccelPercent(pct int) error { return s.surface.SetAccelPercent(pct) }

// SetProfile switches the acceleration profile. Rejected unless at rest.
func (s *Slider) SetProfile(p ramp.Profile) error { return s.surface.SetProfile(p) }

// Position returns the current step count from the home end of the rail.
func (s *Slider) Position() int64 { return s.surface.Motion().Position() }

// IsMoving reports whether the axis is currently ramping or cruising.
func (s *Slider) IsMoving() bool { return !s.surface.Motion().IsHalted() }

// Phase exposes the planner's current UP/FLAT/DOWN/HALT state.
func (s *Slider) Phase() planner.Phase { return s.surface.Motion().Phase() }

// SetDebugEnabled toggles the core debug ring buffer's live output. This
// has no original-firmware equivalent as a public call (the original
// exposed debug toggling only via a compile-time flag); supplementing it
// as a runtime call is useful for a host bench tool and is cheap since
// core.DebugPrintln already gates on it per-call.
func (s *Slider) SetDebugEnabled(enabled bool) { core.SetDebugEnabled(enabled) }

// SetDebugWriter redirects debug/timing output (e.g. to a serial port via
// cmd/sliderbench's tarm/serial sink, or to a file).
func (s *Slider) SetDebugWriter(w core.DebugWriter) { core.SetDebugWriter(w) }
