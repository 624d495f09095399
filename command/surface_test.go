package command

import (
	"testing"

	"camslider/core"
	"camslider/planner"
	"camslider/ramp"
)

type stubBackend struct {
	pulses  int
	forward bool
	enabled bool
}

func (b *stubBackend) Init(stepPin, dirPin, enablePin uint32, invertStep, invertDir bool) error {
	return nil
}
func (b *stubBackend) Pulse()                        { b.pulses++ }
func (b *stubBackend) SetDirection(forward bool)     { b.forward = forward }
func (b *stubBackend) SetEnabled(enabled bool) error { b.enabled = enabled; return nil }
func (b *stubBackend) Name() string                  { return "stub" }

func s1Config() planner.Config {
	return planner.Config{
		FMotor:          2_000_000,
		SpeedMax:        8000,
		AccelMax:        8000,
		MaxCount:        100_000,
		Profile:         ramp.Linear,
		MaxSpeedPercent: 100,
		AccelPercent:    100,
	}
}

func newSurface() (*Surface, *stubBackend) {
	backend := &stubBackend{}
	motion := planner.NewMotion(s1Config(), backend)
	return NewSurface(motion), backend
}

func runToHalt(t *testing.T, s *Surface, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		// A HALT with a follow-up still queued is not settled: the
		// deferred-action timer has yet to redispatch it.
		if s.Motion().IsHalted() && !s.queue.full {
			return
		}
		wake, ok := core.NextWakeTime()
		if !ok {
			return
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	t.Fatalf("surface did not settle to HALT within %d dispatch iterations", maxTicks)
}

func TestMoveToSimpleMove(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()

	if err := s.MoveTo(10000, Absolute, false); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	runToHalt(t, s, 20000)

	if s.Motion().Position() != 10000 {
		t.Fatalf("position = %d, want 10000", s.Motion().Position())
	}
}

func TestMoveToSamePositionIsNoOp(t *testing.T) {
	core.SetTime(0)
	s, backend := newSurface()

	if err := s.MoveTo(0, Absolute, false); err != nil {
		t.Fatalf("MoveTo no-op: %v", err)
	}
	if !s.Motion().IsHalted() {
		t.Fatalf("a same-position move_to should not start a move")
	}
	if backend.pulses != 0 {
		t.Fatalf("a same-position move_to should not pulse")
	}
}

func TestMoveToClampsToRail(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()

	if err := s.MoveTo(1_000_000, Absolute, true); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	runToHalt(t, s, 200000)

	if s.Motion().Position() != s.Motion().Config().MaxCount {
		t.Fatalf("position = %d, want clamped to MaxCount %d", s.Motion().Position(), s.Motion().Config().MaxCount)
	}
}

func TestMoveToRetargetFartherSameDirectionDoesNotQueue(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()

	_ = s.MoveTo(2000, Absolute, false)
	for i := 0; i < 50; i++ {
		wake, _ := core.NextWakeTime()
		core.SetTime(wake)
		core.ProcessTimers()
	}
	if err := s.MoveTo(10000, Absolute, false); err != nil {
		t.Fatalf("MoveTo retarget: %v", err)
	}
	runToHalt(t, s, 20000)

	if s.Motion().Position() != 10000 {
		t.Fatalf("position = %d, want 10000", s.Motion().Position())
	}
}

func TestMoveToReversalQueuesAndRedispatches(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()

	_ = s.MoveTo(10000, Absolute, false)
	for i := 0; i < 30; i++ {
		wake, _ := core.NextWakeTime()
		core.SetTime(wake)
		core.ProcessTimers()
	}
	if s.Motion().Position() == 0 {
		t.Fatalf("expected some progress before reversal")
	}

	if err := s.MoveTo(0, Absolute, false); err != nil {
		t.Fatalf("MoveTo reversal: %v", err)
	}
	// Drive the simulated clock well past the deferred-action timer's
	// 100us (core.TimerFromUS(100)) delay so the queued reversal gets
	// redispatched.
	runToHalt(t, s, 40000)

	if s.Motion().Position() != 0 {
		t.Fatalf("position after reversal = %d, want 0", s.Motion().Position())
	}
}

func TestMoveAtSpeedInvalidPercent(t *testing.T) {
	s, _ := newSurface()
	if err := s.MoveAtSpeed(150); err != planner.ErrInvalidParameter {
		t.Fatalf("MoveAtSpeed(150): err = %v, want ErrInvalidParameter", err)
	}
}

func TestMoveAtSpeedRampAndStop(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()

	if err := s.MoveAtSpeed(50); err != nil {
		t.Fatalf("MoveAtSpeed: %v", err)
	}
	for i := 0; i < 2000 && s.Motion().Phase() != planner.FLAT; i++ {
		wake, ok := core.NextWakeTime()
		if !ok {
			break
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	if s.Motion().Phase() != planner.FLAT {
		t.Fatalf("speed move never reached cruise")
	}

	if err := s.MoveAtSpeed(0); err != nil {
		t.Fatalf("MoveAtSpeed(0): %v", err)
	}
	runToHalt(t, s, 20000)
}

func TestConfigureRejectedWhileMoving(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()
	_ = s.MoveTo(10000, Absolute, false)

	if err := s.Configure(s1Config()); err != planner.ErrWrongPhase {
		t.Fatalf("Configure while moving: err = %v, want ErrWrongPhase", err)
	}
}

// TestSetAccelPercentRejectedWhileMoving covers spec 4.5/8's S6 scenario
// using the actual named setter rather than the bundled Configure: a
// Configuration setter called mid-move must reject with ErrWrongPhase and
// leave the running ramp's acceleration untouched.
func TestSetAccelPercentRejectedWhileMoving(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()
	before := s.Motion().C0()

	_ = s.MoveTo(10000, Absolute, false)

	if err := s.SetAccelPercent(50); err != planner.ErrWrongPhase {
		t.Fatalf("SetAccelPercent while moving: err = %v, want ErrWrongPhase", err)
	}
	if s.Motion().Config().AccelPercent != 100 {
		t.Fatalf("AccelPercent changed while moving: got %d, want unchanged 100", s.Motion().Config().AccelPercent)
	}
	if s.Motion().C0() != before {
		t.Fatalf("c0 changed while moving: got %v, want unchanged %v", s.Motion().C0(), before)
	}
}

type fakeLimitSwitch struct{ tripped bool }

func (f *fakeLimitSwitch) Tripped() bool { return f.tripped }

func TestMoveToBlockingStopsOnLimitSwitch(t *testing.T) {
	core.SetTime(0)
	s, _ := newSurface()
	sw := &fakeLimitSwitch{tripped: true}
	s.SetLimitSwitch(sw)

	err := s.MoveToBlocking(10000, Absolute, false, nil)
	if err != planner.ErrLimitTripped {
		t.Fatalf("MoveToBlocking: err = %v, want ErrLimitTripped", err)
	}
}
