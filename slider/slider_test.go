package slider

import (
	"testing"

	"camslider/command"
	"camslider/core"
	"camslider/planner"
	"camslider/ramp"
)

type stubBackend struct{ pulses int }

func (b *stubBackend) Init(stepPin, dirPin, enablePin uint32, invertStep, invertDir bool) error {
	return nil
}
func (b *stubBackend) Pulse()                        { b.pulses++ }
func (b *stubBackend) SetDirection(forward bool)     {}
func (b *stubBackend) SetEnabled(enabled bool) error { return nil }
func (b *stubBackend) Name() string                  { return "stub" }

func TestSliderMoveToEndToEnd(t *testing.T) {
	core.SetTime(0)
	backend := &stubBackend{}
	cfg := planner.Config{FMotor: 2_000_000, SpeedMax: 8000, AccelMax: 8000, MaxCount: 100_000, Profile: ramp.Linear, MaxSpeedPercent: 100, AccelPercent: 100}
	s := New(backend, cfg)

	if err := s.MoveTo(1000, command.Absolute, false); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	for i := 0; i < 20000 && s.IsMoving(); i++ {
		wake, ok := core.NextWakeTime()
		if !ok {
			break
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	if s.IsMoving() {
		t.Fatalf("slider never settled")
	}
	if s.Position() != 1000 {
		t.Fatalf("position = %d, want 1000", s.Position())
	}
}
