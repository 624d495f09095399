// Package command implements the Command Surface (C6): the public,
// task-context API a caller uses to request moves, and the one-slot
// follow-up queue plus Deferred-Action Timer (C3) that let a new command
// safely displace a move already in flight. Grounded on core/stepper.go's
// QueueMove (generalized from a single position queue to the
// position-or-speed one-slot queue spec 4.5 describes) and on
// original_source/main/motor.c's motor_move_to_pos/motor_move_at_speed,
// whose ATOMIC_BLOCK{queue; stop();} pattern is reproduced here with
// core.EnterCritical.
package command

import (
	"camslider/core"
	"camslider/planner"
	"camslider/ramp"
)

// Kind selects absolute vs relative interpretation of a move_to target.
type Kind uint8

const (
	Absolute Kind = iota
	Relative
)

// StopKind selects the stop operation's braking distance.
type StopKind uint8

const (
	Soft StopKind = iota // ride out the natural deceleration distance
	Hard                 // force termination on the very next tick
)

// LimitSwitch is the external end-of-travel sensor move_to_blocking
// polls for. Debouncing and pin wiring are the caller's responsibility
// (out of scope here, same as the rest of the rotary-encoder/LCD layer).
type LimitSwitch interface {
	Tripped() bool
}

type queueEntry struct {
	full      bool
	mode      planner.ControlMode
	pos       int64
	speed     int
	speedStop bool
}

// Surface wraps a planner.Motion with the command-level semantics spec
// 4.5 describes: clamped/queued move_to, move_at_speed, stop, and
// configuration gating. A Surface owns exactly one Motion (single axis).
type Surface struct {
	motion      *planner.Motion
	limitSwitch LimitSwitch
	deferred    core.Timer
	queue       queueEntry
}

// NewSurface wires a command surface around an already-constructed
// Motion. The surface registers itself as the Motion's onHalt callback to
// arm the Deferred-Action Timer whenever a queued follow-up exists.
func NewSurface(motion *planner.Motion) *Surface {
	s := &Surface{motion: motion}
	motion.SetOnHalt(s.onMotionHalt)
	return s
}

// SetLimitSwitch attaches the external limit-switch sensor MoveToBlocking
// polls. Pass nil to remove it.
func (s *Surface) SetLimitSwitch(sw LimitSwitch) { s.limitSwitch = sw }

// Motion exposes the underlying state machine for read-only inspection
// (position, phase, velocity) without re-deriving it in this package.
func (s *Surface) Motion() *planner.Motion { return s.motion }

func (s *Surface) resolveTarget(pos int64, kind Kind) int64 {
	if kind == Relative {
		return s.motion.Position() + pos
	}
	return pos
}

// MoveTo requests a position-mode move, grounded on motor_move_to_pos.
// If checkLimits is set the target is clamped into [0, MAX_COUNT] first
// (C7). A target equal to the current position is a silent no-op. If the
// axis is already moving, the new target is either picked up
// automatically by the running ramp (same direction, still approaching)
// or queued and a soft stop issued (reversal, a same-direction target
// now behind the current deceleration point, or a running speed-mode
// move, whose ramp never consults the target).
func (s *Surface) MoveTo(pos int64, kind Kind, checkLimits bool) error {
	target := s.resolveTarget(pos, kind)
	if checkLimits {
		target = s.motion.ClampToRail(target)
	}
	if target == s.motion.Position() {
		return nil // no-op
	}

	if s.motion.IsHalted() {
		s.motion.ArmPosition(target)
		return nil
	}

	// Mirrors motor_move_to_pos's unconditional `target_pos = p` done
	// before the moving-branch analysis: the running ramp picks this up
	// on its own next tick unless the analysis below decides a queued
	// stop is required instead.
	s.motion.SetTargetPos(target)

	if s.motion.Mode() != planner.PositionMode || s.positionMoveNeedsQueueing(target) {
		s.enqueueAndStop(queueEntry{full: true, mode: planner.PositionMode, pos: target})
	}
	return nil
}

// positionMoveNeedsQueueing decides whether a retarget while moving can
// ride the current ramp (false) or requires a queued stop-then-redispatch
// (true): any direction reversal, or a same-direction target that now
// lies behind where the ramp is already committed to decelerating to.
func (s *Surface) positionMoveNeedsQueueing(target int64) bool {
	cur := s.motion.Position()
	dir := s.motion.Dir() // true = forward/CW
	n := int64(s.motion.N())

	if target >= cur {
		if !dir {
			return true // moving backward, target now ahead: reversal
		}
		return (target - cur) < n
	}
	if dir {
		return true // moving forward, target now behind: reversal
	}
	return (cur - target) < n
}

// MoveToBlocking behaves like MoveTo but does not return until the move
// completes, a limit switch trips (hard stop, ErrLimitTripped), or the
// supplied cancel channel is closed/signaled.
func (s *Surface) MoveToBlocking(pos int64, kind Kind, checkLimits bool, cancel <-chan struct{}) error {
	if err := s.MoveTo(pos, kind, checkLimits); err != nil {
		return err
	}
	for !s.motion.IsHalted() {
		if s.limitSwitch != nil && s.limitSwitch.Tripped() {
			s.motion.Stop(true)
			for !s.motion.IsHalted() {
				wake, ok := core.NextWakeTime()
				if !ok {
					break
				}
				core.SetTime(wake)
				core.ProcessTimers()
			}
			return planner.ErrLimitTripped
		}
		if cancel != nil {
			select {
			case <-cancel:
				s.motion.Stop(true)
			default:
			}
		}
		wake, ok := core.NextWakeTime()
		if !ok {
			break
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	return nil
}

// MoveAtSpeed requests a speed-mode move at the given signed percentage
// of the configured maximum speed (-100..100). Zero requests a soft stop.
// Grounded on motor_move_at_speed.
func (s *Surface) MoveAtSpeed(percent int) error {
	if percent < -100 || percent > 100 {
		return planner.ErrInvalidParameter
	}
	if percent == 0 {
		if !s.motion.IsHalted() {
			s.motion.Stop(false)
		}
		return nil
	}

	forward := percent > 0
	pct := percent
	if !forward {
		pct = -pct
	}
	cmin := s.motion.Config().CminForPercent(pct)

	if s.motion.IsHalted() {
		s.motion.ArmSpeed(forward, cmin)
		return nil
	}

	if forward == s.motion.Dir() {
		if cmin < s.motion.Cmin() {
			s.motion.SpeedUp(cmin)
		} else if cmin > s.motion.Cmin() {
			s.motion.SpeedDown(cmin)
		}
		return nil
	}

	// Direction reversal: queue the new speed and ride the current
	// deceleration down through HALT before redispatching.
	s.enqueueAndStop(queueEntry{full: true, mode: planner.SpeedMode, speed: percent, speedStop: true})
	return nil
}

// Stop requests a soft or hard stop of whatever move is currently
// running. A no-op if already halted.
func (s *Surface) Stop(kind StopKind) {
	s.motion.Stop(kind == Hard)
}

// Configure applies a new planner.Config wholesale, rejected with
// ErrWrongPhase unless the axis is at HALT. For a single runtime knob,
// prefer the named setters below.
func (s *Surface) Configure(cfg planner.Config) error {
	return s.motion.Configure(cfg)
}

// SetMaxSpeedPercent sets the persistent max-speed percentage
// position-mode moves cruise at (spec 4.5's set_max_speed_percent).
// Rejected with ErrWrongPhase unless the axis is at HALT.
func (s *Surface) SetMaxSpeedPercent(pct int) error {
	return s.motion.SetMaxSpeedPercent(pct)
}

// SetAccelPercent sets the persistent acceleration percentage
// (spec 4.5's set_accel_percent). Rejected with ErrWrongPhase unless the
// axis is at HALT.
func (s *Surface) SetAccelPercent(pct int) error {
	return s.motion.SetAccelPercent(pct)
}

// SetProfile switches the acceleration profile (spec 4.5's set_profile).
// Rejected with ErrWrongPhase unless the axis is at HALT.
func (s *Surface) SetProfile(p ramp.Profile) error {
	return s.motion.SetProfile(p)
}

// enqueueAndStop admits q to the one-slot queue (a newer command
// displaces an older unconsumed one) and initiates a soft stop, both
// inside a masked critical section -- queue first, then stop, exactly as
// original_source's ATOMIC_BLOCK{queue_motion(p); motor_stop();} requires
// so the Step Timer ISR never observes the stop without the queued
// follow-up already in place.
func (s *Surface) enqueueAndStop(q queueEntry) {
	exit := core.EnterCritical()
	defer exit()

	s.queue = q
	core.RecordTiming(core.EvtQueueAdmit, 0, core.GetTime(), uint32(q.pos), uint32(q.speed))

	if q.mode == planner.SpeedMode {
		s.motion.SetSpeedStop(q.speedStop)
	}
	s.motion.Stop(false)
}

// onMotionHalt is the planner.Motion onHalt callback. If a follow-up
// command is queued, it arms the Deferred-Action Timer (~100us) so the
// queued command is redispatched from timer-callback context rather than
// directly from inside the Step Timer ISR's call stack.
func (s *Surface) onMotionHalt() {
	if !s.queue.full {
		return
	}
	s.deferred.WakeTime = core.GetTime() + core.TimerFromUS(100)
	s.deferred.Handler = s.dispatchQueued
	core.ScheduleTimer(&s.deferred)
}

func (s *Surface) dispatchQueued(t *core.Timer) uint8 {
	q := s.queue
	s.queue = queueEntry{}
	core.RecordTiming(core.EvtQueueDispatch, 0, core.GetTime(), uint32(q.pos), uint32(q.speed))

	if q.mode == planner.PositionMode {
		_ = s.MoveTo(q.pos, Absolute, false)
	} else {
		_ = s.MoveAtSpeed(q.speed)
	}
	return core.SF_DONE
}
