// Package planner implements the motion state machine: it owns the
// position/speed ramp state, decides UP/FLAT/DOWN/HALT transitions on
// every step-timer tick, and drives the step pulse and timer reload in
// the order the original firmware's ISR(TIMER1_COMPA_vect) used. Grounded
// directly on original_source/main/motor.c's compute_c (position mode)
// and original_source/accelStepper/motor.c's compute_c_speed (speed
// mode), generalized from the C switch-on-spd shape into methods on a
// Motion struct.
package planner

import (
	"camslider/core"
	"camslider/motor"
	"camslider/ramp"
)

// Phase is the planner's top-level state (spec Data Model's "state").
type Phase uint8

const (
	HALT Phase = iota
	UP
	FLAT
	DOWN
)

func (p Phase) String() string {
	switch p {
	case UP:
		return "UP"
	case FLAT:
		return "FLAT"
	case DOWN:
		return "DOWN"
	default:
		return "HALT"
	}
}

// ControlMode selects which tick algorithm (4.4 Position vs Speed) runs.
type ControlMode uint8

const (
	PositionMode ControlMode = iota
	SpeedMode
)

// Motion is the single-axis motion state machine. It is not safe for
// concurrent use from more than one goroutine at a time beyond the
// tick/command split the command package's critical sections enforce:
// command.Surface mutates it from task context, tick (registered as a
// core.Timer handler) mutates it from interrupt/dispatch context.
type Motion struct {
	cfg     Config
	backend motor.Backend
	timer   core.Timer

	cn        float64
	c0        float64
	cmin      float64
	cTarget   float64
	n         uint32
	phase     Phase
	dir       bool // true = CW (forward/increasing current_pos)
	mode      ControlMode
	profile   ramp.Profile
	speedStop bool

	currentPos int64
	targetPos  int64

	onHalt func()
}

// NewMotion builds a Motion at rest (HALT, position 0) using cfg and the
// given step driver backend. The backend's pulses are always counted by
// advancing currentPos, so callers must never call backend.Pulse()
// themselves while a Motion is in play.
func NewMotion(cfg Config, backend motor.Backend) *Motion {
	c0 := ramp.C0(cfg.Profile, cfg.FMotor, cfg.OperatingAccel())
	return &Motion{
		cfg:     cfg,
		backend: backend,
		profile: cfg.Profile,
		cn:      c0,
		c0:      c0,
		cmin:    cfg.OperatingCmin(),
		phase:   HALT,
		dir:     true,
	}
}

// SetOnHalt registers a callback invoked synchronously when a tick
// transitions the motion into HALT. command.Surface uses this to arm the
// deferred-action timer when a follow-up command is queued.
func (m *Motion) SetOnHalt(f func()) { m.onHalt = f }

// --- getters -----------------------------------------------------------

func (m *Motion) Position() int64       { return m.currentPos }
func (m *Motion) TargetPos() int64      { return m.targetPos }
func (m *Motion) Dir() bool             { return m.dir }
func (m *Motion) N() uint32             { return m.n }
func (m *Motion) Cn() float64           { return m.cn }
func (m *Motion) Cmin() float64         { return m.cmin }
func (m *Motion) Phase() Phase          { return m.phase }
func (m *Motion) Mode() ControlMode     { return m.mode }
func (m *Motion) Profile() ramp.Profile { return m.profile }
func (m *Motion) IsHalted() bool        { return m.phase == HALT }
func (m *Motion) Config() Config        { return m.cfg }
func (m *Motion) C0() float64           { return m.c0 }

// EffectiveAccel recovers the acceleration (steps/s^2) that produced the
// current c0, inverting ramp.C0's formula. Meaningful only immediately
// after a fresh arm, before any clamping noise from a long move.
func (m *Motion) EffectiveAccel() float64 {
	k := ramp.AccelCorrection * m.cfg.FMotor
	return 2.0 * k * k / (m.c0 * m.c0)
}

// SetTargetPos updates the position-mode target without otherwise
// touching the running state. Mirrors the original's unconditional
// `target_pos = p` assignment at the top of motor_move_to_pos, done
// before the moving/not-moving branch is evaluated.
func (m *Motion) SetTargetPos(p int64) { m.targetPos = p }

// SetSpeedStop marks a pending speed-mode stop: compute_c_speed's DOWN
// branch skips the settle-to-new-cruise path once this is set, so
// deceleration runs all the way to HALT instead of leveling off.
func (m *Motion) SetSpeedStop(v bool) { m.speedStop = v }

// --- arming --------------------------------------------------------------

// ArmPosition starts a fresh position-mode move from HALT. Mirrors
// motor_move_to_pos's HALT branch: pick direction from the sign of the
// displacement, enable the driver, emit the first pulse, and run one
// tick of the ramp before the timer is scheduled for the second pulse.
// A target equal to the current position is a no-op.
func (m *Motion) ArmPosition(target int64) {
	if target == m.currentPos {
		return
	}
	m.mode = PositionMode
	m.targetPos = target
	m.dir = target > m.currentPos
	m.cmin = m.cfg.OperatingCmin()
	m.armCommon()
}

// ArmSpeed starts a fresh speed-mode move from HALT at the given cruise
// interval (already converted from a percentage via ramp.Cmin).
func (m *Motion) ArmSpeed(forward bool, cmin float64) {
	m.mode = SpeedMode
	m.dir = forward
	m.cmin = cmin
	m.cTarget = cmin
	m.speedStop = false
	m.armCommon()
}

func (m *Motion) armCommon() {
	m.n = 0
	m.cn = m.c0
	m.phase = UP
	m.backend.SetDirection(m.dir)
	_ = m.backend.SetEnabled(true)
	core.RecordTiming(core.EvtStateChange, 0, core.GetTime(), uint32(m.phase), 0)

	m.backend.Pulse()
	if m.dir {
		m.currentPos++
	} else {
		m.currentPos--
	}
	core.RecordTiming(core.EvtTimerFire, 0, core.GetTime(), uint32(m.currentPos), 0)
	m.recompute()
	if m.phase == HALT {
		// A one-step move arrives with the arming pulse itself.
		_ = m.backend.SetEnabled(false)
		core.RecordTiming(core.EvtStateChange, 0, core.GetTime(), uint32(HALT), 0)
		if m.onHalt != nil {
			m.onHalt()
		}
		return
	}

	m.timer.WakeTime = core.GetTime() + uint32(m.cn)
	m.timer.Handler = m.tick
	core.ScheduleTimer(&m.timer)
}

// Stop requests a deceleration to a halt. Soft stops ride out the
// natural deceleration distance (n steps in position mode, the same
// recurrence shape in speed mode); hard stops force termination on the
// very next tick.
//
// Position mode matches motor_stop(): target_pos is recomputed from the
// current direction so the DOWN-phase distance test (steps_ahead<=n)
// fires immediately. Speed mode has no target_pos to re-aim (compute_c_speed
// never consults it), so a hard stop clamps n to 1 directly -- the same
// "one more tick, then halt" effect, generalized to a mode the original
// firmware's target_pos trick can't reach.
func (m *Motion) Stop(hard bool) {
	if m.phase == HALT {
		return
	}
	switch m.mode {
	case PositionMode:
		if hard {
			if m.dir {
				m.targetPos = m.currentPos + 1
			} else {
				m.targetPos = m.currentPos - 1
			}
		} else {
			if m.dir {
				m.targetPos = m.currentPos + int64(m.n)
			} else {
				m.targetPos = m.currentPos - int64(m.n)
			}
		}
	case SpeedMode:
		m.speedStop = true
		if m.phase != DOWN {
			m.phase = DOWN
		}
		if hard && m.n > 1 {
			m.n = 1
		}
	}
}

// SpeedUp requests a faster cruise in the same direction while already
// moving: lower cmin, resume UP so the ramp climbs to it.
func (m *Motion) SpeedUp(cmin float64) {
	m.cmin = cmin
	m.phase = UP
}

// SpeedDown requests a slower cruise in the same direction while already
// moving: set the deceleration target and drop into DOWN.
func (m *Motion) SpeedDown(cTarget float64) {
	m.cTarget = cTarget
	m.speedStop = false
	m.phase = DOWN
}

// Configure replaces the whole Config wholesale (e.g. loading a new
// config file at startup). Rejected unless the motion is at HALT, per
// spec 4.5's configuration setters ("reject unless HALT"). For adjusting
// a single knob at runtime, prefer SetMaxSpeedPercent/SetAccelPercent/
// SetProfile below -- the three setters spec 4.5 actually names.
func (m *Motion) Configure(cfg Config) error {
	if m.phase != HALT {
		return ErrWrongPhase
	}
	m.cfg = cfg
	m.profile = cfg.Profile
	m.c0 = ramp.C0(cfg.Profile, cfg.FMotor, cfg.OperatingAccel())
	m.cn = m.c0
	m.cmin = cfg.OperatingCmin()
	return nil
}

// SetMaxSpeedPercent adjusts the persistent cruise-speed percentage
// position-mode moves ramp to (spec 4.5's set_max_speed_percent).
// Rejected with ErrWrongPhase unless the motion is at HALT.
func (m *Motion) SetMaxSpeedPercent(pct int) error {
	if m.phase != HALT {
		return ErrWrongPhase
	}
	if pct < 1 || pct > 100 {
		return ErrInvalidParameter
	}
	m.cfg.MaxSpeedPercent = pct
	m.cmin = m.cfg.OperatingCmin()
	return nil
}

// SetAccelPercent adjusts the persistent acceleration percentage c0 is
// derived from (spec 4.5's set_accel_percent). Rejected with
// ErrWrongPhase unless the motion is at HALT.
func (m *Motion) SetAccelPercent(pct int) error {
	if m.phase != HALT {
		return ErrWrongPhase
	}
	if pct < 1 || pct > 100 {
		return ErrInvalidParameter
	}
	m.cfg.AccelPercent = pct
	m.c0 = ramp.C0(m.profile, m.cfg.FMotor, m.cfg.OperatingAccel())
	m.cn = m.c0
	return nil
}

// SetProfile switches the acceleration profile (spec 4.5's set_profile).
// Rejected with ErrWrongPhase unless the motion is at HALT.
func (m *Motion) SetProfile(p ramp.Profile) error {
	if m.phase != HALT {
		return ErrWrongPhase
	}
	m.cfg.Profile = p
	m.profile = p
	m.c0 = ramp.C0(p, m.cfg.FMotor, m.cfg.OperatingAccel())
	m.cn = m.c0
	return nil
}

// ForceHalt halts the motion machine out-of-band, bypassing tick(). Used
// by a core.SetShutdownHandler registration for the case where the
// scheduler itself has given up on a timer (TimerDispatch's
// timer-past-threshold shutdown) and tick() will never run again to
// bring the driver down through its normal HALT path.
func (m *Motion) ForceHalt() {
	if m.phase == HALT {
		return
	}
	m.phase = HALT
	_ = m.backend.SetEnabled(false)
	core.RecordTiming(core.EvtStateChange, 0, core.GetTime(), uint32(HALT), 0)
	if m.onHalt != nil {
		m.onHalt()
	}
}

// tick is the step-timer handler: pulse, reload, recompute, in that
// order, mirroring the ISR contract "first pulse, then reprogram
// interval, then compute the next Cn".
func (m *Motion) tick(t *core.Timer) uint8 {
	m.backend.Pulse()
	if m.dir {
		m.currentPos++
	} else {
		m.currentPos--
	}
	core.RecordTiming(core.EvtTimerFire, 0, core.GetTime(), uint32(m.currentPos), 0)
	t.WakeTime += uint32(m.cn)

	m.recompute()

	if m.phase == HALT {
		_ = m.backend.SetEnabled(false)
		core.RecordTiming(core.EvtStateChange, 0, core.GetTime(), uint32(HALT), 0)
		if m.onHalt != nil {
			m.onHalt()
		}
		return core.SF_DONE
	}
	return core.SF_RESCHEDULE
}

func (m *Motion) recompute() {
	before := m.phase
	if m.mode == PositionMode {
		m.tickPosition()
	} else {
		m.tickSpeed()
	}
	if m.phase != before {
		core.RecordTiming(core.EvtStateChange, 0, core.GetTime(), uint32(m.phase), uint32(m.n))
	}
}
