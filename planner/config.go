package planner

import (
	"encoding/json"

	"camslider/ramp"
)

// Config holds the Configuration (C8) knobs: the motor's pulse clock,
// its rated speed/acceleration range, the rail length in steps, and the
// acceleration profile. Grounded on standalone/config/config.go's
// LoadConfig pattern (JSON with defaults applied after unmarshal).
type Config struct {
	FMotor   float64      `json:"f_motor_hz"`
	SpeedMax float64      `json:"speed_max_steps_per_sec"`
	AccelMax float64      `json:"accel_max_steps_per_sec2"`
	MaxCount int64        `json:"max_count"`
	Profile  ramp.Profile `json:"profile"`

	// SafetyMarginSteps pads the Limits Guard's boundary test (supplement,
	// no equivalent field in the original firmware). Zero leaves the
	// guard's exact boundary test (remaining steps <= n) unpadded.
	SafetyMarginSteps int64 `json:"safety_margin_steps"`

	// MaxSpeedPercent and AccelPercent are the persistent Configuration
	// (C8) knobs set_max_speed_percent/set_accel_percent adjust: the
	// fraction of SpeedMax/AccelMax position-mode moves actually ramp to,
	// since move_to carries no speed argument of its own. move_at_speed's
	// own percentage argument is independent of these (it scales SpeedMax
	// directly via CminForPercent).
	MaxSpeedPercent int `json:"max_speed_percent"`
	AccelPercent    int `json:"accel_percent"`
}

// DefaultConfig returns the configuration used by scenario S1: F_MOTOR
// 2MHz, SPEED_MAX 8000 steps/s, accel 8000 steps/s^2, linear profile.
func DefaultConfig() Config {
	return Config{
		FMotor:            2_000_000,
		SpeedMax:          8000,
		AccelMax:          8000,
		MaxCount:          100_000,
		Profile:           ramp.Linear,
		SafetyMarginSteps: 0,
		MaxSpeedPercent:   100,
		AccelPercent:      100,
	}
}

// LoadConfig parses JSON configuration, filling any zero-valued field
// from DefaultConfig.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.FMotor == 0 {
		cfg.FMotor = DefaultConfig().FMotor
	}
	if cfg.SpeedMax == 0 {
		cfg.SpeedMax = DefaultConfig().SpeedMax
	}
	if cfg.AccelMax == 0 {
		cfg.AccelMax = DefaultConfig().AccelMax
	}
	if cfg.MaxCount == 0 {
		cfg.MaxCount = DefaultConfig().MaxCount
	}
	if cfg.MaxSpeedPercent == 0 {
		cfg.MaxSpeedPercent = DefaultConfig().MaxSpeedPercent
	}
	if cfg.AccelPercent == 0 {
		cfg.AccelPercent = DefaultConfig().AccelPercent
	}
	return cfg, nil
}

// CminForPercent converts a 1-100 speed percentage into a step interval
// under this config, per spec 4.5's move_at_speed cmin formula.
func (c Config) CminForPercent(percent int) float64 {
	return ramp.Cmin(c.FMotor, c.SpeedMax, percent)
}

// OperatingCmin is the cruise interval position-mode moves ramp to,
// derived from the persistent MaxSpeedPercent knob rather than a per-call
// percentage (move_to has no speed argument).
func (c Config) OperatingCmin() float64 {
	return ramp.Cmin(c.FMotor, c.SpeedMax, c.MaxSpeedPercent)
}

// OperatingAccel is the acceleration (steps/s^2) c0 is derived from,
// scaled by the persistent AccelPercent knob set_accel_percent adjusts.
func (c Config) OperatingAccel() float64 {
	return c.AccelMax * float64(c.AccelPercent) / 100.0
}
