package ride

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is matched by every *ConfigError.
var ErrInvalidConfig = errors.New("invalid ride configuration")

// ConfigError describes a configuration value rejected by New.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %g: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfig) match.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// Config is the immutable configuration of a ride model.
// Radii are in length units, angular velocities in rad per time unit.
type Config struct {
	BigRadius            float64
	SmallRadius          float64
	BigAngularVelocity   float64
	SmallAngularVelocity float64
	Dt                   float64
	Steps                int
}

// DefaultConfig returns the reference ride: outer arm 2 turning at -1.25,
// inner arm 1 turning at 0.75, 1000 steps of 0.05.
func DefaultConfig() Config {
	return Config{
		BigRadius:            2,
		SmallRadius:          1,
		BigAngularVelocity:   -1.25,
		SmallAngularVelocity: 0.75,
		Dt:                   0.05,
		Steps:                1000,
	}
}

// Validate returns a *ConfigError for the first invalid field, or nil.
func (c Config) Validate() error {
	floats := []struct {
		name string
		v    float64
	}{
		{"big_radius", c.BigRadius},
		{"small_radius", c.SmallRadius},
		{"big_angular_velocity", c.BigAngularVelocity},
		{"small_angular_velocity", c.SmallAngularVelocity},
		{"dt", c.Dt},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ConfigError{Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}

	switch {
	case c.Dt <= 0:
		return &ConfigError{Field: "dt", Value: c.Dt, Reason: "must be > 0"}
	case c.BigRadius <= 0:
		return &ConfigError{Field: "big_radius", Value: c.BigRadius, Reason: "must be > 0"}
	case c.SmallRadius <= 0:
		return &ConfigError{Field: "small_radius", Value: c.SmallRadius, Reason: "must be > 0"}
	case c.Steps < 0:
		return &ConfigError{Field: "steps", Value: float64(c.Steps), Reason: "must be >= 0"}
	}
	return nil
}
