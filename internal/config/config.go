// Package config loads the command-line configuration of a ride run.
//
// Values come from three layers, later ones winning: DefaultConfig, a TOML
// file, then RIDE_* environment variables (optionally seeded from a .env
// file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/cxd309/ride-engine/internal/engine"
	"github.com/cxd309/ride-engine/internal/ride"
)

// Config holds everything needed to run and present a simulation.
type Config struct {
	SimulationID string `toml:"simulation_id"`

	// Ride parameters
	BigRadius            float64 `toml:"big_radius"`
	SmallRadius          float64 `toml:"small_radius"`
	BigAngularVelocity   float64 `toml:"big_angular_velocity"`   // unit: rad/time
	SmallAngularVelocity float64 `toml:"small_angular_velocity"` // unit: rad/time
	Dt                   float64 `toml:"dt"`
	Steps                int     `toml:"steps"`

	// Output is the JSON log path; empty writes to stdout.
	Output string `toml:"output"`
	// CSV is an optional per-step CSV log path.
	CSV string `toml:"csv"`
	// Plot is an optional image path for the last frame.
	Plot string `toml:"plot"`
	// FramesDir receives one image every FrameEvery steps when set.
	FramesDir  string `toml:"frames_dir"`
	FrameEvery int    `toml:"frame_every"`
	// ViewSize is the side of the square view in world units; 0 fits content.
	ViewSize float64 `toml:"view_size"`

	Summary  bool `toml:"summary"`  // print a terminal report at the end
	Realtime bool `toml:"realtime"` // sleep dt per step
}

// DefaultConfig returns the reference ride with JSON output to stdout.
func DefaultConfig() *Config {
	rc := ride.DefaultConfig()
	return &Config{
		SimulationID:         "ride",
		BigRadius:            rc.BigRadius,
		SmallRadius:          rc.SmallRadius,
		BigAngularVelocity:   rc.BigAngularVelocity,
		SmallAngularVelocity: rc.SmallAngularVelocity,
		Dt:                   rc.Dt,
		Steps:                rc.Steps,
		FrameEvery:           10,
		ViewSize:             10,
	}
}

// ParseConfig decodes the TOML file at path over the defaults. Unknown keys
// are rejected.
func ParseConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	md, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("parsing %s: unknown key %q", path, undec[0].String())
	}
	return conf, nil
}

// LoadEnv loads the given .env files into the process environment. Missing
// files are skipped; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		switch {
		case err == nil:
			log.Printf("loaded environment from %s", f)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides c with any RIDE_* variables set in the environment.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"RIDE_SIMULATION_ID": &c.SimulationID,
		"RIDE_OUTPUT":        &c.Output,
		"RIDE_CSV":           &c.CSV,
		"RIDE_PLOT":          &c.Plot,
		"RIDE_FRAMES_DIR":    &c.FramesDir,
	}
	for k, p := range strs {
		if v, ok := os.LookupEnv(k); ok {
			*p = v
		}
	}

	floats := map[string]*float64{
		"RIDE_BIG_RADIUS":             &c.BigRadius,
		"RIDE_SMALL_RADIUS":           &c.SmallRadius,
		"RIDE_BIG_ANGULAR_VELOCITY":   &c.BigAngularVelocity,
		"RIDE_SMALL_ANGULAR_VELOCITY": &c.SmallAngularVelocity,
		"RIDE_DT":                     &c.Dt,
		"RIDE_VIEW_SIZE":              &c.ViewSize,
	}
	for k, p := range floats {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*p = f
	}

	ints := map[string]*int{
		"RIDE_STEPS":       &c.Steps,
		"RIDE_FRAME_EVERY": &c.FrameEvery,
	}
	for k, p := range ints {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*p = n
	}

	bools := map[string]*bool{
		"RIDE_SUMMARY":  &c.Summary,
		"RIDE_REALTIME": &c.Realtime,
	}
	for k, p := range bools {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*p = b
	}
	return nil
}

// RideConfig returns the ride model configuration.
func (c *Config) RideConfig() ride.Config {
	return ride.Config{
		BigRadius:            c.BigRadius,
		SmallRadius:          c.SmallRadius,
		BigAngularVelocity:   c.BigAngularVelocity,
		SmallAngularVelocity: c.SmallAngularVelocity,
		Dt:                   c.Dt,
		Steps:                c.Steps,
	}
}

// SimulationInput returns the engine input equivalent to c.
func (c *Config) SimulationInput() engine.SimulationInput {
	return engine.SimulationInput{
		Meta: engine.SimulationMeta{
			SimulationID: c.SimulationID,
			TimeStep:     c.Dt,
			Steps:        c.Steps,
		},
		Arms: engine.ArmData{
			BigRadius:            c.BigRadius,
			SmallRadius:          c.SmallRadius,
			BigAngularVelocity:   c.BigAngularVelocity,
			SmallAngularVelocity: c.SmallAngularVelocity,
		},
	}
}
