package engine

import (
	"github.com/cxd309/ride-engine/internal/geometry"
	"github.com/cxd309/ride-engine/internal/ride"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	TimeStep     float64 `json:"time_step"` // time units per step
	Steps        int     `json:"steps"`
}

// ArmData is the serialisable geometry of the two arms.
type ArmData struct {
	BigRadius            float64 `json:"big_radius"`
	SmallRadius          float64 `json:"small_radius"`
	BigAngularVelocity   float64 `json:"big_angular_velocity"`   // rad per time unit
	SmallAngularVelocity float64 `json:"small_angular_velocity"` // rad per time unit
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta SimulationMeta `json:"simulation_meta"`
	Arms ArmData        `json:"arms"`
}

// RideConfig converts the input to a ride.Config.
func (in SimulationInput) RideConfig() ride.Config {
	return ride.Config{
		BigRadius:            in.Arms.BigRadius,
		SmallRadius:          in.Arms.SmallRadius,
		BigAngularVelocity:   in.Arms.BigAngularVelocity,
		SmallAngularVelocity: in.Arms.SmallAngularVelocity,
		Dt:                   in.Meta.TimeStep,
		Steps:                in.Meta.Steps,
	}
}

// SimulationLogRow is the kinematic state of the ride point after one step.
type SimulationLogRow struct {
	Step         int             `json:"step"`
	Timestamp    float64         `json:"timestamp"`
	Tip          geometry.Vector `json:"tip"`
	Velocity     geometry.Vector `json:"velocity"`
	Acceleration geometry.Vector `json:"acceleration"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta   SimulationMeta     `json:"simulation_meta"`
	Output []SimulationLogRow `json:"output"`
}

// Frame is what a Renderer receives after each step. Trajectory and Arms are
// copies; renderers may keep them but must not expect changes to reach the
// model.
type Frame struct {
	Step       int
	Time       float64
	Snapshot   ride.Snapshot
	Trajectory []geometry.Vector
	Arms       ride.Arms
}

// Renderer consumes frames. Render is called once per completed step, in
// step order, from the goroutine running the engine.
type Renderer interface {
	Render(f Frame) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(f Frame) error

// Render calls fn(f).
func (fn RendererFunc) Render(f Frame) error { return fn(f) }

// Engine drives a ride.Model for a fixed number of steps.
type Engine struct {
	meta      SimulationMeta
	model     *ride.Model
	renderers []Renderer
}
