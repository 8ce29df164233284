// Package ride implements the two-arm ride model.
//
// A large arm turns about the origin and carries a shorter arm that turns
// about the large arm's tip. Each Step advances both arms by one dt and
// estimates the velocity and acceleration of the small arm's tip with forward
// differences:
//
//	v_n = (p_n - p_{n-1}) / dt
//	a_n = (v_n - v_{n-1}) / dt
//
// with v_0 = 0, so the first acceleration is v_1 / dt. The error is O(dt).
package ride

import (
	"fmt"
	"slices"

	"github.com/cxd309/ride-engine/internal/geometry"
)

// maxPrealloc bounds the trajectory capacity reserved up front.
const maxPrealloc = 1 << 16

// Snapshot is the kinematic state reported after a step.
type Snapshot struct {
	Tip          geometry.Vector `json:"tip"`
	Velocity     geometry.Vector `json:"velocity"`
	Acceleration geometry.Vector `json:"acceleration"`
	Pivot        geometry.Vector `json:"pivot"` // small arm pivot (outer arm tip)
}

// Arms holds detached copies of the model's arrows, for drawing.
type Arms struct {
	Big          geometry.Arrow
	Small        geometry.Arrow
	Velocity     geometry.Arrow
	Acceleration geometry.Arrow
}

// Model is the ride state. It is not safe for concurrent use.
type Model struct {
	cfg Config

	big          *geometry.Arrow
	small        *geometry.Arrow // attached to big
	velocity     *geometry.Arrow // attached to small
	acceleration *geometry.Arrow // attached to small

	trajectory []geometry.Vector
	steps      int
}

// New validates cfg and builds the initial state: both arms pointing along +Y,
// the small arm pivoting on the big arm's tip.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	big := geometry.NewArrow(geometry.Vector{}, geometry.Vector{X: 0, Y: cfg.BigRadius})
	small := geometry.NewArrow(geometry.Vector{}, geometry.Vector{X: 0, Y: cfg.SmallRadius})
	small.AttachTo(big)
	velocity := geometry.NewArrow(geometry.Vector{}, geometry.Vector{})
	velocity.AttachTo(small)
	acceleration := geometry.NewArrow(geometry.Vector{}, geometry.Vector{})
	acceleration.AttachTo(small)

	return &Model{
		cfg:          cfg,
		big:          big,
		small:        small,
		velocity:     velocity,
		acceleration: acceleration,
		trajectory:   make([]geometry.Vector, 0, min(cfg.Steps, maxPrealloc)),
	}, nil
}

// composite returns the position of the ride point from the current arms.
func (m *Model) composite() geometry.Vector {
	return m.big.Position.Add(m.big.Direction).Add(m.small.Direction)
}

// Step advances the model by one dt and returns the new snapshot.
// The returned error is only possible if the model was built around an
// unvalidated Config.
func (m *Model) Step() (Snapshot, error) {
	dt := m.cfg.Dt

	before := m.composite()
	velocityBefore := m.velocity.Direction

	// Outer arm first, then move the inner pivot onto its new tip before the
	// inner arm turns.
	m.big.Rotate(m.cfg.BigAngularVelocity * dt)
	m.small.Refresh()
	m.small.Rotate(m.cfg.SmallAngularVelocity * dt)

	after := m.composite()

	v, err := after.Sub(before).Div(dt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("velocity at step %d: %w", m.steps+1, err)
	}
	a, err := v.Sub(velocityBefore).Div(dt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("acceleration at step %d: %w", m.steps+1, err)
	}

	m.velocity.Refresh()
	m.velocity.Direction = v
	m.acceleration.Position = m.velocity.Position
	m.acceleration.Direction = a

	m.trajectory = append(m.trajectory, m.small.Endpoint())
	m.steps++

	return Snapshot{
		Tip:          after,
		Velocity:     v,
		Acceleration: a,
		Pivot:        m.small.Position,
	}, nil
}

// Trajectory returns a copy of the tip positions recorded so far, oldest first.
func (m *Model) Trajectory() []geometry.Vector {
	return slices.Clone(m.trajectory)
}

// Config returns the model configuration.
func (m *Model) Config() Config { return m.cfg }

// StepCount returns the number of completed steps.
func (m *Model) StepCount() int { return m.steps }

// Time returns the simulated time of the last completed step.
func (m *Model) Time() float64 { return float64(m.steps) * m.cfg.Dt }

// Arms returns copies of the four arrows.
func (m *Model) Arms() Arms {
	return Arms{
		Big:          m.big.Snapshot(),
		Small:        m.small.Snapshot(),
		Velocity:     m.velocity.Snapshot(),
		Acceleration: m.acceleration.Snapshot(),
	}
}
