// Package engine implements the ride simulation loop.
//
// The loop is deliberately bare: each iteration calls Model.Step once and then
// hands a Frame to every registered Renderer in order. It never sleeps; pacing
// a display is a renderer concern.
package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cxd309/ride-engine/internal/ride"
)

// maxPrealloc bounds the log capacity reserved before a run.
const maxPrealloc = 1 << 16

// New builds an Engine from a SimulationInput, validating the ride
// configuration.
func New(input SimulationInput, renderers ...Renderer) (*Engine, error) {
	model, err := ride.New(input.RideConfig())
	if err != nil {
		return nil, fmt.Errorf("building ride model: %w", err)
	}
	return NewWithModel(input.Meta, model, renderers...), nil
}

// NewWithModel wraps an existing model. The number of steps and dt are taken
// from the model's configuration; meta only supplies the identity.
func NewWithModel(meta SimulationMeta, model *ride.Model, renderers ...Renderer) *Engine {
	cfg := model.Config()
	meta.TimeStep = cfg.Dt
	meta.Steps = cfg.Steps
	return &Engine{
		meta:      meta,
		model:     model,
		renderers: renderers,
	}
}

// Model returns the driven model.
func (e *Engine) Model() *ride.Model { return e.model }

// Meta returns the simulation metadata.
func (e *Engine) Meta() SimulationMeta { return e.meta }

// Run executes the remaining steps and returns the log of the steps run by
// this call. If ctx is cancelled the loop stops after the current step and
// returns the partial log together with ctx.Err().
func (e *Engine) Run(ctx context.Context) (SimulationLog, error) {
	log := SimulationLog{
		Meta:   e.meta,
		Output: make([]SimulationLogRow, 0, min(max(e.meta.Steps-e.model.StepCount(), 0), maxPrealloc)),
	}
	for e.model.StepCount() < e.meta.Steps {
		if err := ctx.Err(); err != nil {
			return log, err
		}
		n := e.model.StepCount() + 1
		row, stepped, err := e.step()
		if stepped {
			log.Output = append(log.Output, row)
		}
		if err != nil {
			return log, fmt.Errorf("at step %d: %w", n, err)
		}
	}
	return log, nil
}

// step advances the model by one dt, notifies renderers and returns the log
// row. stepped reports whether the model advanced; a renderer error still
// returns the completed row.
func (e *Engine) step() (row SimulationLogRow, stepped bool, err error) {
	snap, err := e.model.Step()
	if err != nil {
		return SimulationLogRow{}, false, err
	}
	row = SimulationLogRow{
		Step:         e.model.StepCount(),
		Timestamp:    e.model.Time(),
		Tip:          snap.Tip,
		Velocity:     snap.Velocity,
		Acceleration: snap.Acceleration,
	}

	if len(e.renderers) == 0 {
		return row, true, nil
	}
	frame := Frame{
		Step:       row.Step,
		Time:       row.Timestamp,
		Snapshot:   snap,
		Trajectory: e.model.Trajectory(),
		Arms:       e.model.Arms(),
	}
	for _, r := range e.renderers {
		if err := r.Render(frame); err != nil {
			return row, true, fmt.Errorf("rendering: %w", err)
		}
	}
	return row, true, nil
}

// RunJSON is the shared entry point for the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	eng, err := New(input)
	if err != nil {
		return "", err
	}

	simLog, err := eng.Run(context.Background())
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
