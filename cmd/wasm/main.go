//go:build js && wasm

// Command wasm exposes the ride engine to the browser via WebAssembly.
// After loading, it registers these global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	rideInit(jsonString)      -> null | {error}
//	rideStep()                -> {tip, velocity, acceleration, pivot} | {error}
//	rideTrajectory()          -> [[x, y], ...]
//
// runSimulation takes a SimulationInput and returns the SimulationLog, the
// same contract as the CLI -json mode. The other three let a page drive one
// model step by step and draw it at its own pace.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/cxd309/ride-engine/internal/engine"
	"github.com/cxd309/ride-engine/internal/geometry"
	"github.com/cxd309/ride-engine/internal/ride"
)

var model *ride.Model

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	js.Global().Set("rideInit", js.FuncOf(rideInit))
	js.Global().Set("rideStep", js.FuncOf(rideStep))
	js.Global().Set("rideTrajectory", js.FuncOf(rideTrajectory))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

func rideInit(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}
	var input engine.SimulationInput
	if err := json.Unmarshal([]byte(args[0].String()), &input); err != nil {
		return map[string]any{"error": "invalid input JSON: " + err.Error()}
	}
	m, err := ride.New(input.RideConfig())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	model = m
	return nil
}

func rideStep(_ js.Value, _ []js.Value) any {
	if model == nil {
		return map[string]any{"error": "rideInit has not been called"}
	}
	s, err := model.Step()
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{
		"step":         model.StepCount(),
		"time":         model.Time(),
		"tip":          vec(s.Tip),
		"velocity":     vec(s.Velocity),
		"acceleration": vec(s.Acceleration),
		"pivot":        vec(s.Pivot),
	}
}

func rideTrajectory(_ js.Value, _ []js.Value) any {
	if model == nil {
		return []any{}
	}
	traj := model.Trajectory()
	out := make([]any, len(traj))
	for i, p := range traj {
		out[i] = vec(p)
	}
	return out
}

// vec returns v as a JS-convertible [x, y] pair.
func vec(v geometry.Vector) []any { return []any{v.X, v.Y} }
