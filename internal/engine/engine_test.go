package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/cxd309/ride-engine/internal/geometry"
	"github.com/cxd309/ride-engine/internal/ride"
)

func testInput(steps int) SimulationInput {
	return SimulationInput{
		Meta: SimulationMeta{SimulationID: "test", TimeStep: 0.05, Steps: steps},
		Arms: ArmData{BigRadius: 2, SmallRadius: 1, BigAngularVelocity: -1.25, SmallAngularVelocity: 0.75},
	}
}

type recorder struct {
	frames []Frame
}

func (r *recorder) Render(f Frame) error {
	r.frames = append(r.frames, f)
	return nil
}

func TestRunExactStepCount(t *testing.T) {
	rec := &recorder{}
	eng, err := New(testInput(40), rec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(log.Output) != 40 || len(rec.frames) != 40 {
		t.Fatalf("rows=%d frames=%d, want 40", len(log.Output), len(rec.frames))
	}
	if eng.Model().StepCount() != 40 {
		t.Fatalf("model stepped %d times, want 40", eng.Model().StepCount())
	}
	for i, f := range rec.frames {
		if f.Step != i+1 {
			t.Fatalf("frame %d has Step=%d", i, f.Step)
		}
		if len(f.Trajectory) != i+1 {
			t.Fatalf("frame %d trajectory len=%d, want %d", i, len(f.Trajectory), i+1)
		}
		if f.Trajectory[i] != f.Snapshot.Tip {
			t.Fatalf("frame %d last trajectory point %+v != tip %+v", i, f.Trajectory[i], f.Snapshot.Tip)
		}
		row := log.Output[i]
		if row.Tip != f.Snapshot.Tip || row.Velocity != f.Snapshot.Velocity || row.Acceleration != f.Snapshot.Acceleration {
			t.Fatalf("row %d does not match frame snapshot", i)
		}
		if !scalar.EqualWithinAbs(row.Timestamp, float64(i+1)*0.05, 1e-12) {
			t.Fatalf("row %d timestamp=%f", i, row.Timestamp)
		}
	}
}

func TestRunZeroSteps(t *testing.T) {
	calls := 0
	eng, err := New(testInput(0), RendererFunc(func(Frame) error {
		calls++
		return nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(log.Output) != 0 || calls != 0 {
		t.Fatalf("rows=%d renders=%d, want 0", len(log.Output), calls)
	}
	if len(eng.Model().Trajectory()) != 0 {
		t.Fatalf("trajectory not empty")
	}
}

func TestRunCancelStopsAfterCompletedStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := New(testInput(100), RendererFunc(func(f Frame) error {
		if f.Step == 7 {
			cancel()
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log, err := eng.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(log.Output) != 7 || eng.Model().StepCount() != 7 {
		t.Fatalf("rows=%d steps=%d, want 7", len(log.Output), eng.Model().StepCount())
	}

	// Resuming continues from where it stopped.
	rest, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if len(rest.Output) != 93 || rest.Output[0].Step != 8 {
		t.Fatalf("resume rows=%d first=%d", len(rest.Output), rest.Output[0].Step)
	}
}

func TestRunRendererError(t *testing.T) {
	boom := errors.New("boom")
	eng, err := New(testInput(10), RendererFunc(func(f Frame) error {
		if f.Step == 3 {
			return boom
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log, err := eng.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "at step 3") {
		t.Fatalf("err = %q, want step number", err)
	}
	// The model completed step 3 before the renderer failed, so it is logged.
	if len(log.Output) != 3 || log.Output[2].Step != 3 || eng.Model().StepCount() != 3 {
		t.Fatalf("rows=%d steps=%d, want 3", len(log.Output), eng.Model().StepCount())
	}
}

func TestRunModelSteppedPastSteps(t *testing.T) {
	m, err := ride.New(ride.Config{BigRadius: 2, SmallRadius: 1, Dt: 0.05, Steps: 0})
	if err != nil {
		t.Fatalf("ride.New: %v", err)
	}
	if _, err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	eng := NewWithModel(SimulationMeta{SimulationID: "past"}, m)
	log, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(log.Output) != 0 || m.StepCount() != 1 {
		t.Fatalf("rows=%d steps=%d, want 0 rows and 1 step", len(log.Output), m.StepCount())
	}
}

func TestRunLargeStepsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := testInput(1 << 40)
	eng, err := New(in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log, err := eng.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(log.Output) != 0 || cap(log.Output) > maxPrealloc {
		t.Fatalf("rows=%d cap=%d, want 0 rows and cap <= %d", len(log.Output), cap(log.Output), maxPrealloc)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	in := testInput(10)
	in.Meta.TimeStep = 0
	if _, err := New(in); !errors.Is(err, ride.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}

	in = testInput(10)
	in.Arms.BigRadius = -1
	if _, err := New(in); !errors.Is(err, ride.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestNewWithModelTakesTimingFromModel(t *testing.T) {
	m, err := ride.New(ride.Config{BigRadius: 2, SmallRadius: 1, Dt: 0.1, Steps: 5})
	if err != nil {
		t.Fatalf("ride.New: %v", err)
	}
	eng := NewWithModel(SimulationMeta{SimulationID: "x", TimeStep: 99, Steps: 99}, m)
	if eng.Meta().Steps != 5 || eng.Meta().TimeStep != 0.1 {
		t.Fatalf("meta = %+v", eng.Meta())
	}
}

func TestRunJSON(t *testing.T) {
	in := `{
		"simulation_meta": {"simulation_id": "static", "time_step": 0.05, "steps": 3},
		"arms": {"big_radius": 2, "small_radius": 1, "big_angular_velocity": 0, "small_angular_velocity": 0}
	}`
	out, err := RunJSON(in)
	if err != nil {
		t.Fatalf("RunJSON: %v", err)
	}
	var log SimulationLog
	if err := json.Unmarshal([]byte(out), &log); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if log.Meta.SimulationID != "static" || len(log.Output) != 3 {
		t.Fatalf("log meta=%+v rows=%d", log.Meta, len(log.Output))
	}
	for _, row := range log.Output {
		if row.Tip != (geometry.Vector{Y: 3}) {
			t.Fatalf("static tip = %+v, want (0,3)", row.Tip)
		}
	}
}

func TestRunJSONErrors(t *testing.T) {
	if _, err := RunJSON("{"); err == nil || !strings.Contains(err.Error(), "invalid input JSON") {
		t.Fatalf("err = %v, want invalid input JSON", err)
	}
	bad := `{"simulation_meta": {"time_step": 0, "steps": 1}, "arms": {"big_radius": 2, "small_radius": 1}}`
	if _, err := RunJSON(bad); !errors.Is(err, ride.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
