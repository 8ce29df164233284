// Command ride-engine runs the two-arm ride simulation.
//
// Usage:
//
//	ride-engine [-env file] [config.toml]
//	ride-engine -json [input.json]
//
// In the default mode the optional argument is a TOML config file laid over
// the built-in reference ride, then RIDE_* environment variables are applied.
// The JSON log goes to the configured output (stdout by default); CSV, plot
// images, a terminal summary and real-time pacing are enabled from the config.
//
// With -json the argument (or stdin) is a SimulationInput document and the
// SimulationLog is printed to stdout, matching the WASM runSimulation entry.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/cxd309/ride-engine/internal/config"
	"github.com/cxd309/ride-engine/internal/engine"
	"github.com/cxd309/ride-engine/internal/render"
)

const usage = `Usage: ride-engine [-env file] [config.toml]
       ride-engine -json [input.json]

`

func main() {
	log.SetFlags(0)
	log.SetPrefix("ride-engine: ")

	jsonMode := flag.Bool("json", false, "read a SimulationInput JSON document from the argument or stdin")
	envFile := flag.String("env", ".env", "environment file to load before applying RIDE_* overrides")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	if *jsonMode {
		err = runJSON(flag.Arg(0))
	} else {
		err = run(flag.Arg(0), *envFile)
	}
	if err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard error and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

func runJSON(path string) error {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := engine.RunJSON(string(data))
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	fmt.Println(result)
	return nil
}

func run(confPath, envFile string) error {
	conf := config.DefaultConfig()
	if confPath != "" {
		var err error
		if conf, err = config.ParseConfig(confPath); err != nil {
			return err
		}
	}
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	if err := conf.ApplyEnv(); err != nil {
		return err
	}
	if err := conf.RideConfig().Validate(); err != nil {
		return err
	}

	var renderers []engine.Renderer

	var plt *render.Plotter
	if conf.Plot != "" || conf.FramesDir != "" {
		plt = render.NewPlotter()
		plt.Size = conf.ViewSize
		plt.Dir = conf.FramesDir
		plt.Every = conf.FrameEvery
		renderers = append(renderers, plt)
	}

	var csvw *render.CSVWriter
	if conf.CSV != "" {
		f, err := os.Create(conf.CSV)
		if err != nil {
			return fmt.Errorf("creating csv: %w", err)
		}
		csvw = render.NewCSVWriter(f)
		// Only reached on early returns; the normal path closes below and
		// reports the error.
		defer csvw.Close()
		renderers = append(renderers, csvw)
	}

	var summary *render.Summary
	if conf.Summary {
		summary = render.NewSummary(conf.SimulationID)
		renderers = append(renderers, summary)
	}

	if conf.Realtime {
		renderers = append(renderers, render.NewPacer(conf.Dt))
	}

	eng, err := engine.New(conf.SimulationInput(), renderers...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("running %q: %d steps of %g", conf.SimulationID, conf.Steps, conf.Dt)
	simLog, runErr := eng.Run(ctx)
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	if runErr != nil {
		log.Printf("interrupted after %d steps", eng.Model().StepCount())
	}

	// Outputs are flushed even for an interrupted run.
	if csvw != nil {
		if err := csvw.Close(); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		log.Printf("wrote %s", conf.CSV)
	}
	if plt != nil && conf.Plot != "" && eng.Model().StepCount() > 0 {
		if err := plt.Save(conf.Plot); err != nil {
			return err
		}
		log.Printf("wrote %s", conf.Plot)
	}
	if summary != nil {
		if _, err := summary.WriteTo(os.Stderr); err != nil {
			return err
		}
	}
	return writeLog(simLog, conf.Output)
}

func writeLog(simLog engine.SimulationLog, path string) error {
	out, err := json.Marshal(simLog)
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	if path == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}
	log.Printf("wrote %s", path)
	return nil
}
