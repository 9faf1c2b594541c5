package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/export"
	"github.com/san-kum/chaosfield/internal/metrics"
	"github.com/san-kum/chaosfield/internal/sim"
	"github.com/san-kum/chaosfield/internal/storage"
	"github.com/san-kum/chaosfield/internal/tui"
)

type simulateOptions struct {
	duration    float64
	recordEvery int
	live        bool
	frameRate   int
	gifPath     string
	svgPath     string
	plotPath    string
	save        bool
	ensemble    int
	spread      float64
}

var defaultAngles = [2]float64{2, 2.5}

func simulateCommand() *cobra.Command {
	var o simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "run one pendulum from the starting angles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if o.ensemble > 1 {
				return runEnsemble(cfg, o)
			}
			return runSimulate(cfg, o)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&o.duration, "time", 10, "simulated duration in seconds")
	f.IntVar(&o.recordEvery, "record-every", 5, "record every n-th step")
	f.BoolVar(&o.live, "live", false, "animate in the terminal while running")
	f.IntVar(&o.frameRate, "fps", 30, "frame rate for --live")
	f.StringVar(&o.gifPath, "gif", "", "write an animated gif of the run")
	f.StringVar(&o.svgPath, "svg", "", "write the outer bob path as svg")
	f.StringVar(&o.plotPath, "plot", "", "write an angle vs time plot (png)")
	f.BoolVar(&o.save, "save", false, "store the run in the data directory")
	f.IntVar(&o.ensemble, "ensemble", 0, "run n copies with nudged starting angles")
	f.Float64Var(&o.spread, "spread", 1e-6, "angle nudge between ensemble members")
	return cmd
}

func runSimulate(cfg *config.Config, o simulateOptions) error {
	a := startAngles(cfg, defaultAngles)
	s, err := sim.FromParams(cfg.Params(), a, cfg.Simulator.Dt)
	if err != nil {
		return err
	}
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}

	var live *tui.LiveRenderer
	if o.live {
		live = tui.NewLiveRenderer(os.Stdout, o.frameRate)
		live.Realtime = true
		s.AddObserver(live)
		live.Start()
		defer live.Stop()
	}

	ctx, stop := signalContext()
	defer stop()

	runCfg := sim.RunConfig{
		Steps:         sim.StepsFor(o.duration, cfg.Simulator.Dt),
		RecordEvery:   o.recordEvery,
		ValidateState: true,
	}
	if !o.live {
		fmt.Printf("simulating %.2fs from (%.4f, %.4f)...\n", o.duration, a[0], a[1])
	}
	start := time.Now()
	result, err := s.Run(ctx, runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(result.Metrics)

	if err := writeRunOutputs(result.Snapshots, o); err != nil {
		return err
	}

	if o.save {
		st := storage.New(cfg.Output.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.SaveRun(storage.Metadata{
			Params:  cfg.Params(),
			Dt:      cfg.Simulator.Dt,
			Angles:  a,
			Metrics: result.Metrics,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}
	return nil
}

func writeRunOutputs(snaps []sim.Snapshot, o simulateOptions) error {
	if o.gifPath != "" {
		anim, err := export.PendulumAnimation(snaps, 256, 2, export.DefaultOverlay())
		if err != nil {
			return err
		}
		if err := writeFile(o.gifPath, anim.Encode); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d frames)\n", o.gifPath, anim.Len())
	}
	if o.svgPath != "" {
		err := writeFile(o.svgPath, func(w io.Writer) error {
			return export.TipPathSVG(w, snaps, 512, "#e0e0e0")
		})
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", o.svgPath)
	}
	if o.plotPath != "" {
		p, err := export.TrajectoryPlot(snaps)
		if err != nil {
			return err
		}
		if err := export.SavePlot(p, o.plotPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", o.plotPath)
	}
	return nil
}

func runEnsemble(cfg *config.Config, o simulateOptions) error {
	a := startAngles(cfg, defaultAngles)
	params := cfg.Params()
	ens := sim.NewEnsemble(params.Pair(a), params.Gravity, cfg.Simulator.Dt, o.ensemble, o.spread)

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %d members, spread %g...\n", o.ensemble, o.spread)
	start := time.Now()
	results, err := ens.Run(ctx, sim.RunConfig{
		Steps:         sim.StepsFor(o.duration, cfg.Simulator.Dt),
		RecordEvery:   o.recordEvery,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	for i, r := range results {
		f := r.Final().Pair.Angles()
		fmt.Printf("  member %2d: angles (%9.4f, %9.4f)\n", i, f[0], f[1])
	}
	fmt.Printf("final spread: %.6f rad\n", sim.Spread(results))
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
