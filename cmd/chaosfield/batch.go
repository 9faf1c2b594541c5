package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/automation"
	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/experiment"
	"github.com/san-kum/chaosfield/internal/optim"
	"github.com/san-kum/chaosfield/internal/storage"
)

var batchDuration float64

func baseExperiment(cfg *config.Config) experiment.Config {
	return experiment.Config{
		Params:      cfg.Params(),
		Angles:      startAngles(cfg, defaultAngles),
		Dt:          cfg.Simulator.Dt,
		Duration:    batchDuration,
		RecordEvery: 10,
	}
}

func batchCommands() []*cobra.Command {
	cmds := []*cobra.Command{scenarioCommand(), sweepCommand(), monteCarloCommand(), scanCommand()}
	for _, c := range cmds {
		c.Flags().Float64Var(&batchDuration, "time", 10, "simulated duration of each run in seconds")
	}
	return cmds
}

func scenarioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			fmt.Printf("scenario %s: %s\n", sc.Name, sc.Description)
			results, err := automation.RunScenario(ctx, sc, baseExperiment(cfg))
			if err != nil {
				return err
			}

			st := storage.New(cfg.Output.DataDir)
			for i, r := range results {
				final := r.Result.Final().Pair.Angles()
				fmt.Printf("\n%d. %s  start (%.3f, %.3f)  final (%.3f, %.3f)\n",
					i+1, r.Step.Name, r.Config.Angles[0], r.Config.Angles[1], final[0], final[1])
				printMetrics(r.Result.Metrics)
				if !r.Step.Save {
					continue
				}
				if err := st.Init(); err != nil {
					return err
				}
				id, err := st.SaveRun(storage.Metadata{
					Params:  r.Config.Params,
					Dt:      r.Config.Dt,
					Angles:  r.Config.Angles,
					Metrics: r.Result.Metrics,
				}, r.Result)
				if err != nil {
					return err
				}
				fmt.Printf("  run id: %s\n", id)
			}
			return nil
		},
	}
}

func sweepCommand() *cobra.Command {
	var sweep automation.ParameterSweep
	cmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one parameter and report run metrics",
		Long:  "Parameters: " + strings.Join(experiment.ParamNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sweep.ParamName = args[0]

			ctx, stop := signalContext()
			defer stop()

			results, err := automation.RunSweep(ctx, &sweep, baseExperiment(cfg))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tFLIPS IN\tFLIPS OUT\tFIRST FLIP\tACTIVITY\n", strings.ToUpper(sweep.ParamName))
			for _, r := range results {
				fmt.Fprintf(w, "%.4f\t%.0f\t%.0f\t%s\t%.3f\n",
					r.ParamValue,
					r.Metrics["flips_inner"],
					r.Metrics["flips_outer"],
					flipTime(r.Metrics["time_to_flip"]),
					r.Metrics["activity"],
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&sweep.ParamMin, "min", 0, "first value")
	cmd.Flags().Float64Var(&sweep.ParamMax, "max", 3.14, "last value")
	cmd.Flags().IntVar(&sweep.NumSteps, "n", 10, "number of values")
	return cmd
}

func monteCarloCommand() *cobra.Command {
	var mc automation.MonteCarloConfig
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the starting angles randomly and count flips",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			base := baseExperiment(cfg)
			fmt.Printf("%d trials within %g rad of (%.4f, %.4f)...\n", mc.NumTrials, mc.Perturbation, base.Angles[0], base.Angles[1])
			results, err := automation.RunMonteCarlo(ctx, &mc, base)
			if err != nil {
				return err
			}

			flipped, steady, mean := automation.MonteCarloStats(results)
			fmt.Printf("flipped: %d  steady: %d\n", flipped, steady)
			if flipped > 0 {
				fmt.Printf("mean time to first flip: %.3f s\n", mean)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&mc.Perturbation, "perturbation", 0.01, "maximum angle offset")
	cmd.Flags().IntVar(&mc.NumTrials, "trials", 50, "number of trials")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 0, "random seed (0 = time based)")
	return cmd
}

func scanCommand() *cobra.Command {
	var (
		metric   string
		n        int
		minimize bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "grid search the visible field for the starting angles with the most extreme metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			base := baseExperiment(cfg)
			view := cfg.Viewport()
			half := [2]float64{view.Size[0] / 2, view.Size[1] / 2}

			g := optim.NewGridSearch([]string{"angle1", "angle2"}, [][]float64{
				optim.Linspace(view.Center[0]-half[0], view.Center[0]+half[0], n),
				optim.Linspace(view.Center[1]-half[1], view.Center[1]+half[1], n),
			})
			g.Maximize = !minimize
			g.Workers = cfg.Field.Workers

			ctx, stop := signalContext()
			defer stop()

			fmt.Printf("scanning %d starting points for %s...\n", g.Size(), metric)
			best, val, err := g.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
				c := base
				if err := c.Apply(params); err != nil {
					return nil, err
				}
				exp := experiment.New(c)
				return exp, exp.Setup(nil)
			}, metric)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(best))
			for k := range best {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Printf("  %s: %.4f\n", k, best[k])
			}
			fmt.Printf("%s: %.4f\n", metric, val)
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "flips_outer", "run metric to optimize")
	cmd.Flags().IntVar(&n, "n", 8, "grid points per axis")
	cmd.Flags().BoolVar(&minimize, "minimize", false, "search for the smallest value")
	return cmd
}

func flipTime(t float64) string {
	if t < 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fs", t)
}
