package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/analysis"
	"github.com/san-kum/chaosfield/internal/integrators"
)

var stateNames = []string{"angle1", "momentum1", "angle2", "momentum2"}

func lyapunovCommand() *cobra.Command {
	var (
		duration     float64
		perturbation float64
		spectrum     bool
	)
	cmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest lyapunov exponent at the starting angles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rk, err := integrators.NewRK4(cfg.Physics.Gravity, cfg.Simulator.Dt)
			if err != nil {
				return err
			}
			a := startAngles(cfg, defaultAngles)
			pair := cfg.Params().Pair(a)

			lambda := analysis.LyapunovExponent(rk, pair, duration, perturbation)
			fmt.Printf("starting angles (%.4f, %.4f)\n", a[0], a[1])
			fmt.Printf("lyapunov exponent: %.4f /s\n", lambda)
			if lambda > 0 {
				fmt.Printf("doubling time: %.3f s\n", math.Ln2/lambda)
			}

			if spectrum {
				fmt.Println("\nper-component separation rates:")
				for i, v := range analysis.LyapunovSpectrum(rk, pair, duration, perturbation) {
					fmt.Printf("  %-10s %.4f\n", stateNames[i], v)
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&duration, "time", 20, "integration time in seconds")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation")
	cmd.Flags().BoolVar(&spectrum, "spectrum", false, "also perturb each state component")
	return cmd
}

func phaseCommand() *cobra.Command {
	var (
		duration  float64
		xAxis     int
		yAxis     int
		poincare  bool
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "ascii phase portrait of the pendulum from the starting angles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rk, err := integrators.NewRK4(cfg.Physics.Gravity, cfg.Simulator.Dt)
			if err != nil {
				return err
			}
			if xAxis < 0 || yAxis < 0 || xAxis >= len(stateNames) || yAxis >= len(stateNames) {
				return fmt.Errorf("axes must be in [0, %d)", len(stateNames))
			}
			pair := cfg.Params().Pair(startAngles(cfg, defaultAngles))

			if poincare {
				// sample each time the first angle passes threshold
				section := analysis.GeneratePoincareSection(rk, pair, 0, threshold, xAxis, yAxis, duration)
				fmt.Printf("poincare section at angle1 = %.3f: %s vs %s\n\n", threshold, stateNames[yAxis], stateNames[xAxis])
				fmt.Print(analysis.PoincareSectionToASCII(section, 80, 30))
				if section != nil {
					fmt.Printf("\ncrossings: %d\n", len(section.Points))
				}
				return nil
			}

			portrait := analysis.GeneratePhasePortrait(rk, pair, xAxis, yAxis, duration)
			fmt.Printf("phase portrait: %s vs %s\n\n", stateNames[yAxis], stateNames[xAxis])
			fmt.Print(analysis.PhasePortraitToASCII(portrait, 80, 30))
			return nil
		},
	}
	cmd.Flags().Float64Var(&duration, "time", 30, "integration time in seconds")
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	cmd.Flags().BoolVar(&poincare, "poincare", false, "plot a poincare section instead")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "section plane for angle1")
	return cmd
}

func verifyCommand() *cobra.Command {
	var (
		horizon    float64
		refinement int
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "check the observed convergence order of the integrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pair := cfg.Params().Pair(startAngles(cfg, [2]float64{1, 0.5}))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DT\tERR(DT)\tERR(DT/2)\tRATIO\tORDER")
			for _, dt := range []float64{0.04, 0.02, 0.01, 0.005} {
				c, err := analysis.ConvergenceOrder(cfg.Physics.Gravity, pair, horizon, dt, refinement)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%g\t%.3e\t%.3e\t%.2f\t%.2f\n", c.Dt, c.CoarseErr, c.FineErr, c.Ratio, c.Order)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&horizon, "horizon", 1, "integration horizon in seconds")
	cmd.Flags().IntVar(&refinement, "refinement", 64, "reference run uses dt/refinement")
	return cmd
}
