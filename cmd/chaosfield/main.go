package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/audio"
	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/dynamo"
)

var (
	configFile string
	preset     string
	verbose    bool
	dataDir    string

	gravity float64
	steps   int
	epsilon float64
	width   int
	height  int
	workers int
	backend string
	center  []float64
	size    []float64
	angles  []float64
	simDt   float64
)

// main registers the chaosfield commands. With no subcommand it opens the
// terminal explorer.
func main() {
	rootCmd := &cobra.Command{
		Use:   "chaosfield",
		Short: "double pendulum chaos fractal explorer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE:         runExplore,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.Float64Var(&gravity, "gravity", config.DefaultGravity, "gravitational acceleration")
	pf.IntVar(&steps, "steps", config.DefaultStepCount, "integration steps per pixel")
	pf.Float64Var(&epsilon, "epsilon", 0, "perturbation added to both angles of the neighbor trajectory")
	pf.IntVar(&width, "width", config.DefaultWidth, "field width in pixels")
	pf.IntVar(&height, "height", config.DefaultHeight, "field height in pixels")
	pf.IntVar(&workers, "workers", 0, "render goroutines (0 = all cores)")
	pf.StringVar(&backend, "backend", "cpu", "compute backend: cpu, opengl, auto")
	pf.Float64SliceVar(&center, "center", nil, "view center angle1,angle2")
	pf.Float64SliceVar(&size, "size", nil, "view size in radians w,h")
	pf.Float64SliceVar(&angles, "angles", nil, "starting angles angle1,angle2")
	pf.Float64Var(&simDt, "sim-dt", config.DefaultSimDt, "pendulum simulation timestep")

	rootCmd.AddCommand(
		renderCommand(),
		simulateCommand(),
		exploreCommand(),
		guiCommand(),
		listenCommand(),
		lyapunovCommand(),
		phaseCommand(),
		verifyCommand(),
		presetsCommand(),
		listCommand(),
		showCommand(),
		plotCommand(),
		configCommand(),
	)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// signalContext is canceled on interrupt so long renders and runs stop
// cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadConfig resolves the effective configuration: defaults, then the
// preset, then the config file, then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("steps") {
		cfg.Field.StepCount = steps
	}
	if flags.Changed("epsilon") {
		cfg.Field.Epsilon = epsilon
	}
	if flags.Changed("workers") {
		cfg.Field.Workers = workers
	}
	if flags.Changed("backend") {
		cfg.Field.Backend = backend
	}
	if flags.Changed("sim-dt") {
		cfg.Simulator.Dt = simDt
	}
	if flags.Changed("data") {
		cfg.Output.DataDir = dataDir
	}
	if flags.Changed("width") {
		cfg.View.Width = width
	}
	if flags.Changed("height") {
		cfg.View.Height = height
	}

	var err error
	if flags.Changed("center") {
		if cfg.View.Center, err = pairFlag("center", center); err != nil {
			return nil, err
		}
	}
	if flags.Changed("size") {
		if cfg.View.Size, err = pairFlag("size", size); err != nil {
			return nil, err
		}
	}
	if flags.Changed("angles") {
		a, err := pairFlag("angles", angles)
		if err != nil {
			return nil, err
		}
		cfg.Simulator.ClickedAngles = &a
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dynamo.Logger().Debug("config resolved",
		"preset", preset, "file", configFile,
		"gravity", cfg.Physics.Gravity, "steps", cfg.Field.StepCount, "backend", cfg.Field.Backend)
	return cfg, nil
}

func pairFlag(name string, v []float64) ([2]float64, error) {
	if len(v) != 2 {
		return [2]float64{}, fmt.Errorf("--%s takes two comma separated values, got %d", name, len(v))
	}
	return [2]float64{v[0], v[1]}, nil
}

// startAngles returns the configured starting angles or the given fallback.
func startAngles(cfg *config.Config, fallback [2]float64) [2]float64 {
	if cfg.Simulator.ClickedAngles != nil {
		return *cfg.Simulator.ClickedAngles
	}
	return fallback
}

func audioConfig(c config.AudioConfig) audio.Config {
	return audio.Config{
		SampleRate: c.SampleRate,
		BufferSize: c.BufferSize,
		Dt:         c.Dt,
		Volume:     c.Volume,
		Cutoff:     c.Cutoff,
	}
}
