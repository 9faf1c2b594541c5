package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/audio"
	"github.com/san-kum/chaosfield/internal/compute"
	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/gui"
	"github.com/san-kum/chaosfield/internal/sim"
	"github.com/san-kum/chaosfield/internal/viz"
)

var theme string

func exploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "explore the field in the terminal",
		RunE:  runExplore,
	}
	cmd.Flags().StringVar(&theme, "theme", "cyberpunk", fmt.Sprintf("color theme %v", viz.ThemeNames()))
	return cmd
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal has no GL context, so only CPU rendering applies here.
	be, err := compute.Select("cpu", cfg.Field.Workers)
	if err != nil {
		return err
	}
	return viz.Run(viz.Options{
		Settings:   cfg.FieldSettings(),
		View:       cfg.Viewport(),
		Backend:    be,
		SimDt:      cfg.Simulator.Dt,
		MaxCatchUp: cfg.Simulator.MaxCatchUp,
		Start:      cfg.Simulator.ClickedAngles,
		Theme:      theme,
	})
}

func guiCommand() *cobra.Command {
	var withAudio bool
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "explore the field in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return gui.Run(gui.Options{
				Settings:    cfg.FieldSettings(),
				View:        cfg.Viewport(),
				Backend:     cfg.Field.Backend,
				Workers:     cfg.Field.Workers,
				SimDt:       cfg.Simulator.Dt,
				MaxCatchUp:  cfg.Simulator.MaxCatchUp,
				Start:       cfg.Simulator.ClickedAngles,
				Audio:       withAudio,
				AudioConfig: audioConfig(cfg.Audio),
			})
		},
	}
	cmd.Flags().BoolVar(&withAudio, "audio", false, "play the dropped pendulum as sound")
	return cmd
}

func listenCommand() *cobra.Command {
	var (
		seconds float64
		dry     bool
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "play the pendulum from the starting angles as sound",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runListen(cfg, seconds, dry)
		},
	}
	cmd.Flags().Float64Var(&seconds, "seconds", 5, "playback length")
	cmd.Flags().BoolVar(&dry, "dry", false, "analyze the sound without opening an audio device")
	return cmd
}

func runListen(cfg *config.Config, seconds float64, dry bool) error {
	ac := audioConfig(cfg.Audio)
	if err := ac.Validate(); err != nil {
		return err
	}
	a := startAngles(cfg, defaultAngles)
	pair := cfg.Params().Pair(a)

	// A separate sonifier for analysis leaves the playing one untouched.
	probe, err := sim.New(pair, cfg.Physics.Gravity, ac.Dt)
	if err != nil {
		return err
	}
	left, right := audio.NewSonifier(probe).Record(int(ac.SampleRate))
	fmt.Printf("starting angles (%.4f, %.4f), audio dt %g\n", a[0], a[1], ac.Dt)
	fmt.Printf("dominant frequency: left %.1f hz, right %.1f hz\n",
		audio.DominantFrequency(left, ac.SampleRate),
		audio.DominantFrequency(right, ac.SampleRate))
	if dry {
		return nil
	}

	s, err := sim.New(pair, cfg.Physics.Gravity, ac.Dt)
	if err != nil {
		return err
	}
	player, err := audio.NewPlayer(audio.NewSonifier(s), ac)
	if err != nil {
		return err
	}
	if err := player.Start(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	}
	if err := player.Stop(); err != nil {
		dynamo.Logger().Warn("audio stop failed", "err", err)
	}
	return nil
}
