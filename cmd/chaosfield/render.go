package main

import (
	"fmt"
	"image"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/compute"
	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/export"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/storage"
)

func renderCommand() *cobra.Command {
	var (
		out     string
		save    bool
		overlay bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render the divergence field to an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("overlay") {
				cfg.Output.Overlay = overlay
			}
			return runRender(cfg, out, save)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image (png, bmp, tiff); defaults to field.<format>")
	cmd.Flags().BoolVar(&save, "save", false, "also store the render in the data directory")
	cmd.Flags().BoolVar(&overlay, "overlay", true, "mark and draw the starting pendulum when angles are set")
	return cmd
}

func runRender(cfg *config.Config, out string, save bool) error {
	eval, err := field.NewEvaluator(cfg.FieldSettings())
	if err != nil {
		return err
	}
	be, err := compute.Select(cfg.Field.Backend, cfg.Field.Workers)
	if err != nil {
		return err
	}
	defer be.Cleanup()

	ctx, stop := signalContext()
	defer stop()

	view := cfg.Viewport()
	fmt.Printf("rendering %dx%d field (%d steps) on %s...\n", view.Width, view.Height, cfg.Field.StepCount, be.Name())
	start := time.Now()
	img, err := be.Render(ctx, compute.Job{Evaluator: eval, View: view})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var final image.Image = img
	if cfg.Output.Overlay && cfg.Simulator.ClickedAngles != nil {
		a := *cfg.Simulator.ClickedAngles
		marked, err := export.MarkAngles(img, view, a)
		if err != nil {
			return err
		}
		if final, err = export.DrawPendulum(marked, cfg.Params().Pair(a), export.DefaultOverlay()); err != nil {
			return err
		}
	}

	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	if out == "" {
		out = "field." + string(format)
	}
	if err := export.Save(out, final); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("wrote %s\n", out)

	if save {
		st := storage.New(cfg.Output.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.Metadata{
			Params:  cfg.Params(),
			Dt:      cfg.Field.Dt,
			Steps:   cfg.Field.StepCount,
			Epsilon: cfg.Field.Epsilon,
			View:    &view,
			Backend: be.Name(),
			Metrics: map[string]float64{"render_seconds": elapsed.Seconds()},
		}
		if cfg.Simulator.ClickedAngles != nil {
			meta.Angles = *cfg.Simulator.ClickedAngles
		}
		id, err := st.SaveRender(meta, final, format)
		if err != nil {
			return err
		}
		fmt.Printf("render id: %s\n", id)
	}
	return nil
}
