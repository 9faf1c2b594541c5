package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/export"
	"github.com/san-kum/chaosfield/internal/storage"
)

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRAVITY\tLENGTHS\tMASSES\tSTEPS\tCENTER\tSIZE")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.2f\t%v\t%v\t%d\t(%.2f, %.2f)\t(%.3f, %.3f)\n",
					name,
					p.Physics.Gravity,
					p.Physics.Lengths,
					p.Physics.Masses,
					p.Field.StepCount,
					p.View.Center[0], p.View.Center[1],
					p.View.Size[0], p.View.Size[1],
				)
			}
			return w.Flush()
		},
	}
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.Output.DataDir), nil
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs and renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			entries, err := st.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no entries found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tTIME\tGRAVITY\tANGLES\tSTEPS\tDT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t(%.3f, %.3f)\t%d\t%.4f\n",
					e.ID,
					e.Kind,
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.Params.Gravity,
					e.Angles[0], e.Angles[1],
					e.Steps,
					e.Dt,
				)
			}
			return w.Flush()
		},
	}
}

func showCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "print stored metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			if full {
				return st.ExportJSON(os.Stdout, args[0])
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
	cmd.Flags().BoolVar(&full, "json", false, "include the recorded trajectory")
	return cmd
}

func plotCommand() *cobra.Command {
	var (
		out   string
		phase int
	)
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			snaps, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return fmt.Errorf("no data to plot")
			}

			if out != "" {
				p, err := export.TrajectoryPlot(snaps)
				if cmd.Flags().Changed("phase") {
					p, err = export.PhasePlot(snaps, phase)
				}
				if err != nil {
					return err
				}
				if err := export.SavePlot(p, out); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", out)
				return nil
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("samples: %d\n\n", len(snaps))
			series := [2][]float64{make([]float64, len(snaps)), make([]float64, len(snaps))}
			for i, s := range snaps {
				a := s.Pair.Angles()
				series[0][i], series[1][i] = a[0], a[1]
			}
			for link, data := range series {
				graph := asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(fmt.Sprintf("angle %d", link+1)),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write a png plot instead of printing")
	cmd.Flags().IntVar(&phase, "phase", 0, "with --out, plot angle vs momentum of this link (0 or 1)")
	return cmd
}

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "configuration files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "chaosfield.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
