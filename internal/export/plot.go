package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/chaosfield/internal/sim"
)

var (
	innerColor = color.RGBA{R: 0x00, G: 0xcc, B: 0xff, A: 0xff}
	outerColor = color.RGBA{R: 0xff, G: 0x66, B: 0x00, A: 0xff}
)

// TrajectoryPlot charts both link angles against time.
func TrajectoryPlot(snaps []sim.Snapshot) (*plot.Plot, error) {
	if len(snaps) < 2 {
		return nil, fmt.Errorf("trajectory plot needs at least 2 snapshots, got %d", len(snaps))
	}
	inner := make(plotter.XYs, len(snaps))
	outer := make(plotter.XYs, len(snaps))
	for i, s := range snaps {
		inner[i] = plotter.XY{X: s.Time, Y: s.Pair[0].Angle}
		outer[i] = plotter.XY{X: s.Time, Y: s.Pair[1].Angle}
	}

	p := plot.New()
	p.Title.Text = "Link angles"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (rad)"
	p.Add(plotter.NewGrid())
	if err := addLine(p, "inner", inner, innerColor); err != nil {
		return nil, err
	}
	if err := addLine(p, "outer", outer, outerColor); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

// PhasePlot charts angle against momentum for one link.
func PhasePlot(snaps []sim.Snapshot, link int) (*plot.Plot, error) {
	if link < 0 || link > 1 {
		return nil, fmt.Errorf("link must be 0 or 1, got %d", link)
	}
	if len(snaps) < 2 {
		return nil, fmt.Errorf("phase plot needs at least 2 snapshots, got %d", len(snaps))
	}
	pts := make(plotter.XYs, len(snaps))
	for i, s := range snaps {
		pts[i] = plotter.XY{X: s.Pair[link].Angle, Y: s.Pair[link].Momentum}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Phase portrait, link %d", link+1)
	p.X.Label.Text = "angle (rad)"
	p.Y.Label.Text = "momentum"
	c := innerColor
	if link == 1 {
		c = outerColor
	}
	if err := addLine(p, "", pts, c); err != nil {
		return nil, err
	}
	return p, nil
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

// SavePlot writes p to path; the extension selects the format.
func SavePlot(p *plot.Plot, path string) error {
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
