package export

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/physics"
)

// Overlay styles the pendulum drawn over a field.
type Overlay struct {
	Scale     float64 // fraction of the short image side covered by the full reach
	LineWidth float64
	BobRadius float64
}

func DefaultOverlay() Overlay {
	return Overlay{Scale: 0.45, LineWidth: 2, BobRadius: 5}
}

// DrawPendulum returns a copy of img with the pair drawn from a pivot at the
// image centre.
func DrawPendulum(img image.Image, pair dynamo.Pair, o Overlay) (*image.RGBA, error) {
	dc := gg.NewContextForImage(img)
	defer dc.Close()

	w, h := float64(dc.Width()), float64(dc.Height())
	cx, cy := w/2, h/2
	reach := physics.Reach(pair)
	if reach <= 0 || !pair.IsValid() {
		return toRGBA(dc.Image()), nil
	}
	s := o.Scale * math.Min(w, h) / reach
	x1, y1, x2, y2 := physics.TipPositions(pair)
	x1, y1 = cx+s*x1, cy+s*y1
	x2, y2 = cx+s*x2, cy+s*y2

	dc.SetLineWidth(o.LineWidth)
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawLine(cx, cy, x1, y1)
	dc.DrawLine(x1, y1, x2, y2)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(cx, cy, o.BobRadius/2)
	dc.DrawCircle(x1, y1, o.BobRadius)
	dc.DrawCircle(x2, y2, o.BobRadius)
	if err := dc.Fill(); err != nil {
		return nil, err
	}
	return toRGBA(dc.Image()), nil
}

// MarkAngles circles the field pixel showing angles. Points outside the view
// leave the image unchanged.
func MarkAngles(img image.Image, view field.Viewport, angles [2]float64) (*image.RGBA, error) {
	dc := gg.NewContextForImage(img)
	defer dc.Close()
	if !view.Contains(angles) {
		return toRGBA(dc.Image()), nil
	}
	x, y := view.PixelOf(angles)
	dc.SetLineWidth(1.5)
	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(x, y, 6)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}
	return toRGBA(dc.Image()), nil
}
