package field

import (
	"fmt"
	"math"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

// Viewport maps image pixels to starting angles.
// Center and Size are in radians; Width and Height are in pixels.
type Viewport struct {
	Center [2]float64 `json:"center" yaml:"center"`
	Size   [2]float64 `json:"size" yaml:"size"`
	Width  int        `json:"width" yaml:"width"`
	Height int        `json:"height" yaml:"height"`
}

// DefaultViewport covers one full turn of both angles around hanging
// straight down.
func DefaultViewport(width, height int) Viewport {
	return Viewport{
		Size:   [2]float64{2 * math.Pi, 2 * math.Pi},
		Width:  width,
		Height: height,
	}
}

func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", dynamo.ErrParameterBounds, v.Width, v.Height)
	}
	for i := 0; i < 2; i++ {
		if !(v.Size[i] > 0) || math.IsInf(v.Size[i], 0) {
			return fmt.Errorf("%w: view size[%d]=%g", dynamo.ErrParameterBounds, i, v.Size[i])
		}
		if math.IsNaN(v.Center[i]) || math.IsInf(v.Center[i], 0) {
			return fmt.Errorf("%w: view center[%d]=%g", dynamo.ErrParameterBounds, i, v.Center[i])
		}
	}
	return nil
}

// Angles maps a fragment coordinate (origin bottom-left, y up) to
// starting angles: uv = frag/resolution − 0.5, angles = uv·size + center.
func (v Viewport) Angles(fx, fy float64) [2]float64 {
	u := fx/float64(v.Width) - 0.5
	w := fy/float64(v.Height) - 0.5
	return [2]float64{
		u*v.Size[0] + v.Center[0],
		w*v.Size[1] + v.Center[1],
	}
}

// PixelAngles returns the starting angles at the centre of image pixel
// (x, y). Image row 0 is the top of the view.
func (v Viewport) PixelAngles(x, y int) [2]float64 {
	return v.Angles(float64(x)+0.5, float64(v.Height-1-y)+0.5)
}

// PixelOf is the inverse of Angles followed by the row flip: it returns the
// image position (x right, y down, pixel edges at integers) showing angles.
func (v Viewport) PixelOf(angles [2]float64) (x, y float64) {
	fx := ((angles[0]-v.Center[0])/v.Size[0] + 0.5) * float64(v.Width)
	fy := ((angles[1]-v.Center[1])/v.Size[1] + 0.5) * float64(v.Height)
	return fx, float64(v.Height) - fy
}

// Contains reports whether angles fall inside the view.
func (v Viewport) Contains(angles [2]float64) bool {
	x, y := v.PixelOf(angles)
	return x >= 0 && x < float64(v.Width) && y >= 0 && y < float64(v.Height)
}

// Pan moves the view by a pixel offset in image coordinates (y down).
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Center[0] -= dx / float64(v.Width) * v.Size[0]
	v.Center[1] += dy / float64(v.Height) * v.Size[1]
	return v
}

// Zoom scales the view size by factor, keeping the angles under image
// position (x, y) fixed. Factors below 1 zoom in.
func (v Viewport) Zoom(factor, x, y float64) Viewport {
	if !(factor > 0) {
		return v
	}
	fx, fy := x, float64(v.Height)-y
	anchor := v.Angles(fx, fy)
	v.Size[0] *= factor
	v.Size[1] *= factor
	after := v.Angles(fx, fy)
	v.Center[0] += anchor[0] - after[0]
	v.Center[1] += anchor[1] - after[1]
	return v
}

// Resize changes the resolution and keeps the angular region.
func (v Viewport) Resize(width, height int) Viewport {
	v.Width, v.Height = width, height
	return v
}
