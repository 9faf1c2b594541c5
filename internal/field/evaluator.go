package field

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/integrators"
)

const (
	DefaultDt      = 0.03
	DefaultEpsilon = 1e-4
)

// Settings are the physical and numerical inputs shared by every pixel.
type Settings struct {
	Params  dynamo.Params `json:"params" yaml:"params"`
	Dt      float64       `json:"dt" yaml:"dt"`
	Epsilon float64       `json:"epsilon" yaml:"epsilon"`
}

func DefaultSettings() Settings {
	return Settings{
		Params:  dynamo.DefaultParams(),
		Dt:      DefaultDt,
		Epsilon: DefaultEpsilon,
	}
}

func (s Settings) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	if !(s.Dt > 0) || math.IsInf(s.Dt, 0) {
		return fmt.Errorf("%w: field dt=%g", dynamo.ErrParameterBounds, s.Dt)
	}
	if math.IsNaN(s.Epsilon) || math.IsInf(s.Epsilon, 0) {
		return fmt.Errorf("%w: epsilon=%g", dynamo.ErrParameterBounds, s.Epsilon)
	}
	return nil
}

// Evaluator computes the divergence field for fixed Settings.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	rk       integrators.RK4
	settings Settings
}

func NewEvaluator(s Settings) (*Evaluator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		rk:       integrators.RK4{Gravity: s.Params.Gravity, Dt: s.Dt},
		settings: s,
	}, nil
}

func (e *Evaluator) Settings() Settings { return e.settings }

// Trajectory integrates a pair at rest at angles for StepCount steps.
func (e *Evaluator) Trajectory(angles [2]float64) dynamo.Pair {
	p := e.settings.Params.Pair(angles)
	return e.rk.StepN(&p, e.settings.Params.StepCount)
}

// Divergence returns |reference − perturbed| for both link angles.
func (e *Evaluator) Divergence(angles [2]float64) [2]float64 {
	eps := e.settings.Epsilon
	ref := e.Trajectory(angles)
	pert := e.Trajectory([2]float64{angles[0] + eps, angles[1] + eps})
	return [2]float64{
		math.Abs(ref[0].Angle - pert[0].Angle),
		math.Abs(ref[1].Angle - pert[1].Angle),
	}
}

// At returns the field color for the given starting angles.
func (e *Evaluator) At(angles [2]float64) color.RGBA {
	return Color(e.Divergence(angles))
}

// RenderRows fills image rows [y0, y1) of img, whose bounds must start at
// the origin and match the viewport's resolution.
func (e *Evaluator) RenderRows(img *image.RGBA, v Viewport, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < v.Width; x++ {
			img.SetRGBA(x, y, e.At(v.PixelAngles(x, y)))
		}
	}
}
