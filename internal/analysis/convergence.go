package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/integrators"
)

// Convergence reports how the RK4 error shrinks when dt is halved.
type Convergence struct {
	Dt        float64
	CoarseErr float64
	FineErr   float64
	Ratio     float64
	Order     float64
}

// ConvergenceOrder integrates start over horizon at dt and dt/2 and
// compares both against a reference run at dt/refinement. For a fourth
// order scheme Ratio is close to 16 and Order close to 4.
func ConvergenceOrder(gravity float64, start dynamo.Pair, horizon, dt float64, refinement int) (Convergence, error) {
	if !(horizon > 0) || !(dt > 0) || dt > horizon {
		return Convergence{}, fmt.Errorf("%w: horizon=%g dt=%g", dynamo.ErrParameterBounds, horizon, dt)
	}
	if refinement < 4 {
		return Convergence{}, fmt.Errorf("%w: refinement=%d", dynamo.ErrParameterBounds, refinement)
	}

	run := func(h float64) []float64 {
		p := start
		n := int(math.Round(horizon / h))
		integrators.RK4{Gravity: gravity, Dt: h}.StepN(&p, n)
		return p.State()
	}

	ref := run(dt / float64(refinement))
	c := Convergence{
		Dt:        dt,
		CoarseErr: floats.Distance(run(dt), ref, 2),
		FineErr:   floats.Distance(run(dt/2), ref, 2),
	}
	if c.FineErr > 0 {
		c.Ratio = c.CoarseErr / c.FineErr
		c.Order = math.Log2(c.Ratio)
	}
	return c, nil
}
