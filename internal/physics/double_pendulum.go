package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

// DefaultGravity is standard gravity in m/s².
const DefaultGravity = 9.81

// DoublePendulum is the two-rod pendulum under uniform gravity.
type DoublePendulum struct {
	Gravity float64
}

var (
	_ dynamo.Model        = (*DoublePendulum)(nil)
	_ dynamo.Configurable = (*DoublePendulum)(nil)
)

func NewDoublePendulum(gravity float64) *DoublePendulum {
	return &DoublePendulum{Gravity: gravity}
}

// Derive returns the time-derivative of every angle and momentum.
//
// With Δ = angle1 − angle2 and D = 16 − 9·cos²Δ:
//
//	dθ1 = 6/(m1·l1²) · (2·p1 − 3·cosΔ·p2) / D
//	dθ2 = 6/(m2·l2²) · (8·p2 − 3·cosΔ·p1) / D
//	dp1 = −(m1·l1²/2) · ( dθ1·dθ2·sinΔ + 3g/l1·sin θ1)
//	dp2 = −(m2·l2²/2) · (−dθ1·dθ2·sinΔ + 3g/l2·sin θ2)
//
// Lengths and masses must be positive; Derive does not check them.
func (d *DoublePendulum) Derive(p *dynamo.Pair) dynamo.Rates {
	return Derive(d.Gravity, p)
}

// Derive is the allocation-free form of [DoublePendulum.Derive].
func Derive(g float64, p *dynamo.Pair) dynamo.Rates {
	a1, a2 := p[0].Angle, p[1].Angle
	p1, p2 := p[0].Momentum, p[1].Momentum
	l1, l2 := p[0].Length, p[1].Length

	sd, cd := math.Sin(a1-a2), math.Cos(a1-a2)
	den := 16 - 9*cd*cd
	ml1 := p[0].Mass * l1 * l1
	ml2 := p[1].Mass * l2 * l2

	da1 := 6 / ml1 * (2*p1 - 3*cd*p2) / den
	da2 := 6 / ml2 * (8*p2 - 3*cd*p1) / den

	return dynamo.Rates{
		Angle: [2]float64{da1, da2},
		Momentum: [2]float64{
			-ml1 / 2 * (da1*da2*sd + 3*g/l1*math.Sin(a1)),
			-ml2 / 2 * (-da1*da2*sd + 3*g/l2*math.Sin(a2)),
		},
	}
}

// TipPositions returns the cartesian positions of both link ends relative
// to the pivot, with y pointing down.
func TipPositions(p dynamo.Pair) (x1, y1, x2, y2 float64) {
	x1 = p[0].Length * math.Sin(p[0].Angle)
	y1 = p[0].Length * math.Cos(p[0].Angle)
	x2 = x1 + p[1].Length*math.Sin(p[1].Angle)
	y2 = y1 + p[1].Length*math.Cos(p[1].Angle)
	return
}

// Reach is the total length of both links.
func Reach(p dynamo.Pair) float64 {
	return p[0].Length + p[1].Length
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity": d.Gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: gravity=%g", dynamo.ErrParameterBounds, value)
		}
		d.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
