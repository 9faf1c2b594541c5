package viz

import (
	"image"
	"math"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/physics"
)

const trailLength = 200

// PendulumView draws a pair on a Braille canvas with a trail of the outer
// bob.
type PendulumView struct {
	Canvas *Canvas
	trail  []image.Point
}

func NewPendulumView(cols, rows int) *PendulumView {
	return &PendulumView{Canvas: NewCanvas(cols, rows)}
}

// Bobs returns the dot positions of the pivot and both bobs.
func (p *PendulumView) Bobs(pair dynamo.Pair) (pivot, inner, outer image.Point) {
	w, h := p.Canvas.Dots()
	cx, cy := w/2, h/2
	reach := physics.Reach(pair)
	if !(reach > 0) {
		reach = 1
	}
	s := 0.48 * float64(min(w, h)) / reach
	x1, y1, x2, y2 := physics.TipPositions(pair)
	pivot = image.Pt(cx, cy)
	inner = image.Pt(cx+int(math.Round(s*x1)), cy+int(math.Round(s*y1)))
	outer = image.Pt(cx+int(math.Round(s*x2)), cy+int(math.Round(s*y2)))
	return
}

func (p *PendulumView) Draw(pair dynamo.Pair) {
	c := p.Canvas
	c.Clear()
	if !pair.IsValid() {
		return
	}
	pivot, inner, outer := p.Bobs(pair)

	p.trail = append(p.trail, outer)
	if len(p.trail) > trailLength {
		p.trail = p.trail[1:]
	}
	for _, pt := range p.trail {
		c.Set(pt.X, pt.Y)
	}
	c.Set(pivot.X, pivot.Y)
	c.DrawLine(pivot.X, pivot.Y, inner.X, inner.Y)
	c.DrawLine(inner.X, inner.Y, outer.X, outer.Y)
	c.DrawDisc(inner.X, inner.Y, 1)
	c.DrawDisc(outer.X, outer.Y, 1)
}

func (p *PendulumView) ResetTrail() { p.trail = p.trail[:0] }

func (p *PendulumView) String() string { return p.Canvas.String() }
