// Package tui prints a plain ANSI animation of a running simulation.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/chaosfield/internal/physics"
	"github.com/san-kum/chaosfield/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	trailLength = 50
)

// LiveRenderer is a sim.Observer that redraws the pendulum at most
// frameRate times per second. Frames are spaced in simulated time when
// Realtime is false, which keeps output deterministic.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame float64
	started   bool
	canvas    [][]rune
	trail     []struct{ x, y int }

	// Realtime throttles frames by wall clock and sleeps to match
	// simulated time.
	Realtime bool
	wall     time.Time
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, trailLength),
	}
}

func (r *LiveRenderer) OnStep(s sim.Snapshot) {
	period := 1 / float64(r.frameRate)
	if r.started && s.Time-r.lastFrame < period {
		return
	}
	if r.Realtime {
		if r.wall.IsZero() {
			r.wall = time.Now()
		}
		if ahead := time.Duration(s.Time*float64(time.Second)) - time.Since(r.wall); ahead > 0 {
			time.Sleep(ahead)
		}
	}
	r.started = true
	r.lastFrame = s.Time

	r.clear()
	r.draw(s)
	r.render(s)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// draw places the pivot at the centre. Character cells are about twice as
// tall as wide, so x is stretched by 2.
func (r *LiveRenderer) draw(s sim.Snapshot) {
	if !s.Pair.IsValid() {
		return
	}
	px, py := width/2, height/2
	scale := float64(height/2-1) / physics.Reach(s.Pair)
	x1, y1, x2, y2 := physics.TipPositions(s.Pair)

	b1x, b1y := px+int(math.Round(2*scale*x1)), py+int(math.Round(scale*y1))
	b2x, b2y := px+int(math.Round(2*scale*x2)), py+int(math.Round(scale*y2))

	r.trail = append(r.trail, struct{ x, y int }{b2x, b2y})
	if len(r.trail) > trailLength {
		r.trail = r.trail[1:]
	}
	for _, pt := range r.trail {
		r.set(pt.x, pt.y, '.')
	}

	r.line(px, py, b1x, b1y, '|')
	r.line(b1x, b1y, b2x, b2y, '|')
	r.set(px, py, '+')
	r.set(b1x, b1y, 'o')
	r.set(b2x, b2y, 'O')
}

func (r *LiveRenderer) render(s sim.Snapshot) {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  double pendulum  t=%.2fs  step %d\n", s.Time, s.Step)
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	fmt.Fprintf(&b, "  a1=%+.3f p1=%+.3f a2=%+.3f p2=%+.3f\n",
		s.Pair[0].Angle, s.Pair[0].Momentum, s.Pair[1].Angle, s.Pair[1].Momentum)
	io.WriteString(r.out, b.String())
}

func (r *LiveRenderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
