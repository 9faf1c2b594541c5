package metrics

import (
	"math"

	"github.com/san-kum/chaosfield/internal/sim"
)

// winding returns which 2π turn an angle is in, counted from the
// upright position so that passing over the top changes the value.
func winding(angle float64) float64 {
	return math.Floor((angle + math.Pi) / (2 * math.Pi))
}

// Flips counts how many times a link passes over the top.
type Flips struct {
	name    string
	link    int
	last    float64
	flips   int
	started bool
}

func NewFlips(link int) *Flips {
	name := "flips_outer"
	if link == 0 {
		name = "flips_inner"
	}
	return &Flips{name: name, link: link}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) Observe(s sim.Snapshot) {
	w := winding(s.Pair[f.link].Angle)
	if f.started && !math.IsNaN(w) {
		f.flips += int(math.Abs(w - f.last))
	}
	f.last = w
	f.started = true
}

func (f *Flips) Value() float64 {
	return float64(f.flips)
}

func (f *Flips) Reset() {
	f.flips = 0
	f.started = false
}

// TimeToFlip records the time at which the outer link first passes
// over the top. Value is -1 until that happens.
type TimeToFlip struct {
	name    string
	first   float64
	start   float64
	flipped bool
	started bool
}

func NewTimeToFlip() *TimeToFlip {
	return &TimeToFlip{name: "time_to_flip"}
}

func (f *TimeToFlip) Name() string { return f.name }

func (f *TimeToFlip) Observe(s sim.Snapshot) {
	if f.flipped {
		return
	}
	w := winding(s.Pair[1].Angle)
	if !f.started {
		f.start = w
		f.started = true
		return
	}
	if w != f.start && !math.IsNaN(w) {
		f.first = s.Time
		f.flipped = true
	}
}

func (f *TimeToFlip) Value() float64 {
	if !f.flipped {
		return -1
	}
	return f.first
}

func (f *TimeToFlip) Reset() {
	f.flipped = false
	f.started = false
	f.first = 0
}
