package metrics

import (
	"math"

	"github.com/san-kum/chaosfield/internal/sim"
)

// Stability is the fraction of samples in which both links stay within
// threshold radians of hanging straight down.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap sim.Snapshot) {
	s.samples++
	for _, a := range snap.Pair.Angles() {
		if math.Abs(math.Remainder(a, 2*math.Pi)) > s.threshold || math.IsNaN(a) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Activity is the mean absolute momentum over both links.
type Activity struct {
	name    string
	sum     float64
	samples int
}

func NewActivity() *Activity {
	return &Activity{
		name: "activity",
	}
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) Observe(s sim.Snapshot) {
	for _, p := range s.Pair.Momenta() {
		a.sum += math.Abs(p)
	}
	a.samples++
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(2*a.samples)
}

func (a *Activity) Reset() {
	a.sum = 0
	a.samples = 0
}

// Defaults returns the metrics recorded by the simulate command.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewFlips(0),
		NewFlips(1),
		NewTimeToFlip(),
		NewStability(math.Pi / 2),
		NewActivity(),
	}
}
