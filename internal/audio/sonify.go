// Package audio turns the motion of a pendulum pair into sound.
package audio

import (
	"math"
	"sync"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/sim"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	// DefaultDt is the simulated time per output sample.
	DefaultDt = 0.01
)

// Sample maps an angle to a waveform value: mod(angle, 2π)/π − 1,
// which lies in [-1, 1).
func Sample(angle float64) float64 {
	m := angle - 2*math.Pi*math.Floor(angle/(2*math.Pi))
	v := m/math.Pi - 1
	if v >= 1 {
		// rounding in the floor can leave m == 2π
		v = -1
	}
	return v
}

// Sonifier owns a simulator stepped once per output sample.
// The left channel follows link 1, the right channel link 2.
// It is safe to fill from the audio thread while another goroutine
// restarts or pauses it.
type Sonifier struct {
	mu     sync.Mutex
	sim    *sim.Simulator
	paused bool
}

func NewSonifier(s *sim.Simulator) *Sonifier {
	return &Sonifier{sim: s}
}

// Next steps once and returns the stereo sample. A paused sonifier
// returns silence.
func (s *Sonifier) Next() (left, right float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next()
}

func (s *Sonifier) next() (float64, float64) {
	if s.paused || s.sim == nil {
		return 0, 0
	}
	p := s.sim.Step()
	l, r := Sample(p[0].Angle), Sample(p[1].Angle)
	if math.IsNaN(l) || math.IsNaN(r) {
		return 0, 0
	}
	return l, r
}

// Fill writes one sample per index into both channels.
func (s *Sonifier) Fill(left, right []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		l, r := s.next()
		left[i], right[i] = float32(l), float32(r)
	}
}

// Record collects n samples per channel.
func (s *Sonifier) Record(n int) (left, right []float64) {
	left = make([]float64, n)
	right = make([]float64, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		left[i], right[i] = s.next()
	}
	return left, right
}

// Restart replaces the sounding pair.
func (s *Sonifier) Restart(pair dynamo.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return sim.ErrNoSimulator
	}
	return s.sim.Restart(pair)
}

func (s *Sonifier) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

// State returns the current snapshot of the sounding pair.
func (s *Sonifier) State() sim.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return sim.Snapshot{}
	}
	return s.sim.State()
}
