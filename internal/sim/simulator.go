package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/integrators"
)

// Simulator owns one pendulum pair and advances it with a fixed dt.
// It is not safe for concurrent use; callers drive it from one goroutine.
type Simulator struct {
	rk        integrators.RK4
	initial   dynamo.Pair
	pair      dynamo.Pair
	step      int
	metrics   []Metric
	observers []Observer
}

// New creates a simulator starting from pair.
func New(pair dynamo.Pair, gravity, dt float64) (*Simulator, error) {
	rk, err := integrators.NewRK4(gravity, dt)
	if err != nil {
		return nil, err
	}
	if err := validatePair(pair); err != nil {
		return nil, err
	}
	return &Simulator{
		rk:        rk,
		initial:   pair,
		pair:      pair,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

// FromParams creates a simulator at rest at the given angles.
func FromParams(p dynamo.Params, angles [2]float64, dt float64) (*Simulator, error) {
	pair, err := dynamo.NewPair(angles, p.Lengths, p.Masses)
	if err != nil {
		return nil, err
	}
	return New(pair, p.Gravity, dt)
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Dt() float64      { return s.rk.Dt }
func (s *Simulator) Gravity() float64 { return s.rk.Gravity }
func (s *Simulator) Time() float64    { return float64(s.step) * s.rk.Dt }
func (s *Simulator) Steps() int       { return s.step }

// Step advances the pair by one dt and returns it.
func (s *Simulator) Step() dynamo.Pair {
	s.rk.Step(&s.pair)
	s.step++
	return s.pair
}

// State returns a snapshot of both links.
func (s *Simulator) State() Snapshot {
	return Snapshot{Step: s.step, Time: s.Time(), Pair: s.pair}
}

// Advance performs floor(elapsed/dt) steps and returns how many ran.
// The fractional remainder is dropped.
func (s *Simulator) Advance(elapsed float64) int {
	n := StepsFor(elapsed, s.rk.Dt)
	for i := 0; i < n; i++ {
		s.Step()
	}
	return n
}

// Reset returns the pair to its starting state.
func (s *Simulator) Reset() {
	s.pair = s.initial
	s.step = 0
}

// Restart replaces the pair, discarding the old one.
func (s *Simulator) Restart(pair dynamo.Pair) error {
	if err := validatePair(pair); err != nil {
		return err
	}
	s.initial = pair
	s.Reset()
	return nil
}

// Run advances cfg.Steps steps from the current state, recording every
// cfg.RecordEvery-th snapshot including the first.
func (s *Simulator) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.RecordEvery
	if every == 0 {
		every = 1
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0, cfg.Steps/every+1),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Snapshots = append(result.Snapshots, s.State())
	log := dynamo.Logger()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		s.Step()
		snap := s.State()
		result.StepsTaken++

		if cfg.ValidateState && !snap.Pair.IsValid() {
			err := &dynamo.SimulationError{Step: snap.Step, Time: snap.Time, Pair: snap.Pair, Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			log.Warn("simulation stopped", "step", snap.Step, "err", err)
			break
		}

		for _, m := range s.metrics {
			m.Observe(snap)
		}
		for _, obs := range s.observers {
			obs.OnStep(snap)
		}

		if (i+1)%every == 0 {
			result.Snapshots = append(result.Snapshots, snap)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	log.Debug("run finished", "steps", result.StepsTaken, "recorded", len(result.Snapshots))
	return result, nil
}

// StepsFor returns floor(elapsed/dt), or 0 for non-positive or
// non-finite elapsed time.
func StepsFor(elapsed, dt float64) int {
	if !(elapsed > 0) || math.IsInf(elapsed, 0) {
		return 0
	}
	return int(math.Floor(elapsed / dt))
}

func validateConfig(cfg RunConfig) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", cfg.Steps)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must be non-negative, got %d", cfg.RecordEvery)
	}
	return nil
}

func validatePair(p dynamo.Pair) error {
	for i := range p {
		if !(p[i].Length > 0) || math.IsInf(p[i].Length, 0) {
			return fmt.Errorf("%w: length[%d]=%g", dynamo.ErrParameterBounds, i, p[i].Length)
		}
		if !(p[i].Mass > 0) || math.IsInf(p[i].Mass, 0) {
			return fmt.Errorf("%w: mass[%d]=%g", dynamo.ErrParameterBounds, i, p[i].Mass)
		}
	}
	return nil
}
