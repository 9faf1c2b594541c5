// Package experiment runs one recorded pendulum simulation from a plain
// description, the unit the batch tools build on.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/metrics"
	"github.com/san-kum/chaosfield/internal/sim"
)

type Config struct {
	Params      dynamo.Params
	Angles      [2]float64
	Dt          float64
	Duration    float64
	RecordEvery int
}

type Experiment struct {
	cfg       Config
	simulator *sim.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Config() Config { return e.cfg }

// Setup builds the simulator and attaches ms. A nil ms attaches
// metrics.Defaults.
func (e *Experiment) Setup(ms []sim.Metric) error {
	if !(e.cfg.Duration > 0) {
		return fmt.Errorf("%w: duration=%g", dynamo.ErrParameterBounds, e.cfg.Duration)
	}
	s, err := sim.FromParams(e.cfg.Params, e.cfg.Angles, e.cfg.Dt)
	if err != nil {
		return err
	}
	if ms == nil {
		ms = metrics.Defaults()
	}
	for _, m := range ms {
		s.AddMetric(m)
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	every := e.cfg.RecordEvery
	if every <= 0 {
		every = 1
	}
	return e.simulator.Run(ctx, sim.RunConfig{
		Steps:         sim.StepsFor(e.cfg.Duration, e.cfg.Dt),
		RecordEvery:   every,
		ValidateState: true,
	})
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}
