package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/integrators"
)

func newTestSim(t *testing.T, angles [2]float64, dt float64) *Simulator {
	t.Helper()
	s, err := FromParams(dynamo.DefaultParams(), angles, dt)
	if err != nil {
		t.Fatalf("FromParams: %v", err)
	}
	return s
}

func TestSimulatorStepMatchesIntegrator(t *testing.T) {
	s := newTestSim(t, [2]float64{1.3, -0.2}, 0.002)
	want := dynamo.DefaultParams().Pair([2]float64{1.3, -0.2})
	rk := integrators.RK4{Gravity: 9.81, Dt: 0.002}

	for i := 0; i < 250; i++ {
		s.Step()
		rk.Step(&want)
	}
	if got := s.State().Pair; got != want {
		t.Errorf("simulator drifted from integrator: %v vs %v", got, want)
	}
	if s.Steps() != 250 {
		t.Errorf("expected 250 steps, got %d", s.Steps())
	}
	if math.Abs(s.Time()-0.5) > 1e-12 {
		t.Errorf("expected t=0.5, got %g", s.Time())
	}
}

func TestSimulatorStateIsSnapshot(t *testing.T) {
	s := newTestSim(t, [2]float64{1, 1}, 0.01)
	snap := s.State()
	s.Step()
	if snap.Pair[0].Angle != 1 {
		t.Errorf("snapshot changed after Step")
	}
}

func TestSimulatorAdvance(t *testing.T) {
	tests := []struct {
		elapsed float64
		want    int
	}{
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
		{0.124, 0},
		{0.125, 1},
		{0.3, 2},
		{1.0, 8},
	}
	for _, tt := range tests {
		s := newTestSim(t, [2]float64{0.5, 0.5}, 0.125)
		if got := s.Advance(tt.elapsed); got != tt.want {
			t.Errorf("Advance(%g) = %d, want %d", tt.elapsed, got, tt.want)
		}
		if s.Steps() != tt.want {
			t.Errorf("Advance(%g) ran %d steps", tt.elapsed, s.Steps())
		}
	}
}

func TestSimulatorReset(t *testing.T) {
	s := newTestSim(t, [2]float64{2, 1}, 0.01)
	start := s.State().Pair
	s.Advance(1)
	s.Reset()
	if s.State().Pair != start || s.Steps() != 0 {
		t.Errorf("Reset did not restore the starting pair")
	}
}

func TestSimulatorRejectsBadInput(t *testing.T) {
	good := dynamo.DefaultParams().Pair([2]float64{})
	bad := good
	bad[1].Mass = 0

	if _, err := New(bad, 9.81, 0.01); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero mass, got %v", err)
	}
	if _, err := New(good, 9.81, 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero dt, got %v", err)
	}
	s, _ := New(good, 9.81, 0.01)
	if err := s.Restart(bad); err == nil {
		t.Errorf("expected Restart to reject a bad pair")
	}
}

func TestSimulatorRun(t *testing.T) {
	s := newTestSim(t, [2]float64{1, 0.5}, 0.01)

	observed := 0
	s.AddObserver(ObserverFunc(func(Snapshot) { observed++ }))

	result, err := s.Run(context.Background(), RunConfig{Steps: 100, RecordEvery: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Snapshots) != 11 {
		t.Errorf("expected 11 snapshots, got %d", len(result.Snapshots))
	}
	if observed != 100 {
		t.Errorf("expected 100 observations, got %d", observed)
	}
	if result.Final().Step != 100 {
		t.Errorf("expected final step 100, got %d", result.Final().Step)
	}
}

func TestSimulatorRunInvalidConfig(t *testing.T) {
	s := newTestSim(t, [2]float64{1, 0.5}, 0.01)
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"negative steps", RunConfig{Steps: -1}},
		{"negative interval", RunConfig{Steps: 10, RecordEvery: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorRunCanceled(t *testing.T) {
	s := newTestSim(t, [2]float64{1, 0.5}, 0.01)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, RunConfig{Steps: 100})
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation error, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps after cancel, got %d", result.StepsTaken)
	}
}

func TestSimulatorRunStopsOnInvalidState(t *testing.T) {
	pair := dynamo.DefaultParams().Pair([2]float64{math.Inf(1), 0})
	s, err := New(pair, 9.81, 0.01)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := s.Run(context.Background(), RunConfig{Steps: 50, ValidateState: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected the run to stop after one step, got %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", result.Errors)
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string     { return "count" }
func (c *countMetric) Observe(Snapshot) { c.n++ }
func (c *countMetric) Value() float64   { return float64(c.n) }
func (c *countMetric) Reset()           { c.n = 0 }

func TestSimulatorMetrics(t *testing.T) {
	s := newTestSim(t, [2]float64{1, 0.5}, 0.01)
	m := &countMetric{n: 7}
	s.AddMetric(m)

	result, err := s.Run(context.Background(), RunConfig{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %g", result.Metrics["count"])
	}
}

func TestEnsembleSpread(t *testing.T) {
	base := dynamo.DefaultParams().Pair([2]float64{0.1, 0.1})
	e := NewEnsemble(base, 9.81, 0.01, 4, 1e-6)

	results, err := e.Run(context.Background(), RunConfig{Steps: 100})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if got := Spread(results); got <= 0 || got > 1e-3 {
		t.Errorf("expected a small positive spread near equilibrium, got %g", got)
	}
}
