package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNewPairStartsAtRest(t *testing.T) {
	tests := []struct {
		name    string
		angles  [2]float64
		lengths [2]float64
		masses  [2]float64
	}{
		{"hanging", [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{1, 1}},
		{"horizontal", [2]float64{math.Pi / 2, math.Pi / 2}, [2]float64{1, 1}, [2]float64{3, 3}},
		{"unequal", [2]float64{-4.2, 17}, [2]float64{0.3, 2.5}, [2]float64{10, 0.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPair(tt.angles, tt.lengths, tt.masses)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Momenta() != [2]float64{} {
				t.Errorf("expected zero momenta, got %v", p.Momenta())
			}
			if p.Angles() != tt.angles {
				t.Errorf("angles: got %v, want %v", p.Angles(), tt.angles)
			}
			for i := 0; i < 2; i++ {
				if p[i].Length != tt.lengths[i] || p[i].Mass != tt.masses[i] {
					t.Errorf("link %d: got length %g mass %g", i, p[i].Length, p[i].Mass)
				}
			}
		})
	}
}

func TestNewPairRejectsBadLinks(t *testing.T) {
	tests := []struct {
		name    string
		lengths [2]float64
		masses  [2]float64
	}{
		{"zero length", [2]float64{0, 1}, [2]float64{1, 1}},
		{"negative mass", [2]float64{1, 1}, [2]float64{1, -2}},
		{"nan length", [2]float64{1, math.NaN()}, [2]float64{1, 1}},
		{"inf mass", [2]float64{1, 1}, [2]float64{math.Inf(1), 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPair([2]float64{}, tt.lengths, tt.masses)
			if !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestPairValueSemantics(t *testing.T) {
	a, _ := NewPair([2]float64{1, 2}, [2]float64{1, 1}, [2]float64{1, 1})
	b := a
	b[0].Angle = 5
	if a[0].Angle != 1 {
		t.Errorf("copy aliased the original pair")
	}
}

func TestPairStateRoundTrip(t *testing.T) {
	p := DefaultParams().Pair([2]float64{0.1, 0.2})
	if err := p.SetState(State{1, 2, 3, 4}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if p[0].Angle != 1 || p[0].Momentum != 2 || p[1].Angle != 3 || p[1].Momentum != 4 {
		t.Errorf("unexpected pair %v", p)
	}
	if p[0].Length != 1 || p[1].Mass != 1 {
		t.Errorf("SetState touched lengths or masses")
	}
	if err := p.SetState(State{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"default", func(*Params) {}, false},
		{"zero gravity", func(p *Params) { p.Gravity = 0 }, false},
		{"nan gravity", func(p *Params) { p.Gravity = math.NaN() }, true},
		{"zero length", func(p *Params) { p.Lengths[1] = 0 }, true},
		{"negative mass", func(p *Params) { p.Masses[0] = -1 }, true},
		{"negative steps", func(p *Params) { p.StepCount = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr != (err != nil) {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected wrapped ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestStateValidity(t *testing.T) {
	if !(State{0, 1, 2, 3}).IsValid() {
		t.Errorf("finite state reported invalid")
	}
	if (State{0, math.Inf(-1), 2, 3}).IsValid() {
		t.Errorf("infinite state reported valid")
	}
	if got := (State{3, 4}).Norm(); got != 5 {
		t.Errorf("Norm: got %g, want 5", got)
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.5, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("SimulationError should unwrap to ErrInvalidState")
	}
	if err.Error() != "step 3 (t=0.5000): dynamo: invalid state (NaN or Inf detected)" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
