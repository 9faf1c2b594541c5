package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

func testPair(a1, a2 float64) dynamo.Pair {
	return dynamo.DefaultParams().Pair([2]float64{a1, a2})
}

func TestDoublePendulumEquilibrium(t *testing.T) {
	dp := NewDoublePendulum(DefaultGravity)
	p := testPair(0, 0)

	r := dp.Derive(&p)
	for i := 0; i < 2; i++ {
		if r.Angle[i] != 0 {
			t.Errorf("expected zero angle rate %d, got %g", i, r.Angle[i])
		}
		if math.Abs(r.Momentum[i]) > 1e-15 {
			t.Errorf("expected zero momentum rate %d, got %g", i, r.Momentum[i])
		}
	}
}

func TestDoublePendulumAtRestHasNoAngleRate(t *testing.T) {
	dp := NewDoublePendulum(DefaultGravity)
	p := testPair(1.2, -0.4)

	r := dp.Derive(&p)
	if r.Angle != [2]float64{} {
		t.Errorf("expected zero angle rates at rest, got %v", r.Angle)
	}
	// gravity pulls both links back toward the vertical
	if r.Momentum[0] >= 0 || r.Momentum[1] <= 0 {
		t.Errorf("unexpected momentum rate signs: %v", r.Momentum)
	}
}

func TestDoublePendulumKnownValues(t *testing.T) {
	p := dynamo.Pair{
		{Length: 1, Mass: 1, Angle: 0.3, Momentum: 0.5},
		{Length: 2, Mass: 3, Angle: -0.2, Momentum: -0.1},
	}
	r := Derive(9.81, &p)

	cd := math.Cos(0.5)
	den := 16 - 9*cd*cd
	wantA1 := 6.0 / 1.0 * (2*0.5 - 3*cd*-0.1) / den
	wantA2 := 6.0 / 12.0 * (8*-0.1 - 3*cd*0.5) / den

	tests := []struct {
		name      string
		got, want float64
	}{
		{"angle1", r.Angle[0], wantA1},
		{"angle2", r.Angle[1], wantA2},
		{"momentum1", r.Momentum[0], -0.5 * (wantA1*wantA2*math.Sin(0.5) + 3*9.81*math.Sin(0.3))},
		{"momentum2", r.Momentum[1], -6 * (-wantA1*wantA2*math.Sin(0.5) + 3*9.81/2*math.Sin(-0.2))},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s: got %.15g, want %.15g", tt.name, tt.got, tt.want)
		}
	}
}

func TestDoublePendulumPure(t *testing.T) {
	p := testPair(0.7, 1.9)
	p[0].Momentum, p[1].Momentum = 0.4, -0.3
	before := p

	a := Derive(9.81, &p)
	b := Derive(9.81, &p)
	if a != b {
		t.Errorf("repeated evaluation differs: %v vs %v", a, b)
	}
	if p != before {
		t.Errorf("Derive mutated its input")
	}
}

func TestTipPositions(t *testing.T) {
	p := testPair(math.Pi/2, 0)
	x1, y1, x2, y2 := TipPositions(p)

	if math.Abs(x1-1) > 1e-12 || math.Abs(y1) > 1e-12 {
		t.Errorf("first tip: got (%g, %g), want (1, 0)", x1, y1)
	}
	if math.Abs(x2-1) > 1e-12 || math.Abs(y2-1) > 1e-12 {
		t.Errorf("second tip: got (%g, %g), want (1, 1)", x2, y2)
	}
	if Reach(p) != 2 {
		t.Errorf("expected reach 2, got %g", Reach(p))
	}
}

func TestSetParam(t *testing.T) {
	dp := NewDoublePendulum(9.81)
	if err := dp.SetParam("gravity", 1.62); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dp.GetParams()["gravity"] != 1.62 {
		t.Errorf("gravity not updated")
	}
	if err := dp.SetParam("gravity", math.NaN()); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := dp.SetParam("damping", 1); err == nil {
		t.Errorf("expected error for unknown param")
	}
}
