package optim

import (
	"context"
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/experiment"
)

func build(params map[string]float64) (*experiment.Experiment, error) {
	cfg := experiment.Config{
		Params:   dynamo.DefaultParams(),
		Dt:       0.01,
		Duration: 2,
	}
	if err := cfg.Apply(params); err != nil {
		return nil, err
	}
	exp := experiment.New(cfg)
	return exp, exp.Setup(nil)
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Linspace(0, 1, 5) = %v, want %v", got, want)
		}
	}
	if got := Linspace(2, 3, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("Linspace with n=1 = %v", got)
	}
}

func TestGridSize(t *testing.T) {
	g := NewGridSearch([]string{"angle1", "angle2"}, [][]float64{{0, 1, 2}, {0, 1}})
	if g.Size() != 6 {
		t.Errorf("expected 6 points, got %d", g.Size())
	}
}

func TestSearchMaximizesActivity(t *testing.T) {
	g := NewGridSearch([]string{"angle1", "angle2"}, [][]float64{{0.1, 3.0}, {0.1}})
	g.Maximize = true
	best, val, err := g.Search(context.Background(), build, "activity")
	if err != nil {
		t.Fatal(err)
	}
	if best["angle1"] != 3.0 {
		t.Errorf("expected angle1=3.0 to be most active, got %v (%.4f)", best, val)
	}
}

func TestSearchMinimizes(t *testing.T) {
	g := NewGridSearch([]string{"angle1"}, [][]float64{{0.1, 1.5, 3.0}})
	best, _, err := g.Search(context.Background(), build, "activity")
	if err != nil {
		t.Fatal(err)
	}
	if best["angle1"] != 0.1 {
		t.Errorf("expected angle1=0.1 to be least active, got %v", best)
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]string{"angle1"}, [][]float64{{0.5}})
	if _, _, err := g.Search(context.Background(), build, "energy"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSearchMismatchedGrid(t *testing.T) {
	g := NewGridSearch([]string{"angle1", "angle2"}, [][]float64{{0.5}})
	if _, _, err := g.Search(context.Background(), build, "activity"); err == nil {
		t.Error("expected error for mismatched grid")
	}
}
