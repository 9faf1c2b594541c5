package tui

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/sim"
)

func snapshot(step int, t float64, a1, a2 float64) sim.Snapshot {
	pair, _ := dynamo.NewPair([2]float64{a1, a2}, [2]float64{1, 1}, [2]float64{1, 1})
	return sim.Snapshot{Step: step, Time: t, Pair: pair}
}

func TestLiveRendererThrottlesBySimTime(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 4)
	for i := 0; i <= 16; i++ {
		r.OnStep(snapshot(i, float64(i)*0.125, 0.5, 0.5))
	}
	if got := strings.Count(buf.String(), clearScreen); got != 9 {
		t.Errorf("frames = %d, want 9", got)
	}
}

func TestLiveRendererHangingFrame(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 30)
	r.OnStep(snapshot(0, 0, 0, 0))

	lines := strings.Split(buf.String(), "\n")
	// header, rule, then the canvas rows.
	canvas := lines[2 : 2+height]
	col := 2 + width/2
	if canvas[height/2][col] != '+' {
		t.Errorf("pivot row = %q", canvas[height/2])
	}
	if canvas[height-1][col] != 'O' {
		t.Errorf("outer bob row = %q", canvas[height-1])
	}
	if !strings.Contains(buf.String(), "a1=+0.000") {
		t.Error("state line missing")
	}
}

func TestLiveRendererSkipsInvalid(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 30)
	s := snapshot(0, 0, 0, 0)
	s.Pair[1].Angle = math.NaN()
	r.OnStep(s)
	if strings.Contains(buf.String(), "O") {
		t.Error("invalid pair should not be drawn")
	}
}
