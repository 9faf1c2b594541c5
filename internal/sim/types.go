package sim

import (
	"errors"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

// ErrNoSimulator is returned when an operation needs a simulator that was never set.
var ErrNoSimulator = errors.New("sim: no simulator")

// Snapshot is a read-only copy of the simulated pair at one instant.
type Snapshot struct {
	Step int         `json:"step"`
	Time float64     `json:"time"`
	Pair dynamo.Pair `json:"pair"`
}

type Observer interface {
	OnStep(s Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnStep(s Snapshot) { f(s) }

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// RunConfig controls a recorded run.
type RunConfig struct {
	Steps         int
	RecordEvery   int
	ValidateState bool
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Steps:         5000,
		RecordEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	Snapshots  []Snapshot
	StepsTaken int
	Metrics    map[string]float64
	Errors     []error
}

// Final returns the last recorded snapshot.
func (r *Result) Final() Snapshot {
	if len(r.Snapshots) == 0 {
		return Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}
