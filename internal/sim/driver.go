package sim

import (
	"time"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

// Driver steps a Simulator from a wall clock. Each Tick runs
// floor(elapsed/dt) steps, where elapsed is measured from a baseline that
// only moves forward by whole steps, so leftover time is picked up by the
// next tick.
type Driver struct {
	sim      *Simulator
	baseline time.Time
	started  bool
	paused   bool

	// MaxCatchUp caps the steps run by one tick. Zero means no cap.
	// When the cap is hit the backlog is dropped.
	MaxCatchUp int
}

func NewDriver(s *Simulator, maxCatchUp int) *Driver {
	return &Driver{sim: s, MaxCatchUp: maxCatchUp}
}

func (d *Driver) Simulator() *Simulator { return d.sim }

// Start sets the baseline. Tick calls it implicitly the first time.
func (d *Driver) Start(now time.Time) {
	d.baseline = now
	d.started = true
}

// Tick advances the simulator to now and returns the number of steps run.
func (d *Driver) Tick(now time.Time) int {
	if !d.started || d.paused {
		d.Start(now)
		return 0
	}

	dt := d.sim.Dt()
	n := StepsFor(now.Sub(d.baseline).Seconds(), dt)
	if n == 0 {
		return 0
	}

	if d.MaxCatchUp > 0 && n > d.MaxCatchUp {
		dynamo.Logger().Debug("driver dropped backlog", "wanted", n, "ran", d.MaxCatchUp)
		n = d.MaxCatchUp
		d.baseline = now
	} else {
		d.baseline = d.baseline.Add(time.Duration(float64(n) * dt * float64(time.Second)))
	}

	for i := 0; i < n; i++ {
		d.sim.Step()
	}
	return n
}

// SetPaused stops or resumes stepping. Time spent paused is not caught up.
func (d *Driver) SetPaused(paused bool) {
	d.paused = paused
}

func (d *Driver) Paused() bool { return d.paused }

// Replace discards the current simulator and drives s from now on.
func (d *Driver) Replace(s *Simulator, now time.Time) {
	d.sim = s
	d.Start(now)
}
