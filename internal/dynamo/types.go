package dynamo

import (
	"fmt"
	"math"
)

// Pendulum is one rigid link of the double pendulum.
// Angle is measured from the downward vertical; Momentum is the canonical
// momentum conjugate to Angle.
type Pendulum struct {
	Length   float64 `json:"length" yaml:"length"`
	Mass     float64 `json:"mass" yaml:"mass"`
	Angle    float64 `json:"angle" yaml:"angle"`
	Momentum float64 `json:"momentum" yaml:"momentum"`
}

// Pair holds the two coupled links. Index 0 hangs from the pivot,
// index 1 hangs from the tip of index 0.
type Pair [2]Pendulum

// NewPair builds a pair at rest with the given angles.
func NewPair(angles, lengths, masses [2]float64) (Pair, error) {
	var p Pair
	for i := range p {
		if !(lengths[i] > 0) || math.IsInf(lengths[i], 0) {
			return Pair{}, fmt.Errorf("%w: length[%d]=%g", ErrParameterBounds, i, lengths[i])
		}
		if !(masses[i] > 0) || math.IsInf(masses[i], 0) {
			return Pair{}, fmt.Errorf("%w: mass[%d]=%g", ErrParameterBounds, i, masses[i])
		}
		p[i] = Pendulum{Length: lengths[i], Mass: masses[i], Angle: angles[i]}
	}
	return p, nil
}

// Angles returns both link angles.
func (p Pair) Angles() [2]float64 {
	return [2]float64{p[0].Angle, p[1].Angle}
}

// Momenta returns both canonical momenta.
func (p Pair) Momenta() [2]float64 {
	return [2]float64{p[0].Momentum, p[1].Momentum}
}

// State flattens the pair to [angle1, momentum1, angle2, momentum2].
func (p Pair) State() State {
	return State{p[0].Angle, p[0].Momentum, p[1].Angle, p[1].Momentum}
}

// SetState overwrites angles and momenta from a flat state, keeping
// lengths and masses.
func (p *Pair) SetState(s State) error {
	if len(s) != StateDim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(s), StateDim)
	}
	p[0].Angle, p[0].Momentum = s[0], s[1]
	p[1].Angle, p[1].Momentum = s[2], s[3]
	return nil
}

// IsValid reports whether every angle and momentum is finite.
func (p Pair) IsValid() bool {
	return p.State().IsValid()
}

// StateDim is the length of the flat state vector of a pair.
const StateDim = 4

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Rates is the instantaneous time-derivative of a pair.
type Rates struct {
	Angle    [2]float64
	Momentum [2]float64
}

// Params describes the physical system and the per-pixel step budget.
type Params struct {
	Gravity   float64    `json:"gravity" yaml:"gravity"`
	Lengths   [2]float64 `json:"lengths" yaml:"lengths"`
	Masses    [2]float64 `json:"masses" yaml:"masses"`
	StepCount int        `json:"step_count" yaml:"step_count"`
}

// DefaultParams mirrors the reference configuration of the field.
func DefaultParams() Params {
	return Params{
		Gravity:   9.81,
		Lengths:   [2]float64{1, 1},
		Masses:    [2]float64{1, 1},
		StepCount: 100,
	}
}

// Validate checks that lengths and masses are positive and finite,
// gravity is finite and the step count is non-negative.
func (p Params) Validate() error {
	if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
		return fmt.Errorf("%w: gravity=%g", ErrParameterBounds, p.Gravity)
	}
	for i := 0; i < 2; i++ {
		if !(p.Lengths[i] > 0) || math.IsInf(p.Lengths[i], 0) {
			return fmt.Errorf("%w: length[%d]=%g", ErrParameterBounds, i, p.Lengths[i])
		}
		if !(p.Masses[i] > 0) || math.IsInf(p.Masses[i], 0) {
			return fmt.Errorf("%w: mass[%d]=%g", ErrParameterBounds, i, p.Masses[i])
		}
	}
	if p.StepCount < 0 {
		return fmt.Errorf("%w: step_count=%d", ErrParameterBounds, p.StepCount)
	}
	return nil
}

// Pair builds a pair at rest at the given angles using these lengths and masses.
func (p Params) Pair(angles [2]float64) Pair {
	var pair Pair
	for i := range pair {
		pair[i] = Pendulum{Length: p.Lengths[i], Mass: p.Masses[i], Angle: angles[i]}
	}
	return pair
}

// Model computes the time-derivative of a pair.
type Model interface {
	Derive(p *Pair) Rates
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
