// Package integrators advances a pendulum pair through time.
package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/physics"
)

// RK4 is the classical fixed-step fourth-order Runge-Kutta scheme applied to
// the joint state (angle1, momentum1, angle2, momentum2). Both links move
// through the same four stages so the coupling is seen at every stage.
//
// RK4 is a small value type; Step does not allocate.
type RK4 struct {
	Gravity float64
	Dt      float64
}

func NewRK4(gravity, dt float64) (RK4, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return RK4{}, fmt.Errorf("%w: dt=%g", dynamo.ErrParameterBounds, dt)
	}
	if math.IsNaN(gravity) || math.IsInf(gravity, 0) {
		return RK4{}, fmt.Errorf("%w: gravity=%g", dynamo.ErrParameterBounds, gravity)
	}
	return RK4{Gravity: gravity, Dt: dt}, nil
}

// Step advances p by one Dt in place and returns the new pair.
// Lengths and masses are never touched. Non-finite values propagate.
func (r RK4) Step(p *dynamo.Pair) dynamo.Pair {
	g, dt := r.Gravity, r.Dt
	x := *p

	k1 := physics.Derive(g, &x)
	s := offset(x, &k1, dt/2)
	k2 := physics.Derive(g, &s)
	s = offset(x, &k2, dt/2)
	k3 := physics.Derive(g, &s)
	s = offset(x, &k3, dt)
	k4 := physics.Derive(g, &s)

	dt6 := dt / 6
	for i := 0; i < 2; i++ {
		p[i].Angle = x[i].Angle + dt6*(k1.Angle[i]+2*k2.Angle[i]+2*k3.Angle[i]+k4.Angle[i])
		p[i].Momentum = x[i].Momentum + dt6*(k1.Momentum[i]+2*k2.Momentum[i]+2*k3.Momentum[i]+k4.Momentum[i])
	}
	return *p
}

// StepN advances p by n steps in place.
func (r RK4) StepN(p *dynamo.Pair, n int) dynamo.Pair {
	for i := 0; i < n; i++ {
		r.Step(p)
	}
	return *p
}

// offset returns x + h·k for the angles and momenta of both links.
func offset(x dynamo.Pair, k *dynamo.Rates, h float64) dynamo.Pair {
	for i := 0; i < 2; i++ {
		x[i].Angle += h * k.Angle[i]
		x[i].Momentum += h * k.Momentum[i]
	}
	return x
}
