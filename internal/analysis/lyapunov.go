package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/integrators"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two nearby trajectories
// 2. Measure their divergence, renormalizing it periodically
// 3. λ ≈ (1/t) * Σ ln(|δx|/δx(0))
func LyapunovExponent(rk integrators.RK4, start dynamo.Pair, duration, perturbation float64) float64 {
	pert := start
	pert[0].Angle += perturbation
	return separationRate(rk, start, pert, duration, perturbation)
}

// LyapunovSpectrum perturbs each of the four state components in turn
// (angle1, momentum1, angle2, momentum2) and returns the separation rate
// for each.
func LyapunovSpectrum(rk integrators.RK4, start dynamo.Pair, duration, perturbation float64) []float64 {
	spectrum := make([]float64, dynamo.StateDim)
	base := start.State()

	for i := range spectrum {
		s := base.Clone()
		s[i] += perturbation
		pert := start
		if err := pert.SetState(s); err != nil {
			return nil
		}
		spectrum[i] = separationRate(rk, start, pert, duration, perturbation)
	}
	return spectrum
}

// renormEvery is the number of steps between renormalizations.
const renormEvery = 10

// separationRate measures how fast b drifts from a. Every renormEvery
// steps it adds ln(sep/d0) and pulls b back to distance d0 along the
// current separation.
func separationRate(rk integrators.RK4, a, b dynamo.Pair, duration, d0 float64) float64 {
	steps := int(duration / rk.Dt)
	if !(d0 > 0) || steps <= 0 {
		return 0
	}

	sumLog := 0.0
	for i := 0; i < steps; i++ {
		rk.Step(&a)
		rk.Step(&b)

		if (i+1)%renormEvery != 0 && i != steps-1 {
			continue
		}

		x, xp := a.State(), b.State()
		sep := floats.Distance(x, xp, 2)
		if !(sep > 0) || math.IsInf(sep, 0) {
			return sumLog / (float64(i+1) * rk.Dt)
		}
		sumLog += math.Log(sep / d0)

		// Renormalize to prevent overflow
		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
		if err := b.SetState(xp); err != nil {
			return 0
		}
	}

	return sumLog / (float64(steps) * rk.Dt)
}
