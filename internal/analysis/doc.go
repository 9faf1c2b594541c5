// Package analysis characterizes the double pendulum and its integrator.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: separation rate per perturbed state component
//   - [ConvergenceOrder]: observed order of the RK4 step against a fine reference
//   - [GeneratePhasePortrait]: 2D phase space trajectories
//   - [GeneratePoincareSection]: stroboscopic section of phase space
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(rk, pair, duration, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
