// Package physics provides the equations of motion of the double pendulum.
//
// [DoublePendulum] implements [dynamo.Model] in the canonical (angle,
// momentum) form: each link is treated as a uniform rod, momenta are the
// generalized momenta conjugate to the link angles, and the derivative is a
// pure function of the pair and gravity.
//
//	model := physics.NewDoublePendulum(9.81)
//	r := model.Derive(&pair)
//
// The same Derive backs the animated simulator and every pixel of the
// divergence field, so both see identical arithmetic.
package physics
