// Package field evaluates the chaos-divergence map of the double pendulum.
//
// Every pixel of a [Viewport] names a pair of starting angles. The
// [Evaluator] integrates that pair and a copy nudged by Epsilon in both
// angles for StepCount steps, then [Color] turns the per-link angle
// difference into a pixel: hue from the direction of divergence, value
// from its size. Regions that stay coherent render dark; chaotic regions
// render bright.
//
// Evaluation is a pure function of the starting angles and [Settings], so
// rows can be rendered concurrently with no coordination.
package field
