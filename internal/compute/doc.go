// Package compute renders the divergence field on the available hardware.
//
// Two backends implement [Backend]:
//
//   - CPU: rows spread over a bounded set of goroutines; one worker is the
//     plain per-pixel loop
//   - OpenGL: a GLSL 4.3 compute shader carrying the same dynamics, RK4
//     and color mapping in single precision
//
// The OpenGL backend needs a current context, which the window explorer
// provides. Everything else uses the CPU backend:
//
//	img, err := compute.GetBackend().Render(ctx, compute.Job{Evaluator: e, View: v})
//
// Build with -tags headless to leave out OpenGL entirely.
package compute
