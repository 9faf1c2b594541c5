// Package export writes fields, pendulum overlays, plots and animations to
// image files.
package export
