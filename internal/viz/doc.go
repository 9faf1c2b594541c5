// Package viz is the terminal explorer for the divergence field.
//
// The field is drawn with half-block cells, two image rows per text line,
// so every character shows two field pixels in true color. A side panel
// animates the dropped pendulum on a Braille canvas and graphs its link
// angles.
//
// # Key Bindings
//
//	Arrows  - Pan the view
//	+ / -   - Zoom in/out at the cursor
//	h j k l - Move the cursor
//	Enter   - Drop a pendulum at the cursor (or click)
//	Space   - Pause/Resume the pendulum
//	S       - Pause, or single step while paused
//	R       - Restart the pendulum
//	0       - Reset the view
//	T       - Cycle color themes
//	?       - Show help
//	Q       - Quit
package viz
