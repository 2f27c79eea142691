// Package viz renders a running simulation in the terminal.
//
// The live view is a Bubble Tea program built around [Model]:
//
//   - a rotating projection of the periodic box and its particles, drawn on
//     a Braille [Canvas]
//   - the latest property report and a run progress bar
//   - an asciigraph chart of the reported energy per particle
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More/fewer steps per frame
//	Arrows- Rotate the box
//	z/Z   - Zoom in/out
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
