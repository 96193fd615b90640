// Package viz provides a terminal live view of a running simulation.
//
// The view is a Bubble Tea model that steps a [sim.Simulator] once per frame
// and draws the bodies on a Braille [Canvas]:
//
//   - [Model]: interactive view with an energy graph and tree statistics
//   - [Canvas]: Braille-based dot canvas with lines, rectangles and discs
//   - [Viewport]: world to canvas mapping with zoom
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	T     - Toggle quadtree overlay
//	[ ]   - Divide/multiply dt by 10
//	C E   - Add a circle or ellipse of bodies
//	X     - Clear all bodies
//	+ -   - Zoom
//	R     - Reset to initial state
//
// The view only reads the quadtree built by the last step.
package viz
