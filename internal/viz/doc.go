// Package viz renders bed simulations in the terminal.
//
// The package implements the live view with the Bubble Tea framework:
//
//   - [Model]: live simulation with surface heat map, probe graph and
//     controller parameters
//   - [HeatMap]: half-block rendering of a temperature field
//   - [Canvas]: Braille dot canvas used for temperature profiles
//   - Color ramps selectable at runtime, shared with the SVG export
//
// # Key Bindings
//
//	Space     - Pause/Resume simulation
//	.         - Single tick while paused
//	R         - Reset the bed to ambient
//	Up/Down   - Change the target temperature
//	Tab, K/J  - Select and scale controller parameters
//	T         - Cycle color ramps
//	?         - Show help overlay
package viz
