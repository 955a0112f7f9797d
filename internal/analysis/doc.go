// Package analysis characterizes finished runs.
//
// Controlled beds rarely sit exactly on the target. A PID loop with a long
// probe delay settles into a slow limit cycle, and a bang-bang controller
// oscillates by construction. The tools here quantify that:
//
//   - [NewSpectrum]: one-sided amplitude spectrum of a probe series
//   - [DominantOscillation]: period and amplitude of the strongest component
//   - [SteadyState]: the tail of a series after the warm-up
//   - [Uniformity]: spread of the top surface temperatures
//
// # Limit Cycles
//
// A probe that oscillates with a period much longer than the tick indicates
// an aggressively tuned loop:
//
//	osc := analysis.DominantOscillation(analysis.SteadyState(result.Probes(), 0.5), 1)
//	if osc.Amplitude > 0.5 {
//	    // visible ripple on the print surface
//	}
package analysis
