// Package thermal provides the finite-difference heat-transfer model of a
// layered heated bed and the stepper that closes a control loop around it.
//
// The model is a voxel grid of countX × countY × layers cells:
//
//   - [Grid]: flat temperature and heat-delta buffers plus coordinate lookups
//   - [Simulation]: owned session holding a Grid and its [Controller]
//   - [Simulation.Iterate]: one control tick split into explicit sub-steps
//
// # Example
//
//	s := thermal.NewSimulation()
//	s.Reset(0.25, 0.25, 0.2, 0.2, 0.005, layers, 22)
//	s.Tune(false)
//	for i := 0; i < 600; i++ {
//	    watts := s.Iterate(cond)
//	}
//	center := s.TemperatureAt(0.125, 0.125, 0)
//
// # Thread Safety
//
// A Simulation is NOT thread-safe. Ticks must be issued serially; run
// independent Simulations for parallel experiments.
package thermal
