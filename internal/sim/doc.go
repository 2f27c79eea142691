// Package sim contains the two simulation drivers and the runner that steps
// them.
//
//   - [MonteCarlo]: Metropolis single-particle moves with adaptive step size
//   - [MolecularDynamics]: Velocity-Verlet with periodic velocity rescaling
//   - [Runner]: fixed-count stepping, property reports, trajectory frames
//   - [Ensemble]: independent replicas run concurrently, one box each
//
// # Example
//
//	mc, _ := sim.NewMonteCarlo(b, eng, sim.MonteCarloConfig{Temperature: 0.9, MaxDisp: 0.1, Seed: 1})
//	r := sim.NewRunner(mc, sim.WithObserver(sim.NewPropertyPrinter(os.Stdout)))
//	result, _ := r.Run(ctx, sim.RunConfig{Steps: 50000, PrintProp: 1000, PrintXYZ: 1000})
//
// # Thread Safety
//
// A driver owns its box for the whole run; neither drivers nor runners are
// safe for concurrent use.
package sim
