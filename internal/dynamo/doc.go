// Package dynamo provides the shared primitives used across the simulation:
//
//   - [Vec3]: three-component vector used for coordinates, velocities and forces
//   - sentinel errors and [SimulationError] for step-time failures
//   - [ParallelFor]: contiguous worker split for pair loops
//
// # Thread Safety
//
// Vec3 is a value type. Nothing in this package holds shared state;
// ParallelFor joins all workers before returning.
package dynamo
