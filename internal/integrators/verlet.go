package integrators

import (
	"fmt"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
)

// VelocityVerlet advances a box with two half-kicks around one drift.
// Forces in the box must be current before the first call.
type VelocityVerlet struct {
	dt float64
}

func NewVelocityVerlet(dt float64) (*VelocityVerlet, error) {
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: time step must be positive, got %g", dynamo.ErrInvalidConfig, dt)
	}
	return &VelocityVerlet{dt: dt}, nil
}

func (v *VelocityVerlet) TimeStep() float64 { return v.dt }

// UpdatePositions drifts every particle by v·dt + ½·a·dt² and wraps it back
// into the cell.
func (v *VelocityVerlet) UpdatePositions(b *box.Box) {
	dt := v.dt
	halfDt2 := 0.5 * dt * dt / b.Mass
	for i := range b.Coordinates {
		r := b.Coordinates[i].
			Add(b.Velocities[i].Scale(dt)).
			Add(b.Forces[i].Scale(halfDt2))
		b.Coordinates[i] = b.Wrap(r)
	}
}

// UpdateVelocities applies a half kick ½·a·dt with the forces currently in
// the box.
func (v *VelocityVerlet) UpdateVelocities(b *box.Box) {
	halfDt := 0.5 * v.dt / b.Mass
	for i := range b.Velocities {
		b.Velocities[i] = b.Velocities[i].Add(b.Forces[i].Scale(halfDt))
	}
}

// Step performs one full update. computeForces must refill b.Forces for
// the drifted positions.
func (v *VelocityVerlet) Step(b *box.Box, computeForces func(*box.Box)) {
	v.UpdatePositions(b)
	v.UpdateVelocities(b)
	computeForces(b)
	v.UpdateVelocities(b)
}
