package box

import (
	"math"
	"math/rand"

	"github.com/san-kum/ljsim/internal/dynamo"
)

// Momentum is the total linear momentum m·Σv.
func (b *Box) Momentum() dynamo.Vec3 {
	var p dynamo.Vec3
	for _, v := range b.Velocities {
		p = p.Add(v)
	}
	return p.Scale(b.Mass)
}

// RemoveMomentum subtracts the mean velocity from every particle.
func (b *Box) RemoveMomentum() {
	n := b.NumParticles()
	if n == 0 {
		return
	}
	mean := b.Momentum().Scale(1 / (b.Mass * float64(n)))
	for i := range b.Velocities {
		b.Velocities[i] = b.Velocities[i].Sub(mean)
	}
}

// KineticEnergy is ½·m·Σ|v|².
func (b *Box) KineticEnergy() float64 {
	sum := 0.0
	for _, v := range b.Velocities {
		sum += v.Norm2()
	}
	return 0.5 * b.Mass * sum
}

// Temperature is the instantaneous kinetic temperature 2K/(3N), k_B = 1.
func (b *Box) Temperature() float64 {
	n := b.NumParticles()
	if n == 0 {
		return 0
	}
	return 2 * b.KineticEnergy() / (3 * float64(n))
}

// ScaleVelocities removes the net momentum and rescales all velocities so
// that the kinetic energy equals 1.5·N·T. It returns the applied factor;
// a box with zero kinetic energy is left unchanged and reports 1.
func (b *Box) ScaleVelocities(temperature float64) float64 {
	b.RemoveMomentum()
	k := b.KineticEnergy()
	if k == 0 {
		return 1
	}
	factor := math.Sqrt(1.5 * float64(b.NumParticles()) * temperature / k)
	for i := range b.Velocities {
		b.Velocities[i] = b.Velocities[i].Scale(factor)
	}
	return factor
}

// AssignVelocities draws Maxwell-Boltzmann velocities at temperature,
// removes the net momentum and rescales to the exact target temperature.
func (b *Box) AssignVelocities(rng *rand.Rand, temperature float64) {
	sd := math.Sqrt(temperature / b.Mass)
	for i := range b.Velocities {
		b.Velocities[i] = dynamo.Vec3{
			rng.NormFloat64() * sd,
			rng.NormFloat64() * sd,
			rng.NormFloat64() * sd,
		}
	}
	b.ScaleVelocities(temperature)
}
