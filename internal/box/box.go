// Package box holds the periodic simulation cell: edge length, uniform
// particle mass, and the coordinate, velocity and force arrays that the
// interaction engine and the drivers mutate in place.
package box

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/ljsim/internal/dynamo"
)

// Box is a cubic periodic cell. A Box is owned by exactly one driver for
// the duration of a run.
type Box struct {
	Length      float64
	Mass        float64
	Coordinates []dynamo.Vec3
	Velocities  []dynamo.Vec3
	Forces      []dynamo.Vec3
}

// New returns a box with n particles at the origin and zero velocities.
func New(length, mass float64, n int) (*Box, error) {
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("%w: length must be positive, got %g", dynamo.ErrInvalidBox, length)
	}
	if mass <= 0 || math.IsNaN(mass) {
		return nil, fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidBox, mass)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: particle count must be non-negative, got %d", dynamo.ErrInvalidBox, n)
	}
	b := &Box{Length: length, Mass: mass}
	b.Resize(n)
	return b, nil
}

// LengthForDensity returns the edge of a cube holding n particles at number
// density rho.
func LengthForDensity(n int, rho float64) float64 {
	return math.Cbrt(float64(n) / rho)
}

// Resize reallocates all per-particle arrays for n particles.
func (b *Box) Resize(n int) {
	b.Coordinates = make([]dynamo.Vec3, n)
	b.Velocities = make([]dynamo.Vec3, n)
	b.Forces = make([]dynamo.Vec3, n)
}

func (b *Box) NumParticles() int { return len(b.Coordinates) }

func (b *Box) Volume() float64 { return b.Length * b.Length * b.Length }

// Density is the number density N/L³.
func (b *Box) Density() float64 { return float64(b.NumParticles()) / b.Volume() }

// Wrap maps v into the primary cell.
func (b *Box) Wrap(v dynamo.Vec3) dynamo.Vec3 {
	return dynamo.WrapVec(v, b.Length)
}

// MinimumImage returns the separation ri - rj of the nearest periodic images.
func (b *Box) MinimumImage(ri, rj dynamo.Vec3) dynamo.Vec3 {
	return dynamo.WrapVec(ri.Sub(rj), b.Length)
}

// WrapAll wraps every coordinate into the primary cell.
func (b *Box) WrapAll() {
	for i := range b.Coordinates {
		b.Coordinates[i] = b.Wrap(b.Coordinates[i])
	}
}

// PlaceLattice puts the particles on the sites of the smallest simple cubic
// lattice with at least N sites, filling x fastest.
func (b *Box) PlaceLattice() {
	n := b.NumParticles()
	nSide := 1
	for nSide*nSide*nSide < n {
		nSide++
	}
	spacing := b.Length / float64(nSide)
	var cx, cy, cz int
	for i := 0; i < n; i++ {
		b.Coordinates[i] = b.Wrap(dynamo.Vec3{
			(float64(cx)+0.5)*spacing - 0.5*b.Length,
			(float64(cy)+0.5)*spacing - 0.5*b.Length,
			(float64(cz)+0.5)*spacing - 0.5*b.Length,
		})
		cx++
		if cx == nSide {
			cx = 0
			cy++
			if cy == nSide {
				cy = 0
				cz++
			}
		}
	}
}

// PlaceRandom scatters the particles uniformly over the cell.
func (b *Box) PlaceRandom(rng *rand.Rand) {
	for i := range b.Coordinates {
		b.Coordinates[i] = b.Wrap(dynamo.Vec3{
			(0.5 - rng.Float64()) * b.Length,
			(0.5 - rng.Float64()) * b.Length,
			(0.5 - rng.Float64()) * b.Length,
		})
	}
}

// SetCoordinates replaces the particle set with coords, wrapped into the cell.
func (b *Box) SetCoordinates(coords []dynamo.Vec3) {
	b.Resize(len(coords))
	for i, c := range coords {
		b.Coordinates[i] = b.Wrap(c)
	}
}
