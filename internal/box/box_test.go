package box

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		length float64
		mass   float64
		n      int
	}{
		{"zero length", 0, 1, 10},
		{"negative length", -1, 1, 10},
		{"NaN length", math.NaN(), 1, 10},
		{"zero mass", 5, 0, 10},
		{"negative count", 5, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.length, tt.mass, tt.n)
			assert.ErrorIs(t, err, dynamo.ErrInvalidBox)
		})
	}
}

func TestNew_Empty(t *testing.T) {
	b, err := New(5, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.NumParticles())
	assert.Equal(t, 0.0, b.Density())
	assert.Equal(t, 0.0, b.Temperature())
	b.RemoveMomentum()
}

func TestLengthForDensity(t *testing.T) {
	l := LengthForDensity(800, 0.8)
	assert.InDelta(t, 10.0, l, 1e-12)
}

func TestPlaceLattice_InsideAndSeparated(t *testing.T) {
	b, err := New(6, 1, 27)
	require.NoError(t, err)
	b.PlaceLattice()

	for i, c := range b.Coordinates {
		for k := 0; k < 3; k++ {
			assert.GreaterOrEqual(t, c[k], -3.0, "particle %d", i)
			assert.Less(t, c[k], 3.0, "particle %d", i)
		}
	}

	minDist := math.Inf(1)
	for i := 0; i < b.NumParticles(); i++ {
		for j := i + 1; j < b.NumParticles(); j++ {
			d := b.MinimumImage(b.Coordinates[i], b.Coordinates[j]).Norm()
			minDist = math.Min(minDist, d)
		}
	}
	assert.InDelta(t, 2.0, minDist, 1e-9)
}

func TestPlaceLattice_PartialFill(t *testing.T) {
	b, err := New(10, 1, 10)
	require.NoError(t, err)
	b.PlaceLattice()

	seen := make(map[dynamo.Vec3]bool)
	for _, c := range b.Coordinates {
		assert.False(t, seen[c], "duplicate lattice site %v", c)
		seen[c] = true
	}
}

func TestPlaceRandom_Wrapped(t *testing.T) {
	b, err := New(4, 1, 200)
	require.NoError(t, err)
	b.PlaceRandom(rand.New(rand.NewSource(3)))

	for _, c := range b.Coordinates {
		assert.Equal(t, c, b.Wrap(c))
	}
}

func TestMinimumImage(t *testing.T) {
	b, err := New(10, 1, 0)
	require.NoError(t, err)

	rij := b.MinimumImage(dynamo.Vec3{4.5, 0, 0}, dynamo.Vec3{-4.5, 0, 0})
	assert.InDelta(t, -1.0, rij[0], 1e-12)

	rij = b.MinimumImage(dynamo.Vec3{1, 2, 3}, dynamo.Vec3{0, 0, 0})
	assert.Equal(t, dynamo.Vec3{1, 2, 3}, rij)
}

func TestAssignVelocities_ZeroMomentum(t *testing.T) {
	for _, mass := range []float64{1, 39.948} {
		b, err := New(5, mass, 100)
		require.NoError(t, err)
		b.AssignVelocities(rand.New(rand.NewSource(11)), 0.851)

		p := b.Momentum()
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 0.0, p[k], 1e-10, "mass %v component %d", mass, k)
		}
		assert.InDelta(t, 0.851, b.Temperature(), 1e-10)
	}
}

func TestScaleVelocities(t *testing.T) {
	b, err := New(5, 1, 2)
	require.NoError(t, err)
	b.Velocities[0] = dynamo.Vec3{1, 0, 0}
	b.Velocities[1] = dynamo.Vec3{3, 0, 0}

	// After removing the mean (2,0,0) velocities are ±1 along x, K = 1,
	// so reaching K = 1.5·N·T = 6 takes a factor of sqrt(6).
	factor := b.ScaleVelocities(2.0)
	assert.InDelta(t, math.Sqrt(6.0), factor, 1e-12)
	assert.InDelta(t, 1.5*2*2.0, b.KineticEnergy(), 1e-12)
	assert.InDelta(t, 0.0, b.Momentum()[0], 1e-12)
}

func TestScaleVelocities_AtRest(t *testing.T) {
	b, err := New(5, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.ScaleVelocities(1.0))
	assert.Equal(t, 0.0, b.KineticEnergy())
}

func TestSetCoordinates(t *testing.T) {
	b, err := New(10, 1, 0)
	require.NoError(t, err)
	b.SetCoordinates([]dynamo.Vec3{{6, 0, 0}, {-1, -7, 2}})

	require.Equal(t, 2, b.NumParticles())
	assert.Len(t, b.Velocities, 2)
	assert.Len(t, b.Forces, 2)
	assert.InDelta(t, -4.0, b.Coordinates[0][0], 1e-12)
	assert.InDelta(t, 3.0, b.Coordinates[1][1], 1e-12)
}
