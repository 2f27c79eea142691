package potential

import (
	"math"
	"testing"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func TestEnergy_Reduced(t *testing.T) {
	lj, err := NewLennardJones(10)
	require.NoError(t, err)

	for _, r2 := range linspace(0.1, 50, 1000) {
		want := 4 * (math.Pow(1/r2, 6) - math.Pow(1/r2, 3))
		assert.InDelta(t, want, lj.Energy(r2), 1e-12*math.Max(1, math.Abs(want)), "r2=%v", r2)
	}
}

func TestEnergy_Parameterized(t *testing.T) {
	sigma, epsilon := 2.5, 6.5
	lj, err := NewLennardJones(10, WithParams(sigma, epsilon))
	require.NoError(t, err)

	for _, r2 := range linspace(0.1, 50, 1000) {
		s2 := sigma * sigma / r2
		want := 4 * epsilon * (math.Pow(s2, 6) - math.Pow(s2, 3))
		assert.InDelta(t, want, lj.Energy(r2), 1e-12*math.Max(1, math.Abs(want)), "r2=%v", r2)
	}
}

func TestEnergy_Minimum(t *testing.T) {
	lj, err := NewLennardJones(11.19, WithParams(3.73, 148.0))
	require.NoError(t, err)

	rmin := math.Pow(2, 1.0/6.0) * 3.73
	assert.InDelta(t, -148.0, lj.Energy(rmin*rmin), 1e-9)
	assert.InDelta(t, 0.0, lj.Virial(rmin*rmin), 1e-9)
	assert.InDelta(t, 0.0, lj.Energy(3.73*3.73), 1e-9)
}

func TestVirial_MatchesForce(t *testing.T) {
	lj, err := NewLennardJones(14)
	require.NoError(t, err)

	for _, r := range linspace(3.5, 20, 100) {
		want := 24 * (2*math.Pow(1/r, 12) - math.Pow(1/r, 6)) / r
		got := lj.Virial(r*r) / r
		assert.InDelta(t, want, got, 1e-15+1e-10*math.Abs(want), "r=%v", r)
	}
}

func TestVirial_IsNegativeRadialDerivative(t *testing.T) {
	lj, err := NewLennardJones(5, WithParams(1.2, 0.7))
	require.NoError(t, err)

	const h = 1e-6
	for _, r := range linspace(0.95, 4, 50) {
		dUdr := (lj.Energy((r+h)*(r+h)) - lj.Energy((r-h)*(r-h))) / (2 * h)
		assert.InDelta(t, -r*dUdr, lj.Virial(r*r), 1e-5*math.Max(1, math.Abs(dUdr)), "r=%v", r)
	}
}

func TestSwitch_Endpoints(t *testing.T) {
	sw, rc := 2.0, 2.5
	lj, err := NewLennardJones(rc, WithSwitch(sw))
	require.NoError(t, err)

	assert.Equal(t, 1.0, lj.Switch(sw*sw))
	assert.Equal(t, 0.0, lj.Switch(rc*rc))
	assert.Equal(t, 0.0, lj.SwitchDerivative(sw*sw))
	assert.Equal(t, 0.0, lj.SwitchDerivative(rc*rc))

	mid := (sw + rc) / 2
	assert.NotZero(t, lj.SwitchDerivative(mid*mid))
	assert.Less(t, lj.SwitchDerivative(mid*mid), 0.0)
	assert.Greater(t, lj.Switch(mid*mid), 0.0)
	assert.Less(t, lj.Switch(mid*mid), 1.0)
	// S is a cubic in r², so it crosses one half at the midpoint of [sw², rc²].
	assert.InDelta(t, 0.5, lj.Switch((sw*sw+rc*rc)/2), 1e-12)

	assert.Equal(t, 1.0, lj.Switch(1.0))
	assert.Equal(t, 0.0, lj.Switch(9.0))
}

func TestSwitch_Monotone(t *testing.T) {
	lj, err := NewLennardJones(3, WithSwitch(1.5))
	require.NoError(t, err)

	prev := 1.0
	for _, r := range linspace(1.5, 3, 200) {
		s := lj.Switch(r * r)
		assert.LessOrEqual(t, s, prev+1e-15)
		assert.GreaterOrEqual(t, s, 0.0)
		prev = s
	}
}

func TestSwitchDerivative_MatchesFiniteDifference(t *testing.T) {
	lj, err := NewLennardJones(3, WithSwitch(2))
	require.NoError(t, err)

	const h = 1e-6
	for _, r := range linspace(2.01, 2.99, 40) {
		fd := (lj.Switch((r+h)*(r+h)) - lj.Switch((r-h)*(r-h))) / (2 * h)
		assert.InDelta(t, fd, lj.SwitchDerivative(r*r), 1e-6, "r=%v", r)
	}
}

func TestSwitch_HardCutoff(t *testing.T) {
	lj, err := NewLennardJones(2.5)
	require.NoError(t, err)

	assert.False(t, lj.HasSwitch())
	assert.Equal(t, 1.0, lj.Switch(2.5*2.5-1e-9))
	assert.Equal(t, 0.0, lj.Switch(2.5*2.5))
	assert.Equal(t, 0.0, lj.SwitchDerivative(2.0))
}

func TestNewLennardJones_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float64
		opts   []Option
		want   error
	}{
		{"switch beyond cutoff", 2.5, []Option{WithSwitch(3)}, ErrSwitchBeyondCutoff},
		{"negative switch", 2.5, []Option{WithSwitch(-1)}, ErrSwitchBeyondCutoff},
		{"three params", 2.5, []Option{WithParamList([]float64{1, 2, 3})}, ErrParams},
		{"one param", 2.5, []Option{WithParamList([]float64{1})}, ErrParams},
		{"zero sigma", 2.5, []Option{WithParams(0, 1)}, ErrParams},
		{"zero cutoff", 0, nil, ErrCutoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLennardJones(tt.cutoff, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWithParamList_EmptyKeepsReduced(t *testing.T) {
	lj, err := NewLennardJones(2.5, WithParamList(nil))
	require.NoError(t, err)
	assert.Equal(t, 1.0, lj.Sigma())
	assert.Equal(t, 1.0, lj.Epsilon())

	lj, err = NewLennardJones(2.5, WithParamList([]float64{3.73, 148}))
	require.NoError(t, err)
	assert.Equal(t, 3.73, lj.Sigma())
	assert.Equal(t, 148.0, lj.Epsilon())
}

func TestSwitchAtCutoff_IsHardStep(t *testing.T) {
	lj, err := NewLennardJones(2.5, WithSwitch(2.5))
	require.NoError(t, err)
	assert.Equal(t, 1.0, lj.Switch(6.0))
	assert.Equal(t, 0.0, lj.Switch(6.25))
	assert.Equal(t, 0.0, lj.SwitchDerivative(6.1))
}

func TestTailCorrection_NISTReference(t *testing.T) {
	sigma, epsilon := 3.73, 148.0
	lj, err := NewLennardJones(3*sigma, WithParams(sigma, epsilon))
	require.NoError(t, err)

	b, err := box.New(10*sigma, 1, 800)
	require.NoError(t, err)

	assert.InDelta(t, -198.49, lj.TailCorrection(b)/epsilon, 0.005)
}

func TestCorrections_Reduced(t *testing.T) {
	lj, err := NewLennardJones(2.5)
	require.NoError(t, err)

	b, err := box.New(box.LengthForDensity(100, 0.9), 1, 100)
	require.NoError(t, err)

	rho := 0.9
	sc3 := math.Pow(1/2.5, 3)
	sc9 := sc3 * sc3 * sc3
	wantE := 8.0 / 9.0 * math.Pi * rho * 100 * (sc9 - 3*sc3)
	wantP := 16.0 / 3.0 * math.Pi * rho * rho * (2.0/3.0*sc9 - sc3)

	assert.InEpsilon(t, wantE, lj.TailCorrection(b), 1e-10)
	assert.InEpsilon(t, wantP, lj.PressureCorrection(b), 1e-10)
	assert.Less(t, lj.TailCorrection(b), 0.0)
	assert.Less(t, lj.PressureCorrection(b), 0.0)
}

func TestCorrections_EmptyBox(t *testing.T) {
	lj, err := NewLennardJones(2.5)
	require.NoError(t, err)
	b, err := box.New(5, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, lj.TailCorrection(b))
	assert.Equal(t, 0.0, lj.PressureCorrection(b))
}
