package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/box"
)

// LennardJones is the 12-6 potential 4ε[(σ/r)^12 − (σ/r)^6]. With no
// explicit parameters σ = ε = 1 (reduced units).
type LennardJones struct {
	sigma   float64
	sigma2  float64
	epsilon float64

	cutoff  float64
	cutoff2 float64

	hasSwitch bool
	switchR   float64
	switch2   float64
}

// Option configures a LennardJones potential.
type Option func(*LennardJones) error

// WithParams sets (sigma, epsilon). Both must be positive.
func WithParams(sigma, epsilon float64) Option {
	return func(lj *LennardJones) error {
		if !(sigma > 0) || !(epsilon > 0) {
			return fmt.Errorf("%w: got (%g, %g)", ErrParams, sigma, epsilon)
		}
		lj.sigma = sigma
		lj.sigma2 = sigma * sigma
		lj.epsilon = epsilon
		return nil
	}
}

// WithParamList sets (sigma, epsilon) from a two-element list, as read from
// a configuration file. A nil or empty list keeps reduced units.
func WithParamList(params []float64) Option {
	return func(lj *LennardJones) error {
		if len(params) == 0 {
			return nil
		}
		if len(params) != 2 {
			return fmt.Errorf("%w: got %d values", ErrParams, len(params))
		}
		return WithParams(params[0], params[1])(lj)
	}
}

// WithSwitch enables smooth switching over [switchR, cutoff].
func WithSwitch(switchR float64) Option {
	return func(lj *LennardJones) error {
		lj.hasSwitch = true
		lj.switchR = switchR
		lj.switch2 = switchR * switchR
		return nil
	}
}

// NewLennardJones returns a Lennard-Jones potential truncated at cutoff.
func NewLennardJones(cutoff float64, opts ...Option) (*LennardJones, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrCutoff, cutoff)
	}
	lj := &LennardJones{
		sigma:   1,
		sigma2:  1,
		epsilon: 1,
		cutoff:  cutoff,
		cutoff2: cutoff * cutoff,
	}
	for _, opt := range opts {
		if err := opt(lj); err != nil {
			return nil, err
		}
	}
	if lj.hasSwitch && (lj.switchR < 0 || lj.switchR > cutoff) {
		return nil, fmt.Errorf("%w: switch %g, cutoff %g", ErrSwitchBeyondCutoff, lj.switchR, cutoff)
	}
	return lj, nil
}

func (lj *LennardJones) Sigma() float64   { return lj.sigma }
func (lj *LennardJones) Epsilon() float64 { return lj.epsilon }
func (lj *LennardJones) Cutoff() float64  { return lj.cutoff }
func (lj *LennardJones) Cutoff2() float64 { return lj.cutoff2 }
func (lj *LennardJones) HasSwitch() bool  { return lj.hasSwitch }

// SwitchDistance returns the switching onset and whether switching is enabled.
func (lj *LennardJones) SwitchDistance() (float64, bool) {
	return lj.switchR, lj.hasSwitch
}

func (lj *LennardJones) Energy(r2 float64) float64 {
	sr2 := lj.sigma2 / r2
	sr6 := sr2 * sr2 * sr2
	return 4 * lj.epsilon * (sr6*sr6 - sr6)
}

func (lj *LennardJones) Virial(r2 float64) float64 {
	sr2 := lj.sigma2 / r2
	sr6 := sr2 * sr2 * sr2
	return 24 * lj.epsilon * (2*sr6*sr6 - sr6)
}

// Switch is the C¹ polynomial that goes from 1 at the switch distance to 0
// at the cutoff. Without switching it is a hard step at the cutoff.
func (lj *LennardJones) Switch(r2 float64) float64 {
	if !lj.hasSwitch {
		if r2 < lj.cutoff2 {
			return 1
		}
		return 0
	}
	switch {
	case r2 >= lj.cutoff2:
		return 0
	case r2 <= lj.switch2:
		return 1
	}
	dc := lj.cutoff2 - r2
	den := lj.cutoff2 - lj.switch2
	return dc * dc * (lj.cutoff2 + 2*r2 - 3*lj.switch2) / (den * den * den)
}

func (lj *LennardJones) SwitchDerivative(r2 float64) float64 {
	if !lj.hasSwitch || r2 >= lj.cutoff2 || r2 <= lj.switch2 {
		return 0
	}
	den := lj.cutoff2 - lj.switch2
	return 12 * math.Sqrt(r2) * (r2 - lj.cutoff2) * (r2 - lj.switch2) / (den * den * den)
}

func (lj *LennardJones) TailCorrection(b *box.Box) float64 {
	sc3 := math.Pow(lj.sigma/lj.cutoff, 3)
	sc9 := sc3 * sc3 * sc3
	n := float64(b.NumParticles())
	return 8.0 / 9.0 * math.Pi * b.Density() * n * lj.sigma2 * lj.sigma * lj.epsilon * (sc9 - 3*sc3)
}

func (lj *LennardJones) PressureCorrection(b *box.Box) float64 {
	sc3 := math.Pow(lj.sigma/lj.cutoff, 3)
	sc9 := sc3 * sc3 * sc3
	rho := b.Density()
	return 16.0 / 3.0 * math.Pi * rho * rho * lj.sigma2 * lj.sigma * lj.epsilon * (2.0/3.0*sc9 - sc3)
}
