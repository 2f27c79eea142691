// Package potential defines the pair potential capability used by the
// interaction engine and its Lennard-Jones implementation.
//
// Distances are passed squared (r2) throughout; no square roots are taken
// on the hot path except inside the switching derivative.
package potential

import (
	"errors"

	"github.com/san-kum/ljsim/internal/box"
)

var (
	// ErrSwitchBeyondCutoff indicates a switching distance larger than the cutoff.
	ErrSwitchBeyondCutoff = errors.New("potential: switch must be in range [0, cutoff]")

	// ErrParams indicates potential parameters that are not a (sigma, epsilon) pair
	// of positive values.
	ErrParams = errors.New("potential: parameters must be a (sigma, epsilon) pair")

	// ErrCutoff indicates a non-positive cutoff.
	ErrCutoff = errors.New("potential: cutoff must be positive")
)

// Potential is a spherically symmetric pair potential truncated at Cutoff.
type Potential interface {
	// Energy returns U(r) for a squared separation r2 > 0.
	Energy(r2 float64) float64
	// Virial returns -r·dU/dr.
	Virial(r2 float64) float64
	// Switch returns the smoothing factor S(r) in [0, 1].
	Switch(r2 float64) float64
	// SwitchDerivative returns dS/dr.
	SwitchDerivative(r2 float64) float64
	// TailCorrection is the energy beyond the cutoff for a uniform fluid.
	TailCorrection(b *box.Box) float64
	// PressureCorrection is the pressure beyond the cutoff for a uniform fluid.
	PressureCorrection(b *box.Box) float64

	Cutoff() float64
	Cutoff2() float64
	HasSwitch() bool
}
