package sim

import (
	"github.com/san-kum/ljsim/internal/box"
)

const (
	MethodMonteCarlo        = "monteCarlo"
	MethodMolecularDynamics = "molecularDynamics"
)

// Properties is one property record emitted every PrintProp steps.
// Energies are per particle and include the tail correction.
type Properties struct {
	Method   string  `json:"method"`
	Step     int     `json:"step"`
	Energy   float64 `json:"energy"`
	Pressure float64 `json:"pressure"`

	AcceptanceRate float64 `json:"acceptance_rate,omitempty"`
	MaxDisp        float64 `json:"max_disp,omitempty"`

	Kinetic     float64 `json:"kinetic,omitempty"`
	Total       float64 `json:"total,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Driver advances a box one step at a time.
type Driver interface {
	Method() string
	Box() *box.Box
	// Init computes the starting totals and corrections. It is called once
	// before the first Step.
	Init() error
	// Step performs step number step (1-based).
	Step(step int) error
	Report(step int) Properties
	// Totals returns the current pair energy and virial.
	Totals() (energy, virial float64)
}

// Tuner is implemented by drivers that adapt their parameters after each
// report.
type Tuner interface {
	Tune(p Properties)
}

// Acceptor is implemented by drivers that accept or reject trial moves.
type Acceptor interface {
	Acceptance() (accepted, attempted int)
}

type Observer interface {
	Observe(p Properties)
}

// Baseliner is implemented by observers that measure against the state at
// step 0. The runner calls Baseline once from Start with the step 0 record,
// which is not a printed report.
type Baseliner interface {
	Baseline(p Properties)
}

// FrameWriter receives trajectory snapshots.
type FrameWriter interface {
	WriteFrame(b *box.Box) error
}

type RunConfig struct {
	Steps     int
	PrintProp int
	PrintXYZ  int
}

type Result struct {
	Method     string
	Reports    []Properties
	StepsTaken int
	Accepted   int
	Attempted  int
	PairEnergy float64
	PairVirial float64
	// EnergyDrift is the largest RelativeDrift of the reported total
	// energy from its value at step 0 (molecular dynamics only).
	EnergyDrift float64
}
