package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/ljsim/internal/sim"
)

// Stats collects one property from every report. Value is the mean.
type Stats struct {
	name   string
	pick   func(sim.Properties) float64
	values []float64
}

// NewEnergyStats tracks the reported energy per particle.
func NewEnergyStats() *Stats {
	return &Stats{name: "energy", pick: func(p sim.Properties) float64 { return p.Energy }}
}

func NewPressureStats() *Stats {
	return &Stats{name: "pressure", pick: func(p sim.Properties) float64 { return p.Pressure }}
}

func NewTemperatureStats() *Stats {
	return &Stats{name: "temperature", pick: func(p sim.Properties) float64 { return p.Temperature }}
}

func (s *Stats) Name() string { return s.name }

func (s *Stats) Observe(p sim.Properties) {
	s.values = append(s.values, s.pick(p))
}

func (s *Stats) Value() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return stat.Mean(s.values, nil)
}

// StdDev is the sample standard deviation, 0 with fewer than two samples.
func (s *Stats) StdDev() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.StdDev(s.values, nil)
}

func (s *Stats) Values() []float64 { return s.values }

func (s *Stats) Reset() { s.values = s.values[:0] }

// EnergyDrift tracks the largest relative deviation of the total energy
// from its value at step 0. Without a baseline from the runner the first
// observed report is used.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	hasBaseline   bool
	maxDrift      float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Baseline(p sim.Properties) {
	if p.Method != sim.MethodMolecularDynamics {
		return
	}
	e.initialEnergy = p.Total
	e.hasBaseline = true
}

func (e *EnergyDrift) Observe(p sim.Properties) {
	if p.Method != sim.MethodMolecularDynamics {
		return
	}
	if !e.hasBaseline {
		e.Baseline(p)
	}
	e.maxDrift = math.Max(e.maxDrift, sim.RelativeDrift(p.Total, e.initialEnergy))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.hasBaseline = false
	e.maxDrift = 0
}
