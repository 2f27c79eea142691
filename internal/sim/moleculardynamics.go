package sim

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/engine"
	"github.com/san-kum/ljsim/internal/integrators"
)

type MolecularDynamicsConfig struct {
	Temperature float64
	TimeStep    float64
	// ScaleFreq is the thermostat interval in steps; 0 disables rescaling.
	ScaleFreq int
	Seed      int64
	// AssignVelocities draws initial velocities at Temperature during Init.
	AssignVelocities bool
}

// MolecularDynamics integrates Newton's equations with Velocity-Verlet.
type MolecularDynamics struct {
	box        *box.Box
	engine     *engine.Engine
	integrator *integrators.VelocityVerlet
	cfg        MolecularDynamicsConfig

	energy, virial     float64
	tail, pressureTail float64
}

func NewMolecularDynamics(b *box.Box, eng *engine.Engine, cfg MolecularDynamicsConfig) (*MolecularDynamics, error) {
	if b == nil || eng == nil {
		return nil, fmt.Errorf("%w: molecular dynamics needs a box and an engine", dynamo.ErrInvalidConfig)
	}
	if !(cfg.Temperature > 0) {
		return nil, fmt.Errorf("%w: temperature must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Temperature)
	}
	if cfg.ScaleFreq < 0 {
		return nil, fmt.Errorf("%w: scale frequency must be non-negative, got %d", dynamo.ErrInvalidConfig, cfg.ScaleFreq)
	}
	vv, err := integrators.NewVelocityVerlet(cfg.TimeStep)
	if err != nil {
		return nil, err
	}
	return &MolecularDynamics{box: b, engine: eng, integrator: vv, cfg: cfg}, nil
}

func (md *MolecularDynamics) Method() string { return MethodMolecularDynamics }
func (md *MolecularDynamics) Box() *box.Box  { return md.box }

func (md *MolecularDynamics) Totals() (float64, float64) { return md.energy, md.virial }

func (md *MolecularDynamics) Init() error {
	if md.box.NumParticles() == 0 {
		return dynamo.ErrEmptyBox
	}
	if md.cfg.AssignVelocities {
		md.box.AssignVelocities(rand.New(rand.NewSource(md.cfg.Seed)), md.cfg.Temperature)
	}
	pot := md.engine.Potential()
	md.tail = pot.TailCorrection(md.box)
	md.pressureTail = pot.PressureCorrection(md.box)
	md.energy, md.virial = md.engine.TotalPairEnergyAndVirial(md.box, true)
	return nil
}

func (md *MolecularDynamics) computeForces(b *box.Box) {
	md.energy, md.virial = md.engine.TotalPairEnergyAndVirial(b, true)
}

func (md *MolecularDynamics) Step(step int) error {
	md.integrator.Step(md.box, md.computeForces)
	if md.cfg.ScaleFreq > 0 && step%md.cfg.ScaleFreq == 0 {
		md.box.ScaleVelocities(md.cfg.Temperature)
	}
	return nil
}

func (md *MolecularDynamics) Report(step int) Properties {
	b := md.box
	n := float64(b.NumParticles())
	k := b.KineticEnergy()
	potential := (md.energy + md.tail) / n
	return Properties{
		Method:      MethodMolecularDynamics,
		Step:        step,
		Energy:      potential,
		Pressure:    (2*k+md.virial)/(3*b.Volume()) + md.pressureTail,
		Kinetic:     k / n,
		Total:       potential + k/n,
		Temperature: b.Temperature(),
	}
}
