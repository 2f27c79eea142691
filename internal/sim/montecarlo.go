package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/engine"
)

// Acceptance band (percent) outside which the maximum displacement is retuned.
const (
	LowAcceptance  = 38.0
	HighAcceptance = 42.0
	ShrinkFactor   = 0.8
	GrowFactor     = 1.2
)

type MonteCarloConfig struct {
	// Temperature in energy units (k_B = 1).
	Temperature float64
	MaxDisp     float64
	Seed        int64
}

// MonteCarlo samples the canonical ensemble with single-particle
// Metropolis moves.
type MonteCarlo struct {
	box    *box.Box
	engine *engine.Engine
	rng    *rand.Rand

	beta    float64
	maxDisp float64

	energy, virial     float64
	tail, pressureTail float64

	accepted, attempted int
}

func NewMonteCarlo(b *box.Box, eng *engine.Engine, cfg MonteCarloConfig) (*MonteCarlo, error) {
	if b == nil || eng == nil {
		return nil, fmt.Errorf("%w: monte carlo needs a box and an engine", dynamo.ErrInvalidConfig)
	}
	if !(cfg.Temperature > 0) {
		return nil, fmt.Errorf("%w: temperature must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Temperature)
	}
	if !(cfg.MaxDisp > 0) {
		return nil, fmt.Errorf("%w: max displacement must be positive, got %g", dynamo.ErrInvalidConfig, cfg.MaxDisp)
	}
	return &MonteCarlo{
		box:     b,
		engine:  eng,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		beta:    1 / cfg.Temperature,
		maxDisp: cfg.MaxDisp,
	}, nil
}

func (mc *MonteCarlo) Method() string   { return MethodMonteCarlo }
func (mc *MonteCarlo) Box() *box.Box    { return mc.box }
func (mc *MonteCarlo) MaxDisp() float64 { return mc.maxDisp }

func (mc *MonteCarlo) Totals() (float64, float64) { return mc.energy, mc.virial }

func (mc *MonteCarlo) Acceptance() (int, int) { return mc.accepted, mc.attempted }

func (mc *MonteCarlo) Init() error {
	if mc.box.NumParticles() == 0 {
		return dynamo.ErrEmptyBox
	}
	pot := mc.engine.Potential()
	mc.energy, mc.virial = mc.engine.TotalPairEnergyAndVirial(mc.box, false)
	mc.tail = pot.TailCorrection(mc.box)
	mc.pressureTail = pot.PressureCorrection(mc.box)
	mc.accepted, mc.attempted = 0, 0
	return nil
}

// Step attempts one random displacement of one random particle.
func (mc *MonteCarlo) Step(step int) error {
	b := mc.box
	i := mc.rng.Intn(b.NumParticles())
	disp := dynamo.Vec3{
		(2*mc.rng.Float64() - 1) * mc.maxDisp,
		(2*mc.rng.Float64() - 1) * mc.maxDisp,
		(2*mc.rng.Float64() - 1) * mc.maxDisp,
	}

	oldEnergy, oldVirial := mc.engine.MolecularEnergyAndVirial(i, b, false)
	oldPosition := b.Coordinates[i]

	b.Coordinates[i] = b.Wrap(oldPosition.Add(disp))
	newEnergy, newVirial := mc.engine.MolecularEnergyAndVirial(i, b, false)

	dE := newEnergy - oldEnergy
	mc.attempted++

	accept := dE <= 0
	if !accept {
		accept = Accept(dE, mc.beta, mc.rng.Float64())
	}

	if accept {
		mc.accepted++
		mc.energy += dE
		mc.virial += newVirial - oldVirial
	} else {
		b.Coordinates[i] = oldPosition
	}
	return nil
}

func (mc *MonteCarlo) Report(step int) Properties {
	b := mc.box
	n := float64(b.NumParticles())
	rate := 0.0
	if mc.attempted > 0 {
		rate = float64(mc.accepted) / float64(mc.attempted) * 100
	}
	pressure := (mc.virial+3*n/mc.beta)/(3*b.Volume()) + mc.pressureTail
	return Properties{
		Method:         MethodMonteCarlo,
		Step:           step,
		Energy:         (mc.energy + mc.tail) / n,
		Pressure:       pressure,
		AcceptanceRate: rate,
		MaxDisp:        mc.maxDisp,
	}
}

// Tune rescales the maximum displacement from the reported acceptance rate.
func (mc *MonteCarlo) Tune(p Properties) {
	mc.maxDisp = AdjustMaxDisp(mc.maxDisp, p.AcceptanceRate)
}

// Accept applies the Metropolis criterion to an energy change dE at inverse
// temperature beta, given a uniform draw u in [0, 1).
func Accept(dE, beta, u float64) bool {
	return u < AcceptanceProbability(dE, beta)
}

// AcceptanceProbability is min(1, exp(-beta*dE)).
func AcceptanceProbability(dE, beta float64) float64 {
	if dE <= 0 {
		return 1
	}
	return math.Exp(-beta * dE)
}

// AdjustMaxDisp shrinks maxDisp below the acceptance band, grows it above,
// and leaves it unchanged inside.
func AdjustMaxDisp(maxDisp, ratePercent float64) float64 {
	switch {
	case ratePercent < LowAcceptance:
		return maxDisp * ShrinkFactor
	case ratePercent > HighAcceptance:
		return maxDisp * GrowFactor
	}
	return maxDisp
}
