package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/sim"
)

var _ = Describe("MolecularDynamics", func() {
	newMD := func(scaleFreq int) (*sim.MolecularDynamics, error) {
		b := latticeBox(3, 0.5)
		return sim.NewMolecularDynamics(b, switchedEngine(1.8, 1.5), sim.MolecularDynamicsConfig{
			Temperature:      0.5,
			TimeStep:         0.002,
			ScaleFreq:        scaleFreq,
			Seed:             5,
			AssignVelocities: true,
		})
	}

	It("rejects invalid configurations", func() {
		b := latticeBox(3, 0.5)
		eng := switchedEngine(1.8, 1.5)
		_, err := sim.NewMolecularDynamics(b, eng, sim.MolecularDynamicsConfig{Temperature: 1, TimeStep: 0})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		_, err = sim.NewMolecularDynamics(b, eng, sim.MolecularDynamicsConfig{Temperature: -1, TimeStep: 0.001})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		_, err = sim.NewMolecularDynamics(b, eng, sim.MolecularDynamicsConfig{Temperature: 1, TimeStep: 0.001, ScaleFreq: -2})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("starts at the target temperature with zero momentum", func() {
		md, err := newMD(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(md.Init()).To(Succeed())

		Expect(md.Box().Temperature()).To(BeNumerically("~", 0.5, 1e-12))
		p := md.Box().Momentum()
		Expect(p.Norm()).To(BeNumerically("<", 1e-12))
	})

	It("conserves total energy without a thermostat", func() {
		md, err := newMD(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(md.Init()).To(Succeed())

		start := md.Report(0).Total
		maxDrift := 0.0
		for step := 1; step <= 1000; step++ {
			Expect(md.Step(step)).To(Succeed())
			maxDrift = math.Max(maxDrift, math.Abs(md.Report(step).Total-start))
		}
		Expect(maxDrift).To(BeNumerically("<", 5e-3))
	})

	It("conserves momentum", func() {
		md, err := newMD(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(md.Init()).To(Succeed())
		for step := 1; step <= 200; step++ {
			Expect(md.Step(step)).To(Succeed())
		}
		Expect(md.Box().Momentum().Norm()).To(BeNumerically("<", 1e-9))
	})

	It("rescales to the target temperature on thermostat steps", func() {
		md, err := newMD(10)
		Expect(err).NotTo(HaveOccurred())

		rec := &sim.Recorder{}
		_, err = sim.NewRunner(md, sim.WithObserver(rec)).Run(ctx(), sim.RunConfig{Steps: 100, PrintProp: 10, PrintXYZ: 100})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Reports).To(HaveLen(10))
		for _, p := range rec.Reports {
			Expect(p.Method).To(Equal(sim.MethodMolecularDynamics))
			Expect(p.Temperature).To(BeNumerically("~", 0.5, 1e-10))
			Expect(p.Total).To(BeNumerically("~", p.Energy+p.Kinetic, 1e-12))
		}
	})

	It("reports pressure from kinetic energy and virial", func() {
		b := latticeBox(3, 0.5)
		eng := switchedEngine(1.8, 1.5)
		md, err := sim.NewMolecularDynamics(b, eng, sim.MolecularDynamicsConfig{
			Temperature: 0.5, TimeStep: 0.002, AssignVelocities: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(md.Init()).To(Succeed())

		_, virial := md.Totals()
		want := (2*b.KineticEnergy()+virial)/(3*b.Volume()) + eng.Potential().PressureCorrection(b)
		Expect(md.Report(0).Pressure).To(BeNumerically("~", want, 1e-12))
	})
})

var _ = Describe("Runner energy drift", func() {
	It("tracks the largest relative drift of the total energy", func() {
		b := latticeBox(3, 0.5)
		md, err := sim.NewMolecularDynamics(b, switchedEngine(1.8, 1.5), sim.MolecularDynamicsConfig{
			Temperature: 0.5, TimeStep: 0.002, Seed: 9, AssignVelocities: true,
		})
		Expect(err).NotTo(HaveOccurred())

		rec := &sim.Recorder{}
		res, err := sim.NewRunner(md, sim.WithObserver(rec)).Run(ctx(), sim.RunConfig{Steps: 200, PrintProp: 20, PrintXYZ: 200})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.EnergyDrift).To(BeNumerically(">", 0))
		Expect(res.EnergyDrift).To(BeNumerically("<", 1e-2))
	})
})
