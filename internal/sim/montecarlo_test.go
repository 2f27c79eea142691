package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/sim"
)

var _ = Describe("Metropolis acceptance", func() {
	It("always accepts downhill and neutral moves", func() {
		Expect(sim.Accept(-1, 1, 0.999)).To(BeTrue())
		Expect(sim.Accept(0, 1, 0.999)).To(BeTrue())
		Expect(sim.AcceptanceProbability(-3, 1)).To(Equal(1.0))
		Expect(sim.AcceptanceProbability(0, 1)).To(Equal(1.0))
	})

	It("accepts uphill moves with probability exp(-beta dE)", func() {
		p := math.Exp(-1)
		Expect(sim.AcceptanceProbability(1, 1)).To(BeNumerically("~", p, 1e-15))
		Expect(sim.Accept(1, 1, p-1e-9)).To(BeTrue())
		Expect(sim.Accept(1, 1, p+1e-9)).To(BeFalse())
		Expect(sim.AcceptanceProbability(1, 2)).To(BeNumerically("~", math.Exp(-2), 1e-15))
	})

	It("rejects every uphill move as temperature goes to zero", func() {
		Expect(sim.Accept(1e-6, 1e12, 0)).To(BeFalse())
		Expect(sim.AcceptanceProbability(1e-6, 1e12)).To(Equal(0.0))
	})
})

var _ = DescribeTable("AdjustMaxDisp",
	func(rate, want float64) {
		Expect(sim.AdjustMaxDisp(1, rate)).To(BeNumerically("~", want, 1e-15))
	},
	Entry("shrinks below the band", 30.0, 0.8),
	Entry("grows above the band", 45.0, 1.2),
	Entry("keeps inside the band", 40.0, 1.0),
	Entry("keeps the lower edge", 38.0, 1.0),
	Entry("keeps the upper edge", 42.0, 1.0),
)

var _ = Describe("MonteCarlo", func() {
	It("rejects invalid configurations", func() {
		b := latticeBox(3, 0.5)
		eng := switchedEngine(1.8, 1.5)

		_, err := sim.NewMonteCarlo(b, eng, sim.MonteCarloConfig{Temperature: 0, MaxDisp: 0.1})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		_, err = sim.NewMonteCarlo(b, eng, sim.MonteCarloConfig{Temperature: 1, MaxDisp: -1})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		_, err = sim.NewMonteCarlo(nil, eng, sim.MonteCarloConfig{Temperature: 1, MaxDisp: 0.1})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("keeps running totals equal to a full recomputation", func() {
		b := latticeBox(3, 0.5)
		eng := switchedEngine(1.8, 1.5)
		mc, err := sim.NewMonteCarlo(b, eng, sim.MonteCarloConfig{Temperature: 0.9, MaxDisp: 0.2, Seed: 7})
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.NewRunner(mc).Run(ctx(), sim.RunConfig{Steps: 3000, PrintProp: 100, PrintXYZ: 1000})
		Expect(err).NotTo(HaveOccurred())

		energy, virial := eng.TotalPairEnergyAndVirial(b, false)
		Expect(res.PairEnergy).To(BeNumerically("~", energy, 1e-8))
		Expect(res.PairVirial).To(BeNumerically("~", virial, 1e-8))
		Expect(res.Attempted).To(Equal(3000))
		Expect(res.Accepted).To(BeNumerically(">", 0))
		Expect(res.Accepted).To(BeNumerically("<=", res.Attempted))
	})

	It("keeps every particle inside the primary cell", func() {
		b := latticeBox(3, 0.5)
		mc, err := sim.NewMonteCarlo(b, switchedEngine(1.8, 1.5), sim.MonteCarloConfig{Temperature: 2, MaxDisp: 0.5, Seed: 3})
		Expect(err).NotTo(HaveOccurred())
		_, err = sim.NewRunner(mc).Run(ctx(), sim.RunConfig{Steps: 2000, PrintProp: 500, PrintXYZ: 500})
		Expect(err).NotTo(HaveOccurred())

		half := b.Length / 2
		for _, r := range b.Coordinates {
			for k := 0; k < 3; k++ {
				Expect(r[k]).To(BeNumerically(">=", -half))
				Expect(r[k]).To(BeNumerically("<", half))
			}
		}
	})

	It("reports cumulative acceptance and tunes the step size", func() {
		b := latticeBox(3, 0.5)
		mc, err := sim.NewMonteCarlo(b, switchedEngine(1.8, 1.5), sim.MonteCarloConfig{Temperature: 0.9, MaxDisp: 0.1, Seed: 11})
		Expect(err).NotTo(HaveOccurred())

		rec := &sim.Recorder{}
		res, err := sim.NewRunner(mc, sim.WithObserver(rec)).Run(ctx(), sim.RunConfig{Steps: 1000, PrintProp: 100, PrintXYZ: 1000})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Reports).To(HaveLen(10))

		maxDisp := 0.1
		for _, p := range rec.Reports {
			Expect(p.Method).To(Equal(sim.MethodMonteCarlo))
			Expect(p.MaxDisp).To(BeNumerically("~", maxDisp, 1e-12))
			Expect(p.AcceptanceRate).To(BeNumerically(">=", 0))
			Expect(p.AcceptanceRate).To(BeNumerically("<=", 100))
			maxDisp = sim.AdjustMaxDisp(maxDisp, p.AcceptanceRate)
		}
		Expect(mc.MaxDisp()).To(BeNumerically("~", maxDisp, 1e-12))

		last := rec.Reports[len(rec.Reports)-1]
		Expect(last.AcceptanceRate).To(BeNumerically("~", float64(res.Accepted)/float64(res.Attempted)*100, 1e-9))
	})

	It("includes the tail correction in the reported energy", func() {
		b := latticeBox(3, 0.5)
		eng := switchedEngine(1.8, 1.5)
		mc, err := sim.NewMonteCarlo(b, eng, sim.MonteCarloConfig{Temperature: 0.9, MaxDisp: 0.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(mc.Init()).To(Succeed())

		pot := eng.Potential()
		energy, virial := mc.Totals()
		n := float64(b.NumParticles())
		p := mc.Report(0)
		Expect(p.Energy).To(BeNumerically("~", (energy+pot.TailCorrection(b))/n, 1e-12))
		wantP := (virial+3*n*0.9)/(3*b.Volume()) + pot.PressureCorrection(b)
		Expect(p.Pressure).To(BeNumerically("~", wantP, 1e-12))
	})
})
