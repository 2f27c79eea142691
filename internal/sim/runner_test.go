package sim_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/sim"
)

func ctx() context.Context { return context.Background() }

var _ = Describe("Runner", func() {
	var mc *sim.MonteCarlo

	BeforeEach(func() {
		var err error
		mc, err = sim.NewMonteCarlo(latticeBox(3, 0.5), switchedEngine(1.8, 1.5),
			sim.MonteCarloConfig{Temperature: 0.9, MaxDisp: 0.1, Seed: 1})
		Expect(err).NotTo(HaveOccurred())
	})

	It("writes the initial frame and one frame per interval", func() {
		frames := &frameCounter{}
		rec := &sim.Recorder{}
		res, err := sim.NewRunner(mc, sim.WithTrajectory(frames), sim.WithObserver(rec)).
			Run(ctx(), sim.RunConfig{Steps: 100, PrintProp: 25, PrintXYZ: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(frames.frames).To(Equal(11))
		Expect(rec.Reports).To(HaveLen(4))
		Expect(res.Reports).To(Equal(rec.Reports))
		Expect(res.StepsTaken).To(Equal(100))
		Expect(rec.Reports[0].Step).To(Equal(25))
	})

	It("runs zero steps", func() {
		frames := &frameCounter{}
		res, err := sim.NewRunner(mc, sim.WithTrajectory(frames)).
			Run(ctx(), sim.RunConfig{Steps: 0, PrintProp: 1, PrintXYZ: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(BeZero())
		Expect(res.Reports).To(BeEmpty())
		Expect(frames.frames).To(Equal(1))
	})

	DescribeTable("rejects invalid run configurations",
		func(cfg sim.RunConfig) {
			_, err := sim.NewRunner(mc).Run(ctx(), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		},
		Entry("negative steps", sim.RunConfig{Steps: -1, PrintProp: 1, PrintXYZ: 1}),
		Entry("zero print_prop", sim.RunConfig{Steps: 10, PrintProp: 0, PrintXYZ: 1}),
		Entry("zero print_xyz", sim.RunConfig{Steps: 10, PrintProp: 1, PrintXYZ: 0}),
	)

	It("fails on an empty box", func() {
		b, err := box.New(5, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		empty, err := sim.NewMonteCarlo(b, switchedEngine(1.8, 1.5), sim.MonteCarloConfig{Temperature: 1, MaxDisp: 0.1})
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.NewRunner(empty).Run(ctx(), sim.RunConfig{Steps: 10, PrintProp: 1, PrintXYZ: 1})
		Expect(err).To(MatchError(dynamo.ErrEmptyBox))
	})

	It("detects overlapping particles", func() {
		b, err := box.New(5, 1, 2)
		Expect(err).NotTo(HaveOccurred())
		overlap, err := sim.NewMonteCarlo(b, switchedEngine(1.8, 1.5), sim.MonteCarloConfig{Temperature: 1, MaxDisp: 0.1})
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.NewRunner(overlap).Run(ctx(), sim.RunConfig{Steps: 10, PrintProp: 1, PrintXYZ: 1})
		Expect(err).To(MatchError(dynamo.ErrOverlap))
		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(BeZero())
	})

	It("returns the partial result on cancellation", func() {
		c, cancel := context.WithCancel(ctx())
		cancel()
		res, err := sim.NewRunner(mc).Run(c, sim.RunConfig{Steps: 100, PrintProp: 10, PrintXYZ: 10})
		Expect(err).To(MatchError(context.Canceled))
		Expect(res).NotTo(BeNil())
		Expect(res.StepsTaken).To(BeZero())
	})

	It("wraps trajectory write failures with the step", func() {
		frames := &frameCounter{}
		r := sim.NewRunner(mc, sim.WithTrajectory(frames))
		Expect(r.Start(sim.RunConfig{Steps: 10, PrintProp: 5, PrintXYZ: 5})).To(Succeed())

		boom := errors.New("disk full")
		frames.err = boom
		for !r.Done() {
			if _, _, err := r.StepOnce(); err != nil {
				Expect(err).To(MatchError(boom))
				var simErr *dynamo.SimulationError
				Expect(errors.As(err, &simErr)).To(BeTrue())
				Expect(simErr.Step).To(Equal(5))
				return
			}
		}
		Fail("expected a write error")
	})

	It("steps one at a time", func() {
		r := sim.NewRunner(mc)
		_, _, err := r.StepOnce()
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

		Expect(r.Start(sim.RunConfig{Steps: 4, PrintProp: 2, PrintXYZ: 4})).To(Succeed())
		var reported []bool
		for !r.Done() {
			_, ok, err := r.StepOnce()
			Expect(err).NotTo(HaveOccurred())
			reported = append(reported, ok)
		}
		Expect(reported).To(Equal([]bool{false, true, false, true}))
		Expect(r.Result().StepsTaken).To(Equal(4))
	})
})

var _ = Describe("PropertyPrinter", func() {
	It("prints the Monte Carlo layout", func() {
		var buf bytes.Buffer
		p := sim.NewPropertyPrinter(&buf)
		p.Observe(sim.Properties{Method: sim.MethodMonteCarlo, Step: 1000, Energy: -5.1, Pressure: 0.25, AcceptanceRate: 41.234, MaxDisp: 0.12})
		Expect(buf.String()).To(Equal("1000 -5.100000 0.250000 41.23 0.120000\n"))
		Expect(p.Err()).NotTo(HaveOccurred())
	})

	It("prints the molecular dynamics layout", func() {
		var buf bytes.Buffer
		p := sim.NewPropertyPrinter(&buf)
		p.Observe(sim.Properties{Method: sim.MethodMolecularDynamics, Step: 10, Energy: -2.5})
		p.Observe(sim.Properties{Method: sim.MethodMolecularDynamics, Step: 20, Energy: -2.25})
		Expect(strings.Split(strings.TrimSpace(buf.String()), "\n")).To(Equal([]string{"10 -2.500000", "20 -2.250000"}))
	})
})

var _ = Describe("Ensemble", func() {
	factory := func(replica int, seed int64) (sim.Driver, error) {
		return sim.NewMonteCarlo(latticeBox(3, 0.5), switchedEngine(1.8, 1.5),
			sim.MonteCarloConfig{Temperature: 0.9, MaxDisp: 0.1, Seed: seed})
	}

	It("runs every replica to completion", func() {
		results, err := sim.NewEnsemble(factory, 3, 10).Run(ctx(), sim.RunConfig{Steps: 200, PrintProp: 50, PrintXYZ: 200})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(200))
			Expect(r.Reports).To(HaveLen(4))
		}
	})

	It("gives every replica its own observers", func() {
		recorders := make([]*sim.Recorder, 3)
		for i := range recorders {
			recorders[i] = &sim.Recorder{}
		}
		ens := sim.NewEnsemble(factory, 3, 10).WithReplicaOptions(func(replica int) []sim.RunnerOption {
			return []sim.RunnerOption{sim.WithObserver(recorders[replica])}
		})

		results, err := ens.Run(ctx(), sim.RunConfig{Steps: 200, PrintProp: 50, PrintXYZ: 200})
		Expect(err).NotTo(HaveOccurred())
		for i, rec := range recorders {
			Expect(rec.Reports).To(Equal(results[i].Reports))
		}
	})

	It("is reproducible for a fixed seed", func() {
		cfg := sim.RunConfig{Steps: 300, PrintProp: 100, PrintXYZ: 300}
		a, err := sim.NewEnsemble(factory, 2, 42).Run(ctx(), cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.NewEnsemble(factory, 2, 42).Run(ctx(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(a[1].PairEnergy).To(Equal(b[1].PairEnergy))
	})

	It("propagates factory errors", func() {
		failing := func(replica int, seed int64) (sim.Driver, error) {
			if replica == 1 {
				return nil, dynamo.ErrInvalidConfig
			}
			return factory(replica, seed)
		}
		_, err := sim.NewEnsemble(failing, 2, 0).Run(ctx(), sim.RunConfig{Steps: 10, PrintProp: 1, PrintXYZ: 1})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})
