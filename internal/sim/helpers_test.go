package sim_test

import (
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/engine"
	"github.com/san-kum/ljsim/internal/potential"
)

// latticeBox returns n³ particles on a simple cubic lattice at density rho.
func latticeBox(n int, rho float64) *box.Box {
	count := n * n * n
	b, err := box.New(box.LengthForDensity(count, rho), 1, count)
	Expect(err).NotTo(HaveOccurred())
	b.PlaceLattice()
	return b
}

func switchedEngine(cutoff, switchR float64) *engine.Engine {
	lj, err := potential.NewLennardJones(cutoff, potential.WithSwitch(switchR))
	Expect(err).NotTo(HaveOccurred())
	return engine.New(lj, engine.WithWorkers(1))
}

type frameCounter struct {
	frames int
	err    error
}

func (f *frameCounter) WriteFrame(b *box.Box) error {
	f.frames++
	return f.err
}
