package engine

import (
	"math"
	"runtime"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/potential"
)

// DefaultParallelThreshold is the particle count from which the full-system
// sum is split across workers.
const DefaultParallelThreshold = 256

type Engine struct {
	pot       potential.Potential
	workers   int
	threshold int
}

type Option func(*Engine)

// WithWorkers sets the number of goroutines used for the full-system sum.
// 1 forces the serial path; n <= 0 selects runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		e.workers = n
	}
}

// WithParallelThreshold sets the minimum particle count for the worker split.
func WithParallelThreshold(n int) Option {
	return func(e *Engine) { e.threshold = n }
}

func New(pot potential.Potential, opts ...Option) *Engine {
	e := &Engine{
		pot:       pot,
		workers:   runtime.NumCPU(),
		threshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Potential() potential.Potential { return e.pot }

// pairTerms returns the (switched) energy and virial of one pair.
func (e *Engine) pairTerms(r2 float64) (u, w float64) {
	u = e.pot.Energy(r2)
	w = e.pot.Virial(r2)
	if e.pot.HasSwitch() {
		s := e.pot.Switch(r2)
		ds := e.pot.SwitchDerivative(r2)
		w = s*w - math.Sqrt(r2)*u*ds
		u = s * u
	}
	return u, w
}

// MolecularEnergyAndVirial returns the interaction energy and virial of
// particle i with every other particle. With populateForces the pair forces
// are added to b.Forces[i]; no other entry is touched.
func (e *Engine) MolecularEnergyAndVirial(i int, b *box.Box, populateForces bool) (float64, float64) {
	coords := b.Coordinates
	ri := coords[i]
	cutoff2 := e.pot.Cutoff2()

	var ePair, wPair float64
	var fi dynamo.Vec3
	for j := range coords {
		if j == i {
			continue
		}
		rij := b.MinimumImage(ri, coords[j])
		r2 := rij.Norm2()
		if r2 >= cutoff2 {
			continue
		}
		u, w := e.pairTerms(r2)
		ePair += u
		wPair += w
		if populateForces {
			fi = fi.Add(rij.Scale(w / r2))
		}
	}
	if populateForces {
		b.Forces[i] = b.Forces[i].Add(fi)
	}
	return ePair, wPair
}

// TotalPairEnergyAndVirial returns the total pair energy and virial, each
// unordered pair counted once. With populateForces the force array is
// zeroed and refilled.
func (e *Engine) TotalPairEnergyAndVirial(b *box.Box, populateForces bool) (float64, float64) {
	n := b.NumParticles()
	if populateForces {
		if len(b.Forces) != n {
			b.Forces = make([]dynamo.Vec3, n)
		}
		dynamo.Zero(b.Forces)
	}
	if n == 0 {
		return 0, 0
	}
	if e.workers > 1 && n >= e.threshold {
		return e.totalParallel(b, populateForces)
	}
	return e.totalSerial(b, populateForces)
}

// totalSerial visits each pair once and applies equal and opposite forces.
func (e *Engine) totalSerial(b *box.Box, populateForces bool) (float64, float64) {
	coords := b.Coordinates
	forces := b.Forces
	cutoff2 := e.pot.Cutoff2()
	n := len(coords)

	var ePair, wPair float64
	for i := 0; i < n; i++ {
		ri := coords[i]
		for j := i + 1; j < n; j++ {
			rij := b.MinimumImage(ri, coords[j])
			r2 := rij.Norm2()
			if r2 >= cutoff2 {
				continue
			}
			u, w := e.pairTerms(r2)
			ePair += u
			wPair += w
			if populateForces {
				f := rij.Scale(w / r2)
				forces[i] = forces[i].Add(f)
				forces[j] = forces[j].Sub(f)
			}
		}
	}
	return ePair, wPair
}

// totalParallel splits rows across workers. Each worker owns its rows'
// force entries and visits full rows, so every pair is seen twice and the
// totals are halved. Partial sums are reduced in worker order.
func (e *Engine) totalParallel(b *box.Box, populateForces bool) (float64, float64) {
	n := b.NumParticles()
	workers := dynamo.Workers(n, e.workers, 16)
	partialE := make([]float64, workers)
	partialW := make([]float64, workers)

	dynamo.ParallelFor(n, e.workers, 16, func(worker, start, end int) {
		var eSum, wSum float64
		for i := start; i < end; i++ {
			ei, wi := e.MolecularEnergyAndVirial(i, b, populateForces)
			eSum += ei
			wSum += wi
		}
		partialE[worker] = eSum
		partialW[worker] = wSum
	})

	var ePair, wPair float64
	for w := 0; w < workers; w++ {
		ePair += partialE[w]
		wPair += partialW[w]
	}
	return ePair / 2, wPair / 2
}
