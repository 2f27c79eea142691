package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ljsim/internal/dynamo"
)

var (
	ErrNoFrames = errors.New("analysis: no frames")
	ErrRange    = errors.New("analysis: invalid histogram range")
)

type RDFResult struct {
	// R holds the bin centres.
	R []float64
	G []float64
	// Coordination is the mean number of neighbours within the outer edge
	// of each bin.
	Coordination []float64
}

// RDF histograms minimum-image pair distances over all frames and
// normalises by the ideal-gas shell population. rMax is clamped to half
// the box edge. Frames are processed concurrently; every frame must hold
// the same number of particles.
func RDF(ctx context.Context, frames [][]dynamo.Vec3, length float64, bins int, rMax float64) (*RDFResult, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if bins <= 0 || !(rMax > 0) || !(length > 0) {
		return nil, fmt.Errorf("%w: bins %d, rMax %g, length %g", ErrRange, bins, rMax, length)
	}
	n := len(frames[0])
	for i, f := range frames {
		if len(f) != n {
			return nil, fmt.Errorf("%w: frame %d has %d particles, want %d", ErrRange, i, len(f), n)
		}
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least two particles", ErrRange)
	}
	rMax = math.Min(rMax, length/2)
	dr := rMax / float64(bins)

	partial := make([][]float64, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partial[i] = histogram(frame, length, bins, dr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hist := make([]float64, bins)
	for _, h := range partial {
		floats.Add(hist, h)
	}

	res := &RDFResult{
		R:            make([]float64, bins),
		G:            make([]float64, bins),
		Coordination: make([]float64, bins),
	}
	rho := float64(n) / (length * length * length)
	norm := float64(len(frames)) * float64(n)
	cumulative := 0.0
	for k := range hist {
		lo, hi := float64(k)*dr, float64(k+1)*dr
		shell := 4.0 / 3.0 * math.Pi * (hi*hi*hi - lo*lo*lo)
		res.R[k] = (float64(k) + 0.5) * dr
		res.G[k] = hist[k] / (norm * rho * shell)
		cumulative += hist[k]
		res.Coordination[k] = cumulative / norm
	}
	return res, nil
}

// histogram counts every unordered pair twice so that bin totals are per
// particle after dividing by N.
func histogram(frame []dynamo.Vec3, length float64, bins int, dr float64) []float64 {
	h := make([]float64, bins)
	rMax2 := float64(bins) * dr
	rMax2 *= rMax2
	for i := 0; i < len(frame)-1; i++ {
		for j := i + 1; j < len(frame); j++ {
			d := dynamo.WrapVec(frame[i].Sub(frame[j]), length)
			r2 := d.Norm2()
			if r2 >= rMax2 {
				continue
			}
			k := int(math.Sqrt(r2) / dr)
			if k >= bins {
				continue
			}
			h[k] += 2
		}
	}
	return h
}
