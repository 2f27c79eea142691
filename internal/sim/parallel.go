package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DriverFactory builds the driver for one replica. Each replica must own
// its box.
type DriverFactory func(replica int, seed int64) (Driver, error)

// ReplicaOptions returns the runner options of one replica. Replicas run
// concurrently, so observers and frame writers must not be shared between
// them.
type ReplicaOptions func(replica int) []RunnerOption

// Ensemble runs independent replicas of the same system concurrently,
// seeding replica i with seedStart+i.
type Ensemble struct {
	factory   DriverFactory
	numRuns   int
	seedStart int64
	opts      ReplicaOptions
}

func NewEnsemble(factory DriverFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) WithReplicaOptions(opts ReplicaOptions) *Ensemble {
	e.opts = opts
	return e
}

// Run steps every replica with cfg. The first failure cancels the others.
func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			d, err := e.factory(i, e.seedStart+int64(i))
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			var opts []RunnerOption
			if e.opts != nil {
				opts = e.opts(i)
			}
			res, err := NewRunner(d, opts...).Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
