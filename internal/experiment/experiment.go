package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/engine"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/potential"
	"github.com/san-kum/ljsim/internal/sim"
	"github.com/san-kum/ljsim/internal/trajectory"
)

// Experiment wires a configuration into a box, a potential, an engine, a
// driver and a runner.
type Experiment struct {
	cfg      *config.Config
	registry *Registry

	start   *box.Box
	box     *box.Box
	engine  *engine.Engine
	runner  *sim.Runner
	metrics []metrics.Metric
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: NewRegistry()}
}

// WithRegistry replaces the driver registry used by Setup.
func (e *Experiment) WithRegistry(r *Registry) *Experiment {
	e.registry = r
	return e
}

// WithStartBox starts the run from a copy of b's cell and coordinates
// instead of the configured placement. The configured mass is kept.
func (e *Experiment) WithStartBox(b *box.Box) *Experiment {
	e.start = b
	return e
}

// Setup validates the configuration and builds every component. Runner
// options are passed through to the runner.
func (e *Experiment) Setup(opts ...sim.RunnerOption) error {
	method, err := ParseMethod(e.cfg.Method)
	if err != nil {
		return err
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	var b *box.Box
	if e.start != nil {
		b, err = box.New(e.start.Length, e.cfg.Box.Mass, 0)
		if err != nil {
			return err
		}
		b.SetCoordinates(e.start.Coordinates)
	} else {
		b, err = BuildBox(e.cfg)
		if err != nil {
			return err
		}
	}
	pot, err := BuildPotential(e.cfg)
	if err != nil {
		return err
	}
	eng := engine.New(pot, engine.WithWorkers(e.cfg.Workers))

	driver, err := e.registry.Driver(method, b, eng, e.cfg)
	if err != nil {
		return err
	}

	e.metrics = e.registry.DefaultMetrics(method)
	for _, m := range e.metrics {
		opts = append(opts, sim.WithObserver(m))
	}

	e.box = b
	e.engine = eng
	e.runner = sim.NewRunner(driver, opts...)
	return nil
}

func (e *Experiment) RunConfig() sim.RunConfig {
	return sim.RunConfig{
		Steps:     e.cfg.Steps,
		PrintProp: e.cfg.PrintProp,
		PrintXYZ:  e.cfg.PrintXYZ,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, e.RunConfig())
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Box() *box.Box             { return e.box }
func (e *Experiment) Engine() *engine.Engine    { return e.engine }
func (e *Experiment) Runner() *sim.Runner       { return e.runner }
func (e *Experiment) Metrics() []metrics.Metric { return e.metrics }

// BuildBox creates the cell and places the particles.
func BuildBox(cfg *config.Config) (*box.Box, error) {
	if cfg.Box.Placement == config.PlacementFile {
		return boxFromFile(cfg)
	}

	b, err := box.New(cfg.BoxLength(), cfg.Box.Mass, cfg.Box.NumParticles)
	if err != nil {
		return nil, err
	}
	switch cfg.Box.Placement {
	case config.PlacementRandom:
		b.PlaceRandom(rand.New(rand.NewSource(cfg.Seed)))
	default:
		b.PlaceLattice()
	}
	return b, nil
}

func boxFromFile(cfg *config.Config) (*box.Box, error) {
	f, err := os.Open(cfg.Box.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	coords, err := trajectory.ReadConfiguration(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.Box.File, err)
	}

	length := cfg.Box.Length
	if length <= 0 && cfg.Box.Density > 0 {
		length = box.LengthForDensity(len(coords), cfg.Box.Density)
	}
	b, err := box.New(length, cfg.Box.Mass, 0)
	if err != nil {
		return nil, err
	}
	b.SetCoordinates(coords)
	return b, nil
}

// BuildPotential creates the Lennard-Jones potential described by cfg.
func BuildPotential(cfg *config.Config) (*potential.LennardJones, error) {
	opts := []potential.Option{potential.WithParamList(cfg.Potential.Params)}
	if cfg.Potential.Switch > 0 {
		opts = append(opts, potential.WithSwitch(cfg.Potential.Switch))
	}
	return potential.NewLennardJones(cfg.Potential.Cutoff, opts...)
}

// ReplicaFactory returns a factory building independent copies of the
// system described by cfg. Each replica gets its own box, a serial engine
// and the seed handed in by the ensemble.
func ReplicaFactory(cfg *config.Config, r *Registry) (sim.DriverFactory, error) {
	method, err := ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = NewRegistry()
	}
	base := cfg.Clone()

	return func(replica int, seed int64) (sim.Driver, error) {
		c := base.Clone()
		c.Seed = seed
		b, err := BuildBox(c)
		if err != nil {
			return nil, err
		}
		pot, err := BuildPotential(c)
		if err != nil {
			return nil, err
		}
		return r.Driver(method, b, engine.New(pot, engine.WithWorkers(1)), c)
	}, nil
}
