package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/engine"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/sim"
)

// Method selects the simulation driver.
type Method string

const (
	MonteCarlo        Method = sim.MethodMonteCarlo
	MolecularDynamics Method = sim.MethodMolecularDynamics
)

var ErrUnknownMethod = errors.New("experiment: unknown method")

// ParseMethod maps a method name to its tag.
func ParseMethod(name string) (Method, error) {
	switch m := Method(name); m {
	case MonteCarlo, MolecularDynamics:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// DriverFactory builds a driver over b and eng from the run configuration.
type DriverFactory func(b *box.Box, eng *engine.Engine, cfg *config.Config) (sim.Driver, error)

type Registry struct {
	drivers map[Method]DriverFactory
}

func NewRegistry() *Registry {
	r := &Registry{drivers: make(map[Method]DriverFactory)}

	r.drivers[MonteCarlo] = func(b *box.Box, eng *engine.Engine, cfg *config.Config) (sim.Driver, error) {
		return sim.NewMonteCarlo(b, eng, sim.MonteCarloConfig{
			Temperature: cfg.Temperature,
			MaxDisp:     cfg.MaxDisp,
			Seed:        cfg.Seed,
		})
	}
	r.drivers[MolecularDynamics] = func(b *box.Box, eng *engine.Engine, cfg *config.Config) (sim.Driver, error) {
		return sim.NewMolecularDynamics(b, eng, sim.MolecularDynamicsConfig{
			Temperature:      cfg.Temperature,
			TimeStep:         cfg.TimeStep,
			ScaleFreq:        cfg.ScaleFreq,
			Seed:             cfg.Seed,
			AssignVelocities: true,
		})
	}

	return r
}

// Register adds or replaces the factory for a method.
func (r *Registry) Register(m Method, f DriverFactory) {
	r.drivers[m] = f
}

func (r *Registry) Driver(m Method, b *box.Box, eng *engine.Engine, cfg *config.Config) (sim.Driver, error) {
	fn, ok := r.drivers[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	return fn(b, eng, cfg)
}

func (r *Registry) ListMethods() []string {
	names := make([]string, 0, len(r.drivers))
	for m := range r.drivers {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the observers attached to every run of a method.
func (r *Registry) DefaultMetrics(m Method) []metrics.Metric {
	ms := []metrics.Metric{
		metrics.NewEnergyStats(),
		metrics.NewPressureStats(),
	}
	switch m {
	case MonteCarlo:
		ms = append(ms, metrics.NewAcceptanceTrace())
	case MolecularDynamics:
		ms = append(ms, metrics.NewTemperatureStats(), metrics.NewEnergyDrift())
	}
	return ms
}
