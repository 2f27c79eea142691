package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/logging"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/sim"
	"github.com/san-kum/ljsim/internal/storage"
	"github.com/san-kum/ljsim/internal/trajectory"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Config holds a partial
// configuration decoded over the preset (or the scenario base). With
// Continue set the step starts from the final box of the previous step.
type ScenarioStep struct {
	Name     string    `yaml:"name"`
	Method   string    `yaml:"method"`
	Preset   string    `yaml:"preset"`
	Config   yaml.Node `yaml:"config"`
	Continue bool      `yaml:"continue"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name    string
	RunID   string
	Config  *config.Config
	Result  *sim.Result
	Metrics map[string]float64
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// StepConfig resolves the configuration of a step on top of base.
func StepConfig(step ScenarioStep, base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if step.Preset != "" {
		method := step.Method
		if method == "" {
			method = cfg.Method
		}
		p := config.GetPreset(method, step.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", step.Preset, config.ListPresets(method))
		}
		cfg = p
	}
	if step.Method != "" {
		cfg.Method = step.Method
	}
	if !step.Config.IsZero() {
		if err := step.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	return cfg, nil
}

// Runner executes scenarios and sweeps. A nil Store skips persistence.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}

func (r *Runner) registry() *experiment.Registry {
	if r.Registry == nil {
		return experiment.NewRegistry()
	}
	return r.Registry
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the results gathered so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario, base *config.Config) ([]StepResult, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	var last *box.Box
	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		r.logger().Info("scenario step", "step", fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)), "name", name)

		cfg, err := StepConfig(step, base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		var start *box.Box
		if step.Continue {
			if last == nil {
				return results, fmt.Errorf("step %d: nothing to continue from", i+1)
			}
			start = last
		}

		res, final, err := r.runOne(ctx, cfg, start)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Name = name
		results = append(results, res)
		last = final
	}
	return results, nil
}

// runOne runs a single configuration and returns its final box.
func (r *Runner) runOne(ctx context.Context, cfg *config.Config, start *box.Box) (StepResult, *box.Box, error) {
	exp := experiment.New(cfg).WithRegistry(r.registry())
	if start != nil {
		exp.WithStartBox(start)
	}

	opts := []sim.RunnerOption{sim.WithLogger(r.logger())}
	var runID string
	if r.Store != nil {
		if err := r.Store.Init(); err != nil {
			return StepResult{}, nil, err
		}
		id, err := r.Store.Create(cfg.Method)
		if err != nil {
			return StepResult{}, nil, err
		}
		xyz, err := os.Create(r.Store.TrajectoryPath(id))
		if err != nil {
			return StepResult{}, nil, err
		}
		defer xyz.Close()
		runID = id
		opts = append(opts, sim.WithTrajectory(trajectory.NewWriter(xyz)))
	}

	if err := exp.Setup(opts...); err != nil {
		return StepResult{}, nil, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return StepResult{}, nil, err
	}

	summary := metrics.Summary(exp.Metrics()...)
	if r.Store != nil {
		if err := r.Store.Save(runID, cfg, exp.Box().NumParticles(), exp.Box().Length, result, summary); err != nil {
			return StepResult{}, nil, err
		}
	}
	return StepResult{RunID: runID, Config: cfg, Result: result, Metrics: summary}, exp.Box(), nil
}
