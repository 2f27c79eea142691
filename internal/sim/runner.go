package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/logging"
)

// Runner steps a driver a fixed number of times, emitting property reports
// and trajectory frames at the configured intervals.
type Runner struct {
	driver     Driver
	observers  []Observer
	trajectory FrameWriter
	logger     *log.Logger

	cfg     RunConfig
	initial Properties
	step    int
	started bool
	result  *Result
}

type RunnerOption func(*Runner)

func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

func WithTrajectory(w FrameWriter) RunnerOption {
	return func(r *Runner) { r.trajectory = w }
}

func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(d Driver, opts ...RunnerOption) *Runner {
	r := &Runner{driver: d, logger: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Driver() Driver { return r.driver }

func (r *Runner) validateConfig(cfg RunConfig) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}
	if cfg.PrintProp <= 0 {
		return fmt.Errorf("%w: print_prop must be positive, got %d", dynamo.ErrInvalidConfig, cfg.PrintProp)
	}
	if cfg.PrintXYZ <= 0 {
		return fmt.Errorf("%w: print_xyz must be positive, got %d", dynamo.ErrInvalidConfig, cfg.PrintXYZ)
	}
	return nil
}

// Start validates cfg, initializes the driver and writes the initial frame.
func (r *Runner) Start(cfg RunConfig) error {
	if err := r.validateConfig(cfg); err != nil {
		return err
	}
	if err := r.driver.Init(); err != nil {
		return err
	}
	if err := r.checkTotals(0); err != nil {
		return err
	}

	r.cfg = cfg
	r.step = 0
	r.started = true
	r.result = &Result{
		Method:  r.driver.Method(),
		Reports: make([]Properties, 0, cfg.Steps/cfg.PrintProp),
	}

	r.initial = r.driver.Report(0)
	for _, o := range r.observers {
		if b, ok := o.(Baseliner); ok {
			b.Baseline(r.initial)
		}
	}

	energy, _ := r.driver.Totals()
	r.logger.Info("run started",
		"method", r.driver.Method(),
		"particles", r.driver.Box().NumParticles(),
		"steps", cfg.Steps,
		"pair_energy", energy)

	return r.writeFrame()
}

// Done reports whether all configured steps have been taken.
func (r *Runner) Done() bool {
	return !r.started || r.step >= r.cfg.Steps
}

// StepOnce advances the driver by one step. The returned flag is true when
// the step produced a property report.
func (r *Runner) StepOnce() (Properties, bool, error) {
	if !r.started {
		return Properties{}, false, fmt.Errorf("%w: runner not started", dynamo.ErrInvalidConfig)
	}
	if r.Done() {
		return Properties{}, false, nil
	}

	step := r.step + 1
	if err := r.driver.Step(step); err != nil {
		return Properties{}, false, &dynamo.SimulationError{Step: step, Wrapped: err}
	}
	if err := r.checkTotals(step); err != nil {
		return Properties{}, false, err
	}
	r.step = step
	r.result.StepsTaken = step

	var (
		props    Properties
		reported bool
	)
	if step%r.cfg.PrintProp == 0 {
		props = r.driver.Report(step)
		reported = true
		r.result.Reports = append(r.result.Reports, props)
		if props.Method == MethodMolecularDynamics {
			r.result.EnergyDrift = math.Max(r.result.EnergyDrift, RelativeDrift(props.Total, r.initial.Total))
		}
		for _, o := range r.observers {
			o.Observe(props)
		}
		if t, ok := r.driver.(Tuner); ok {
			t.Tune(props)
		}
		r.logger.Debug("report", "step", step, "energy", props.Energy, "pressure", props.Pressure)
	}
	if step%r.cfg.PrintXYZ == 0 {
		if err := r.writeFrame(); err != nil {
			return props, reported, &dynamo.SimulationError{Step: step, Wrapped: err}
		}
	}
	return props, reported, nil
}

// Result returns the bookkeeping of the run so far.
func (r *Runner) Result() *Result {
	if r.result == nil {
		return nil
	}
	r.result.PairEnergy, r.result.PairVirial = r.driver.Totals()
	if a, ok := r.driver.(Acceptor); ok {
		r.result.Accepted, r.result.Attempted = a.Acceptance()
	}
	return r.result
}

// Run executes cfg.Steps steps. On cancellation it returns the partial
// result together with the context error.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := r.Start(cfg); err != nil {
		return nil, err
	}

	for !r.Done() {
		select {
		case <-ctx.Done():
			r.logger.Warn("run canceled", "step", r.step)
			return r.Result(), ctx.Err()
		default:
		}

		if _, _, err := r.StepOnce(); err != nil {
			r.logger.Error("run failed", "err", err)
			return r.Result(), err
		}
	}

	res := r.Result()
	r.logger.Info("run finished", "steps", res.StepsTaken, "pair_energy", res.PairEnergy)
	return res, nil
}

func (r *Runner) checkTotals(step int) error {
	energy, virial := r.driver.Totals()
	if math.IsNaN(energy) || math.IsInf(energy, 0) || math.IsNaN(virial) || math.IsInf(virial, 0) {
		return &dynamo.SimulationError{Step: step, Wrapped: dynamo.ErrOverlap}
	}
	return nil
}

func (r *Runner) writeFrame() error {
	if r.trajectory == nil {
		return nil
	}
	return r.trajectory.WriteFrame(r.driver.Box())
}

// RelativeDrift is |value-reference|/|reference|, or |value| when the
// reference is zero.
func RelativeDrift(value, reference float64) float64 {
	if reference == 0 {
		return math.Abs(value)
	}
	return math.Abs(value-reference) / math.Abs(reference)
}
