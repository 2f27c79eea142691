package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/metrics"
)

// ParameterSweep runs the base configuration once per value of one
// parameter (any name accepted by config.SetParam).
type ParameterSweep struct {
	Param  string
	Values []float64
	// Discard drops the leading reports of every point before averaging.
	Discard int
}

// SweepPoint holds the averaged properties at one parameter value.
type SweepPoint struct {
	Value       float64
	Energy      float64
	EnergyStd   float64
	Pressure    float64
	PressureStd float64
	Reports     int
	RunID       string
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// RunSweep executes the sweep point by point.
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config) ([]SweepPoint, error) {
	if len(sweep.Values) == 0 {
		return nil, fmt.Errorf("sweep over %q has no values", sweep.Param)
	}
	check := base.Clone()
	if err := check.SetParam(sweep.Param, sweep.Values[0]); err != nil {
		return nil, err
	}

	points := make([]SweepPoint, 0, len(sweep.Values))
	for i, v := range sweep.Values {
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.Param, v); err != nil {
			return points, err
		}

		res, _, err := r.runOne(ctx, cfg, nil)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		energy := metrics.NewEnergyStats()
		pressure := metrics.NewPressureStats()
		reports := res.Result.Reports
		if sweep.Discard > 0 && sweep.Discard < len(reports) {
			reports = reports[sweep.Discard:]
		}
		for _, p := range reports {
			energy.Observe(p)
			pressure.Observe(p)
		}

		points = append(points, SweepPoint{
			Value:       v,
			Energy:      energy.Value(),
			EnergyStd:   energy.StdDev(),
			Pressure:    pressure.Value(),
			PressureStd: pressure.StdDev(),
			Reports:     len(reports),
			RunID:       res.RunID,
		})
		r.logger().Info("sweep point", "point", fmt.Sprintf("%d/%d", i+1, len(sweep.Values)),
			sweep.Param, v, "energy", energy.Value(), "pressure", pressure.Value())
	}
	return points, nil
}
