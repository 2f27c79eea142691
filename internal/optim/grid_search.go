package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/metrics"
)

var ErrEmptyGrid = errors.New("optim: empty grid")

// Objective scores a run from its metric summary. Lower is better.
type Objective func(summary map[string]float64) float64

// Target scores a run by the distance of one metric from a target value.
// Runs without the metric score +Inf.
func Target(metric string, target float64) Objective {
	return func(summary map[string]float64) float64 {
		v, ok := summary[metric]
		if !ok {
			return math.Inf(1)
		}
		return math.Abs(v - target)
	}
}

// Builder creates a ready-to-run experiment for one grid point.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// ConfigBuilder clones base and applies the grid point with config.SetParam.
func ConfigBuilder(base *config.Config) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 {
		return nil, ErrEmptyGrid
	}
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", ErrEmptyGrid, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Score  float64
}

// Search runs every grid point and returns the best one along with all
// evaluated points in grid order.
func (g *GridSearch) Search(ctx context.Context, build Builder, objective Objective) (Point, []Point, error) {
	best := Point{Score: math.Inf(1)}
	points := make([]Point, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		exp, err := build(params)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}
		if _, err := exp.Run(ctx); err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		p := Point{Params: params, Score: objective(metrics.Summary(exp.Metrics()...))}
		points = append(points, p)
		if p.Score < best.Score {
			best = p
		}
		return nil
	})
	return best, points, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

// ParseGrid parses "name=v1,v2,..." entries into parameter names and ranges.
func ParseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2", entry)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", entry, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

// ParseTarget parses "metric=value".
func ParseTarget(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("target %q: want metric=value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("target %q: %w", s, err)
	}
	return strings.TrimSpace(name), v, nil
}
