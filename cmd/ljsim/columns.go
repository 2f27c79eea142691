package main

import (
	"sort"

	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/sim"
)

type propertyColumn struct {
	name string
	pick func(sim.Properties) float64
}

func (c propertyColumn) values(props []sim.Properties) []float64 {
	out := make([]float64, len(props))
	for i, p := range props {
		out[i] = c.pick(p)
	}
	return out
}

// propertyColumns lists the plottable report fields of a method.
func propertyColumns(method string) []propertyColumn {
	cols := []propertyColumn{
		{"energy", func(p sim.Properties) float64 { return p.Energy }},
		{"pressure", func(p sim.Properties) float64 { return p.Pressure }},
	}
	if method == sim.MethodMonteCarlo {
		return append(cols,
			propertyColumn{"acceptance_rate", func(p sim.Properties) float64 { return p.AcceptanceRate }},
			propertyColumn{"max_disp", func(p sim.Properties) float64 { return p.MaxDisp }},
		)
	}
	return append(cols,
		propertyColumn{"kinetic", func(p sim.Properties) float64 { return p.Kinetic }},
		propertyColumn{"total", func(p sim.Properties) float64 { return p.Total }},
		propertyColumn{"temperature", func(p sim.Properties) float64 { return p.Temperature }},
	)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// acceptanceTrace replays stored reports; only Monte Carlo reports count.
func acceptanceTrace(props []sim.Properties) *metrics.AcceptanceTrace {
	trace := metrics.NewAcceptanceTrace()
	for _, p := range props {
		trace.Observe(p)
	}
	return trace
}
