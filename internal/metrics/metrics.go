// Package metrics accumulates running statistics over property reports.
package metrics

import "github.com/san-kum/ljsim/internal/sim"

type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Summary maps metric names to their current values.
func Summary(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
