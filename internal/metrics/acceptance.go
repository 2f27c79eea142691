package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ljsim/internal/sim"
)

// AcceptanceTrace records the acceptance rate and maximum displacement of
// every Monte Carlo report. Value is the latest acceptance rate.
type AcceptanceTrace struct {
	rates    []float64
	maxDisps []float64
}

func NewAcceptanceTrace() *AcceptanceTrace { return &AcceptanceTrace{} }

func (a *AcceptanceTrace) Name() string { return "acceptance_rate" }

func (a *AcceptanceTrace) Observe(p sim.Properties) {
	if p.Method != sim.MethodMonteCarlo {
		return
	}
	a.rates = append(a.rates, p.AcceptanceRate)
	a.maxDisps = append(a.maxDisps, p.MaxDisp)
}

func (a *AcceptanceTrace) Value() float64 {
	if len(a.rates) == 0 {
		return 0
	}
	return a.rates[len(a.rates)-1]
}

// InBand returns the fraction of reports whose rate lies in [low, high].
func (a *AcceptanceTrace) InBand(low, high float64) float64 {
	if len(a.rates) == 0 {
		return 0
	}
	n := 0
	for _, r := range a.rates {
		if r >= low && r <= high {
			n++
		}
	}
	return float64(n) / float64(len(a.rates))
}

// MaxDispRange returns the smallest and largest displacement seen.
func (a *AcceptanceTrace) MaxDispRange() (lo, hi float64) {
	if len(a.maxDisps) == 0 {
		return 0, 0
	}
	return floats.Min(a.maxDisps), floats.Max(a.maxDisps)
}

func (a *AcceptanceTrace) Rates() []float64 { return a.rates }

func (a *AcceptanceTrace) Reset() {
	a.rates = a.rates[:0]
	a.maxDisps = a.maxDisps[:0]
}
