package sim

import (
	"fmt"
	"io"
)

// PropertyPrinter writes one line per report in the classic console
// layout: "step energy pressure acceptance maxDisp" for Monte Carlo and
// "step energy" for molecular dynamics.
type PropertyPrinter struct {
	w   io.Writer
	err error
}

func NewPropertyPrinter(w io.Writer) *PropertyPrinter {
	return &PropertyPrinter{w: w}
}

func (p *PropertyPrinter) Observe(props Properties) {
	if p.err != nil {
		return
	}
	switch props.Method {
	case MethodMonteCarlo:
		_, p.err = fmt.Fprintf(p.w, "%d %.6f %.6f %.2f %.6f\n",
			props.Step, props.Energy, props.Pressure, props.AcceptanceRate, props.MaxDisp)
	default:
		_, p.err = fmt.Fprintf(p.w, "%d %.6f\n", props.Step, props.Energy)
	}
}

// Err returns the first write error, if any.
func (p *PropertyPrinter) Err() error { return p.err }

// Recorder keeps every report it observes.
type Recorder struct {
	Reports []Properties
}

func (r *Recorder) Observe(props Properties) {
	r.Reports = append(r.Reports, props)
}
