package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/ljsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 2)
	svg := CanvasToSVG(c, 2)

	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Error("unexpected svg size")
	}
	if !strings.Contains(svg, `cx="7.0" cy="5.0"`) {
		t.Errorf("dot (3, 2) misplaced in %s", svg)
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, []float64{1}, 100, 50, "#fff") != "" {
		t.Error("single point should give empty output")
	}
	if SeriesToSVG([]float64{1, 2}, []float64{1}, 100, 50, "#fff") != "" {
		t.Error("mismatched lengths should give empty output")
	}

	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 120, 60, "#ff00ff")
	if !strings.Contains(svg, `stroke="#ff00ff"`) {
		t.Error("missing stroke color")
	}
	if !strings.Contains(svg, "M10.0,55.0 L60.0,5.0 L110.0,55.0") {
		t.Errorf("unexpected path in %s", svg)
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, ""); err == nil {
		t.Error("expected error for empty svg")
	}
	if err := WriteSVG(&buf, "<svg/>"); err != nil || buf.String() != "<svg/>" {
		t.Errorf("unexpected write: %v %q", err, buf.String())
	}
}
