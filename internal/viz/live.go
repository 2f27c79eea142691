package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ljsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 600
	maxStepsPerTick = 1 << 14
)

type TickMsg time.Time

// Model drives a started runner from the Bubble Tea event loop.
type Model struct {
	title        string
	runner       *sim.Runner
	cfg          sim.RunConfig
	stepsPerTick int

	running  bool
	done     bool
	err      error
	showHelp bool

	last     sim.Properties
	reports  int
	energies []float64
	rates    []float64

	canvas *Canvas
	camera *Camera
}

// NewModel starts r with cfg and returns a view over it.
func NewModel(title string, r *sim.Runner, cfg sim.RunConfig, stepsPerTick int) (Model, error) {
	if err := r.Start(cfg); err != nil {
		return Model{}, err
	}
	if stepsPerTick <= 0 {
		stepsPerTick = 1
	}
	return Model{
		title:        title,
		runner:       r,
		cfg:          cfg,
		stepsPerTick: stepsPerTick,
		running:      true,
		done:         r.Done(),
		energies:     make([]float64, 0, historyCapacity),
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		camera:       NewCamera(),
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "left", "h":
			m.camera.Rotate(0, -0.1)
		case "right", "l":
			m.camera.Rotate(0, 0.1)
		case "up", "k":
			m.camera.Rotate(-0.1, 0)
		case "down", "j":
			m.camera.Rotate(0.1, 0)
		case "z":
			m.camera.ZoomIn()
		case "Z":
			m.camera.ZoomOut()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one frame worth of steps.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick && !m.runner.Done(); i++ {
		props, reported, err := m.runner.StepOnce()
		if err != nil {
			m.err = err
			m.done = true
			return
		}
		if reported {
			m.record(props)
		}
	}
	m.done = m.runner.Done()
}

func (m *Model) record(p sim.Properties) {
	m.last = p
	m.reports++
	m.energies = appendCapped(m.energies, p.Energy)
	if p.Method == sim.MethodMonteCarlo {
		m.rates = appendCapped(m.rates, p.AcceptanceRate)
	}
}

func appendCapped(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > historyCapacity {
		values = values[1:]
	}
	return values
}

// Result returns the runner bookkeeping and any step error.
func (m Model) Result() (*sim.Result, error) {
	return m.runner.Result(), m.err
}

func (m Model) Done() bool { return m.done }

func (m Model) View() string {
	st := currentStyles()

	m.canvas.Clear()
	RenderBox(m.canvas, m.runner.Driver().Box(), m.camera)
	canvasView := lipgloss.NewStyle().Padding(1, 2).Foreground(CurrentTheme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := st.good.Render("RUNNING")
	switch {
	case m.err != nil:
		status = st.bad.Render("FAILED: " + m.err.Error())
	case m.done:
		status = st.good.Render("FINISHED")
	case !m.running:
		status = st.warn.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	res := m.runner.Result()
	fraction := 1.0
	if m.cfg.Steps > 0 {
		fraction = float64(res.StepsTaken) / float64(m.cfg.Steps)
	}
	s.WriteString(st.label.Render("Step") + st.value.Render(fmt.Sprintf("%d / %d", res.StepsTaken, m.cfg.Steps)) + "\n")
	s.WriteString(st.muted.Render(ProgressBar(fraction, 30)) + "\n\n")

	if len(m.energies) > 1 {
		chart := asciigraph.Plot(m.energies, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Energy per particle"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	if m.reports > 0 {
		p := m.last
		s.WriteString(st.label.Render("Energy") + st.value.Render(fmt.Sprintf("%.6f", p.Energy)) + "\n")
		s.WriteString(st.label.Render("Pressure") + st.value.Render(fmt.Sprintf("%.6f", p.Pressure)) + "\n")
		if p.Method == sim.MethodMonteCarlo {
			s.WriteString(st.label.Render("Acceptance") + st.value.Render(fmt.Sprintf("%.2f%%", p.AcceptanceRate)) + "\n")
			s.WriteString(st.label.Render("Max disp") + st.value.Render(fmt.Sprintf("%.6f", p.MaxDisp)) + "\n")
			s.WriteString(st.label.Render("") + st.muted.Render(Sparkline(m.rates, 30)) + "\n")
		} else {
			s.WriteString(st.label.Render("Kinetic") + st.value.Render(fmt.Sprintf("%.6f", p.Kinetic)) + "\n")
			s.WriteString(st.label.Render("Total") + st.value.Render(fmt.Sprintf("%.6f", p.Total)) + "\n")
			s.WriteString(st.label.Render("Temperature") + st.value.Render(fmt.Sprintf("%.4f", p.Temperature)) + "\n")
		}
	}
	s.WriteString(st.label.Render("Steps/frame") + st.value.Render(fmt.Sprintf("%d", m.stepsPerTick)) + "\n")

	s.WriteString(st.help.Render("SP:Pause +/-:Speed ←↑↓→:Rotate\nz/Z:Zoom T:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space   pause or resume stepping
  + / -   double or halve the steps per frame
  Arrows  rotate the box (h j k l also work)
  z / Z   zoom in / out
  t       cycle color themes
  ?       toggle this help
  q       quit and keep the partial run
`
