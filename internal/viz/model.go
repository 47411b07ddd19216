package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

const (
	mapRows     = 25
	mapCols     = 40
	chartPoints = 120
)

// Time steps offered by +/-, in seconds.
var timeSteps = []float64{1, 10, 30, 60, 120, 300, 600, 900, 1800, 3600}

type layer int

const (
	layerPressure layer = iota
	layerTemperature
	layerWindU
	layerWindV
	layerVectors
	numLayers
)

func (l layer) String() string {
	if l == layerVectors {
		return "wind vectors"
	}
	return dynamo.Variable(l).String()
}

type frameMsg time.Time

// frameQueue is shared by all copies of a Model so RequestFrame works on the
// value-typed Bubble Tea model.
type frameQueue struct {
	pending []func()
}

// Model is the Bubble Tea program for a live run.
type Model struct {
	ctrl     *sim.Controller
	frames   *frameQueue
	detach   func()
	interval time.Duration
	layer    layer
	theme    int
	styles   styles
	showHelp bool

	// err is the last failed command, shown in the panel until the next
	// successful one.
	err error
}

// NewModel attaches ctrl to the model's frame clock. fps sets the frame rate;
// the controller only steps while started.
func NewModel(ctrl *sim.Controller, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	m := Model{
		ctrl:     ctrl,
		frames:   &frameQueue{},
		interval: time.Second / time.Duration(fps),
		styles:   newStyles(Themes[0]),
	}
	m.detach = ctrl.Attach(m)
	return m
}

// RequestFrame queues fn for the next frame.
func (m Model) RequestFrame(fn func()) {
	m.frames.pending = append(m.frames.pending, fn)
}

func (m Model) runFrame() {
	batch := m.frames.pending
	m.frames.pending = nil
	for _, fn := range batch {
		fn()
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.detach()
			return m, tea.Quit
		case " ":
			if m.ctrl.Running() {
				m.ctrl.Stop()
			} else {
				m.ctrl.Start()
			}
		case "r":
			m.err = m.ctrl.Reset()
		case "+", "=":
			m.ctrl.SetTimeStep(nextTimeStep(m.ctrl.TimeStep(), 1))
		case "-", "_":
			m.ctrl.SetTimeStep(nextTimeStep(m.ctrl.TimeStep(), -1))
		case "tab":
			m.layer = (m.layer + 1) % numLayers
		case "shift+tab":
			m.layer = (m.layer + numLayers - 1) % numLayers
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case frameMsg:
		m.runFrame()
		return m, m.tick()
	}
	return m, nil
}

// nextTimeStep moves dt one entry along timeSteps in direction dir, staying
// within the configurable range.
func nextTimeStep(dt float64, dir int) float64 {
	k := sort.SearchFloat64s(timeSteps, dt)
	switch {
	case dir > 0 && k < len(timeSteps) && timeSteps[k] == dt:
		k++
	case dir < 0:
		k--
	}
	k = max(0, min(len(timeSteps)-1, k))
	return max(config.MinTimeStep, min(config.MaxTimeStep, timeSteps[k]))
}

func (m Model) View() string {
	snap := m.ctrl.Snapshot()

	var field string
	if m.layer == layerVectors {
		field = WindVectors(snap.State, mapCols*2, mapRows)
	} else {
		v := dynamo.Variable(m.layer)
		field = Heatmap(snap.State.Field(v), ScaleFor(v), mapRows, mapCols)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.styles.header.Render(strings.ToUpper(m.layer.String())), field)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, m.styles.panel.Render(m.panel(snap)))
	if m.showHelp {
		return helpText + "\n\n" + body
	}
	return body
}

func (m Model) panel(snap sim.Snapshot) string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render("NWP SIMULATION") + "\n")
	switch {
	case m.err != nil:
		s.WriteString(st.fault.Render("RESET FAILED") + "\n" + st.value.Render(m.err.Error()) + "\n\n")
	case m.ctrl.Fault() != nil:
		s.WriteString(st.fault.Render("FAULT") + "\n" + st.value.Render(m.ctrl.Fault().Error()) + "\n\n")
	case snap.Phase == sim.Running:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render(strings.ToUpper(snap.Phase.String())) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", snap.Step))
	row("Time", fmt.Sprintf("%.2f h", snap.Time/3600))
	row("Time step", fmt.Sprintf("%g s", snap.TimeStep))
	row("Grid", fmt.Sprintf("%d×%d @ %g km", snap.Grid.NX, snap.Grid.NY, snap.Grid.DX/1000))
	row("Probe", snap.Probe.String())
	i, j := snap.Probe.I, snap.Probe.J
	row("Pressure", fmt.Sprintf("%.1f Pa", snap.State.Pressure.At(i, j)))
	row("Temperature", fmt.Sprintf("%.2f K", snap.State.Temperature.At(i, j)))

	values := m.ctrl.MetricValues()
	if len(values) > 0 {
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		s.WriteString("\n")
		for _, name := range names {
			row(name, fmt.Sprintf("%.4g", values[name]))
		}
	}

	h := m.ctrl.History()
	if h.Len() > 1 {
		s.WriteString("\n" + st.graph.Render(chart(h.Pressure, "pressure (Pa)")) + "\n")
		s.WriteString("\n" + st.graph.Render(chart(h.Temperature, "temperature (K)")) + "\n")
	}

	s.WriteString(st.help.Render("SP:Start/Stop R:Reset +/-:Δt\nTab:Field T:Theme ?:Help Q:Quit"))
	return s.String()
}

func chart(samples []sim.HistorySample, caption string) string {
	if len(samples) > chartPoints {
		samples = samples[len(samples)-chartPoints:]
	}
	data := make([]float64, len(samples))
	for k, s := range samples {
		data[k] = s.Value
	}
	return asciigraph.Plot(data, asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption(caption))
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Start/Stop simulation    ║
║  R        - Reset to initial state   ║
║  + / -    - Longer/shorter time step ║
║  Tab      - Cycle displayed field    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
