package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bedsim/internal/bed"
	"github.com/san-kum/bedsim/internal/experiment"
	"github.com/san-kum/bedsim/internal/sim"
)

const (
	historyCapacity = 900
	frameInterval   = time.Second / 10
	mapCols         = 50
	mapRows         = 12
)

var speeds = []int{1, 2, 5, 10, 20, 50}

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true).MarginBottom(1)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(52)
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Builder creates a fresh experiment; the live view calls it again on reset.
type Builder func() (*experiment.Experiment, error)

// Model is the live terminal view of a running bed simulation.
type Model struct {
	build  Builder
	exp    *experiment.Experiment
	runner *sim.Simulator
	simCfg sim.Config

	last      sim.Sample
	probeHist []float64
	wattHist  []float64

	running   bool
	speed     int
	params    map[string]float64
	paramKeys []string
	selected  int
	showHelp  bool
	profile   *Canvas
	err       error
}

// NewModel builds the first experiment. The run is unbounded; the configured
// duration is ignored.
func NewModel(build Builder) (Model, error) {
	m := Model{build: build, running: true, profile: NewCanvas(mapCols/2, 4)}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	exp, err := m.build()
	if err != nil {
		return err
	}
	m.exp = exp
	m.runner = exp.GetSimulator()
	m.simCfg = exp.SimConfig()
	m.probeHist = m.probeHist[:0]
	m.wattHist = m.wattHist[:0]
	m.last = sim.Sample{Target: m.runner.Conditions().Target, Probe: exp.Config().Environment.Ambient}

	m.params = make(map[string]float64)
	if c, ok := exp.Simulation().Controller().(sim.Configurable); ok {
		for k, v := range c.GetParams() {
			m.params[k] = v
		}
	}
	m.paramKeys = make([]string, 0, len(m.params))
	for k := range m.params {
		m.paramKeys = append(m.paramKeys, k)
	}
	sort.Strings(m.paramKeys)
	m.selected = 0
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case ".":
			if !m.running {
				m.advance(1)
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.changeSpeed(1)
		case "-", "_":
			m.changeSpeed(-1)
		case "up":
			m.changeTarget(1)
		case "down":
			m.changeTarget(-1)
		case "pgup":
			m.changeTarget(10)
		case "pgdown":
			m.changeTarget(-10)
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "k":
			m.adjustParam(1.05)
		case "j":
			m.adjustParam(0.95)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(speeds[m.speed])
		}
		return m, tick()
	}
	return m, nil
}

// advance runs n ticks of the simulation.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		s := m.runner.Step(m.simCfg)
		if !s.IsValid() {
			m.err = sim.SimError{Time: s.Time, Message: "invalid temperature", Wrapped: sim.ErrInvalidState}
			m.running = false
			return
		}
		m.last = s
		m.probeHist = appendCapped(m.probeHist, s.Probe)
		m.wattHist = appendCapped(m.wattHist, s.Wattage)
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) changeSpeed(d int) {
	m.speed = max(0, min(m.speed+d, len(speeds)-1))
}

func (m *Model) changeTarget(d float64) {
	cond := m.runner.Conditions()
	cond.Target = math.Max(cond.Target+d, 0)
	m.runner.SetConditions(cond)
	m.last.Target = cond.Target
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	c, ok := m.exp.Simulation().Controller().(sim.Configurable)
	if !ok {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if err := c.SetParam(key, val); err != nil {
		m.err = err
		return
	}
	m.params[key] = val
}

// Target returns the current setpoint.
func (m Model) Target() float64 { return m.runner.Conditions().Target }

// Time returns the simulated time.
func (m Model) Time() float64 { return m.exp.Simulation().Time() }

func (m Model) View() string {
	cfg := m.exp.Config()
	surface := m.exp.Simulation().Grid().Surface()
	lo := cfg.Environment.Ambient
	hi := math.Max(m.Target(), lo+1)
	for _, row := range surface {
		for _, t := range row {
			hi = math.Max(hi, t)
		}
	}

	var left strings.Builder
	left.WriteString(headerStyle.Render(fmt.Sprintf("BED %s  %.0fx%.0f mm", strings.ToUpper(cfg.Name), cfg.Plate.Width, cfg.Plate.Height)) + "\n")
	left.WriteString(HeatMap(surface, mapCols, mapRows, lo, hi) + "\n")
	left.WriteString(Legend(mapCols, lo, hi) + "\n")
	left.WriteString(Subtle.Render(fmt.Sprintf("%-6.1f%*.1f °C", lo, mapCols-6-3, hi)) + "\n\n")
	m.profile.Profile(Row(surface, len(surface)/2), lo, hi)
	left.WriteString(Subtle.Render("surface profile, center row") + "\n")
	left.WriteString(m.profile.String())

	var s strings.Builder
	status := StatusRunning.Render(fmt.Sprintf("RUNNING x%d", speeds[m.speed]))
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")
	s.WriteString(stat("Time", fmt.Sprintf("%.0f s", m.last.Time)))
	s.WriteString(stat("Target", fmt.Sprintf("%.1f °C", m.Target())))
	s.WriteString(stat("Probe ("+cfg.Control.Probe+")", temperature(m.last.Probe)))

	limit := m.exp.Simulation().PowerLimit(cfg.Heater.PowerDensity)
	frac := 0.0
	if limit > 0 {
		frac = m.last.Wattage / limit
	}
	s.WriteString(stat("Heater", fmt.Sprintf("%5.1f W ", m.last.Wattage)+PowerBar(frac, 12)))
	s.WriteString(stat("Heat loss", fmt.Sprintf("%.1f W", m.last.HeatLoss)))

	if len(m.last.Readouts) > 0 {
		s.WriteString("\n")
		for i, r := range m.simCfg.Readouts {
			s.WriteString(stat(r.Name, temperature(m.last.Readouts[i])))
		}
	}

	if len(m.probeHist) > 1 {
		chart := asciigraph.Plot(m.probeHist, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("probe °C"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(Sparkline(m.wattHist, 40) + Subtle.Render(" W") + "\n")
	}

	if len(m.paramKeys) > 0 {
		s.WriteString("\nCONTROLLER\n")
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-16s %.4g", k, m.params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + line + "\n")
			}
		}
	}

	if m.err != nil {
		s.WriteString("\n" + Overheat.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause .:Step R:Reset Q:Quit ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

func stat(label, value string) string {
	return MetricLabel.Render(label) + value + "\n"
}

func temperature(t float64) string {
	v := fmt.Sprintf("%.1f °C", t)
	if t > bed.OverheatThreshold {
		return Overheat.Render(v + " overheating")
	}
	return MetricValue.Render(v)
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single tick when paused  ║
║  R        - Reset bed to ambient     ║
║  Q        - Quit                     ║
║  +/-      - Simulation speed         ║
║  Up/Down  - Target ±1 °C             ║
║  PgUp/Dn  - Target ±10 °C            ║
║  Tab      - Cycle controller params  ║
║  K/J      - Param +5% / -5%          ║
║  T        - Cycle color ramps        ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunLive runs the live view until the user quits.
func RunLive(build Builder) error {
	m, err := NewModel(build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
