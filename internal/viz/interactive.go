package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/experiment"
)

var (
	menuHeader  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8844")).Bold(true)
	menuSub     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	menuActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	menuIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	menuKeyDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable config value.
type field struct {
	name string
	step float64
	ref  func(*config.Config) *float64
}

var fields = []field{
	{"plate width mm", 5, func(c *config.Config) *float64 { return &c.Plate.Width }},
	{"plate depth mm", 5, func(c *config.Config) *float64 { return &c.Plate.Height }},
	{"plate thick mm", 1, func(c *config.Config) *float64 { return &c.Plate.Thickness }},
	{"plate k W/mK", 10, func(c *config.Config) *float64 { return &c.Plate.Conductivity }},
	{"heater width mm", 5, func(c *config.Config) *float64 { return &c.Heater.Width }},
	{"heater depth mm", 5, func(c *config.Config) *float64 { return &c.Heater.Height }},
	{"power W/cm²", 0.05, func(c *config.Config) *float64 { return &c.Heater.PowerDensity }},
	{"target °C", 1, func(c *config.Config) *float64 { return &c.Control.Target }},
	{"ambient °C", 1, func(c *config.Config) *float64 { return &c.Environment.Ambient }},
	{"conv top", 1, func(c *config.Config) *float64 { return &c.Environment.ConvectionTop }},
	{"conv bottom", 1, func(c *config.Config) *float64 { return &c.Environment.ConvectionBottom }},
}

// menu picks a preset, lets the user adjust it and starts the live view.
type menu struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

func NewInteractiveApp() *menu {
	return &menu{state: stateMenu, presets: config.ListPresets()}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.state = stateConfig
			return m, nil
		}
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(k)
		case stateConfig:
			return m.configKey(k)
		}
	}
	return m, nil
}

func (m menu) menuKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ", "space":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m menu) configKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				*fields[m.fieldCursor].ref(m.cfg) = v
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += s
				}
			}
		}
		return m, nil
	}

	f := fields[m.fieldCursor]
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ", "space":
		m.editing, m.editBuf = true, strconv.FormatFloat(*f.ref(m.cfg), 'f', -1, 64)
	case "left", "h":
		*f.ref(m.cfg) -= f.step
	case "right", "l":
		*f.ref(m.cfg) += f.step
	case "m":
		m.cfg.Sticker.Enabled = !m.cfg.Sticker.Enabled
	case "p":
		if m.cfg.Control.Probe == "plate" {
			m.cfg.Control.Probe = "heater"
		} else {
			m.cfg.Control.Probe = "plate"
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (menu, tea.Cmd) {
	cfg := m.cfg.Clone()
	live, err := NewModel(func() (*experiment.Experiment, error) { return experiment.New(cfg) })
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state, m.err = live, stateSim, nil
	return m, m.liveModel.Init()
}

func (m menu) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m menu) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuHeader.Render("BEDSIM") + "\n    " + menuSub.Render("heated bed thermal simulator") + "\n    " + menuSub.Render("────────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuCursor.Render("▸"), menuActive.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", menuIdle.Render(name)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m menu) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuHeader.Render(strings.ToUpper(m.cfg.Name)) + "\n")
	b.WriteString("    " + menuSub.Render(fmt.Sprintf("probe %s, magnetic sticker %v", m.cfg.Control.Probe, m.cfg.Sticker.Enabled)) + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%8.2f", *f.ref(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-16s", f.name)), menuValue.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", menuIdle.Render(fmt.Sprintf("%-16s", f.name)), menuIdle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + Overheat.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "m", "sticker", "p", "probe", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuKeyDesc.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
