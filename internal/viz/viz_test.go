package viz

import (
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/experiment"
)

func testBuilder() (*experiment.Experiment, error) {
	cfg := config.DefaultConfig()
	cfg.Plate.Width, cfg.Plate.Height, cfg.Plate.Thickness = 100, 100, 3
	cfg.Heater.Width, cfg.Heater.Height = 80, 80
	cfg.Simulation.Resolution = 10
	cfg.Simulation.IterationsPerTick = 5
	return experiment.New(cfg)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTickAdvances(t *testing.T) {
	m, err := NewModel(testBuilder)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	m = update(t, m, TickMsg(time.Now()))
	if m.Time() != 1 {
		t.Errorf("expected 1 s after one frame, got %v", m.Time())
	}
	if len(m.probeHist) != 1 {
		t.Errorf("expected one history entry, got %d", len(m.probeHist))
	}
	if m.last.Wattage <= 0 {
		t.Errorf("cold bed should draw power, got %v W", m.last.Wattage)
	}
}

func TestModelPauseAndStep(t *testing.T) {
	m, _ := NewModel(testBuilder)

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.running {
		t.Fatal("space should pause")
	}
	m = update(t, m, TickMsg(time.Now()))
	if m.Time() != 0 {
		t.Errorf("paused model advanced to %v", m.Time())
	}
	m = update(t, m, key("."))
	if m.Time() != 1 {
		t.Errorf("single step should advance one tick, got %v", m.Time())
	}
}

func TestModelTargetKeys(t *testing.T) {
	m, _ := NewModel(testBuilder)
	start := m.Target()

	m = update(t, m, key("up"))
	m = update(t, m, key("up"))
	m = update(t, m, key("down"))
	if got := m.Target(); got != start+1 {
		t.Errorf("target = %v, want %v", got, start+1)
	}
}

func TestModelSpeedAndReset(t *testing.T) {
	m, _ := NewModel(testBuilder)
	m = update(t, m, key("+"))
	m = update(t, m, TickMsg(time.Now()))
	if m.Time() != float64(speeds[1]) {
		t.Errorf("expected %d ticks, got %v", speeds[1], m.Time())
	}

	m = update(t, m, key("r"))
	if m.Time() != 0 || len(m.probeHist) != 0 {
		t.Errorf("reset left time %v and %d samples", m.Time(), len(m.probeHist))
	}
}

func TestModelAdjustParam(t *testing.T) {
	m, _ := NewModel(testBuilder)
	if len(m.paramKeys) == 0 {
		t.Fatal("pid controller should expose parameters")
	}
	name := m.paramKeys[m.selected]
	before := m.params[name]

	m = update(t, m, key("k"))
	if got := m.params[name]; got <= before {
		t.Errorf("%s = %v, expected increase from %v", name, got, before)
	}
}

func TestModelView(t *testing.T) {
	m, _ := NewModel(testBuilder)
	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))

	view := m.View()
	for _, want := range []string{"Target", "Heater", "CONTROLLER"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHeatMapDimensions(t *testing.T) {
	surface := [][]float64{
		{20, 30, 40},
		{50, 60, 70},
	}
	out := HeatMap(surface, 6, 3, 20, 70)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if n := strings.Count(out, "▀"); n != 18 {
		t.Errorf("expected 18 cells, got %d", n)
	}
	if HeatMap(nil, 6, 3, 0, 1) != "" {
		t.Error("empty surface should render nothing")
	}
}

func TestRowCopies(t *testing.T) {
	surface := [][]float64{{1, 2}, {3, 4}}
	r := Row(surface, 5)
	r[0] = 99
	if surface[1][0] != 3 {
		t.Error("Row should copy the field")
	}
}

func TestThemeColorEndpoints(t *testing.T) {
	cold := ThemeMono.Color(0, 0, 100)
	hot := ThemeMono.Color(100, 0, 100)
	if cold != (color.RGBA{0x10, 0x10, 0x10, 255}) {
		t.Errorf("cold end = %v", cold)
	}
	if hot != (color.RGBA{0xf0, 0xf0, 0xf0, 255}) {
		t.Errorf("hot end = %v", hot)
	}
	if ThemeMono.Color(500, 0, 100) != hot {
		t.Error("values above range should clamp")
	}
	if ThemeMono.Color(50, 10, 10) != cold {
		t.Error("degenerate range should map to the cold end")
	}
}

func TestNextThemeCycles(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)
	SetTheme(Themes[len(Themes)-1].Name)
	NextTheme()
	if CurrentTheme.Name != Themes[0].Name {
		t.Errorf("expected wrap to %s, got %s", Themes[0].Name, CurrentTheme.Name)
	}
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(10, 10)
	if c.Grid[0][0] != brailleBlank+0x1 {
		t.Errorf("cell 0 = %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank+0x80 {
		t.Errorf("cell 1 = %U", c.Grid[0][1])
	}
}

func TestMenuSelectsPreset(t *testing.T) {
	app := NewInteractiveApp()
	next, _ := app.Update(key("enter"))
	m := next.(menu)
	if m.state != stateConfig {
		t.Fatalf("expected config screen, got state %d", m.state)
	}
	if m.cfg.Name != m.presets[0] {
		t.Errorf("config %s, want %s", m.cfg.Name, m.presets[0])
	}

	before := m.cfg.Plate.Width
	next, _ = m.Update(key("l"))
	m = next.(menu)
	if m.cfg.Plate.Width != before+fields[0].step {
		t.Errorf("plate width = %v", m.cfg.Plate.Width)
	}
}
