package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/thermal"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Plate.Width, cfg.Plate.Height, cfg.Plate.Thickness = 100, 100, 3
	cfg.Heater.Width, cfg.Heater.Height = 80, 80
	cfg.Simulation.Resolution = 10
	cfg.Simulation.Duration = 30
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(smallConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.TicksTaken != 30 {
		t.Errorf("expected 30 ticks, got %d", result.TicksTaken)
	}
	if result.Final().Probe <= 22 {
		t.Errorf("heater probe did not rise: %v", result.Final().Probe)
	}
	for _, name := range []string{"control_effort", "overshoot", "itae", "overheat_ticks"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if len(result.ReadoutNames) != 6 {
		t.Errorf("expected 6 readouts, got %v", result.ReadoutNames)
	}
}

func TestExperimentControllers(t *testing.T) {
	tests := []struct {
		name  string
		check func(thermal.Controller) bool
	}{
		{config.ControllerPID, func(c thermal.Controller) bool { _, ok := c.(*control.PID); return ok }},
		{config.ControllerBangBang, func(c thermal.Controller) bool { _, ok := c.(*control.BangBang); return ok }},
		{config.ControllerManual, func(c thermal.Controller) bool { _, ok := c.(*control.Manual); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Control.Controller = tt.name
			exp, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(exp.Simulation().Controller()) {
				t.Errorf("unexpected controller %T", exp.Simulation().Controller())
			}
		})
	}
}

func TestExperimentUsesTunedGains(t *testing.T) {
	exp, err := New(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	pid := exp.Simulation().Controller().(*control.PID)
	if pid.Gains() != exp.Tuning().Gains {
		t.Errorf("pid gains %+v differ from tuning %+v", pid.Gains(), exp.Tuning().Gains)
	}

	cfg := smallConfig()
	cfg.Control.Gains = &control.Gains{Kp: 1, Ki: 2, Kd: 3}
	exp, err = New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	pid = exp.Simulation().Controller().(*control.PID)
	if pid.Gains() != (control.Gains{Kp: 1, Ki: 2, Kd: 3}) {
		t.Errorf("override ignored: %+v", pid.Gains())
	}
}

func TestExperimentClampsHeater(t *testing.T) {
	cfg := smallConfig()
	cfg.Heater.Width = 500

	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("expected clamped heater to be accepted: %v", err)
	}
	if exp.Config().Heater.Width != 100 {
		t.Errorf("heater width = %v, want 100", exp.Config().Heater.Width)
	}
	if cfg.Heater.Width != 500 {
		t.Error("caller config was modified")
	}
	if g := exp.Simulation().Grid(); g.HeaterCountX != g.CountX {
		t.Errorf("heater cells %d, plate cells %d", g.HeaterCountX, g.CountX)
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Control.Controller = "mpc"
	if _, err := New(cfg); !errors.Is(err, config.ErrUnknownController) {
		t.Errorf("expected ErrUnknownController, got %v", err)
	}

	cfg = smallConfig()
	cfg.Simulation.Resolution = 0
	if _, err := New(cfg); !errors.Is(err, config.ErrNonPositive) {
		t.Errorf("expected ErrNonPositive, got %v", err)
	}

	cfg = smallConfig()
	cfg.Plate.Width, cfg.Plate.Height = 2, 2
	cfg.Heater.Width, cfg.Heater.Height = 2, 2
	if _, err := New(cfg); !errors.Is(err, config.ErrGridTooCoarse) {
		t.Errorf("expected ErrGridTooCoarse, got %v", err)
	}
}

func TestRegistryCustomController(t *testing.T) {
	reg := NewRegistry()
	reg.Register(config.ControllerManual, func(cfg *config.Config, s *thermal.Simulation) thermal.Controller {
		return control.NewManual(7)
	})

	cfg := smallConfig()
	cfg.Control.Controller = config.ControllerManual
	exp, err := NewWithRegistry(cfg, reg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if w := result.Final().Wattage; w != 7 {
		t.Errorf("expected 7 W, got %v", w)
	}

	if got := reg.ListControllers(); len(got) != 3 {
		t.Errorf("controllers = %v", got)
	}
}
