package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/thermal"
)

// ControllerFactory builds a controller for a freshly reset simulation.
type ControllerFactory func(cfg *config.Config, s *thermal.Simulation) thermal.Controller

type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers[config.ControllerPID] = func(cfg *config.Config, s *thermal.Simulation) thermal.Controller {
		if g := cfg.Control.Gains; g != nil {
			return control.NewPID(g.Kp, g.Ki, g.Kd)
		}
		t := control.Tune(s.Plant(), cfg.ProbeKind().Embedded())
		return control.NewPID(t.Kp, t.Ki, t.Kd)
	}
	r.controllers[config.ControllerBangBang] = func(cfg *config.Config, s *thermal.Simulation) thermal.Controller {
		return control.NewBangBang(cfg.Control.MaxDelta, s.PowerLimit(cfg.Heater.PowerDensity))
	}
	r.controllers[config.ControllerManual] = func(cfg *config.Config, s *thermal.Simulation) thermal.Controller {
		return control.NewManual(cfg.Control.ManualWattage)
	}

	return r
}

// Register adds or replaces a controller factory.
func (r *Registry) Register(name string, f ControllerFactory) {
	r.controllers[name] = f
}

func (r *Registry) GetController(name string, cfg *config.Config, s *thermal.Simulation) (thermal.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, config.ErrUnknownController)
	}
	return fn(cfg, s), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
