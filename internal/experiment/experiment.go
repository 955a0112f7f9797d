package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/metrics"
	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/sim"
	"github.com/san-kum/bedsim/internal/thermal"
)

// SettlingBand is the tolerance in K used by the settling time metric.
const SettlingBand = 1.0

// Experiment is one configured bed with its simulation and runner.
type Experiment struct {
	cfg        *config.Config
	simulation *thermal.Simulation
	simulator  *sim.Simulator
	tuning     control.Tuning
}

// New builds an experiment using the default controller registry.
func New(cfg *config.Config) (*Experiment, error) {
	return NewWithRegistry(cfg, NewRegistry())
}

// NewWithRegistry normalizes and validates a copy of cfg, resets a
// simulation to ambient and installs the configured controller.
func NewWithRegistry(cfg *config.Config, reg *Registry) (*Experiment, error) {
	cfg = cfg.Clone()
	if cfg.Normalize() {
		monitoring.Logf("experiment: heater clamped to plate, now %.0fx%.0f mm", cfg.Heater.Width, cfg.Heater.Height)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := thermal.NewSimulation(
		thermal.WithIterations(cfg.Simulation.IterationsPerTick),
		thermal.WithWorkers(cfg.Simulation.Workers),
	)
	b := cfg.Build()
	s.Reset(b.PlateWidth, b.PlateHeight, b.HeaterWidth, b.HeaterHeight, cfg.Resolution(), b.Layers(), cfg.Environment.Ambient)

	ctrl, err := reg.GetController(cfg.Control.Controller, cfg, s)
	if err != nil {
		return nil, err
	}
	s.SetController(ctrl)

	g := s.Grid()
	monitoring.Debugf("experiment: %dx%dx%d grid, heater %dx%d cells, %s controller",
		g.CountX, g.CountY, len(g.Layers), g.HeaterCountX, g.HeaterCountY, cfg.Control.Controller)

	e := &Experiment{
		cfg:        cfg,
		simulation: s,
		simulator:  sim.New(s, cfg.Conditions()),
		tuning:     control.Tune(s.Plant(), cfg.ProbeKind().Embedded()),
	}
	for _, m := range metrics.Default(SettlingBand) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

// SimConfig returns the runner configuration for the experiment's duration
// with the standard readouts.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Duration:      e.cfg.Simulation.Duration,
		ValidateState: e.cfg.Simulation.ValidateState,
		Readouts:      e.cfg.Build().Readouts(),
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	monitoring.Debugf("experiment: running %d ticks", e.cfg.Simulation.Duration)
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the runner for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Simulation() *thermal.Simulation { return e.simulation }

// Tuning returns the analytic tuning of the bed, whether or not the active
// controller uses it.
func (e *Experiment) Tuning() control.Tuning { return e.tuning }
