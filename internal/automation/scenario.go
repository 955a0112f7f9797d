package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/experiment"
	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/sim"
)

var ErrNegativeStepTime = errors.New("automation: step time must not be negative")

// Scenario scripts setpoint and environment changes over a single run.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Preset names the base configuration. Empty means the caller's config.
	Preset string `yaml:"preset,omitempty"`
	// Overrides are applied to the base by yaml path, e.g. plate.thickness_mm.
	Overrides map[string]float64 `yaml:"overrides,omitempty"`
	Duration  int                `yaml:"duration_s,omitempty"`
	Steps     []ScenarioStep     `yaml:"steps"`
}

// ScenarioStep changes the conditions from simulated second At onwards.
// Unset fields keep their previous value.
type ScenarioStep struct {
	At           float64  `yaml:"at_s"`
	Target       *float64 `yaml:"target,omitempty"`
	Ambient      *float64 `yaml:"ambient,omitempty"`
	PowerDensity *float64 `yaml:"power_density,omitempty"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

// Apply returns a copy of base with the scenario's overrides and duration.
func (sc *Scenario) Apply(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if sc.Name != "" {
		cfg.Name = sc.Name
	}
	for name, v := range sc.Overrides {
		if err := cfg.SetField(name, v); err != nil {
			return nil, err
		}
	}
	if sc.Duration > 0 {
		cfg.Simulation.Duration = sc.Duration
	}
	return cfg, nil
}

// RunScenario runs base with the scenario applied. A step takes effect on the
// first tick that starts at or after its time.
func RunScenario(ctx context.Context, base *config.Config, sc *Scenario) (*sim.Result, *config.Config, error) {
	cfg, err := sc.Apply(base)
	if err != nil {
		return nil, nil, err
	}

	steps := append([]ScenarioStep(nil), sc.Steps...)
	for i, step := range steps {
		if step.At < 0 {
			return nil, nil, fmt.Errorf("step %d at %v s: %w", i+1, step.At, ErrNegativeStepTime)
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	sched := &schedule{steps: steps, runner: exp.GetSimulator()}
	sched.advance(0)
	exp.GetSimulator().AddObserver(sched)

	result, err := exp.Run(ctx)
	return result, exp.Config(), err
}

type schedule struct {
	steps  []ScenarioStep
	next   int
	runner *sim.Simulator
}

func (s *schedule) OnTick(sample sim.Sample) { s.advance(sample.Time) }

func (s *schedule) advance(now float64) {
	for s.next < len(s.steps) && s.steps[s.next].At <= now {
		step := s.steps[s.next]
		c := s.runner.Conditions()
		if step.Target != nil {
			c.Target = *step.Target
		}
		if step.Ambient != nil {
			c.Ambient = *step.Ambient
		}
		if step.PowerDensity != nil {
			c.PowerDensity = *step.PowerDensity
		}
		s.runner.SetConditions(c)
		monitoring.Debugf("scenario: t=%.0fs target %.1f ambient %.1f", now, c.Target, c.Ambient)
		s.next++
	}
}
