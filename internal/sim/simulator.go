package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/thermal"
)

// Simulator drives a thermal simulation tick by tick and records samples.
type Simulator struct {
	sim       *thermal.Simulation
	cond      thermal.Conditions
	metrics   []Metric
	observers []Observer
}

func New(s *thermal.Simulation, cond thermal.Conditions) *Simulator {
	return &Simulator{
		sim:       s,
		cond:      cond,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Simulation() *thermal.Simulation { return s.sim }
func (s *Simulator) Conditions() thermal.Conditions  { return s.cond }

// SetConditions changes the inputs of subsequent ticks, e.g. a new target.
func (s *Simulator) SetConditions(c thermal.Conditions) { s.cond = c }

// Run advances the simulation cfg.Duration ticks. Cancellation is checked
// between ticks only, so the grid is always left in a consistent state and the
// partial result is returned along with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("%d ticks: %w", cfg.Duration, ErrInvalidDuration)
	}

	result := &Result{
		Samples:      make([]Sample, 0, cfg.Duration+1),
		ReadoutNames: make([]string, len(cfg.Readouts)),
		Metrics:      make(map[string]float64),
		Errors:       make([]error, 0),
	}
	for i, r := range cfg.Readouts {
		result.ReadoutNames[i] = r.Name
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Samples = append(result.Samples, s.sample(cfg, 0))

	for i := 0; i < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		sample := s.Step(cfg)

		if cfg.ValidateState && !sample.IsValid() {
			err := SimError{Tick: i, Time: sample.Time, Message: "invalid temperature", Wrapped: ErrInvalidState}
			monitoring.Logf("sim: %v", err)
			result.Errors = append(result.Errors, err)
			break
		}

		result.TicksTaken++
		result.Samples = append(result.Samples, sample)
	}

	s.collect(result)
	return result, nil
}

// Step advances one tick and notifies metrics and observers.
func (s *Simulator) Step(cfg Config) Sample {
	w := s.sim.Iterate(s.cond)
	sample := s.sample(cfg, w)
	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnTick(sample)
	}
	return sample
}

func (s *Simulator) sample(cfg Config, wattage float64) Sample {
	p := s.cond.Probe
	sample := Sample{
		Time:     s.sim.Time(),
		Target:   s.cond.Target,
		Probe:    s.sim.TemperatureAt(p.X, p.Y, p.Z),
		Wattage:  wattage,
		HeatLoss: s.sim.HeatLoss(s.cond),
		Readouts: make([]float64, len(cfg.Readouts)),
	}
	for i, r := range cfg.Readouts {
		sample.Readouts[i] = s.sim.TemperatureAt(r.Point.X, r.Point.Y, r.Point.Z)
	}
	return sample
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Surface = s.sim.Grid().Surface()
}

// RunWithCallback ticks until the callback returns false, the context is
// done or cfg.Duration ticks have passed. A zero duration runs unbounded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	for i := 0; cfg.Duration <= 0 || i < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sample := s.Step(cfg)
		if cfg.ValidateState && !sample.IsValid() {
			return SimError{Tick: i, Time: sample.Time, Message: "invalid temperature", Wrapped: ErrInvalidState}
		}
		if !callback(sample) {
			return nil
		}
	}
	return nil
}
