package automation

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/experiment"
	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/sim"
)

// Perturbed are the settings a Monte Carlo trial varies. They are the ones a
// real printer rarely matches its datasheet on.
var Perturbed = []string{
	"environment.convection_top",
	"environment.convection_bottom",
	"magnetic_sticker.conductivity",
	"heater.conductivity",
}

// MonteCarlo checks how a configuration holds up when the environment and
// contact resistances differ from nominal.
type MonteCarlo struct {
	Trials int
	// Spread is the relative half-width of the uniform perturbation.
	Spread  float64
	Seed    int64
	Workers int
}

type Trial struct {
	ID      int
	Params  map[string]float64
	Metrics map[string]float64
	Final   sim.Sample
}

// RunMonteCarlo draws every trial's parameters up front, so a seed reproduces
// the same trials regardless of scheduling. Seed 0 uses the clock.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc *MonteCarlo) ([]Trial, error) {
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	trials := make([]Trial, mc.Trials)
	for i := range trials {
		trials[i] = Trial{ID: i, Params: make(map[string]float64, len(Perturbed))}
		nominal := base.Clone()
		for _, name := range Perturbed {
			p, err := nominal.Field(name)
			if err != nil {
				return nil, err
			}
			trials[i].Params[name] = *p * (1 + (rng.Float64()-0.5)*2*mc.Spread)
		}
	}

	build := func(i int) (*sim.Simulator, error) {
		cfg := base.Clone()
		for name, v := range trials[i].Params {
			if err := cfg.SetField(name, v); err != nil {
				return nil, err
			}
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}

	runs, err := sim.NewEnsemble(mc.Trials, mc.Workers, build).Run(ctx, sim.Config{
		Duration:      base.Simulation.Duration,
		ValidateState: base.Simulation.ValidateState,
	})
	if err != nil {
		return nil, err
	}

	for i, r := range runs {
		trials[i].Metrics = r.Metrics
		trials[i].Final = r.Final()
	}
	monitoring.Debugf("montecarlo: %d trials, seed %d", mc.Trials, seed)
	return trials, nil
}

// Summary is the distribution of one metric over a set of trials.
type Summary struct {
	Metric       string
	Mean, StdDev float64
	Min, Max     float64
}

func Summarize(trials []Trial, metric string) Summary {
	values := make([]float64, 0, len(trials))
	for _, t := range trials {
		if v, ok := t.Metrics[metric]; ok {
			values = append(values, v)
		}
	}
	s := Summary{Metric: metric}
	if len(values) == 0 {
		return s
	}
	if len(values) == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	}
	s.Min, s.Max = floats.Min(values), floats.Max(values)
	return s
}

// MetricNames lists the metrics present in any trial.
func MetricNames(trials []Trial) []string {
	seen := make(map[string]bool)
	for _, t := range trials {
		for name := range t.Metrics {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
