package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/experiment"
	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/sim"
)

// ParameterSweep runs one experiment per value of a single numeric setting.
type ParameterSweep struct {
	Param   string // yaml path, see config.FieldNames
	Values  []float64
	Workers int
}

type SweepResult struct {
	Value   float64
	Metrics map[string]float64
	Final   sim.Sample
}

// RunSweep returns one result per value in order. Runs without readouts, so
// geometry changes between values are allowed.
func RunSweep(ctx context.Context, base *config.Config, sweep *ParameterSweep) ([]SweepResult, error) {
	if _, err := base.Clone().Field(sweep.Param); err != nil {
		return nil, err
	}
	if len(sweep.Values) == 0 {
		return nil, nil
	}

	build := func(i int) (*sim.Simulator, error) {
		cfg := base.Clone()
		if err := cfg.SetField(sweep.Param, sweep.Values[i]); err != nil {
			return nil, err
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%v: %w", sweep.Param, sweep.Values[i], err)
		}
		monitoring.Debugf("sweep: %s=%v", sweep.Param, sweep.Values[i])
		return exp.GetSimulator(), nil
	}

	runs, err := sim.NewEnsemble(len(sweep.Values), sweep.Workers, build).Run(ctx, sim.Config{
		Duration:      base.Simulation.Duration,
		ValidateState: base.Simulation.ValidateState,
	})
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		results[i] = SweepResult{
			Value:   sweep.Values[i],
			Metrics: r.Metrics,
			Final:   r.Final(),
		}
	}
	return results, nil
}
