package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/experiment"
	"github.com/san-kum/bedsim/internal/monitoring"
)

// Trial is one evaluated parameter combination.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: 1}
}

// WithWorkers evaluates up to n combinations concurrently. Every combination
// owns its experiment, so runs share nothing.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Search runs every combination and returns the one with the lowest value of
// metricName. Failed or cancelled runs are skipped; if none succeeded the
// last error is returned.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	trials := g.Evaluate(ctx, buildExperiment, metricName)

	best := math.Inf(1)
	var bestParams map[string]float64
	var lastErr error
	for _, t := range trials {
		if t.Err != nil {
			lastErr = t.Err
			continue
		}
		if t.Score < best {
			best = t.Score
			bestParams = t.Params
		}
	}
	if bestParams == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("optim: no combinations to evaluate")
		}
		return nil, best, lastErr
	}
	return bestParams, best, nil
}

// Evaluate runs every combination and returns the trials ordered by score,
// failures last.
func (g *GridSearch) Evaluate(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) []Trial {
	var combos []map[string]float64
	g.enumerate(0, make(map[string]float64), &combos)

	trials := make([]Trial, len(combos))
	sem := make(chan struct{}, g.workers)
	var wg sync.WaitGroup
	for i, params := range combos {
		wg.Add(1)
		go func(idx int, params map[string]float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			trials[idx] = evaluate(ctx, params, buildExperiment, metricName)
			monitoring.Debugf("optim: %v -> %.4g", params, trials[idx].Score)
		}(i, params)
	}
	wg.Wait()

	sort.SliceStable(trials, func(i, j int) bool {
		if (trials[i].Err == nil) != (trials[j].Err == nil) {
			return trials[i].Err == nil
		}
		return trials[i].Score < trials[j].Score
	})
	return trials
}

func evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Trial {
	t := Trial{Params: params, Score: math.Inf(1)}

	exp, err := buildExperiment(params)
	if err != nil {
		t.Err = err
		return t
	}
	result, err := exp.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}
	if len(result.Errors) > 0 {
		t.Err = result.Errors[0]
		return t
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		t.Err = fmt.Errorf("optim: metric %q not recorded", metricName)
		return t
	}
	t.Score = val
	return t
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		cp := make(map[string]float64, len(current))
		for k, v := range current {
			cp[k] = v
		}
		*out = append(*out, cp)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, paramName)
}

// Span returns n evenly spaced values from lo to hi inclusive.
func Span(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// GainSearch scales the analytically tuned PID gains of cfg by every
// combination of factors and returns the gains with the lowest metric.
func GainSearch(ctx context.Context, cfg *config.Config, factors []float64, metricName string, workers int) (control.Gains, float64, error) {
	base, err := experiment.New(cfg)
	if err != nil {
		return control.Gains{}, 0, err
	}
	tuned := base.Tuning().Gains

	gs := NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{factors, factors, factors}).WithWorkers(workers)
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		c.Control.Controller = config.ControllerPID
		c.Control.Gains = &control.Gains{
			Kp: tuned.Kp * p["kp"],
			Ki: tuned.Ki * p["ki"],
			Kd: tuned.Kd * p["kd"],
		}
		return experiment.New(c)
	}

	best, score, err := gs.Search(ctx, build, metricName)
	if err != nil {
		return control.Gains{}, 0, err
	}
	return control.Gains{
		Kp: tuned.Kp * best["kp"],
		Ki: tuned.Ki * best["ki"],
		Kd: tuned.Kd * best["kd"],
	}, score, nil
}
