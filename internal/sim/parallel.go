package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent simulators concurrently. Each run owns its own
// grid, so no state is shared between goroutines.
type Ensemble struct {
	build   func(i int) (*Simulator, error)
	numRuns int
	workers int
}

// NewEnsemble prepares numRuns simulators built by build, executing at most
// workers at a time. workers <= 0 runs them all at once.
func NewEnsemble(numRuns, workers int, build func(i int) (*Simulator, error)) *Ensemble {
	if workers <= 0 || workers > numRuns {
		workers = numRuns
	}
	return &Ensemble{build: build, numRuns: numRuns, workers: workers}
}

// Run returns one result per run in build order. The first error wins.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)
	sem := make(chan struct{}, max(e.workers, 1))

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s, err := e.build(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
