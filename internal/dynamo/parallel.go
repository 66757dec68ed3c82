package dynamo

import (
	"context"
	"runtime"
	"sync"
)

// MaxWorkers bounds the goroutines started by ParallelFor.
var MaxWorkers = runtime.NumCPU()

// Ensemble runs numRuns independent jobs over a bounded worker set. Jobs are
// addressed by index so results written to index-keyed slices stay ordered.
type Ensemble struct {
	numRuns int
}

func NewEnsemble(numRuns int) *Ensemble {
	return &Ensemble{numRuns: numRuns}
}

func (e *Ensemble) Run(ctx context.Context, run func(ctx context.Context, idx int) error) error {
	errs := make([]error, e.numRuns)

	ParallelFor(e.numRuns, 1, func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = run(ctx, i)
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelFor executes a function in parallel over a range [0, n)
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := MaxWorkers
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
