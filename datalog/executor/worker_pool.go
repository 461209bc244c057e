package executor

import (
	"fmt"
	"runtime"
	"sync"
)

// WorkerPool runs independent tasks on a fixed number of goroutines. The
// evaluators use it to fan out the rules of one round.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool
// workerCount: number of worker goroutines (0 = use NumCPU)
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// ExecuteParallel applies operation to every input on the pool's workers and
// returns the results in input order. It returns only after every operation
// finished, so callers can merge results without further synchronisation.
//
// If any operation fails, the error for the lowest index is returned.
func ExecuteParallel[In, Out any](
	p *WorkerPool,
	ctx Context,
	inputs []In,
	operation func(Context, In) (Out, error),
) ([]Out, error) {
	if len(inputs) == 0 {
		return []Out{}, nil
	}

	results := make([]Out, len(inputs))
	errs := make([]error, len(inputs))

	jobs := make(chan int, len(inputs))

	workers := p.workerCount
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = operation(ctx, inputs[idx])
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("parallel execution failed at index %d: %w", i, err)
		}
	}

	return results, nil
}

// GetWorkerCount returns the number of worker goroutines
func (p *WorkerPool) GetWorkerCount() int {
	return p.workerCount
}
