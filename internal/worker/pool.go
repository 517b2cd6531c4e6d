package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// canceledResult is returned for jobs that never ran
type canceledResult struct {
	err error
}

func (r *canceledResult) GetError() error { return r.err }

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes every job and returns the results in job order. Jobs not
// started before ctx is done get a result carrying ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if err := ctx.Err(); err != nil {
					results[idx] = &canceledResult{err: err}
					continue
				}
				results[idx] = jobs[idx].Execute(ctx)
			}
		}()
	}

	for idx := range jobs {
		indexes <- idx
	}
	close(indexes)
	wg.Wait()

	return results
}
