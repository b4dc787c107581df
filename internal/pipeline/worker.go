package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"stockplan/internal/domain"
)

// workerPool fans component jobs out to a fixed number of goroutines and
// streams every outcome back on the returned channel. The channel closes
// once all jobs have been handled or the context is cancelled.
type workerPool struct {
	planner Planner
	workers int
}

func newWorkerPool(planner Planner, workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	return &workerPool{planner: planner, workers: workers}
}

func (p *workerPool) run(ctx context.Context, components []domain.Component, params domain.PlanningParams) <-chan jobResult {
	jobs := make(chan domain.Component, len(components))
	results := make(chan jobResult, len(components))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for component := range jobs {
				rec, err := p.planner.BuildRecommendation(ctx, component, params)
				if err != nil {
					log.Warn().
						Err(err).
						Int("worker", workerID).
						Str("component_id", component.ComponentID).
						Msg("analysis: component failed")
				}
				results <- jobResult{rec: rec, err: err}
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, component := range components {
			select {
			case <-ctx.Done():
				return
			case jobs <- component:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
