package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/pipeline/replenishment"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Worker evaluates inventory positions over a bounded pool of goroutines.
// Positions share nothing, so the only coordination is writing each result
// to its input index.
type Worker struct {
	config Config
}

// NewWorker creates a new evaluation worker
func NewWorker(config Config) *Worker {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	return &Worker{config: config}
}

// EvaluateAll evaluates every input under policy and returns the results in
// input order. It only fails when ctx is cancelled.
func (w *Worker) EvaluateAll(ctx context.Context, inputs []domain.PositionInput, policy domain.PolicyParameters) ([]domain.Evaluation, RunMetrics, error) {
	start := time.Now()
	results := make([]domain.Evaluation, len(inputs))

	workerCount := w.config.WorkerCount
	if workerCount > len(inputs) {
		workerCount = len(inputs)
	}

	jobChan := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for idx := range jobChan {
				results[idx] = replenishment.Evaluate(inputs[idx], policy)
			}
			return nil
		})
	}

	// Enqueue jobs
	g.Go(func() error {
		defer close(jobChan)
		for idx := range inputs {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobChan <- idx:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, RunMetrics{}, err
	}

	metrics := RunMetrics{
		Positions: len(inputs),
		Workers:   workerCount,
		Duration:  time.Since(start),
	}
	for _, r := range results {
		if r.Decision.Action == domain.ActionReplenish {
			metrics.Replenish++
		}
	}

	log.Debug().
		Int("positions", metrics.Positions).
		Int("replenish", metrics.Replenish).
		Int("workers", metrics.Workers).
		Dur("duration", metrics.Duration).
		Msg("batch evaluation completed")

	return results, metrics, nil
}
