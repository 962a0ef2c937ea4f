package propagation

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/enzeeeh/satellite-project/internal/metrics"
	"github.com/enzeeeh/satellite-project/internal/transform"
)

// GridResult is the outcome of propagating one grid timestamp.
type GridResult struct {
	At    time.Time
	State transform.StateTEME
	Err   error
}

// WorkerPool runs grid propagation across a fixed number of goroutines.
// Per-timestamp propagation is independent, so the grid can be fanned out
// freely; results are always returned in grid order so downstream pass
// detection sees a monotonic sequence.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool. workers <= 0 selects NumCPU.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &WorkerPool{workers: workers, logger: logger}
}

// StatesOverGrid propagates src to every timestamp of the grid and returns one
// result per timestamp, in grid order. Individual failures are recorded in the
// result slot rather than aborting the batch; the caller chooses whether to
// skip or fail. On context cancellation the remaining slots carry ctx.Err().
func (wp *WorkerPool) StatesOverGrid(ctx context.Context, src Source, grid []time.Time) []GridResult {
	if len(grid) == 0 {
		return nil
	}

	results := make([]GridResult, len(grid))
	for i := range grid {
		results[i] = GridResult{At: grid[i]}
	}

	jobs := make(chan int, wp.workers*2)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				state, err := src.StateAt(grid[idx])
				// Each worker owns a distinct slot, so no result channel or
				// reordering step is needed.
				results[idx].State = state
				results[idx].Err = err
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range grid {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	// Slots never reached before cancellation carry the context error so they
	// are not mistaken for successful zero states.
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Err == nil && results[i].State.At.IsZero() {
				results[i].Err = err
			}
		}
	}

	var successCount, errorCount int
	for i := range results {
		if results[i].Err != nil {
			errorCount++
		} else {
			successCount++
		}
	}
	metrics.RecordPropagation(time.Since(start), successCount, errorCount)

	if errorCount > 0 {
		wp.logger.Warn("grid propagation finished with failures",
			"samples", len(grid),
			"errors", errorCount,
		)
	}

	return results
}
