package passes

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/enzeeeh/satellite-project/internal/propagation"
	"github.com/enzeeeh/satellite-project/internal/tle"
	"github.com/enzeeeh/satellite-project/internal/transform"
)

// SatellitePasses holds the predicted passes for one satellite.
type SatellitePasses struct {
	NoradID int      `json:"norad_id"`
	Name    string   `json:"name,omitempty"`
	Passes  []Pass   `json:"passes"`
	Samples []Sample `json:"samples,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Request holds the parameters for a pass prediction run.
type Request struct {
	Observer       transform.Observer
	Entries        []tle.Entry
	Corrector      propagation.Corrector // optional
	Start          time.Time
	Horizon        time.Duration
	Step           time.Duration
	ThresholdDeg   float64
	Workers        int
	IncludeSamples bool
}

// Predict computes visibility passes for every satellite in the request.
// Satellites are independent, so each is processed in its own goroutine,
// bounded by a semaphore; within one satellite the sampling grid itself fans
// out across a worker pool.
func Predict(ctx context.Context, req Request, logger *slog.Logger) []SatellitePasses {
	results := make([]SatellitePasses, len(req.Entries))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	grid := Grid(req.Start, req.Horizon, req.Step)
	pool := propagation.NewWorkerPool(req.Workers, logger)

	for i, entry := range req.Entries {
		wg.Add(1)
		go func(idx int, e tle.Entry) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = SatellitePasses{NoradID: e.NoradID, Name: e.Name, Error: "cancelled"}
				return
			}

			sp, err := predictSatellite(ctx, req, e, grid, pool)
			if err != nil {
				results[idx] = SatellitePasses{NoradID: e.NoradID, Name: e.Name, Error: err.Error()}
				return
			}
			results[idx] = sp
		}(i, entry)
	}

	wg.Wait()
	return results
}

// predictSatellite runs the full pipeline for a single satellite: propagate
// over the grid, rotate, compute elevations, detect passes.
func predictSatellite(ctx context.Context, req Request, entry tle.Entry, grid []time.Time, pool *propagation.WorkerPool) (SatellitePasses, error) {
	src, err := propagation.NewSGP4Source(entry.Line1, entry.Line2, entry.NoradID)
	if err != nil {
		return SatellitePasses{}, fmt.Errorf("sgp4 init: %w", err)
	}

	sampler := &Sampler{
		Source:    src,
		Corrector: req.Corrector,
		Observer:  req.Observer,
		Policy:    FailFast,
		Pool:      pool,
	}

	samples, err := sampler.Sample(ctx, grid)
	if err != nil {
		return SatellitePasses{}, err
	}

	sp := SatellitePasses{
		NoradID: entry.NoradID,
		Name:    entry.Name,
		Passes:  DetectSamples(samples, req.ThresholdDeg),
	}
	if req.IncludeSamples {
		sp.Samples = samples
	}
	return sp, nil
}
