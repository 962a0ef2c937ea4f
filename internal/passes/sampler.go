package passes

import (
	"context"
	"fmt"
	"time"

	"github.com/enzeeeh/satellite-project/internal/propagation"
	"github.com/enzeeeh/satellite-project/internal/transform"
)

// FailurePolicy decides how the sampler treats per-timestamp propagation
// failures. Propagation is deterministic, so retries are pointless; the only
// question is whether to abort or continue without the failed sample.
type FailurePolicy int

const (
	// FailFast aborts sampling on the first propagation failure.
	FailFast FailurePolicy = iota
	// SkipFailed drops failed timestamps and keeps going. The remaining
	// samples stay strictly time-ordered, which is all detection requires.
	SkipFailed
)

// Sampler binds a propagation source, an optional along-track corrector, and
// an observer into an elevation-series producer over a UTC time grid.
type Sampler struct {
	Source    propagation.Source
	Corrector propagation.Corrector // optional
	Observer  transform.Observer
	Policy    FailurePolicy
	Pool      *propagation.WorkerPool
}

// Grid builds the sampling timestamps: start, start+step, ... start+horizon
// (inclusive). Timestamps are normalized to UTC.
func Grid(start time.Time, horizon, step time.Duration) []time.Time {
	if step <= 0 || horizon < 0 {
		return nil
	}
	n := int(horizon/step) + 1
	grid := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		grid = append(grid, start.UTC().Add(time.Duration(i)*step))
	}
	return grid
}

// Sample propagates the source over the grid, rotates each state into the
// Earth-fixed frame via the sidereal angle at its timestamp, and computes
// topocentric elevation from the observer. Propagation fans out across the
// worker pool; results are reassembled in grid order before the sequential
// rotation and elevation fold, so the series handed to detection is strictly
// increasing in time.
func (s *Sampler) Sample(ctx context.Context, grid []time.Time) ([]Sample, error) {
	if len(grid) == 0 {
		return nil, nil
	}

	src := s.Source
	if s.Corrector != nil {
		src = propagation.Corrected{Source: s.Source, Corrector: s.Corrector}
	}

	results := s.Pool.StatesOverGrid(ctx, src, grid)

	samples := make([]Sample, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			if s.Policy == SkipFailed {
				continue
			}
			return nil, fmt.Errorf("sampling at %s: %w", r.At.Format(time.RFC3339), r.Err)
		}

		theta := transform.GMST(r.At)
		posECEF := transform.RotateToECEF(r.State.Position, theta)
		samples = append(samples, Sample{
			Time:         r.At,
			ElevationDeg: s.Observer.ElevationDeg(posECEF),
		})
	}

	return samples, nil
}
