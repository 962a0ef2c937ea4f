// Package passes turns sampled elevation time series into visibility passes:
// the intervals during which a satellite's elevation above an observer's
// horizon exceeds a threshold, with interpolated boundaries and peak tracking.
package passes

import (
	"time"

	"github.com/enzeeeh/satellite-project/internal/metrics"
)

// Sample is one elevation measurement of the target from the observer.
type Sample struct {
	Time         time.Time `json:"time"`
	ElevationDeg float64   `json:"elevation_deg"`
}

// Pass describes a single visibility pass over an observer location.
// StartTime ≤ PeakTime ≤ EndTime always holds.
type Pass struct {
	StartTime        time.Time `json:"start_time"`
	PeakTime         time.Time `json:"peak_time"`
	EndTime          time.Time `json:"end_time"`
	PeakElevationDeg float64   `json:"peak_elevation_deg"`
}

// Duration returns the pass length.
func (p Pass) Duration() time.Duration {
	return p.EndTime.Sub(p.StartTime)
}

// DetectorState is the running state of the detection fold. It is a small
// value threaded through Advance, so detection stays pure and can be resumed
// from any checkpointed state.
type DetectorState struct {
	InPass   bool
	Start    time.Time
	PeakTime time.Time
	PeakEl   float64
}

// Advance classifies one adjacent sample pair against the threshold and
// returns the next state. When the pair completes a pass (a downward
// threshold crossing), the finished Pass is returned with emitted=true.
func (s DetectorState) Advance(t0, t1 time.Time, e0, e1, thresholdDeg float64) (next DetectorState, pass Pass, emitted bool) {
	if !s.InPass {
		switch {
		case e0 <= thresholdDeg && e1 > thresholdDeg:
			// Upward crossing: interpolate the AOS instant.
			s.InPass = true
			s.Start = interpCrossing(t0, t1, e0, e1, thresholdDeg)
			s.PeakEl = e1
			s.PeakTime = t1
		case e0 > thresholdDeg && e1 > thresholdDeg:
			// The series opens above threshold with no observed crossing.
			// Use the first timestamp rather than extrapolating before the
			// data window; this slightly understates the true duration.
			s.InPass = true
			s.Start = t0
			if e0 >= e1 {
				s.PeakEl = e0
				s.PeakTime = t0
			} else {
				s.PeakEl = e1
				s.PeakTime = t1
			}
		}
		return s, Pass{}, false
	}

	if e1 > s.PeakEl {
		s.PeakEl = e1
		s.PeakTime = t1
	}

	if e0 > thresholdDeg && e1 <= thresholdDeg {
		// Downward crossing: interpolate the LOS instant and close the pass.
		pass = Pass{
			StartTime:        s.Start,
			PeakTime:         s.PeakTime,
			EndTime:          interpCrossing(t0, t1, e0, e1, thresholdDeg),
			PeakElevationDeg: s.PeakEl,
		}
		return DetectorState{}, pass, true
	}

	return s, Pass{}, false
}

// Flush closes a pass left open at the end of input, using last as the end
// time: the true LOS lies beyond the observed window, so no interpolation is
// possible.
func (s DetectorState) Flush(last time.Time) (Pass, bool) {
	if !s.InPass {
		return Pass{}, false
	}
	return Pass{
		StartTime:        s.Start,
		PeakTime:         s.PeakTime,
		EndTime:          last,
		PeakElevationDeg: s.PeakEl,
	}, true
}

// Detect folds the detector state over an ordered elevation series and returns
// all visibility passes above thresholdDeg, in chronological order.
//
// Timestamps must be strictly increasing. Empty or mismatched-length inputs
// yield an empty result, not an error: in a streaming context a degenerate
// shape is benign and callers validate upstream.
func Detect(times []time.Time, elevationsDeg []float64, thresholdDeg float64) []Pass {
	if len(times) == 0 || len(times) != len(elevationsDeg) {
		return nil
	}

	var (
		state  DetectorState
		result []Pass
	)

	for i := 1; i < len(times); i++ {
		next, pass, emitted := state.Advance(
			times[i-1], times[i],
			elevationsDeg[i-1], elevationsDeg[i],
			thresholdDeg,
		)
		state = next
		if emitted {
			result = append(result, pass)
		}
	}

	if pass, ok := state.Flush(times[len(times)-1]); ok {
		result = append(result, pass)
	}

	metrics.AddPassesDetected(len(result))
	return result
}

// DetectSamples is Detect for a joined sample slice.
func DetectSamples(samples []Sample, thresholdDeg float64) []Pass {
	times := make([]time.Time, len(samples))
	elevations := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		elevations[i] = s.ElevationDeg
	}
	return Detect(times, elevations, thresholdDeg)
}

// interpCrossing linearly interpolates the instant the elevation crosses y
// between two samples. The fraction is clamped to [0, 1] so rounding can
// never move a boundary outside the sample pair; a zero slope pins the
// crossing to t0.
func interpCrossing(t0, t1 time.Time, y0, y1, y float64) time.Time {
	if y1 == y0 {
		return t0
	}
	frac := (y - y0) / (y1 - y0)
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return t0.Add(time.Duration(frac * float64(t1.Sub(t0))))
}
