package passes

import (
	"context"
	"testing"
	"time"

	"github.com/enzeeeh/satellite-project/internal/tle"
	"github.com/enzeeeh/satellite-project/internal/transform"
)

// Real ISS TLE (epoch Feb 2025, valid for testing pass geometry).
var issEntry = tle.Entry{
	NoradID: 25544,
	Name:    "ISS (ZARYA)",
	Line1:   "1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993",
	Line2:   "2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058",
	Epoch:   time.Date(2025, 2, 14, 4, 19, 40, 0, time.UTC),
}

// NYC observer.
var nycObserver = transform.NewObserver(40.7128, -74.006, 10)

func TestPredictISS(t *testing.T) {
	req := Request{
		Observer:     nycObserver,
		Entries:      []tle.Entry{issEntry},
		Start:        time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
		Horizon:      24 * time.Hour,
		Step:         30 * time.Second,
		ThresholdDeg: 0,
	}

	results := Predict(context.Background(), req, testLogger)

	if len(results) != 1 {
		t.Fatalf("expected 1 satellite result, got %d", len(results))
	}

	sat := results[0]
	if sat.NoradID != 25544 {
		t.Errorf("NORAD ID = %d, want 25544", sat.NoradID)
	}
	if sat.Error != "" {
		t.Fatalf("unexpected error: %s", sat.Error)
	}

	// ISS in LEO has multiple horizon passes over 24h from NYC.
	if len(sat.Passes) == 0 {
		t.Fatal("expected at least 1 ISS pass over NYC in 24h")
	}

	for i, p := range sat.Passes {
		if p.PeakElevationDeg <= 0 {
			t.Errorf("pass %d: peak elevation %.2f should be positive", i, p.PeakElevationDeg)
		}
		if p.PeakElevationDeg > 90 {
			t.Errorf("pass %d: peak elevation %.2f exceeds 90 degrees", i, p.PeakElevationDeg)
		}
		if p.StartTime.After(p.PeakTime) || p.PeakTime.After(p.EndTime) {
			t.Errorf("pass %d: time ordering violated: start=%v peak=%v end=%v", i, p.StartTime, p.PeakTime, p.EndTime)
		}
		if i > 0 && !sat.Passes[i-1].EndTime.Before(p.StartTime) {
			t.Errorf("pass %d overlaps pass %d", i, i-1)
		}
		// A LEO pass lasts minutes, not hours.
		if p.Duration() > time.Hour {
			t.Errorf("pass %d: duration %v implausibly long", i, p.Duration())
		}

		t.Logf("pass %d: start=%v peakEl=%.1f° dur=%.0fs",
			i, p.StartTime.Format(time.RFC3339), p.PeakElevationDeg, p.Duration().Seconds())
	}
}

func TestPredictThresholdFilter(t *testing.T) {
	// A higher threshold must find no more passes than a lower one.
	base := Request{
		Observer: nycObserver,
		Entries:  []tle.Entry{issEntry},
		Start:    time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
		Horizon:  48 * time.Hour,
		Step:     30 * time.Second,
	}

	low := base
	low.ThresholdDeg = 0
	high := base
	high.ThresholdDeg = 45

	nLow := len(Predict(context.Background(), low, testLogger)[0].Passes)
	nHigh := len(Predict(context.Background(), high, testLogger)[0].Passes)

	if nLow == 0 {
		t.Fatal("expected passes at threshold 0")
	}
	if nHigh >= nLow {
		t.Errorf("threshold 45 passes (%d) should be fewer than threshold 0 passes (%d)", nHigh, nLow)
	}
}

func TestPredictCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	req := Request{
		Observer:     nycObserver,
		Entries:      []tle.Entry{issEntry},
		Start:        time.Now().UTC(),
		Horizon:      24 * time.Hour,
		Step:         30 * time.Second,
		ThresholdDeg: 0,
	}

	// Should not panic and should return quickly.
	results := Predict(ctx, req, testLogger)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestPredictInvalidTLE(t *testing.T) {
	badEntry := tle.Entry{
		NoradID: 99999,
		Name:    "BAD SAT",
		Line1:   "1 99999U 00000A   25045.00000000  .00000000  00000+0  00000+0 0  0000",
		Line2:   "2 99999   0.0000   0.0000 0000000   0.0000   0.0000  0.00000000 0000",
	}

	req := Request{
		Observer:     nycObserver,
		Entries:      []tle.Entry{issEntry, badEntry},
		Start:        time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
		Horizon:      24 * time.Hour,
		Step:         30 * time.Second,
		ThresholdDeg: 0,
	}

	results := Predict(context.Background(), req, testLogger)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// ISS should succeed; the degenerate element set reports a per-satellite
	// error instead of poisoning the batch.
	if results[0].Error != "" {
		t.Errorf("ISS should succeed, got error: %s", results[0].Error)
	}
	if results[1].Error == "" {
		t.Error("bad TLE should report error")
	}
}

func TestPredictIncludeSamples(t *testing.T) {
	req := Request{
		Observer:       nycObserver,
		Entries:        []tle.Entry{issEntry},
		Start:          time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
		Horizon:        time.Hour,
		Step:           time.Minute,
		ThresholdDeg:   10,
		IncludeSamples: true,
	}

	results := Predict(context.Background(), req, testLogger)
	if got, want := len(results[0].Samples), 61; got != want {
		t.Errorf("got %d samples, want %d", got, want)
	}
}

func BenchmarkPredict100Sats24h(b *testing.B) {
	entries := make([]tle.Entry, 100)
	for i := range entries {
		entries[i] = issEntry
		entries[i].NoradID = 25544 + i
	}

	req := Request{
		Observer:     nycObserver,
		Entries:      entries,
		Start:        time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
		Horizon:      24 * time.Hour,
		Step:         30 * time.Second,
		ThresholdDeg: 10,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Predict(context.Background(), req, testLogger)
	}
}
