// Command passpredict computes satellite visibility passes from a local TLE
// file and prints them as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/enzeeeh/satellite-project/internal/passes"
	"github.com/enzeeeh/satellite-project/internal/propagation"
	"github.com/enzeeeh/satellite-project/internal/station"
	"github.com/enzeeeh/satellite-project/internal/tle"
	"github.com/enzeeeh/satellite-project/internal/transform"
)

func main() {
	var (
		tlePath      = flag.String("tle", "", "path to TLE catalog file (required)")
		noradID      = flag.Int("norad", 0, "predict only this NORAD catalog number (default: all)")
		lat          = flag.Float64("lat", 0, "observer latitude in degrees")
		lon          = flag.Float64("lon", 0, "observer longitude in degrees")
		alt          = flag.Float64("alt", 0, "observer altitude in meters")
		stationName  = flag.String("station", "", "observer station name (requires -stations)")
		stationsPath = flag.String("stations", "", "path to station catalog YAML")
		startStr     = flag.String("start", "", "prediction start, RFC 3339 (default: now)")
		hours        = flag.Float64("hours", 24, "prediction horizon in hours")
		stepSec      = flag.Float64("step", 30, "sampling step in seconds")
		threshold    = flag.Float64("threshold", 10, "elevation threshold in degrees")
		residualKm   = flag.Float64("residual-km", 0, "constant along-track correction in km")
		samples      = flag.Bool("samples", false, "include the raw elevation series in the output")
		verbose      = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *tlePath == "" {
		fmt.Fprintln(os.Stderr, "passpredict: -tle is required")
		flag.Usage()
		os.Exit(2)
	}

	observer, err := resolveObserver(*stationName, *stationsPath, *lat, *lon, *alt)
	if err != nil {
		fatal(err)
	}

	f, err := os.Open(*tlePath)
	if err != nil {
		fatal(fmt.Errorf("opening TLE file: %w", err))
	}
	entries, err := tle.Parse(f, logger)
	f.Close()
	if err != nil {
		fatal(err)
	}
	if len(entries) == 0 {
		fatal(fmt.Errorf("no TLE entries in %s", *tlePath))
	}

	if *noradID != 0 {
		var match []tle.Entry
		for _, e := range entries {
			if e.NoradID == *noradID {
				match = append(match, e)
			}
		}
		if len(match) == 0 {
			fatal(fmt.Errorf("NORAD %d not found in %s", *noradID, *tlePath))
		}
		entries = match[len(match)-1:] // latest element set wins
	}

	start := time.Now().UTC()
	if *startStr != "" {
		start, err = time.Parse(time.RFC3339, *startStr)
		if err != nil {
			fatal(fmt.Errorf("parsing -start: %w", err))
		}
		start = start.UTC()
	}

	req := passes.Request{
		Observer:       observer,
		Entries:        entries,
		Start:          start,
		Horizon:        time.Duration(*hours * float64(time.Hour)),
		Step:           time.Duration(*stepSec * float64(time.Second)),
		ThresholdDeg:   *threshold,
		IncludeSamples: *samples,
	}
	if *residualKm != 0 {
		req.Corrector = propagation.ConstantCorrector(*residualKm)
	}

	results := passes.Predict(context.Background(), req, logger)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"start":         start,
		"hours":         *hours,
		"step_seconds":  *stepSec,
		"threshold_deg": *threshold,
		"satellites":    results,
	}); err != nil {
		fatal(err)
	}

	for _, sat := range results {
		if sat.Error != "" {
			os.Exit(1)
		}
	}
}

func resolveObserver(stationName, stationsPath string, lat, lon, alt float64) (transform.Observer, error) {
	if stationName != "" {
		if stationsPath == "" {
			return transform.Observer{}, fmt.Errorf("-station requires -stations")
		}
		catalog, err := station.Load(stationsPath)
		if err != nil {
			return transform.Observer{}, err
		}
		st, ok := catalog.Lookup(stationName)
		if !ok {
			return transform.Observer{}, fmt.Errorf("unknown station %q in %s", stationName, stationsPath)
		}
		return st.Observer(), nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return transform.Observer{}, fmt.Errorf("observer coordinates out of range: lat=%v lon=%v", lat, lon)
	}
	return transform.NewObserver(lat, lon, alt), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "passpredict:", err)
	os.Exit(1)
}
