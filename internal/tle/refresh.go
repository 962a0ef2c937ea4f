package tle

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/enzeeeh/satellite-project/internal/metrics"
)

// Refresh downloads a fresh catalog, parses it, and installs it in the
// store. The store's refresh mutex serializes concurrent callers; a failed
// refresh leaves the previous dataset in place. diskCache may be nil.
func Refresh(ctx context.Context, fetcher *Fetcher, store *Store, diskCache *Cache, logger *slog.Logger) (*Dataset, error) {
	store.Lock()
	defer store.Unlock()

	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching TLE data: %w", err)
	}

	entries, err := Parse(bytes.NewReader(raw), logger)
	if err != nil {
		return nil, fmt.Errorf("parsing TLE data: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("TLE source returned no parseable entries")
	}

	now := time.Now().UTC()
	ds := &Dataset{
		Source:     fetcher.SourceURL(),
		FetchedAt:  now,
		Satellites: entries,
	}
	ds.ComputeEpochRange()
	store.Set(ds)

	metrics.SetTLEDatasetCount(len(entries))
	metrics.SetTLEDatasetAge(0)

	if diskCache != nil {
		if err := diskCache.Write(raw, now); err != nil {
			logger.Warn("writing TLE disk cache failed", "error", err)
		}
	}

	logger.Info("TLE dataset refreshed", "satellites", len(entries), "source", ds.Source)
	return ds, nil
}

// LoadFromCache installs the newest disk-cached catalog, if any. Lets the
// service serve predictions immediately after a restart.
func LoadFromCache(diskCache *Cache, store *Store, logger *slog.Logger) bool {
	data, ts, err := diskCache.LoadLatest()
	if err != nil {
		logger.Info("no TLE cache found, starting without TLE data", "error", err)
		return false
	}

	entries, err := Parse(bytes.NewReader(data), logger)
	if err != nil || len(entries) == 0 {
		logger.Warn("failed to parse cached TLE data", "error", err)
		return false
	}

	ds := &Dataset{
		Source:     "cache",
		FetchedAt:  ts,
		Satellites: entries,
	}
	ds.ComputeEpochRange()
	store.Set(ds)

	metrics.SetTLEDatasetCount(len(entries))
	logger.Info("loaded TLE data from cache", "count", len(entries), "cached_at", ts.Format(time.RFC3339))
	return true
}
