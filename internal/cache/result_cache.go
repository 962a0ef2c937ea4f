// Package cache provides an in-memory TTL cache for computed pass
// predictions.
//
// Prediction requests are deterministic in their parameters and the loaded
// TLE dataset, so identical requests within the TTL can share one pipeline
// run. Entries are keyed by the full parameter set plus the dataset fetch
// time; a TLE refresh therefore invalidates every cached result implicitly.
package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/enzeeeh/satellite-project/internal/metrics"
	"github.com/enzeeeh/satellite-project/internal/passes"
)

// Config holds result cache tuning.
type Config struct {
	TTL        time.Duration // entry lifetime (default: 60s)
	MaxEntries int           // eviction threshold (default: 1024)
}

type entry struct {
	result   passes.SatellitePasses
	storedAt time.Time
}

// ResultCache is a TTL cache of per-satellite prediction results. Safe for
// concurrent use.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	config Config
	logger *slog.Logger
	now    func() time.Time // injectable clock

	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache creates a result cache with the given tuning, filling in
// defaults for zero values.
func NewResultCache(config Config, logger *slog.Logger) *ResultCache {
	if config.TTL <= 0 {
		config.TTL = 60 * time.Second
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1024
	}
	return &ResultCache{
		entries: make(map[string]entry),
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Key derives the cache key for one satellite's prediction. datasetFetchedAt
// ties the key to the element sets the result was computed from.
func Key(req passes.Request, noradID int, datasetFetchedAt time.Time) string {
	residual := 0.0
	if req.Corrector != nil {
		residual = req.Corrector.ResidualKm(req.Start)
	}
	return fmt.Sprintf("%d|%.6f|%.6f|%.1f|%d|%d|%d|%.2f|%.3f|%t|%d",
		noradID,
		req.Observer.LatDeg, req.Observer.LonDeg, req.Observer.AltM,
		req.Start.Unix(), int(req.Horizon.Seconds()), int(req.Step.Seconds()),
		req.ThresholdDeg, residual, req.IncludeSamples,
		datasetFetchedAt.Unix(),
	)
}

// Get returns the cached result for key if present and fresh.
func (c *ResultCache) Get(key string) (passes.SatellitePasses, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.storedAt) > c.config.TTL {
		c.misses.Add(1)
		metrics.IncResultCacheMiss()
		return passes.SatellitePasses{}, false
	}

	c.hits.Add(1)
	metrics.IncResultCacheHit()
	return e.result, true
}

// Put stores a result under key, evicting expired entries first and, if the
// cache is still full, dropping the oldest entry.
func (c *ResultCache) Put(key string, result passes.SatellitePasses) {
	now := c.now()

	c.mu.Lock()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.config.TTL {
			delete(c.entries, k)
		}
	}
	if len(c.entries) >= c.config.MaxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry{result: result, storedAt: now}
	count := len(c.entries)
	c.mu.Unlock()

	metrics.SetResultCacheEntries(count)
}

// Stats reports cache counters for diagnostics.
func (c *ResultCache) Stats() (entries int, hits, misses int64) {
	c.mu.RLock()
	entries = len(c.entries)
	c.mu.RUnlock()
	return entries, c.hits.Load(), c.misses.Load()
}
