// Command passd serves satellite pass predictions over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enzeeeh/satellite-project/internal/api"
	"github.com/enzeeeh/satellite-project/internal/auth"
	"github.com/enzeeeh/satellite-project/internal/cache"
	"github.com/enzeeeh/satellite-project/internal/config"
	"github.com/enzeeeh/satellite-project/internal/metrics"
	"github.com/enzeeeh/satellite-project/internal/station"
	"github.com/enzeeeh/satellite-project/internal/tle"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configFile)
	if err != nil {
		bootLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	store := tle.NewStore()
	diskCache := tle.NewCache(cfg.TLECacheDir, cfg.TLECacheMaxFiles)
	fetcher := tle.NewFetcher(cfg.TLESourceURL, logger, cfg.TLEExtraURLs...)

	// Serve from the disk cache immediately; the refresh loop replaces it.
	tle.LoadFromCache(diskCache, store, logger)

	var stations *station.Catalog
	if cfg.StationCatalogPath != "" {
		stations, err = station.Load(cfg.StationCatalogPath)
		if err != nil {
			logger.Error("loading station catalog", "path", cfg.StationCatalogPath, "error", err)
			os.Exit(1)
		}
		logger.Info("station catalog loaded", "path", cfg.StationCatalogPath, "stations", stations.Len())
	}

	results := cache.NewResultCache(cache.Config{
		TTL:        cfg.ResultCacheTTL,
		MaxEntries: cfg.ResultCacheMaxEntries,
	}, logger)

	srv := api.NewServer(api.Options{
		Addr:                cfg.ListenAddr,
		TrustProxy:          cfg.TrustProxy,
		Auth:                auth.Config{Enabled: cfg.AuthEnabled, Token: cfg.AuthToken},
		RatePerMinute:       cfg.RateLimitPerMinute,
		DefaultHorizon:      cfg.DefaultHorizon,
		DefaultStep:         cfg.DefaultStep,
		DefaultThresholdDeg: cfg.DefaultThresholdDeg,
		MaxSamples:          cfg.MaxSamples,
		Workers:             cfg.Workers,
	}, logger, store, fetcher, diskCache, stations, results)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background TLE refresh loop. An immediate refresh runs first when the
	// disk cache had nothing to offer.
	go func() {
		if store.Get() == nil {
			if _, err := tle.Refresh(ctx, fetcher, store, diskCache, logger); err != nil {
				logger.Warn("initial TLE refresh failed", "error", err)
			}
		}
		ticker := time.NewTicker(cfg.TLERefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := tle.Refresh(ctx, fetcher, store, diskCache, logger); err != nil {
					logger.Warn("scheduled TLE refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Background goroutine to update the TLE dataset age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if age := store.AgeSeconds(); age >= 0 {
					metrics.SetTLEDatasetAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", cfg.ListenAddr,
			"auth_enabled", cfg.AuthEnabled,
			"refresh_interval", cfg.TLERefreshInterval.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
