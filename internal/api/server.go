// Package api exposes the pass-prediction pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/enzeeeh/satellite-project/internal/auth"
	"github.com/enzeeeh/satellite-project/internal/cache"
	"github.com/enzeeeh/satellite-project/internal/health"
	"github.com/enzeeeh/satellite-project/internal/metrics"
	"github.com/enzeeeh/satellite-project/internal/station"
	"github.com/enzeeeh/satellite-project/internal/tle"
)

// Options configures the HTTP server and the defaults applied to prediction
// requests that omit parameters.
type Options struct {
	Addr       string
	TrustProxy bool
	Auth       auth.Config

	RatePerMinute int

	DefaultHorizon      time.Duration
	DefaultStep         time.Duration
	DefaultThresholdDeg float64
	MaxSamples          int
	Workers             int
}

// Server wires the prediction pipeline, TLE store, and station catalog into
// an HTTP surface.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	opts       Options

	store     *tle.Store
	fetcher   *tle.Fetcher
	diskCache *tle.Cache // optional
	stations  *station.Catalog
	results   *cache.ResultCache
}

// NewServer creates a configured HTTP server. diskCache and stations may be
// nil when the corresponding features are not configured.
func NewServer(opts Options, logger *slog.Logger, store *tle.Store, fetcher *tle.Fetcher, diskCache *tle.Cache, stations *station.Catalog, results *cache.ResultCache) *Server {
	s := &Server{
		logger:    logger,
		opts:      opts,
		store:     store,
		fetcher:   fetcher,
		diskCache: diskCache,
		stations:  stations,
		results:   results,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool { return store.Get() != nil }))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/passes/{norad_id}", s.handlePasses)
	mux.HandleFunc("GET /api/v1/elevations/{norad_id}", s.handleElevations)
	mux.HandleFunc("GET /api/v1/tle/metadata", s.handleTLEMetadata)
	mux.HandleFunc("POST /api/v1/tle/refresh", s.handleTLERefresh)
	mux.HandleFunc("GET /api/v1/stations", s.handleStations)

	// Middleware chain: metrics -> request ID -> logging -> rate limit -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(opts.Auth)(handler)
	handler = rateLimitMiddleware(newRateLimiter(opts.RatePerMinute), opts.TrustProxy)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not
// log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type requestIDKey struct{}

// requestIDMiddleware tags every request with an ID, honoring one supplied
// by an upstream proxy.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request ID stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"request_id", RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
