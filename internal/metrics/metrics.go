// Package metrics exposes Prometheus instrumentation for the pass-prediction
// pipeline and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satpass_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satpass_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	propagationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satpass_propagation_duration_seconds",
			Help:    "Wall time spent propagating one sampling grid.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	propagationSamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satpass_propagation_samples_total",
			Help: "Grid samples propagated, by outcome.",
		},
		[]string{"outcome"},
	)

	passesDetectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satpass_passes_detected_total",
			Help: "Total number of visibility passes detected.",
		},
	)

	tleDatasetSatellites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satpass_tle_dataset_satellites",
			Help: "Number of satellites in the loaded TLE dataset.",
		},
	)

	tleDatasetAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satpass_tle_dataset_age_seconds",
			Help: "Age of the loaded TLE dataset in seconds.",
		},
	)

	resultCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satpass_result_cache_lookups_total",
			Help: "Prediction result cache lookups, by outcome.",
		},
		[]string{"outcome"},
	)

	resultCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satpass_result_cache_entries",
			Help: "Entries currently held in the prediction result cache.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		propagationDuration,
		propagationSamplesTotal,
		passesDetectedTotal,
		tleDatasetSatellites,
		tleDatasetAgeSeconds,
		resultCacheLookups,
		resultCacheEntries,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPropagation records one grid propagation batch.
func RecordPropagation(d time.Duration, successCount, errorCount int) {
	propagationDuration.Observe(d.Seconds())
	propagationSamplesTotal.WithLabelValues("success").Add(float64(successCount))
	propagationSamplesTotal.WithLabelValues("error").Add(float64(errorCount))
}

// AddPassesDetected counts passes emitted by the detector.
func AddPassesDetected(n int) {
	passesDetectedTotal.Add(float64(n))
}

// SetTLEDatasetCount records the satellite count of the current dataset.
func SetTLEDatasetCount(n int) {
	tleDatasetSatellites.Set(float64(n))
}

// SetTLEDatasetAge records the age of the current dataset in seconds.
func SetTLEDatasetAge(seconds float64) {
	tleDatasetAgeSeconds.Set(seconds)
}

// IncResultCacheHit counts a prediction served from the result cache.
func IncResultCacheHit() {
	resultCacheLookups.WithLabelValues("hit").Inc()
}

// IncResultCacheMiss counts a prediction computed fresh.
func IncResultCacheMiss() {
	resultCacheLookups.WithLabelValues("miss").Inc()
}

// SetResultCacheEntries records the current result cache size.
func SetResultCacheEntries(n int) {
	resultCacheEntries.Set(float64(n))
}

// knownRoutes are exact paths allowed as metric labels.
var knownRoutes = map[string]bool{
	"/":                    true,
	"/healthz":             true,
	"/readyz":              true,
	"/metrics":             true,
	"/api/v1/tle/metadata": true,
	"/api/v1/tle/refresh":  true,
	"/api/v1/stations":     true,
}

// normalizeRoute collapses parameterized and unknown paths so scanner traffic
// cannot blow up label cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/api/v1/passes/") {
		return "/api/v1/passes/{norad_id}"
	}
	if strings.HasPrefix(path, "/api/v1/elevations/") {
		return "/api/v1/elevations/{norad_id}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		route := normalizeRoute(r.URL.Path)
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
