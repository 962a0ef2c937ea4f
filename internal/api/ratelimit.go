package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/enzeeeh/satellite-project/internal/httputil"
)

// rateLimiter enforces a per-IP request budget over fixed one-minute
// windows. Prediction requests burn real CPU, so a scraper looping over the
// whole catalog gets throttled instead of starving everyone else.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	windows   map[string]*ipWindow
	now       func() time.Time
}

type ipWindow struct {
	start time.Time
	count int
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		perMinute: perMinute,
		windows:   make(map[string]*ipWindow),
		now:       time.Now,
	}
}

// allow registers one request for ip and reports whether it fits the budget.
func (l *rateLimiter) allow(ip string) bool {
	if l.perMinute <= 0 {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[ip]
	if !ok || now.Sub(w.start) >= time.Minute {
		// Opportunistically drop stale windows so the map does not grow
		// with one entry per client ever seen.
		if len(l.windows) > 10000 {
			for k, old := range l.windows {
				if now.Sub(old.start) >= time.Minute {
					delete(l.windows, k)
				}
			}
		}
		l.windows[ip] = &ipWindow{start: now, count: 1}
		return true
	}

	if w.count >= l.perMinute {
		return false
	}
	w.count++
	return true
}

// rateLimitMiddleware rejects over-budget prediction requests with 429.
// Probes and metrics scrapes are never limited.
func rateLimitMiddleware(l *rateLimiter, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePath(r.URL.Path) || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			ip := httputil.ClientIP(r, trustProxy)
			if !l.allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
