package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedServer(cfg Config) http.Handler {
	mw := Middleware(cfg)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMiddlewareDisabled(t *testing.T) {
	h := authedServer(Config{Enabled: false, Token: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tle/refresh", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("disabled auth: got %d, want 200", rec.Code)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	h := authedServer(Config{Enabled: true, Token: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tle/refresh", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsWrongToken(t *testing.T) {
	h := authedServer(Config{Enabled: true, Token: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tle/refresh", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: got %d, want 401", rec.Code)
	}
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	h := authedServer(Config{Enabled: true, Token: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tle/refresh", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want 200", rec.Code)
	}
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	h := authedServer(Config{Enabled: true, Token: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tle/refresh", nil)
	req.Header.Set("Authorization", "secret") // no Bearer prefix
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("malformed header: got %d, want 401", rec.Code)
	}
}

func TestMiddlewareExemptPaths(t *testing.T) {
	h := authedServer(Config{Enabled: true, Token: "secret"})

	paths := []string{
		"/healthz",
		"/readyz",
		"/metrics",
		"/api/v1/tle/metadata",
		"/api/v1/stations",
		"/api/v1/passes/25544",
		"/api/v1/elevations/25544",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("exempt path %s: got %d, want 200", path, rec.Code)
		}
	}
}
