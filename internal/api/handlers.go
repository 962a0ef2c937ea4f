package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/enzeeeh/satellite-project/internal/cache"
	"github.com/enzeeeh/satellite-project/internal/passes"
	"github.com/enzeeeh/satellite-project/internal/propagation"
	"github.com/enzeeeh/satellite-project/internal/tle"
	"github.com/enzeeeh/satellite-project/internal/transform"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// predictionQuery is the parsed and defaulted parameter set of one request.
type predictionQuery struct {
	observer     transform.Observer
	stationName  string
	start        time.Time
	horizon      time.Duration
	step         time.Duration
	thresholdDeg float64
	residualKm   float64
	samples      bool
}

// parsePredictionQuery resolves query parameters against the server
// defaults. The observer comes either from lat/lon/alt or from a named
// station in the catalog.
func (s *Server) parsePredictionQuery(r *http.Request) (predictionQuery, error) {
	q := r.URL.Query()
	pq := predictionQuery{
		start:        time.Now().UTC(),
		horizon:      s.opts.DefaultHorizon,
		step:         s.opts.DefaultStep,
		thresholdDeg: s.opts.DefaultThresholdDeg,
	}

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return pq, fmt.Errorf("invalid start (want RFC 3339): %q", v)
		}
		pq.start = t.UTC()
	}
	if v := q.Get("horizon"); v != "" {
		sec, err := strconv.ParseFloat(v, 64)
		if err != nil || sec <= 0 {
			return pq, fmt.Errorf("invalid horizon seconds: %q", v)
		}
		pq.horizon = time.Duration(sec * float64(time.Second))
	}
	if v := q.Get("step"); v != "" {
		sec, err := strconv.ParseFloat(v, 64)
		if err != nil || sec <= 0 {
			return pq, fmt.Errorf("invalid step seconds: %q", v)
		}
		pq.step = time.Duration(sec * float64(time.Second))
	}
	if v := q.Get("threshold"); v != "" {
		deg, err := strconv.ParseFloat(v, 64)
		if err != nil || deg < 0 || deg >= 90 {
			return pq, fmt.Errorf("invalid threshold degrees: %q", v)
		}
		pq.thresholdDeg = deg
	}
	if v := q.Get("residual_km"); v != "" {
		km, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pq, fmt.Errorf("invalid residual_km: %q", v)
		}
		pq.residualKm = km
	}
	pq.samples = q.Get("samples") == "true"

	if name := q.Get("station"); name != "" {
		if s.stations == nil {
			return pq, fmt.Errorf("no station catalog configured")
		}
		st, ok := s.stations.Lookup(name)
		if !ok {
			return pq, fmt.Errorf("unknown station: %q", name)
		}
		pq.stationName = st.Name
		pq.observer = st.Observer()
		if st.MinElDeg > 0 && q.Get("threshold") == "" {
			pq.thresholdDeg = st.MinElDeg
		}
		return pq, nil
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" || lonStr == "" {
		return pq, fmt.Errorf("observer required: pass lat and lon, or station")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return pq, fmt.Errorf("invalid lat: %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return pq, fmt.Errorf("invalid lon: %q", lonStr)
	}
	alt := 0.0
	if v := q.Get("alt"); v != "" {
		alt, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return pq, fmt.Errorf("invalid alt meters: %q", v)
		}
	}
	pq.observer = transform.NewObserver(lat, lon, alt)
	return pq, nil
}

// sampleCount is the number of grid points a query will propagate.
func (pq predictionQuery) sampleCount() int {
	return int(pq.horizon/pq.step) + 1
}

func (pq predictionQuery) request(entry tle.Entry, residual propagation.Corrector, workers int) passes.Request {
	return passes.Request{
		Observer:       pq.observer,
		Entries:        []tle.Entry{entry},
		Corrector:      residual,
		Start:          pq.start,
		Horizon:        pq.horizon,
		Step:           pq.step,
		ThresholdDeg:   pq.thresholdDeg,
		Workers:        workers,
		IncludeSamples: pq.samples,
	}
}

// resolveEntry finds the element set for the norad_id path value.
func (s *Server) resolveEntry(w http.ResponseWriter, r *http.Request) (tle.Entry, *tle.Dataset, bool) {
	ds := s.store.Get()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE dataset loaded")
		return tle.Entry{}, nil, false
	}

	noradID, err := strconv.Atoi(r.PathValue("norad_id"))
	if err != nil || noradID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid NORAD ID")
		return tle.Entry{}, nil, false
	}

	entry, ok := s.store.Lookup(noradID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("satellite %d not in dataset", noradID))
		return tle.Entry{}, nil, false
	}
	return entry, ds, true
}

// predict runs the pipeline for one satellite, consulting the result cache.
func (s *Server) predict(r *http.Request, entry tle.Entry, ds *tle.Dataset, pq predictionQuery) (passes.SatellitePasses, bool) {
	var corrector propagation.Corrector
	if pq.residualKm != 0 {
		corrector = propagation.ConstantCorrector(pq.residualKm)
	}
	req := pq.request(entry, corrector, s.opts.Workers)

	var key string
	if s.results != nil {
		key = cache.Key(req, entry.NoradID, ds.FetchedAt)
		if result, ok := s.results.Get(key); ok {
			return result, true
		}
	}

	result := passes.Predict(r.Context(), req, s.logger)[0]
	if s.results != nil && result.Error == "" {
		s.results.Put(key, result)
	}
	return result, false
}

type passesResponse struct {
	NoradID        int             `json:"norad_id"`
	Name           string          `json:"name,omitempty"`
	Station        string          `json:"station,omitempty"`
	Start          time.Time       `json:"start"`
	HorizonSeconds float64         `json:"horizon_seconds"`
	StepSeconds    float64         `json:"step_seconds"`
	ThresholdDeg   float64         `json:"threshold_deg"`
	Passes         []passes.Pass   `json:"passes"`
	Samples        []passes.Sample `json:"samples,omitempty"`
	Cached         bool            `json:"cached"`
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	entry, ds, ok := s.resolveEntry(w, r)
	if !ok {
		return
	}

	pq, err := s.parsePredictionQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if n := pq.sampleCount(); n > s.opts.MaxSamples {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":       fmt.Sprintf("request would propagate %d samples", n),
			"max_samples": s.opts.MaxSamples,
		})
		return
	}

	result, cached := s.predict(r, entry, ds, pq)
	if result.Error != "" {
		writeError(w, http.StatusUnprocessableEntity, result.Error)
		return
	}

	resp := passesResponse{
		NoradID:        result.NoradID,
		Name:           result.Name,
		Station:        pq.stationName,
		Start:          pq.start,
		HorizonSeconds: pq.horizon.Seconds(),
		StepSeconds:    pq.step.Seconds(),
		ThresholdDeg:   pq.thresholdDeg,
		Passes:         result.Passes,
		Samples:        result.Samples,
		Cached:         cached,
	}
	if resp.Passes == nil {
		resp.Passes = []passes.Pass{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElevations(w http.ResponseWriter, r *http.Request) {
	entry, ds, ok := s.resolveEntry(w, r)
	if !ok {
		return
	}

	pq, err := s.parsePredictionQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pq.samples = true
	if n := pq.sampleCount(); n > s.opts.MaxSamples {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":       fmt.Sprintf("request would propagate %d samples", n),
			"max_samples": s.opts.MaxSamples,
		})
		return
	}

	result, cached := s.predict(r, entry, ds, pq)
	if result.Error != "" {
		writeError(w, http.StatusUnprocessableEntity, result.Error)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"norad_id":     result.NoradID,
		"name":         result.Name,
		"step_seconds": pq.step.Seconds(),
		"elevations":   result.Samples,
		"cached":       cached,
	})
}

func (s *Server) handleTLEMetadata(w http.ResponseWriter, r *http.Request) {
	ds := s.store.Get()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE dataset loaded")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source":          ds.Source,
		"fetched_at":      ds.FetchedAt,
		"age_seconds":     s.store.AgeSeconds(),
		"satellite_count": len(ds.Satellites),
		"epoch_range": map[string]any{
			"min": ds.EpochRange.Min,
			"max": ds.EpochRange.Max,
		},
	})
}

func (s *Server) handleTLERefresh(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE source configured")
		return
	}

	ds, err := tle.Refresh(r.Context(), s.fetcher, s.store, s.diskCache, s.logger)
	if err != nil {
		s.logger.Error("TLE refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"satellite_count": len(ds.Satellites),
		"fetched_at":      ds.FetchedAt,
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	if s.stations == nil {
		writeJSON(w, http.StatusOK, map[string]any{"stations": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": s.stations.All()})
}
