package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/enzeeeh/satellite-project/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Selected for: most community adoption, pure Go (no CGO), battle-tested
// since 2016, explicit TEME output.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible per call. Propagation failures are detected by checking the output
// for NaN/Inf and unreasonable position magnitudes, then mapped onto the
// conventional SGP4 status codes.

// SGP4Source wraps the go-satellite library for a single satellite.
type SGP4Source struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4Source creates a propagation source from TLE lines. Construction is
// atomic: it either returns a fully initialized source or an error, never a
// partially parsed state.
//
// The TLE format is pre-validated before reaching the library, because
// go-satellite calls log.Fatal on malformed input (which would kill the
// process).
func NewSGP4Source(line1, line2 string, noradID int) (*SGP4Source, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Source{sat: sat, noradID: noradID}, nil
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// NoradID returns the catalog number this source propagates.
func (s *SGP4Source) NoradID() int {
	return s.noradID
}

// StateAt computes the satellite state at the given instant in the TEME frame
// (km, km/s). The timestamp is normalized to UTC before conversion to the
// propagator's calendar epoch; go-satellite's public API resolves whole
// seconds, so sub-second fractions are truncated here. Alternative Source
// implementations may carry full sub-second resolution.
func (s *SGP4Source) StateAt(t time.Time) (transform.StateTEME, error) {
	t = t.UTC()
	pos, vel := satellite.Propagate(s.sat,
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if !isFinite(pos.X) || !isFinite(pos.Y) || !isFinite(pos.Z) ||
		!isFinite(vel.X) || !isFinite(vel.Y) || !isFinite(vel.Z) {
		return transform.StateTEME{}, &PropagationError{Code: CodeDegenerateOrbit, At: t, NoradID: s.noradID}
	}

	// Position magnitude outside ~6200..50000 km means the model has left its
	// valid band (decay or ejection), even when the arithmetic stayed finite.
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return transform.StateTEME{}, &PropagationError{Code: CodeDecayed, At: t, NoradID: s.noradID}
	}

	return transform.StateTEME{
		At:       t,
		Position: transform.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Velocity: transform.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z},
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
