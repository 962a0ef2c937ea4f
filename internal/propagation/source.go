// Package propagation adapts an external orbital-state propagator into a
// time-indexed stream of inertial states.
//
// The propagator is treated as an injected capability: anything that can
// produce a TEME state for a UTC instant satisfies Source, so alternative
// propagators can be substituted without touching the rest of the pipeline.
package propagation

import (
	"fmt"
	"time"

	"github.com/enzeeeh/satellite-project/internal/transform"
)

// Source produces the inertial state of one orbiting object at a UTC instant.
//
// Implementations must be deterministic: identical timestamps yield
// bit-identical states. Failures are reported as *PropagationError and are
// never converted to zero or NaN states.
type Source interface {
	StateAt(t time.Time) (transform.StateTEME, error)
}

// Failure codes follow the SGP4 convention for non-zero status returns.
const (
	// CodeDegenerateOrbit marks mathematically degenerate mean elements
	// (non-finite propagator output).
	CodeDegenerateOrbit = 4
	// CodeDecayed marks an orbit that has decayed below the valid altitude
	// band for the model.
	CodeDecayed = 6
)

// PropagationError reports a non-zero propagator status for a single
// timestamp. It is fatal for that sample only; whether to continue with other
// timestamps is the caller's policy.
type PropagationError struct {
	Code    int
	At      time.Time
	NoradID int
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagation failed for NORAD %d at %s: status code %d",
		e.NoradID, e.At.UTC().Format(time.RFC3339Nano), e.Code)
}
