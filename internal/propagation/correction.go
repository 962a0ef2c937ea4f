package propagation

import (
	"time"

	"github.com/enzeeeh/satellite-project/internal/transform"
)

// Corrector supplies a scalar along-track residual correction in kilometers
// for a given instant. It is an extension point for external bias models; the
// pipeline itself never trains or stores one.
type Corrector interface {
	ResidualKm(t time.Time) float64
}

// ConstantCorrector applies the same along-track offset at every instant.
// Useful for calibration runs and tests.
type ConstantCorrector float64

func (c ConstantCorrector) ResidualKm(time.Time) float64 {
	return float64(c)
}

// ApplyAlongTrack shifts a TEME position along the normalized velocity
// direction by residualKm, leaving the velocity untouched. A zero-magnitude
// velocity makes the along-track direction undefined, so the correction is
// skipped.
func ApplyAlongTrack(s transform.StateTEME, residualKm float64) transform.StateTEME {
	vmag := s.Velocity.Norm()
	if vmag == 0 {
		return s
	}
	s.Position = s.Position.Add(s.Velocity.Scale(residualKm / vmag))
	return s
}

// Corrected wraps a Source so every propagated state receives the corrector's
// along-track offset before the Earth-rotation step.
type Corrected struct {
	Source    Source
	Corrector Corrector
}

func (c Corrected) StateAt(t time.Time) (transform.StateTEME, error) {
	s, err := c.Source.StateAt(t)
	if err != nil {
		return transform.StateTEME{}, err
	}
	return ApplyAlongTrack(s, c.Corrector.ResidualKm(t)), nil
}
