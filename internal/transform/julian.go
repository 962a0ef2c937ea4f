package transform

import (
	"time"

	"github.com/soniakeys/meeus/julian"
)

// j2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00 TT).
const j2000 = 2451545.0

// JulianDateParts converts a UTC instant to a two-part Julian day: the Julian
// date at 0h UTC of the calendar day, and the elapsed fraction of that day.
// Keeping the parts separate avoids floating-point cancellation for instants
// far from the reference epoch; sum them only when reduced precision is
// acceptable.
func JulianDateParts(t time.Time) (day, frac float64) {
	t = t.UTC()
	day = julian.CalendarGregorianToJD(t.Year(), int(t.Month()), float64(t.Day()))
	sec := float64(t.Hour())*3600.0 +
		float64(t.Minute())*60.0 +
		float64(t.Second()) +
		float64(t.Nanosecond())/1e9
	return day, sec / 86400.0
}

// JulianDate converts a UTC instant to a single Julian Date.
func JulianDate(t time.Time) float64 {
	day, frac := JulianDateParts(t)
	return day + frac
}
