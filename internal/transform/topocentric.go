package transform

import "math"

// WGS-84 ellipsoid parameters (kilometers).
const (
	wgs84A  = 6378.137              // semi-major axis (km)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Observer is a fixed ground position on the WGS-84 ellipsoid.
// The Earth-fixed position is precomputed at construction so it can be reused
// across many satellite lookups; it depends only on the observer.
type Observer struct {
	LatDeg, LonDeg float64
	AltM           float64

	latRad, lonRad float64
	ecef           Vec3 // km
}

// NewObserver creates an Observer from geodetic coordinates.
// Latitude and longitude are in degrees, altitude in meters above the
// WGS-84 ellipsoid.
func NewObserver(latDeg, lonDeg, altM float64) Observer {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0
	altKm := altM / 1000.0

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// Radius of curvature in the prime vertical.
	N := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return Observer{
		LatDeg: latDeg,
		LonDeg: lonDeg,
		AltM:   altM,
		latRad: lat,
		lonRad: lon,
		ecef: Vec3{
			X: (N + altKm) * cosLat * math.Cos(lon),
			Y: (N + altKm) * cosLat * math.Sin(lon),
			Z: (N*(1-wgs84E2) + altKm) * sinLat,
		},
	}
}

// ECEF returns the observer's Earth-fixed position in kilometers.
func (o Observer) ECEF() Vec3 {
	return o.ecef
}

// ENU expresses an Earth-fixed target position (km) in the observer's local
// East-North-Up frame. The rotation uses the observer's latitude and
// longitude, not the target's.
func (o Observer) ENU(target Vec3) (east, north, up float64) {
	d := target.Sub(o.ecef)

	sinLat := math.Sin(o.latRad)
	cosLat := math.Cos(o.latRad)
	sinLon := math.Sin(o.lonRad)
	cosLon := math.Cos(o.lonRad)

	east = -sinLon*d.X + cosLon*d.Y
	north = -sinLat*cosLon*d.X - sinLat*sinLon*d.Y + cosLat*d.Z
	up = cosLat*cosLon*d.X + cosLat*sinLon*d.Y + sinLat*d.Z
	return east, north, up
}

// ElevationDeg returns the elevation angle of an Earth-fixed target position
// (km) above the observer's local horizontal plane, in degrees. 0° is the
// horizon, 90° the zenith; negative values are below the horizon.
//
// The formula atan2(up, hypot(east, north)) is exact for a planar local
// horizon and well-defined everywhere, including exact polar observers where
// longitude no longer determines direction.
func (o Observer) ElevationDeg(target Vec3) float64 {
	east, north, up := o.ENU(target)
	return math.Atan2(up, math.Hypot(east, north)) * 180.0 / math.Pi
}
