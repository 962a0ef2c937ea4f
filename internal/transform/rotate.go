// Package transform provides coordinate frame transformations for satellite
// positions.
//
// The primary transform is TEME (True Equator Mean Equinox) to ECEF
// (Earth-Centered Earth-Fixed), needed because SGP4 outputs positions in TEME
// while a fixed ground observer has constant coordinates only in ECEF.
//
// Method: simplified Vallado-style rotation about the polar axis using GMST
// only (TEME → PEF ≈ ECEF). Polar motion, the equation of the equinoxes, and
// the UT1-UTC offset are not modeled, which introduces under ~100 m of error.
// Callers needing better accuracy must apply those corrections upstream.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"math"
	"time"
)

// Vec3 is a Cartesian 3-vector. Units depend on context (km for positions,
// km/s for velocities).
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// StateTEME is a satellite state in the TEME frame at a single UTC instant.
type StateTEME struct {
	At       time.Time
	Position Vec3 // km
	Velocity Vec3 // km/s
}

// RotateToECEF rotates a TEME vector into the Earth-fixed frame by the sidereal
// angle theta (radians). The rotation is rigid, about the polar axis only:
//
//	x' = cosθ·x + sinθ·y
//	y' = -sinθ·x + cosθ·y
//	z' = z
//
// It preserves magnitude, is the identity at θ=0, and is 2π-periodic.
func RotateToECEF(v Vec3, theta float64) Vec3 {
	sinT, cosT := math.Sincos(theta)
	return Vec3{
		X: cosT*v.X + sinT*v.Y,
		Y: -sinT*v.X + cosT*v.Y,
		Z: v.Z,
	}
}

// StateToECEF rotates a TEME state's position and velocity into the Earth-fixed
// frame at the given sidereal angle. The velocity receives the same rigid
// rotation as the position; the ω×r term of the rotating frame is deliberately
// not applied. Earth-fixed velocities from this function are therefore
// quasi-inertial velocities expressed along Earth-fixed axes, which is what
// the along-track correction and elevation pipeline expect.
func StateToECEF(s StateTEME, theta float64) (position, velocity Vec3) {
	return RotateToECEF(s.Position, theta), RotateToECEF(s.Velocity, theta)
}
