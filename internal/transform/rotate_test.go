package transform

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

// TestRotatePreservesMagnitude verifies |rotate(v, θ)| == |v| for a spread of
// vectors and angles.
func TestRotatePreservesMagnitude(t *testing.T) {
	vectors := []Vec3{
		{X: 6778.0, Y: 0, Z: 0},
		{X: 5094.18016, Y: 6127.64465, Z: 6380.34453},
		{X: -1.5, Y: 7.1, Z: -0.3},
		{X: 0, Y: 0, Z: 42164.0},
	}
	angles := []float64{0, 0.1, math.Pi / 2, math.Pi, 4.8949612, 2*math.Pi - 1e-9, -1.25}

	for _, v := range vectors {
		for _, theta := range angles {
			got := RotateToECEF(v, theta).Norm()
			if !floats.EqualWithinAbs(got, v.Norm(), 1e-9*math.Max(1, v.Norm())) {
				t.Errorf("|rotate(%v, %.4f)| = %.12f, want %.12f", v, theta, got, v.Norm())
			}
		}
	}
}

// TestRotateIdentity verifies θ=0 is the exact identity transform.
func TestRotateIdentity(t *testing.T) {
	v := Vec3{X: 5094.18016, Y: 6127.64465, Z: 6380.34453}
	if got := RotateToECEF(v, 0); got != v {
		t.Errorf("rotate(v, 0) = %v, want %v", got, v)
	}
}

// TestRotatePeriodicity verifies rotate(v, θ) == rotate(v, θ+2π) within
// floating-point tolerance.
func TestRotatePeriodicity(t *testing.T) {
	v := Vec3{X: 6778.0, Y: -2100.5, Z: 400.25}
	for _, theta := range []float64{0, 1.0, 3.5, 6.2} {
		a := RotateToECEF(v, theta)
		b := RotateToECEF(v, theta+2*math.Pi)
		if !floats.EqualWithinAbs(a.X, b.X, 1e-6) ||
			!floats.EqualWithinAbs(a.Y, b.Y, 1e-6) ||
			!floats.EqualWithinAbs(a.Z, b.Z, 1e-6) {
			t.Errorf("rotation not 2π-periodic at θ=%.2f: %v vs %v", theta, a, b)
		}
	}
}

// TestRotateQuarterTurn checks the handedness of the rotation: at θ=π/2 the
// inertial Y axis maps onto the Earth-fixed X axis.
func TestRotateQuarterTurn(t *testing.T) {
	got := RotateToECEF(Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)
	want := Vec3{X: 1, Y: 0, Z: 0}
	if !floats.EqualWithinAbs(got.X, want.X, 1e-12) ||
		!floats.EqualWithinAbs(got.Y, want.Y, 1e-12) ||
		!floats.EqualWithinAbs(got.Z, want.Z, 1e-12) {
		t.Errorf("rotate(ŷ, π/2) = %v, want %v", got, want)
	}
}

// TestStateToECEFRotatesVelocityIdentically verifies the velocity receives the
// same rigid rotation as the position, with no ω×r term.
func TestStateToECEFRotatesVelocityIdentically(t *testing.T) {
	s := StateTEME{
		At:       time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC),
		Position: Vec3{X: 6778.0, Y: 0, Z: 0},
		Velocity: Vec3{X: 0, Y: 7.5, Z: 0},
	}

	pos, vel := StateToECEF(s, 0)
	if pos != s.Position {
		t.Errorf("position at θ=0: got %v, want %v", pos, s.Position)
	}
	// At θ=0 the velocity must pass through unchanged: 7.5 km/s, not reduced
	// by Earth's rotation rate.
	if vel != s.Velocity {
		t.Errorf("velocity at θ=0: got %v, want %v", vel, s.Velocity)
	}

	theta := 1.2345
	pos, vel = StateToECEF(s, theta)
	if pos != RotateToECEF(s.Position, theta) || vel != RotateToECEF(s.Velocity, theta) {
		t.Error("StateToECEF does not apply the same rotation to position and velocity")
	}
}
