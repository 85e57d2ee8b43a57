// Package vmath holds the float geometry shared by the sonar and echo models
// Vectors are gonum r3.Vec; Y is the vertical axis
package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Unit axes in world space
var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}
)

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Distance returns the euclidean distance between a and b
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Finite reports whether every component of v is a finite number
func Finite(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Identity returns the rotation that leaves vectors unchanged
func Identity() r3.Rotation {
	return r3.NewRotation(0, AxisY)
}

// Yaw returns a rotation of deg degrees about the vertical axis
func Yaw(deg float64) r3.Rotation {
	return r3.NewRotation(DegToRad(deg), AxisY)
}

// OrIdentity returns r, or the identity rotation when r is the zero value
// The zero r3.Rotation collapses every vector to the origin
func OrIdentity(r r3.Rotation) r3.Rotation {
	if r == (r3.Rotation{}) {
		return Identity()
	}
	return r
}
