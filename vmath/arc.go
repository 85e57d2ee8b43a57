package vmath

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// FanAngles returns count angles in degrees evenly spread over fan, centered on zero
// First angle is -fan/2, last is +fan/2; count must be at least 2
func FanAngles(count int, fan float64) []float64 {
	if count < 2 {
		return nil
	}
	angles := make([]float64, count)
	start := -fan * 0.5
	step := fan / float64(count-1)
	for i := range angles {
		angles[i] = start + float64(i)*step
	}
	return angles
}

// RotateAbout rotates v by deg degrees about axis using the right-hand rule
func RotateAbout(v r3.Vec, deg float64, axis r3.Vec) r3.Vec {
	return r3.NewRotation(DegToRad(deg), axis).Rotate(v)
}

// FanDirections returns the unit direction of every ray in a fan
// ref is rotated about axis by each angle, then by orientation
func FanDirections(angles []float64, ref, axis r3.Vec, orientation r3.Rotation) []r3.Vec {
	dirs := make([]r3.Vec, len(angles))
	for i, a := range angles {
		dirs[i] = r3.Unit(orientation.Rotate(RotateAbout(ref, a, axis)))
	}
	return dirs
}
