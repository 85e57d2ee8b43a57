// Package physics answers ray queries against the level geometry
// Shapes are analytic (plane, axis-aligned box, sphere); optional echo responders ride on each collider
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/core"
)

// hitEpsilon rejects self-intersection at the ray origin
const hitEpsilon = 1e-9

// Collider is a shape the raycaster can hit
type Collider interface {
	// Intersect returns the ray parameter and surface normal of the nearest hit within maxDist
	// dir is unit length; the normal faces back toward the ray
	Intersect(origin, dir r3.Vec, maxDist float64) (dist float64, normal r3.Vec, ok bool)
	// Responder returns the echo capability attached to the surface, nil for inert geometry
	Responder() core.EchoCapable
}

// Plane is an infinite two-sided plane through Point
type Plane struct {
	Point  r3.Vec
	Normal r3.Vec
	Echo   core.EchoCapable
}

// Intersect implements Collider
func (p *Plane) Intersect(origin, dir r3.Vec, maxDist float64) (float64, r3.Vec, bool) {
	n := r3.Unit(p.Normal)
	denom := r3.Dot(n, dir)
	if math.Abs(denom) < hitEpsilon {
		return 0, r3.Vec{}, false
	}
	t := r3.Dot(r3.Sub(p.Point, origin), n) / denom
	if t < hitEpsilon || t > maxDist {
		return 0, r3.Vec{}, false
	}
	if denom > 0 {
		n = r3.Scale(-1, n)
	}
	return t, n, true
}

// Responder implements Collider
func (p *Plane) Responder() core.EchoCapable {
	return p.Echo
}

// Box is an axis-aligned box between Min and Max
// A ray starting inside hits the wall it exits through, so boxes double as rooms
type Box struct {
	Min  r3.Vec
	Max  r3.Vec
	Echo core.EchoCapable
}

// NewBox creates a box from its center and full size
func NewBox(center, size r3.Vec, echo core.EchoCapable) *Box {
	half := r3.Scale(0.5, size)
	return &Box{Min: r3.Sub(center, half), Max: r3.Add(center, half), Echo: echo}
}

// Center returns the box midpoint
func (b *Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Contains reports whether p lies inside or on the box
func (b *Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersect implements Collider using the slab method
func (b *Box) Intersect(origin, dir r3.Vec, maxDist float64) (float64, r3.Vec, bool) {
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	tNear, tFar := math.Inf(-1), math.Inf(1)
	nearAxis, farAxis := -1, -1
	var nearSign, farSign float64

	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < hitEpsilon {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, r3.Vec{}, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		// Normal faces back along the ray for both the entry and the exit face
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tNear {
			tNear, nearAxis, nearSign = t1, i, sign
		}
		if t2 < tFar {
			tFar, farAxis, farSign = t2, i, sign
		}
		if tNear > tFar {
			return 0, r3.Vec{}, false
		}
	}

	t, axis, sign := tNear, nearAxis, nearSign
	if t < hitEpsilon {
		// Origin inside, report the exit wall with its inward normal
		t, axis, sign = tFar, farAxis, farSign
	}
	if axis < 0 || t < hitEpsilon || t > maxDist {
		return 0, r3.Vec{}, false
	}
	return t, axisNormal(axis, sign), true
}

// Responder implements Collider
func (b *Box) Responder() core.EchoCapable {
	return b.Echo
}

func axisNormal(axis int, sign float64) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: sign}
	case 1:
		return r3.Vec{Y: sign}
	default:
		return r3.Vec{Z: sign}
	}
}

// Sphere is a solid ball, used for pickups and props
type Sphere struct {
	Center r3.Vec
	Radius float64
	Echo   core.EchoCapable
}

// Contains reports whether p lies inside or on the sphere
func (s *Sphere) Contains(p r3.Vec) bool {
	return r3.Norm2(r3.Sub(p, s.Center)) <= s.Radius*s.Radius
}

// Intersect implements Collider
func (s *Sphere) Intersect(origin, dir r3.Vec, maxDist float64) (float64, r3.Vec, bool) {
	oc := r3.Sub(origin, s.Center)
	b := r3.Dot(oc, dir)
	c := r3.Dot(oc, oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, r3.Vec{}, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < hitEpsilon {
		t = -b + sq
	}
	if t < hitEpsilon || t > maxDist {
		return 0, r3.Vec{}, false
	}
	point := r3.Add(origin, r3.Scale(t, dir))
	n := r3.Unit(r3.Sub(point, s.Center))
	if c < 0 {
		n = r3.Scale(-1, n)
	}
	return t, n, true
}

// Responder implements Collider
func (s *Sphere) Responder() core.EchoCapable {
	return s.Echo
}
