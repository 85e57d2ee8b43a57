package physics

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/core"
)

//go:generate go tool mockgen -destination=../mocks/raycaster_mock.go -package=mocks . Raycaster

// Hit is the nearest ray intersection
type Hit struct {
	Distance  float64
	Point     r3.Vec
	Normal    r3.Vec
	Responder core.EchoCapable // nil when the surface is inert
	Collider  Collider
}

// Raycaster is the spatial query consumed by the sonar emitter
type Raycaster interface {
	// Raycast returns the nearest hit along dir within maxDist
	// dir need not be unit length; a zero direction never hits
	Raycast(origin, dir r3.Vec, maxDist float64) (Hit, bool)
}

// World is the collider set of a level
// Safe for concurrent queries; edits take the write lock
type World struct {
	mu        sync.RWMutex
	colliders []Collider
}

// NewWorld creates a world holding the given colliders
func NewWorld(colliders ...Collider) *World {
	return &World{colliders: append([]Collider(nil), colliders...)}
}

// Add appends colliders
func (w *World) Add(colliders ...Collider) {
	w.mu.Lock()
	w.colliders = append(w.colliders, colliders...)
	w.mu.Unlock()
}

// Remove deletes c, returns false if absent
func (w *World) Remove(c Collider) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, existing := range w.colliders {
		if existing == c {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of colliders
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

// Update runs fn under the write lock, used to move colliders in place
func (w *World) Update(fn func()) {
	w.mu.Lock()
	fn()
	w.mu.Unlock()
}

// Raycast implements Raycaster by testing every collider and keeping the nearest
func (w *World) Raycast(origin, dir r3.Vec, maxDist float64) (Hit, bool) {
	if maxDist <= 0 || r3.Norm2(dir) == 0 {
		return Hit{}, false
	}
	dir = r3.Unit(dir)

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, c := range w.colliders {
		dist, normal, ok := c.Intersect(origin, dir, maxDist)
		if !ok || dist >= best.Distance {
			continue
		}
		best = Hit{
			Distance: dist,
			Normal:   normal,
			Collider: c,
		}
		found = true
	}
	if !found {
		return Hit{}, false
	}
	best.Point = r3.Add(origin, r3.Scale(best.Distance, dir))
	best.Responder = best.Collider.Responder()
	return best, true
}

// Step moves pos by delta unless a collider lies within delta plus radius
// Returns the resulting position and whether the move was blocked
func Step(rc Raycaster, pos, delta r3.Vec, radius float64) (r3.Vec, bool) {
	length := r3.Norm(delta)
	if length == 0 {
		return pos, false
	}
	if hit, ok := rc.Raycast(pos, delta, length+radius); ok {
		// Advance up to the skin distance so repeated steps settle against the wall
		travel := hit.Distance - radius
		if travel <= 0 {
			return pos, true
		}
		return r3.Add(pos, r3.Scale(travel/length, delta)), true
	}
	return r3.Add(pos, delta), false
}
