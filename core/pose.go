package core

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/vmath"
)

// Pose is an entity position with its orientation
// Zero Orientation is treated as identity
type Pose struct {
	Position    r3.Vec
	Orientation r3.Rotation
}

// Listener provides the position echoes are attenuated against
type Listener interface {
	ListenerPosition() r3.Vec
}

// PoseSource provides an entity's current pose
type PoseSource interface {
	Pose() Pose
}

// Transform is a mutex-guarded pose shared between movement and the scan loop
// Implements both PoseSource and Listener
type Transform struct {
	mu   sync.RWMutex
	pose Pose
}

// NewTransform creates a transform at position with identity orientation
func NewTransform(position r3.Vec) *Transform {
	return &Transform{pose: Pose{Position: position, Orientation: vmath.Identity()}}
}

// Pose returns a copy of the current pose
func (t *Transform) Pose() Pose {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pose
}

// ListenerPosition implements Listener
func (t *Transform) ListenerPosition() r3.Vec {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pose.Position
}

// SetPosition moves the transform
func (t *Transform) SetPosition(p r3.Vec) {
	t.mu.Lock()
	t.pose.Position = p
	t.mu.Unlock()
}

// Translate moves the transform by delta and returns the new position
func (t *Transform) Translate(delta r3.Vec) r3.Vec {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pose.Position = r3.Add(t.pose.Position, delta)
	return t.pose.Position
}

// SetOrientation replaces the orientation
func (t *Transform) SetOrientation(r r3.Rotation) {
	t.mu.Lock()
	t.pose.Orientation = r
	t.mu.Unlock()
}
