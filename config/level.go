package config

import (
	"fmt"

	"github.com/creasty/defaults"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/echo"
	"github.com/lixenwraith/dark-platforms/physics"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// Vec3 is a vector in config files
type Vec3 struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
	Z float64 `toml:"z" yaml:"z"`
}

// R3 converts to a gonum vector
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Surface is what every collider shares: a label, the echo clip key and optional tuning
// An empty Clip makes the surface silent
type Surface struct {
	Name string       `toml:"name" yaml:"name"`
	Clip string       `toml:"clip" yaml:"clip"`
	Echo *echo.Config `toml:"echo" yaml:"echo"`
}

// Echoes reports whether the surface answers pings
func (s Surface) Echoes() bool {
	return s.Clip != ""
}

// BoxSpec is an axis-aligned box; a box around the player acts as a room
type BoxSpec struct {
	Surface `yaml:",inline"`
	Center  Vec3 `toml:"center" yaml:"center"`
	Size    Vec3 `toml:"size" yaml:"size"`
}

// PlaneSpec is an infinite two-sided plane
type PlaneSpec struct {
	Surface `yaml:",inline"`
	Point   Vec3 `toml:"point" yaml:"point"`
	Normal  Vec3 `toml:"normal" yaml:"normal"`
}

// SphereSpec is a round obstacle
type SphereSpec struct {
	Surface `yaml:",inline"`
	Center  Vec3    `toml:"center" yaml:"center"`
	Radius  float64 `toml:"radius" yaml:"radius"`
}

// Level is the collision geometry of the sandbox
type Level struct {
	Boxes   []BoxSpec    `toml:"boxes" yaml:"boxes"`
	Planes  []PlaneSpec  `toml:"planes" yaml:"planes"`
	Spheres []SphereSpec `toml:"spheres" yaml:"spheres"`
}

// DefaultLevel is a walled room with two platforms, a pillar and a silent crate
func DefaultLevel() Level {
	return Level{
		Boxes: []BoxSpec{
			{Surface: Surface{Name: "room", Clip: audio.ClipEcho}, Center: Vec3{Y: 5}, Size: Vec3{X: 40, Y: 10, Z: 4}},
			{Surface: Surface{Name: "east ledge", Clip: audio.ClipEcho}, Center: Vec3{X: 6, Y: 2.5}, Size: Vec3{X: 4, Y: 0.5, Z: 2}},
			{Surface: Surface{Name: "west ledge", Clip: audio.ClipEcho}, Center: Vec3{X: -8, Y: 4}, Size: Vec3{X: 3, Y: 0.5, Z: 2}},
			{Surface: Surface{Name: "crate"}, Center: Vec3{X: 12, Y: 0.5}, Size: Vec3{X: 1, Y: 1, Z: 1}},
		},
		Spheres: []SphereSpec{
			{Surface: Surface{Name: "pillar", Clip: audio.ClipEcho}, Center: Vec3{X: -3, Y: 1.5}, Radius: 0.8},
		},
	}
}

// Len returns the number of surfaces
func (l Level) Len() int {
	return len(l.Boxes) + len(l.Planes) + len(l.Spheres)
}

// fillEchoDefaults completes partial per-surface echo tuning
// Zero fields of an override take the responder defaults
func (l *Level) fillEchoDefaults() error {
	var errs error
	fill := func(s *Surface) {
		if s.Echo != nil {
			errs = multierr.Append(errs, defaults.Set(s.Echo))
		}
	}
	for i := range l.Boxes {
		fill(&l.Boxes[i].Surface)
	}
	for i := range l.Planes {
		fill(&l.Planes[i].Surface)
	}
	for i := range l.Spheres {
		fill(&l.Spheres[i].Surface)
	}
	return errs
}

// Validate checks geometry and per-surface echo tuning
func (l Level) Validate() error {
	var errs error
	check := func(kind string, i int, s Surface, ok bool, what string) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s %d (%s) %s", ErrInvalid, kind, i, s.Name, what))
		}
		if s.Echo != nil {
			if err := s.Echo.Validate(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s %d (%s): %w", kind, i, s.Name, err))
			}
		}
	}
	for i, b := range l.Boxes {
		ok := b.Size.X > 0 && b.Size.Y > 0 && b.Size.Z > 0 && vmath.Finite(b.Center.R3())
		check("box", i, b.Surface, ok, "needs a positive size")
	}
	for i, p := range l.Planes {
		n := p.Normal.R3()
		ok := vmath.Finite(n) && r3.Norm(n) > 0 && vmath.Finite(p.Point.R3())
		check("plane", i, p.Surface, ok, "needs a non-zero normal")
	}
	for i, s := range l.Spheres {
		ok := s.Radius > 0 && vmath.Finite(s.Center.R3())
		check("sphere", i, s.Surface, ok, "needs a positive radius")
	}
	return errs
}

// ResponderFactory builds the echo capability of a surface
// Called only for surfaces with a clip key
type ResponderFactory func(s Surface) (core.EchoCapable, error)

// Colliders builds the physics colliders of the level
// Returns every factory error and the colliders that could be built
func (l Level) Colliders(factory ResponderFactory) ([]physics.Collider, error) {
	var errs error
	responder := func(s Surface) core.EchoCapable {
		if !s.Echoes() || factory == nil {
			return nil
		}
		r, err := factory(s)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("surface %s: %w", s.Name, err))
			return nil
		}
		return r
	}

	colliders := make([]physics.Collider, 0, l.Len())
	for _, b := range l.Boxes {
		colliders = append(colliders, physics.NewBox(b.Center.R3(), b.Size.R3(), responder(b.Surface)))
	}
	for _, p := range l.Planes {
		colliders = append(colliders, &physics.Plane{Point: p.Point.R3(), Normal: r3.Unit(p.Normal.R3()), Echo: responder(p.Surface)})
	}
	for _, s := range l.Spheres {
		colliders = append(colliders, &physics.Sphere{Center: s.Center.R3(), Radius: s.Radius, Echo: responder(s.Surface)})
	}
	return colliders, errs
}
