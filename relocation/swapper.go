// Package relocation runs the two-object collect loop: reaching the active object
// activates its partner somewhere else
package relocation

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/parameter"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// Kind identifies one of the two swapped objects
type Kind uint8

const (
	KindTeleporter Kind = iota
	KindCrystal
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case KindTeleporter:
		return "teleporter"
	case KindCrystal:
		return "crystal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Other returns the partner object
func (k Kind) Other() Kind {
	if k == KindCrystal {
		return KindTeleporter
	}
	return KindCrystal
}

// ErrUnknownKind is returned for kinds other than teleporter and crystal
var ErrUnknownKind = errors.New("unknown relocation object")

// Placer picks a new spot for an object around the player
type Placer interface {
	Place(player r3.Vec, minDist, maxDist float64) r3.Vec
}

// Object is one swappable target
type Object struct {
	Kind     Kind
	Position r3.Vec
	Active   bool
	// Collectable is false between collection and the next relocation
	Collectable bool
}

// SwapHook observes every relocation
type SwapHook func(obj Object)

// Swapper owns the crystal and teleporter state
type Swapper struct {
	player  core.Listener
	placer  Placer
	out     audio.Output
	collect *audio.Clip
	log     *zap.Logger
	minDist float64
	maxDist float64

	mu      sync.Mutex
	objects [2]Object
	swaps   int
	hooks   []SwapHook
}

// Options configure a Swapper
type Options struct {
	Player      core.Listener
	Placer      Placer
	Output      audio.Output
	CollectClip *audio.Clip
	MinDistance float64
	MaxDistance float64
	Logger      *zap.Logger
}

// NewSwapper starts with the teleporter active and placed, the crystal hidden
func NewSwapper(opts Options) (*Swapper, error) {
	if opts.Player == nil || opts.Placer == nil {
		return nil, errors.New("relocation needs a player and a placer")
	}
	minDist, maxDist := opts.MinDistance, opts.MaxDistance
	if minDist <= 0 && maxDist <= 0 {
		minDist, maxDist = parameter.RelocationMinDistance, parameter.RelocationMaxDistance
	}
	if minDist < 0 || maxDist < minDist {
		return nil, fmt.Errorf("relocation distance range [%v, %v] invalid", minDist, maxDist)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Swapper{
		player:  opts.Player,
		placer:  opts.Placer,
		out:     opts.Output,
		collect: opts.CollectClip,
		log:     log.With(zap.String("component", "relocation")),
		minDist: minDist,
		maxDist: maxDist,
	}
	s.objects[KindTeleporter] = Object{Kind: KindTeleporter}
	s.objects[KindCrystal] = Object{Kind: KindCrystal}

	if err := s.Activate(KindTeleporter); err != nil {
		return nil, err
	}
	return s, nil
}

// OnSwap registers a hook run after each relocation
func (s *Swapper) OnSwap(h SwapHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

// Object returns a snapshot of kind
func (s *Swapper) Object(kind Kind) (Object, error) {
	if kind > KindCrystal {
		return Object{}, ErrUnknownKind
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[kind], nil
}

// ActiveKind returns the currently collectable object
func (s *Swapper) ActiveKind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[KindCrystal].Active {
		return KindCrystal
	}
	return KindTeleporter
}

// Swaps returns completed collect cycles
func (s *Swapper) Swaps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swaps
}

// Activate shows kind, hides its partner and relocates kind around the player
func (s *Swapper) Activate(kind Kind) error {
	if kind > KindCrystal {
		return ErrUnknownKind
	}
	s.mu.Lock()
	s.objects[kind.Other()].Active = false
	s.objects[kind].Active = true
	s.objects[kind].Collectable = true
	s.mu.Unlock()
	return s.Relocate(kind)
}

// Deactivate hides kind
func (s *Swapper) Deactivate(kind Kind) error {
	if kind > KindCrystal {
		return ErrUnknownKind
	}
	s.mu.Lock()
	s.objects[kind].Active = false
	s.objects[kind].Collectable = false
	s.mu.Unlock()
	return nil
}

// Relocate moves kind to a placer-chosen spot at least the minimum distance from the player
func (s *Swapper) Relocate(kind Kind) error {
	if kind > KindCrystal {
		return ErrUnknownKind
	}
	player := s.player.ListenerPosition()
	pos := s.placer.Place(player, s.minDist, s.maxDist)
	// Objects live on the game plane
	pos.Z = 0

	s.mu.Lock()
	s.objects[kind].Position = pos
	obj := s.objects[kind]
	hooks := append([]SwapHook(nil), s.hooks...)
	s.mu.Unlock()

	s.log.Debug("relocated",
		zap.Stringer("kind", kind),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
		zap.Float64("distance", vmath.Distance(pos, r3.Vec{X: player.X, Y: player.Y})))
	for _, h := range hooks {
		h(obj)
	}
	return nil
}

// Trigger handles the player entering an object
// Collecting the active object plays the collect clip and activates its partner
// Returns false when kind was not collectable
func (s *Swapper) Trigger(kind Kind) (bool, error) {
	if kind > KindCrystal {
		return false, ErrUnknownKind
	}
	s.mu.Lock()
	obj := s.objects[kind]
	if !obj.Active || !obj.Collectable {
		s.mu.Unlock()
		return false, nil
	}
	s.objects[kind].Collectable = false
	s.swaps++
	s.mu.Unlock()

	s.playCollect()
	s.log.Info("collected", zap.Stringer("kind", kind))
	return true, s.Activate(kind.Other())
}

// Reached triggers the active object when pos is within radius of it
func (s *Swapper) Reached(pos r3.Vec, radius float64) (bool, error) {
	kind := s.ActiveKind()
	obj, err := s.Object(kind)
	if err != nil {
		return false, err
	}
	if vmath.Distance(pos, obj.Position) > radius {
		return false, nil
	}
	return s.Trigger(kind)
}

func (s *Swapper) playCollect() {
	if s.out == nil || !s.collect.Valid() {
		return
	}
	if _, err := s.out.Play(audio.PlayRequest{Clip: s.collect, Volume: 1, Pitch: 1}); err != nil {
		s.log.Debug("collect clip failed", zap.Error(err))
	}
}

// RingPlacer steps around the player at a fixed angle increment
// Deterministic stand-in for randomized placement
type RingPlacer struct {
	mu    sync.Mutex
	angle float64
	Step  float64 // radians per placement
}

// NewRingPlacer creates a placer advancing step radians each call
func NewRingPlacer(step float64) *RingPlacer {
	return &RingPlacer{Step: step}
}

// Place implements Placer; the radius is the middle of the range
func (p *RingPlacer) Place(player r3.Vec, minDist, maxDist float64) r3.Vec {
	p.mu.Lock()
	a := p.angle
	p.angle = math.Mod(p.angle+p.Step, 2*math.Pi)
	p.mu.Unlock()

	r := (minDist + maxDist) / 2
	return r3.Vec{X: player.X + math.Cos(a)*r, Y: player.Y + math.Sin(a)*r}
}
