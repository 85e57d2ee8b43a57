package audio

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/status"
)

// Source is a transient emission point that owns the channels started through it
// Created per echo at the hit point; Release stops everything and is idempotent
type Source struct {
	id       uuid.UUID
	out      Output
	position r3.Vec
	live     *atomic.Int64

	mu       sync.Mutex
	handles  []Handle
	released bool
}

// NewSource allocates a source at position; reg counts live sources
func NewSource(out Output, position r3.Vec, reg *status.Registry) *Source {
	reg = status.OrNew(reg)
	s := &Source{
		id:       uuid.New(),
		out:      out,
		position: position,
		live:     reg.Ints.Get(status.AudioSourcesLive),
	}
	s.live.Add(1)
	return s
}

// ID returns the source identifier
func (s *Source) ID() uuid.UUID {
	return s.id
}

// Position returns the emission point
func (s *Source) Position() r3.Vec {
	return s.position
}

// Play starts a channel owned by this source
// Spatial requests are placed at the source position
func (s *Source) Play(req PlayRequest) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, ErrSourceReleased
	}
	if req.Spatial {
		req.Position = s.position
	}
	h, err := s.out.Play(req)
	if err != nil {
		return nil, err
	}
	s.handles = append(s.handles, h)
	return h, nil
}

// Playing reports whether any owned channel is still sounding
func (s *Source) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.handles {
		if h.Playing() {
			return true
		}
	}
	return false
}

// Channels returns the number of channels started
func (s *Source) Channels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Release stops owned channels and frees the source
// Returns true only on the call that performed the release
func (s *Source) Release() bool {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return false
	}
	s.released = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for _, h := range handles {
		if h.Playing() {
			s.out.Stop(h)
		}
	}
	s.live.Add(-1)
	return true
}

// Released reports whether Release has run
func (s *Source) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
