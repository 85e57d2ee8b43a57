package audio

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/dark-platforms/engine"
)

// NullOutput is a silent Output that keeps clip timing
// Used when muted or when no audio backend is available
type NullOutput struct {
	clock  engine.Clock
	plays  atomic.Int64
	stops  atomic.Int64
	closed atomic.Bool
}

// NewNullOutput creates a silent output timed by clock
func NewNullOutput(clock engine.Clock) *NullOutput {
	if clock == nil {
		clock = engine.NewTimeProvider()
	}
	return &NullOutput{clock: clock}
}

type nullHandle struct {
	id      uuid.UUID
	clock   engine.Clock
	ends    time.Time
	stopped atomic.Bool
}

func (h *nullHandle) ID() uuid.UUID { return h.id }

func (h *nullHandle) Playing() bool {
	return !h.stopped.Load() && h.clock.Now().Before(h.ends)
}

// Play implements Output
func (o *NullOutput) Play(req PlayRequest) (Handle, error) {
	if o.closed.Load() {
		return nil, ErrOutputClosed
	}
	if !req.Clip.Valid() {
		return nil, ErrInvalidClip
	}
	o.plays.Add(1)
	return &nullHandle{
		id:    uuid.New(),
		clock: o.clock,
		ends:  o.clock.Now().Add(PlayedLength(req.Clip.Length(), req.Pitch)),
	}, nil
}

// Stop implements Output
func (o *NullOutput) Stop(h Handle) {
	if nh, ok := h.(*nullHandle); ok && nh.stopped.CompareAndSwap(false, true) {
		o.stops.Add(1)
	}
}

// Duration implements Output
func (o *NullOutput) Duration(clip *Clip) time.Duration {
	return clip.Length()
}

// Plays returns the number of channels started
func (o *NullOutput) Plays() int64 {
	return o.plays.Load()
}

// Stops returns the number of channels stopped early
func (o *NullOutput) Stops() int64 {
	return o.stops.Load()
}

// Close rejects further playback
func (o *NullOutput) Close() error {
	o.closed.Store(true)
	return nil
}
