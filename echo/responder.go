// Package echo models how a surface answers a sonar ping
// A Responder turns a ray hit into a delayed, distance and height shaped playback task
package echo

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/status"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// Sentinel errors
var (
	ErrMissingAudioClip = errors.New("echo responder has no usable audio clip")
	ErrEchoLimit        = errors.New("echo responder at concurrent playback limit")
	ErrResponderClosed  = errors.New("echo responder closed")
	ErrSchedulerStopped = errors.New("echo scheduler stopped")
)

var _ core.EchoCapable = (*Responder)(nil)

// Deps are the collaborators shared by every responder in a level
type Deps struct {
	Output    audio.Output
	Scheduler *engine.Scheduler
	Registry  *status.Registry
	Logger    *zap.Logger
}

// Responder is the echo capability attached to a surface
type Responder struct {
	id    uuid.UUID
	name  string
	cfg   Config
	out   audio.Output
	sched *engine.Scheduler
	reg   *status.Registry
	log   *zap.Logger

	mu     sync.Mutex
	clip   *audio.Clip
	tasks  map[uuid.UUID]*playbackTask
	closed bool

	scheduled   *atomic.Int64
	missingClip *atomic.Int64
	dropped     *atomic.Int64
	played      *atomic.Int64
	aborted     *atomic.Int64
	cancelled   *atomic.Int64
	active      *atomic.Int64
	lastDelay   *status.AtomicFloat
	lastVolume  *status.AtomicFloat
	lastPitch   *status.AtomicFloat
}

// NewResponder creates a responder playing clip; a nil clip is accepted and reported per trigger
func NewResponder(name string, clip *audio.Clip, cfg Config, deps Deps) (*Responder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Output == nil || deps.Scheduler == nil {
		return nil, fmt.Errorf("%w: output and scheduler are required", ErrInvalidConfig)
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := status.OrNew(deps.Registry)

	return &Responder{
		id:    uuid.New(),
		name:  name,
		cfg:   cfg,
		out:   deps.Output,
		sched: deps.Scheduler,
		reg:   reg,
		log:   log.With(zap.String("component", "echo")),
		clip:  clip,
		tasks: make(map[uuid.UUID]*playbackTask),

		scheduled:   reg.Ints.Get(status.EchoScheduled),
		missingClip: reg.Ints.Get(status.EchoMissingClip),
		dropped:     reg.Ints.Get(status.EchoDropped),
		played:      reg.Ints.Get(status.EchoPlayed),
		aborted:     reg.Ints.Get(status.EchoAborted),
		cancelled:   reg.Ints.Get(status.EchoCancelled),
		active:      reg.Ints.Get(status.EchoActive),
		lastDelay:   reg.Floats.Get(status.EchoLastDelay),
		lastVolume:  reg.Floats.Get(status.EchoLastVolume),
		lastPitch:   reg.Floats.Get(status.EchoLastPitch),
	}, nil
}

// ID returns the responder identifier
func (r *Responder) ID() uuid.UUID {
	return r.id
}

// Name returns the responder label
func (r *Responder) Name() string {
	return r.name
}

// Config returns the responder tuning
func (r *Responder) Config() Config {
	return r.cfg
}

// Clip returns the current clip
func (r *Responder) Clip() *audio.Clip {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clip
}

// SetClip replaces the clip; in-flight tasks re-check it when their delay elapses
func (r *Responder) SetClip(clip *audio.Clip) {
	r.mu.Lock()
	r.clip = clip
	r.mu.Unlock()
}

// Active returns live playback tasks
func (r *Responder) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// TriggerEcho implements core.EchoCapable
// Schedules playback at hitPoint after delay seconds; listener is the ping-time listener position
func (r *Responder) TriggerEcho(delay float64, listener, hitPoint, hitNormal r3.Vec) error {
	clip := r.Clip()
	if !clip.Valid() || r.out.Duration(clip) <= 0 {
		r.missingClip.Add(1)
		return fmt.Errorf("%w: %s", ErrMissingAudioClip, r.name)
	}
	if delay < 0 {
		delay = 0
	}

	volume := Volume(vmath.Distance(hitPoint, listener), r.cfg.VolumeFalloffRate)
	pitch := Pitch(hitPoint.Y-listener.Y, r.cfg.PitchHeightFactor)
	task := newPlaybackTask(r, hitPoint, delay, volume, pitch)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrResponderClosed
	}
	if r.cfg.MaxConcurrent > 0 && len(r.tasks) >= r.cfg.MaxConcurrent {
		r.mu.Unlock()
		r.dropped.Add(1)
		return fmt.Errorf("%w: %s has %d live", ErrEchoLimit, r.name, r.cfg.MaxConcurrent)
	}
	r.tasks[task.id] = task
	r.mu.Unlock()
	r.active.Add(1)

	if !task.schedule(r.sched) {
		r.taskEnded(task)
		return ErrSchedulerStopped
	}

	r.scheduled.Add(1)
	r.lastDelay.Set(delay)
	r.lastVolume.Set(volume)
	r.lastPitch.Set(pitch)
	r.log.Debug("echo scheduled",
		zap.String("responder", r.name),
		zap.Stringer("task", task.id),
		zap.Float64("delay", delay),
		zap.Float64("volume", volume),
		zap.Float64("pitch", pitch),
		zap.Float64s("normal", []float64{hitNormal.X, hitNormal.Y, hitNormal.Z}))
	return nil
}

// taskEnded drops a finished task from the live set
func (r *Responder) taskEnded(t *playbackTask) {
	r.mu.Lock()
	_, ok := r.tasks[t.id]
	delete(r.tasks, t.id)
	r.mu.Unlock()

	if ok {
		r.active.Add(-1)
	}
}

// Close cancels every live task and releases its source
// Further triggers return ErrResponderClosed; safe to call multiple times
func (r *Responder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	tasks := make([]*playbackTask, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	r.mu.Unlock()

	n := 0
	for _, t := range tasks {
		if t.cancel() {
			n++
		}
		r.taskEnded(t)
	}
	r.cancelled.Add(int64(n))
	if n > 0 {
		r.log.Debug("echo responder closed", zap.String("responder", r.name), zap.Int("cancelled", n))
	}
	return nil
}
