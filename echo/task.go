package echo

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/parameter"
)

// TaskState tracks a playback task
type TaskState int32

const (
	TaskScheduled TaskState = iota
	TaskWaiting
	TaskPlaying
	TaskCompleted
	TaskCancelled
)

// String implements fmt.Stringer
func (s TaskState) String() string {
	switch s {
	case TaskScheduled:
		return "scheduled"
	case TaskWaiting:
		return "waiting"
	case TaskPlaying:
		return "playing"
	case TaskCompleted:
		return "completed"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// playbackTask plays one echo: wait out the delay, sound both channels, hold, release
// Transitions: Scheduled -> Waiting -> Playing -> Completed, Waiting|Playing -> Cancelled
type playbackTask struct {
	id       uuid.UUID
	owner    *Responder
	hitPoint r3.Vec
	delay    float64
	volume   float64
	pitch    float64

	mu     sync.Mutex
	state  TaskState
	timer  *engine.Timer
	source *audio.Source
}

func newPlaybackTask(owner *Responder, hitPoint r3.Vec, delay, volume, pitch float64) *playbackTask {
	return &playbackTask{
		id:       uuid.New(),
		owner:    owner,
		hitPoint: hitPoint,
		delay:    delay,
		volume:   volume,
		pitch:    pitch,
		state:    TaskScheduled,
	}
}

// State returns the current state
func (t *playbackTask) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// schedule registers the delay timer
// Returns false when the scheduler is stopped and the delay can never elapse
func (t *playbackTask) schedule(sched *engine.Scheduler) bool {
	t.mu.Lock()
	if t.state != TaskScheduled {
		t.mu.Unlock()
		return false
	}
	t.timer = sched.AfterSeconds(t.delay, t.begin)
	t.state = TaskWaiting
	stopped := t.timer.State() == engine.TimerCancelled
	if stopped {
		t.state = TaskCancelled
	}
	t.mu.Unlock()
	return !stopped
}

// begin runs on the scheduler when the round trip has elapsed
func (t *playbackTask) begin() {
	r := t.owner

	t.mu.Lock()
	if t.state != TaskWaiting {
		t.mu.Unlock()
		return
	}

	// The clip may have been swapped out while the echo was in flight
	clip := r.Clip()
	var length time.Duration
	if clip.Valid() {
		length = r.out.Duration(clip)
	}
	if length <= 0 {
		t.state = TaskCompleted
		t.mu.Unlock()
		r.log.Debug("echo clip gone before playback", zap.String("responder", r.name), zap.Stringer("task", t.id))
		r.aborted.Add(1)
		r.taskEnded(t)
		return
	}

	t.state = TaskPlaying
	src := audio.NewSource(r.out, t.hitPoint, r.reg)
	t.source = src

	started := 0
	if r.cfg.Channels.Has(ChannelSpatial) {
		_, err := src.Play(audio.PlayRequest{
			Clip:        clip,
			Volume:      t.volume,
			Pitch:       t.pitch,
			Spatial:     true,
			MinDistance: r.cfg.MinDistance,
			MaxDistance: r.cfg.MaxDistance,
		})
		if err != nil {
			r.log.Warn("spatial echo channel failed", zap.String("responder", r.name), zap.Error(err))
		} else {
			started++
		}
	}
	if r.cfg.Channels.Has(ChannelFallback) {
		_, err := src.Play(audio.PlayRequest{
			Clip:   clip,
			Volume: t.volume * parameter.EchoFallbackVolumeScale,
			Pitch:  t.pitch,
		})
		if err != nil {
			r.log.Warn("fallback echo channel failed", zap.String("responder", r.name), zap.Error(err))
		} else {
			started++
		}
	}

	if started == 0 {
		t.state = TaskCompleted
		t.source = nil
		t.mu.Unlock()
		src.Release()
		r.aborted.Add(1)
		r.taskEnded(t)
		return
	}

	hold := holdFor(length, t.pitch)
	t.timer = r.sched.After(hold, t.finish)
	if t.timer.State() == engine.TimerCancelled {
		// Scheduler stopped mid-flight, nothing will run finish
		t.state = TaskCancelled
		t.source = nil
		t.mu.Unlock()
		src.Release()
		r.cancelled.Add(1)
		r.taskEnded(t)
		return
	}
	t.mu.Unlock()

	r.played.Add(1)
	r.log.Debug("echo playing",
		zap.String("responder", r.name),
		zap.Stringer("task", t.id),
		zap.Float64("volume", t.volume),
		zap.Float64("pitch", t.pitch),
		zap.Int("channels", started),
		zap.Duration("hold", hold))
}

// finish releases the source once the pitched clip and buffer have elapsed
func (t *playbackTask) finish() {
	t.mu.Lock()
	if t.state != TaskPlaying {
		t.mu.Unlock()
		return
	}
	t.state = TaskCompleted
	src := t.source
	t.source = nil
	t.mu.Unlock()

	if src != nil {
		src.Release()
	}
	t.owner.taskEnded(t)
}

// cancel stops a waiting or playing task and releases its source
// Returns false when the task had already ended
func (t *playbackTask) cancel() bool {
	t.mu.Lock()
	if t.state == TaskCompleted || t.state == TaskCancelled {
		t.mu.Unlock()
		return false
	}
	t.state = TaskCancelled
	timer := t.timer
	src := t.source
	t.source = nil
	t.mu.Unlock()

	if timer != nil {
		timer.Cancel()
	}
	if src != nil {
		src.Release()
	}
	return true
}

// holdFor returns how long a task keeps its source after starting
func holdFor(length time.Duration, pitch float64) time.Duration {
	return audio.PlayedLength(length, pitch) + parameter.EchoPlaybackBuffer
}
