package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/parameter"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// BeepOutput renders channels through the beep speaker mixer
// Spatial channels use linear distance rolloff and stereo pan relative to the listener
type BeepOutput struct {
	cfg      *AudioConfig
	listener core.Listener
	log      *zap.Logger

	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	initialized bool
	closed      bool

	active atomic.Int64
}

// NewBeepOutput creates an output; Init must succeed before Play
func NewBeepOutput(cfg *AudioConfig, listener core.Listener, log *zap.Logger) *BeepOutput {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BeepOutput{
		cfg:      cfg,
		listener: listener,
		log:      log,
		mixer:    &beep.Mixer{},
		rate:     beep.SampleRate(cfg.SampleRate),
	}
}

// Init opens the speaker and attaches the mixer
func (o *BeepOutput) Init() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}
	if err := speaker.Init(o.rate, o.rate.N(o.cfg.BufferDuration)); err != nil {
		return fmt.Errorf("%w: %v", ErrNoAudioBackend, err)
	}
	speaker.Play(o.mixer)
	o.initialized = true
	o.log.Info("audio output initialized", zap.Int("sample_rate", int(o.rate)), zap.Duration("buffer", o.cfg.BufferDuration))
	return nil
}

// SetListener replaces the pose spatial channels are rendered against
func (o *BeepOutput) SetListener(l core.Listener) {
	o.mu.Lock()
	o.listener = l
	o.mu.Unlock()
}

type beepHandle struct {
	id    uuid.UUID
	ctrl  *beep.Ctrl
	done  atomic.Bool
	owner *BeepOutput
}

func (h *beepHandle) ID() uuid.UUID { return h.id }

func (h *beepHandle) Playing() bool { return !h.done.Load() }

// finish runs on the speaker goroutine or under the speaker lock
func (h *beepHandle) finish() {
	if h.done.CompareAndSwap(false, true) {
		h.owner.active.Add(-1)
	}
}

// Play implements Output
func (o *BeepOutput) Play(req PlayRequest) (Handle, error) {
	if !req.Clip.Valid() {
		return nil, ErrInvalidClip
	}

	o.mu.Lock()
	if o.closed || !o.initialized {
		o.mu.Unlock()
		return nil, ErrOutputClosed
	}
	listener := o.listener
	o.mu.Unlock()

	var s beep.Streamer = req.Clip.Streamer()

	// Pitch and sample rate conversion in one resampler
	ratio := Rate(req.Pitch) * float64(req.Clip.SampleRate()) / float64(o.rate)
	if math.Abs(ratio-1) > 1e-9 {
		s = beep.ResampleRatio(parameter.AudioResampleQuality, ratio, s)
	}

	gain := req.Volume * o.cfg.MasterVolume * o.cfg.ClipVolume(req.Clip.Key)
	pan := 0.0
	if req.Spatial && listener != nil {
		lp := listener.ListenerPosition()
		gain *= LinearRolloff(vmath.Distance(lp, req.Position), req.MinDistance, req.MaxDistance)
		pan = StereoPan(lp, req.Position)
	}
	s = newVolume(s, vmath.Clamp01(gain))
	if pan != 0 {
		s = &effects.Pan{Streamer: s, Pan: pan}
	}

	h := &beepHandle{id: uuid.New(), owner: o}
	h.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(h.finish))}
	o.active.Add(1)

	speaker.Lock()
	o.mixer.Add(h.ctrl)
	speaker.Unlock()

	return h, nil
}

// Stop implements Output
func (o *BeepOutput) Stop(h Handle) {
	bh, ok := h.(*beepHandle)
	if !ok || bh.owner != o {
		return
	}
	speaker.Lock()
	bh.ctrl.Streamer = nil
	speaker.Unlock()
	bh.finish()
}

// Duration implements Output
func (o *BeepOutput) Duration(clip *Clip) time.Duration {
	return clip.Length()
}

// Active returns channels currently in the mixer
func (o *BeepOutput) Active() int64 {
	return o.active.Load()
}

// Close drains the mixer and releases the speaker
func (o *BeepOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	if !o.initialized {
		return nil
	}
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	o.log.Info("audio output closed")
	return nil
}

// LinearRolloff returns the gain for a source at distance with full volume inside minDist
// and silence at maxDist
func LinearRolloff(distance, minDist, maxDist float64) float64 {
	if maxDist <= minDist {
		if distance <= minDist {
			return 1
		}
		return 0
	}
	if distance <= minDist {
		return 1
	}
	if distance >= maxDist {
		return 0
	}
	return (maxDist - distance) / (maxDist - minDist)
}

// StereoPan maps the lateral offset of a source to a pan in [-1, 1]
// World X is the listener's right
func StereoPan(listener, source r3.Vec) float64 {
	d := r3.Sub(source, listener)
	n := r3.Norm(d)
	if n == 0 {
		return 0
	}
	return vmath.Clamp(d.X/n, -1, 1)
}
