package announcer

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/parameter"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// ErrSchedulerStopped is returned when the announcement cannot be sequenced
var ErrSchedulerStopped = errors.New("announcer scheduler stopped")

// Announcer plays word clips back to back on the scheduler
type Announcer struct {
	bank  *audio.ClipBank
	out   audio.Output
	sched *engine.Scheduler
	log   *zap.Logger

	mu      sync.Mutex
	gap     time.Duration
	current *announcement
}

// announcement is one running word sequence
type announcement struct {
	words []string
	next  int
	timer *engine.Timer
	done  bool
}

// New creates an announcer; gap is seconds shaved off each clip, clamped to [-0.5, 0.5]
func New(bank *audio.ClipBank, out audio.Output, sched *engine.Scheduler, gap float64, log *zap.Logger) *Announcer {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Announcer{
		bank:  bank,
		out:   out,
		sched: sched,
		log:   log.With(zap.String("component", "announcer")),
	}
	a.SetGap(gap)
	return a
}

// SetGap changes the inter-word gap for later words
func (a *Announcer) SetGap(gap float64) {
	gap = vmath.Clamp(gap, parameter.AnnouncerGapMin, parameter.AnnouncerGapMax)
	a.mu.Lock()
	a.gap = engine.Seconds(gap)
	a.mu.Unlock()
}

// Gap returns the inter-word gap
func (a *Announcer) Gap() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gap
}

// Announce starts speaking totalSeconds, replacing any announcement in progress
// The first word plays immediately; the rest follow on scheduler ticks
func (a *Announcer) Announce(totalSeconds int) error {
	ann := &announcement{words: Words(totalSeconds)}

	a.mu.Lock()
	if prev := a.current; prev != nil {
		a.stopLocked(prev)
	}
	a.current = ann
	a.mu.Unlock()

	a.log.Debug("announce", zap.Int("seconds", totalSeconds), zap.Strings("words", ann.words))
	return a.advance(ann)
}

// Busy reports whether words remain to be played
func (a *Announcer) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil && !a.current.done
}

// Cancel stops the announcement in progress; already playing words finish
func (a *Announcer) Cancel() {
	a.mu.Lock()
	if a.current != nil {
		a.stopLocked(a.current)
		a.current = nil
	}
	a.mu.Unlock()
}

func (a *Announcer) stopLocked(ann *announcement) {
	ann.done = true
	if ann.timer != nil {
		ann.timer.Cancel()
	}
}

// advance plays words until one needs a wait, then schedules itself
func (a *Announcer) advance(ann *announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for !ann.done && ann.next < len(ann.words) {
		key := ann.words[ann.next]
		ann.next++

		clip := a.bank.Get(key)
		if !clip.Valid() {
			a.log.Warn("word clip missing", zap.String("key", key))
			continue
		}
		if _, err := a.out.Play(audio.PlayRequest{Clip: clip, Volume: 1, Pitch: 1}); err != nil {
			a.log.Debug("word playback failed", zap.String("key", key), zap.Error(err))
		}

		wait := max(0, a.out.Duration(clip)-a.gap)
		ann.timer = a.sched.After(wait, func() { _ = a.advance(ann) })
		if ann.timer.State() == engine.TimerCancelled {
			ann.done = true
			return ErrSchedulerStopped
		}
		return nil
	}
	ann.done = true
	return nil
}
