package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/dark-platforms/core"
)

// TickHook runs on the tick goroutine after due timers have fired
type TickHook func(now time.Time)

// ClockScheduler drives a Scheduler on a fixed tick from its own goroutine
// Every continuation and hook runs on that goroutine, which is the single game thread
type ClockScheduler struct {
	sched *Scheduler
	log   *zap.Logger

	tickInterval time.Duration
	tickCount    atomic.Uint64

	hooksMu sync.RWMutex
	hooks   []TickHook

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewClockScheduler creates a clock scheduler ticking sched every tickInterval
func NewClockScheduler(sched *Scheduler, tickInterval time.Duration, log *zap.Logger) *ClockScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClockScheduler{
		sched:        sched,
		log:          log,
		tickInterval: tickInterval,
		stopChan:     make(chan struct{}),
	}
}

// Scheduler returns the driven scheduler
func (cs *ClockScheduler) Scheduler() *Scheduler {
	return cs.sched
}

// OnTick registers a hook, must be called before Start
func (cs *ClockScheduler) OnTick(h TickHook) {
	cs.hooksMu.Lock()
	cs.hooks = append(cs.hooks, h)
	cs.hooksMu.Unlock()
}

// TickCount returns ticks processed so far
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

// Start begins the tick loop
func (cs *ClockScheduler) Start() {
	if cs.running.CompareAndSwap(false, true) {
		cs.wg.Add(1)
		core.Go(cs.loop)
		cs.log.Debug("clock scheduler started", zap.Duration("tick", cs.tickInterval))
	}
}

// Stop halts the loop and cancels every pending timer on the scheduler
// Must not be called from a hook or continuation
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		if cs.running.CompareAndSwap(true, false) {
			close(cs.stopChan)
			cs.wg.Wait()
		}
		cs.sched.Stop()
		cs.log.Debug("clock scheduler stopped", zap.Uint64("ticks", cs.tickCount.Load()))
	})
}

func (cs *ClockScheduler) loop() {
	defer cs.wg.Done()

	ticker := time.NewTicker(cs.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stopChan:
			return
		case <-ticker.C:
			cs.Tick()
		}
	}
}

// Tick advances the scheduler once and runs hooks
// Exposed for hosts that own their frame loop
func (cs *ClockScheduler) Tick() {
	cs.sched.Advance()

	now := cs.sched.Now()
	cs.hooksMu.RLock()
	for _, h := range cs.hooks {
		h(now)
	}
	cs.hooksMu.RUnlock()

	cs.tickCount.Add(1)
}
