package engine

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/dark-platforms/parameter"
)

// TimerState tracks a timer through its lifetime
type TimerState int32

const (
	TimerPending TimerState = iota
	TimerFired
	TimerCancelled
)

// Timer is a single delayed continuation registered with a Scheduler
// Cancel is the cancellation token: safe from any goroutine, idempotent
type Timer struct {
	sched *Scheduler
	fn    func()
	due   time.Time
	seq   uint64
	index int // heap position, -1 once removed
	state atomic.Int32
}

// Due returns the scheduler time at which the timer fires
func (t *Timer) Due() time.Time {
	return t.due
}

// State returns the current timer state
func (t *Timer) State() TimerState {
	return TimerState(t.state.Load())
}

// Cancel prevents the continuation from running
// Returns true if this call cancelled a pending timer
func (t *Timer) Cancel() bool {
	if !t.state.CompareAndSwap(int32(TimerPending), int32(TimerCancelled)) {
		return false
	}
	t.sched.cancelled.Add(1)
	t.sched.remove(t)
	return true
}

// Scheduler is the cooperative delay primitive driven by the host tick
// Continuations run on the goroutine calling Advance, one at a time, never concurrently
// After, Post and Cancel are safe from any goroutine
type Scheduler struct {
	clock Clock
	log   *zap.Logger

	mu     sync.Mutex
	timers timerHeap
	seq    uint64
	posted []func()
	closed bool

	fired     atomic.Uint64
	cancelled atomic.Uint64
}

// NewScheduler creates a scheduler reading time from clock
func NewScheduler(clock Clock, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		clock:  clock,
		log:    log,
		posted: make([]func(), 0, parameter.PostQueueSize),
	}
}

// Now returns the scheduler's current time
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After registers fn to run once d has elapsed on the scheduler clock
// Negative d is treated as zero; the earliest a timer fires is the next Advance
// Returns a cancelled timer if the scheduler is stopped
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	t := &Timer{sched: s, fn: fn, index: -1}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		t.state.Store(int32(TimerCancelled))
		return t
	}

	s.seq++
	t.seq = s.seq
	t.due = s.clock.Now().Add(d)
	heap.Push(&s.timers, t)
	return t
}

// AfterSeconds is After with a float seconds delay
func (s *Scheduler) AfterSeconds(sec float64, fn func()) *Timer {
	return s.After(Seconds(sec), fn)
}

// Post queues fn to run at the start of the next Advance
// Used by input goroutines to hand work to the tick goroutine
func (s *Scheduler) Post(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.posted = append(s.posted, fn)
	return true
}

// Advance runs posted work, then every timer due at the current clock reading
// Timers registered while advancing wait for the next call
// Returns the number of continuations executed
func (s *Scheduler) Advance() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	posted := s.posted
	s.posted = make([]func(), 0, parameter.PostQueueSize)
	horizon := s.seq
	s.mu.Unlock()

	ran := 0
	for _, fn := range posted {
		fn()
		ran++
	}

	now := s.clock.Now()
	for {
		t := s.popDue(now, horizon)
		if t == nil {
			break
		}
		if !t.state.CompareAndSwap(int32(TimerPending), int32(TimerFired)) {
			continue
		}
		s.fired.Add(1)
		t.fn()
		ran++
	}
	return ran
}

// Pending returns the number of timers waiting to fire
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Fired returns the number of timers that have run
func (s *Scheduler) Fired() uint64 {
	return s.fired.Load()
}

// Cancelled returns the number of timers cancelled before running
func (s *Scheduler) Cancelled() uint64 {
	return s.cancelled.Load()
}

// Stop cancels every pending timer and drops posted work
// Further After calls return cancelled timers; safe to call multiple times
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	n := 0
	for _, t := range s.timers {
		t.index = -1
		if t.state.CompareAndSwap(int32(TimerPending), int32(TimerCancelled)) {
			n++
		}
	}
	s.timers = nil
	dropped := len(s.posted)
	s.posted = nil
	s.mu.Unlock()

	s.cancelled.Add(uint64(n))
	s.log.Debug("scheduler stopped", zap.Int("cancelled_timers", n), zap.Int("dropped_posts", dropped))
}

func (s *Scheduler) popDue(now time.Time, horizon uint64) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.timers) == 0 {
		return nil
	}
	// Timers registered during this Advance are due no earlier than now and carry a
	// higher seq, so they sort behind every older due timer
	head := s.timers[0]
	if head.due.After(now) || head.seq > horizon {
		return nil
	}
	heap.Pop(&s.timers)
	return head
}

func (s *Scheduler) remove(t *Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.index >= 0 && t.index < len(s.timers) && s.timers[t.index] == t {
		heap.Remove(&s.timers, t.index)
	}
}

// Seconds converts float seconds to a Duration
func Seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// timerHeap orders timers by due time, then registration order
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
