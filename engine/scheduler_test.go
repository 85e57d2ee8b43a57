package engine

import (
	"sync"
	"testing"
	"time"
)

func newTestScheduler() (*Scheduler, *MockTimeProvider) {
	clock := NewMockTimeProvider(time.Unix(0, 0))
	return NewScheduler(clock, nil), clock
}

func TestSchedulerFiresAfterDelay(t *testing.T) {
	s, clock := newTestScheduler()
	fired := 0
	s.After(100*time.Millisecond, func() { fired++ })

	clock.Advance(99 * time.Millisecond)
	s.Advance()
	if fired != 0 {
		t.Fatalf("timer fired early")
	}

	clock.Advance(time.Millisecond)
	s.Advance()
	if fired != 1 {
		t.Fatalf("Expected timer to fire once, fired %d", fired)
	}

	clock.Advance(time.Second)
	s.Advance()
	if fired != 1 {
		t.Errorf("timer fired more than once: %d", fired)
	}
}

func TestSchedulerOrdersByDueThenRegistration(t *testing.T) {
	s, clock := newTestScheduler()
	var order []int
	s.After(20*time.Millisecond, func() { order = append(order, 3) })
	s.After(10*time.Millisecond, func() { order = append(order, 1) })
	s.After(10*time.Millisecond, func() { order = append(order, 2) })

	clock.Advance(50 * time.Millisecond)
	if n := s.Advance(); n != 3 {
		t.Fatalf("Expected 3 continuations, ran %d", n)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, order)
		}
	}
}

func TestSchedulerZeroDelayWaitsForNextAdvance(t *testing.T) {
	s, _ := newTestScheduler()
	fired := 0
	s.After(0, func() {
		fired++
		s.After(0, func() { fired++ })
	})

	s.Advance()
	if fired != 1 {
		t.Fatalf("Expected only the first timer this advance, got %d", fired)
	}
	s.Advance()
	if fired != 2 {
		t.Errorf("Expected nested timer on the following advance, got %d", fired)
	}
}

func TestTimerCancel(t *testing.T) {
	s, clock := newTestScheduler()
	fired := false
	timer := s.After(10*time.Millisecond, func() { fired = true })

	if !timer.Cancel() {
		t.Fatal("first Cancel should report success")
	}
	if timer.Cancel() {
		t.Error("second Cancel should be a no-op")
	}
	if s.Pending() != 0 {
		t.Errorf("cancelled timer still pending")
	}

	clock.Advance(time.Second)
	s.Advance()
	if fired {
		t.Error("cancelled timer fired")
	}
	if timer.State() != TimerCancelled {
		t.Errorf("Expected TimerCancelled, got %v", timer.State())
	}
	if s.Cancelled() != 1 {
		t.Errorf("Expected 1 cancellation, got %d", s.Cancelled())
	}
}

func TestTimerCancelAfterFire(t *testing.T) {
	s, _ := newTestScheduler()
	timer := s.After(0, func() {})
	s.Advance()
	if timer.Cancel() {
		t.Error("Cancel after fire should return false")
	}
	if timer.State() != TimerFired {
		t.Errorf("Expected TimerFired, got %v", timer.State())
	}
}

func TestPostRunsBeforeTimers(t *testing.T) {
	s, _ := newTestScheduler()
	var order []string
	s.After(0, func() { order = append(order, "timer") })
	s.Post(func() { order = append(order, "post") })

	s.Advance()
	if len(order) != 2 || order[0] != "post" || order[1] != "timer" {
		t.Errorf("Expected [post timer], got %v", order)
	}
}

func TestPostFromManyGoroutines(t *testing.T) {
	s, _ := newTestScheduler()
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Post(func() { count++ })
		}()
	}
	wg.Wait()

	s.Advance()
	if count != 64 {
		t.Errorf("Expected 64 posted runs, got %d", count)
	}
}

func TestSchedulerStopCancelsPending(t *testing.T) {
	s, clock := newTestScheduler()
	a := s.After(time.Second, func() { t.Error("timer ran after Stop") })
	s.Stop()
	s.Stop()

	if a.State() != TimerCancelled {
		t.Errorf("Expected pending timer cancelled on Stop")
	}
	late := s.After(0, func() { t.Error("timer registered after Stop ran") })
	if late.State() != TimerCancelled {
		t.Errorf("After on a stopped scheduler should return a cancelled timer")
	}
	if s.Post(func() {}) {
		t.Error("Post on a stopped scheduler should fail")
	}

	clock.Advance(2 * time.Second)
	if n := s.Advance(); n != 0 {
		t.Errorf("stopped scheduler ran %d continuations", n)
	}
}

func TestPausableClockHoldsTimers(t *testing.T) {
	real := NewMockTimeProvider(time.Unix(100, 0))
	clock := NewPausableClockFrom(real)
	s := NewScheduler(clock, nil)

	fired := false
	s.After(100*time.Millisecond, func() { fired = true })

	clock.Pause()
	real.Advance(time.Second)
	s.Advance()
	if fired {
		t.Fatal("timer fired while clock paused")
	}
	if got := clock.TotalPauseDuration(); got != time.Second {
		t.Errorf("Expected 1s paused, got %v", got)
	}

	clock.Resume()
	real.Advance(100 * time.Millisecond)
	s.Advance()
	if !fired {
		t.Error("timer did not fire after resume")
	}
	if got := clock.Elapsed(); got != 100*time.Millisecond {
		t.Errorf("Expected 100ms game time elapsed, got %v", got)
	}
}

func TestClockSchedulerTickRunsHooks(t *testing.T) {
	s, clock := newTestScheduler()
	cs := NewClockScheduler(s, time.Millisecond, nil)

	ticks := 0
	cs.OnTick(func(now time.Time) { ticks++ })

	fired := false
	s.After(5*time.Millisecond, func() { fired = true })
	clock.Advance(5 * time.Millisecond)

	cs.Tick()
	if !fired {
		t.Error("Tick did not advance scheduler")
	}
	if ticks != 1 || cs.TickCount() != 1 {
		t.Errorf("Expected 1 tick, hooks=%d count=%d", ticks, cs.TickCount())
	}
}

func TestClockSchedulerStartStop(t *testing.T) {
	s := NewScheduler(NewTimeProvider(), nil)
	cs := NewClockScheduler(s, time.Millisecond, nil)

	done := make(chan struct{})
	s.After(2*time.Millisecond, func() { close(done) })

	cs.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire on the clock goroutine")
	}
	cs.Stop()
	cs.Stop()

	if s.Post(func() {}) {
		t.Error("scheduler should be stopped with the clock")
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(0.3); got != 300*time.Millisecond {
		t.Errorf("Expected 300ms, got %v", got)
	}
}
