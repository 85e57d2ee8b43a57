package engine

import (
	"sync"
	"time"
)

// PausableClock provides game time that stops advancing while paused
// Echo timers read this clock, so pausing the game also holds pending echoes
type PausableClock struct {
	mu sync.RWMutex

	real      Clock
	startReal time.Time

	paused          bool
	pauseStartTime  time.Time
	totalPausedTime time.Duration
}

// NewPausableClock creates a pausable clock over real time
func NewPausableClock() *PausableClock {
	return NewPausableClockFrom(NewTimeProvider())
}

// NewPausableClockFrom creates a pausable clock over the given time source
func NewPausableClockFrom(real Clock) *PausableClock {
	return &PausableClock{
		real:      real,
		startReal: real.Now(),
	}
}

// Now returns current game time, frozen at the pause point while paused
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.paused {
		return pc.pauseStartTime.Add(-pc.totalPausedTime)
	}
	return pc.real.Now().Add(-pc.totalPausedTime)
}

// Pause stops game time advancement
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.paused {
		return
	}
	pc.paused = true
	pc.pauseStartTime = pc.real.Now()
}

// Resume continues game time advancement
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !pc.paused {
		return
	}
	pc.paused = false
	pc.totalPausedTime += pc.real.Now().Sub(pc.pauseStartTime)
	pc.pauseStartTime = time.Time{}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.paused
}

// TotalPauseDuration returns cumulative pause time including the current pause
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.paused {
		total += pc.real.Now().Sub(pc.pauseStartTime)
	}
	return total
}

// Elapsed returns game time since the clock was created
func (pc *PausableClock) Elapsed() time.Duration {
	return pc.Now().Sub(pc.startReal)
}
