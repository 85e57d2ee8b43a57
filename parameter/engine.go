package parameter

import "time"

// Engine Timing
const (
	// GameUpdateInterval is the scheduler tick, timers fire on tick boundaries
	GameUpdateInterval = 10 * time.Millisecond

	// FrameUpdateInterval is the sandbox render cadence
	FrameUpdateInterval = 16 * time.Millisecond

	// PostQueueSize bounds work posted to the scheduler from other goroutines
	PostQueueSize = 256
)

// Announcer Timing
const (
	AnnouncerDefaultGap = 0.05 // seconds shaved off each word clip
	AnnouncerGapMin     = -0.5
	AnnouncerGapMax     = 0.5
)

// Relocation Defaults
const (
	RelocationMinDistance = 4.0
	RelocationMaxDistance = 7.0
)
