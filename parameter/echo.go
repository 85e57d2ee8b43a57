package parameter

import "time"

// Echo Response Model
const (
	// EchoVolumeFloor is the quietest an echo may play, however far away
	EchoVolumeFloor = 0.15

	// EchoPitchMin and EchoPitchMax bound the height-derived pitch
	EchoPitchMin = 0.5
	EchoPitchMax = 2.0

	// EchoFallbackVolumeScale scales the non-spatial channel relative to the spatial one
	EchoFallbackVolumeScale = 0.8

	// EchoPlaybackBuffer is held after the pitched clip length before the source is released
	EchoPlaybackBuffer = 300 * time.Millisecond
)

// Echo Responder Defaults
const (
	EchoFalloffMin           = 0.01
	EchoFalloffMax           = 0.1
	EchoDefaultFalloff       = 0.03
	EchoDefaultPitchHeight   = 0.2
	EchoDefaultMaxConcurrent = 0 // unbounded
)
