package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
	AudioPrecision  = 2 // bytes per sample on the speaker side
)

// Audio Engine Timing
const (
	// AudioBufferDuration is the speaker buffer, sets playback latency
	AudioBufferDuration = 50 * time.Millisecond

	// AudioResampleQuality is passed to beep.ResampleRatio for pitch shifting
	AudioResampleQuality = 4
)

// Spatial Channel Settings
const (
	// SpatialMinDistance is the range inside which the spatial channel plays at full volume
	SpatialMinDistance = 0.1

	// SpatialMaxDistance is the range at which linear rolloff reaches silence
	SpatialMaxDistance = 30.0
)

// Ping Clip
const (
	PingClipDuration  = 120 * time.Millisecond
	PingClipAttack    = 5 * time.Millisecond
	PingClipRelease   = 90 * time.Millisecond
	PingClipStartFreq = 2400.0 // Hz
	PingClipEndFreq   = 1200.0 // Hz
)

// Echo Clip
const (
	EchoClipDuration = 180 * time.Millisecond
	EchoClipAttack   = 2 * time.Millisecond
	EchoClipRelease  = 160 * time.Millisecond
	EchoClipFreq     = 1800.0 // Hz
)

// Collect Clip
const (
	CollectNote1Duration = 80 * time.Millisecond
	CollectNote2Duration = 280 * time.Millisecond
	CollectAttack        = 5 * time.Millisecond
	CollectNote1Release  = 40 * time.Millisecond
	CollectNote2Release  = 200 * time.Millisecond
)

// Word Clip (tone stand-ins for recorded speech)
const (
	WordClipDuration = 260 * time.Millisecond
	WordClipAttack   = 10 * time.Millisecond
	WordClipRelease  = 80 * time.Millisecond
	WordBaseFreq     = 220.0 // Hz
)
