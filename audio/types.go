// Package audio plays short clips for the sonar and echo model
// Output is the playback seam; BeepOutput renders through gopxl/beep, NullOutput keeps timing only
package audio

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinel errors
var (
	ErrNoAudioBackend = errors.New("no compatible audio backend found")
	ErrInvalidClip    = errors.New("audio clip missing or empty")
	ErrOutputClosed   = errors.New("audio output closed")
	ErrSourceReleased = errors.New("audio source released")
)

//go:generate go tool mockgen -destination=../mocks/output_mock.go -package=mocks . Output,Handle

// PlayRequest describes one channel of playback
type PlayRequest struct {
	Clip   *Clip
	Volume float64 // linear gain in [0, 1]
	Pitch  float64 // playback rate multiplier, 1 is unchanged

	// Spatial false means the channel has no position and plays flat
	Spatial     bool
	Position    r3.Vec
	MinDistance float64 // linear rolloff start
	MaxDistance float64 // linear rolloff end, silent beyond
}

// Handle refers to one playing channel
type Handle interface {
	ID() uuid.UUID
	// Playing reports whether the channel is still producing sound
	Playing() bool
}

// Output is the audio service consumed by sonar, echo and announcer
type Output interface {
	// Play starts a channel
	Play(req PlayRequest) (Handle, error)
	// Stop halts a channel, no-op if already finished
	Stop(h Handle)
	// Duration returns the clip length, zero when the clip is unusable
	Duration(clip *Clip) time.Duration
}

// Rate returns the effective playback rate of a pitch value
// Zero pitch would never finish, so it plays at the unchanged rate
func Rate(pitch float64) float64 {
	if pitch < 0 {
		pitch = -pitch
	}
	if pitch == 0 {
		return 1
	}
	return pitch
}

// PlayedLength returns how long a clip takes to play at the given pitch
func PlayedLength(length time.Duration, pitch float64) time.Duration {
	return time.Duration(float64(length) / Rate(pitch))
}
