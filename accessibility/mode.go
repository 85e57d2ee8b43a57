// Package accessibility holds the audio-only play mode
package accessibility

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Flags are the command line switches that turn the mode on
var Flags = []string{"-viMode", "-audioOnly", "--vi-only"}

// FromArgs reports whether any argument requests audio-only mode
func FromArgs(args []string) bool {
	for _, a := range args {
		for _, f := range Flags {
			if a == f {
				return true
			}
		}
	}
	return false
}

// Suppressor is a visual layer the mode switches off
type Suppressor interface {
	SuppressVisuals()
}

// SuppressorFunc adapts a function to Suppressor
type SuppressorFunc func()

// SuppressVisuals implements Suppressor
func (f SuppressorFunc) SuppressVisuals() { f() }

// Mode is a one-way switch to audio-only rendering
// Enable runs the suppressors once; later calls are no-ops
type Mode struct {
	log         *zap.Logger
	once        sync.Once
	enabled     atomic.Bool
	mu          sync.Mutex
	suppressors []Suppressor
}

// NewMode creates a disabled mode
func NewMode(log *zap.Logger) *Mode {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mode{log: log.With(zap.String("component", "accessibility"))}
}

// Register adds a visual layer; registering after Enable suppresses it at once
func (m *Mode) Register(s Suppressor) {
	m.mu.Lock()
	m.suppressors = append(m.suppressors, s)
	m.mu.Unlock()
	if m.enabled.Load() {
		s.SuppressVisuals()
	}
}

// Enable switches every registered layer off
func (m *Mode) Enable() {
	m.once.Do(func() {
		m.mu.Lock()
		layers := append([]Suppressor(nil), m.suppressors...)
		m.enabled.Store(true)
		m.mu.Unlock()

		for _, s := range layers {
			s.SuppressVisuals()
		}
		m.log.Info("audio-only mode enabled", zap.Int("layers", len(layers)))
	})
}

// Enabled reports whether audio-only mode is on
func (m *Mode) Enabled() bool {
	return m.enabled.Load()
}
