package audio

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/service"
	"github.com/lixenwraith/dark-platforms/status"
)

var _ service.Service = (*AudioService)(nil)

// backendFactory builds the audible output, replaced in tests
type backendFactory func(cfg *AudioConfig, listener core.Listener, log *zap.Logger) (Output, func() error, error)

func beepBackend(cfg *AudioConfig, listener core.Listener, log *zap.Logger) (Output, func() error, error) {
	out := NewBeepOutput(cfg, listener, log)
	if err := out.Init(); err != nil {
		return nil, nil, err
	}
	return out, out.Close, nil
}

// AudioService owns the process output
// Handles graceful degradation when no audio backend is available
type AudioService struct {
	cfg      *AudioConfig
	listener core.Listener
	clock    engine.Clock
	log      *zap.Logger
	disabled *atomic.Bool
	backend  backendFactory

	mu      sync.RWMutex
	output  Output
	closeFn func() error
	stopped bool
}

// NewService creates an audio service
func NewService(cfg *AudioConfig, listener core.Listener, clock engine.Clock, reg *status.Registry, log *zap.Logger) *AudioService {
	if cfg == nil {
		cfg = LoadAudioConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	reg = status.OrNew(reg)
	return &AudioService{
		cfg:      cfg,
		listener: listener,
		clock:    clock,
		log:      log,
		disabled: reg.Bools.Get(status.AudioDisabled),
		backend:  beepBackend,
	}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: bool - mute state, true selects the silent output
// Backend failure degrades to the silent output and sets the disabled flag, no error returned
func (s *AudioService) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.output != nil {
		return nil
	}

	enabled := s.cfg.Enabled
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok && muted {
			enabled = false
		}
	}

	if enabled {
		out, closeFn, err := s.backend(s.cfg, s.listener, s.log)
		if err == nil {
			s.output, s.closeFn = out, closeFn
			return nil
		}
		if !errors.Is(err, ErrNoAudioBackend) {
			s.log.Warn("audio backend failed", zap.Error(err))
		} else {
			s.log.Warn("audio disabled", zap.Error(err))
		}
		s.disabled.Store(true)
	}

	null := NewNullOutput(s.clock)
	s.output, s.closeFn = null, null.Close
	return nil
}

// Start implements Service
func (s *AudioService) Start() error {
	return nil
}

// Stop implements Service
func (s *AudioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.closeFn == nil {
		return nil
	}
	s.stopped = true
	return s.closeFn()
}

// IsDisabled returns true if the audible backend is unavailable
func (s *AudioService) IsDisabled() bool {
	return s.disabled.Load()
}

// Output returns the active output, nil before Init
func (s *AudioService) Output() Output {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.output
}
