package main

import (
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/service"
)

var _ service.Service = (*clockService)(nil)

// clockService runs the game thread; it stops before audio so no echo starts on a closed output
type clockService struct {
	cs *engine.ClockScheduler
}

func (s *clockService) Name() string           { return "clock" }
func (s *clockService) Dependencies() []string { return []string{"audio"} }
func (s *clockService) Init(args ...any) error { return nil }

func (s *clockService) Start() error {
	s.cs.Start()
	return nil
}

func (s *clockService) Stop() error {
	s.cs.Stop()
	return nil
}
