package status

import (
	"fmt"
	"sync/atomic"
)

// Metric keys shared by the sonar core and the sandbox HUD
const (
	SonarPings      = "sonar.pings"
	SonarRays       = "sonar.rays"
	SonarMisses     = "sonar.misses"
	SonarInertHits  = "sonar.inert_hits"
	SonarEchoes     = "sonar.echoes"
	SonarEchoErrors = "sonar.echo_errors"
	SonarNoListener = "sonar.no_listener"

	EchoScheduled   = "echo.scheduled"
	EchoMissingClip = "echo.missing_clip"
	EchoDropped     = "echo.dropped"
	EchoPlayed      = "echo.played"
	EchoAborted     = "echo.aborted"
	EchoCancelled   = "echo.cancelled"
	EchoActive      = "echo.active"
	EchoLastDelay   = "echo.last_delay"
	EchoLastVolume  = "echo.last_volume"
	EchoLastPitch   = "echo.last_pitch"

	AudioSourcesLive = "audio.sources_live"
	AudioDisabled    = "audio.disabled"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write atomics directly
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// OrNew returns r, or a private registry when r is nil
func OrNew(r *Registry) *Registry {
	if r == nil {
		return NewRegistry()
	}
	return r
}

// TotalCount returns metrics registered across all maps
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count()
}

// Lines renders every metric as "key=value", ints then floats then bools, each sorted
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.TotalCount())
	r.Ints.Range(func(key string, v *atomic.Int64) {
		lines = append(lines, fmt.Sprintf("%s=%d", key, v.Load()))
	})
	r.Floats.Range(func(key string, v *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s=%.3f", key, v.Get()))
	})
	r.Bools.Range(func(key string, v *atomic.Bool) {
		lines = append(lines, fmt.Sprintf("%s=%t", key, v.Load()))
	})
	return lines
}
