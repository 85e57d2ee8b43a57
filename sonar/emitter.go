// Package sonar casts the ping fan and hands every responder hit its echo request
package sonar

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/physics"
	"github.com/lixenwraith/dark-platforms/status"
	"github.com/lixenwraith/dark-platforms/vmath"
)

// Options are the emitter collaborators
// Raycaster and Pose are required; a nil Listener falls back to the emitter position
type Options struct {
	Raycaster physics.Raycaster
	Pose      core.PoseSource
	Listener  core.Listener
	Output    audio.Output
	PingClip  *audio.Clip
	Registry  *status.Registry
	Logger    *zap.Logger
}

// ScanReport summarizes one ping
type ScanReport struct {
	Origin   r3.Vec
	Listener r3.Vec
	Rays     int
	Misses   int
	Inert    int
	Errors   int
	// Requests holds the echoes accepted by responders, in ray order
	Requests []core.EchoRequest
}

// Hits returns rays that struck geometry
func (r ScanReport) Hits() int {
	return r.Rays - r.Misses
}

// Emitter owns a scan configuration and fires the ray fan on Ping
type Emitter struct {
	id       uuid.UUID
	rc       physics.Raycaster
	pose     core.PoseSource
	listener core.Listener
	out      audio.Output
	pingClip *audio.Clip
	log      *zap.Logger

	mu   sync.RWMutex
	cfg  ScanConfig
	dirs []r3.Vec
	last ScanReport

	pings      *atomic.Int64
	rays       *atomic.Int64
	misses     *atomic.Int64
	inert      *atomic.Int64
	echoes     *atomic.Int64
	echoErrors *atomic.Int64
	noListener *atomic.Int64
}

// NewEmitter validates cfg and precomputes the direction table
func NewEmitter(cfg ScanConfig, opts Options) (*Emitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Raycaster == nil || opts.Pose == nil {
		return nil, fmt.Errorf("%w: raycaster and pose are required", ErrInvalidConfiguration)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "sonar"))
	reg := status.OrNew(opts.Registry)

	if opts.Output != nil && !opts.PingClip.Valid() {
		log.Warn("ping clip missing, scans will run silently")
	}

	return &Emitter{
		id:       uuid.New(),
		rc:       opts.Raycaster,
		pose:     opts.Pose,
		listener: opts.Listener,
		out:      opts.Output,
		pingClip: opts.PingClip,
		log:      log,
		cfg:      cfg,
		dirs:     cfg.directions(),

		pings:      reg.Ints.Get(status.SonarPings),
		rays:       reg.Ints.Get(status.SonarRays),
		misses:     reg.Ints.Get(status.SonarMisses),
		inert:      reg.Ints.Get(status.SonarInertHits),
		echoes:     reg.Ints.Get(status.SonarEchoes),
		echoErrors: reg.Ints.Get(status.SonarEchoErrors),
		noListener: reg.Ints.Get(status.SonarNoListener),
	}, nil
}

// ID returns the emitter identifier
func (e *Emitter) ID() uuid.UUID {
	return e.id
}

// Config returns the active scan configuration
func (e *Emitter) Config() ScanConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Reconfigure swaps the scan configuration; the old one stays active on error
func (e *Emitter) Reconfigure(cfg ScanConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dirs := cfg.directions()
	e.mu.Lock()
	e.cfg = cfg
	e.dirs = dirs
	e.mu.Unlock()
	return nil
}

// Directions returns the fan in world space at the current pose
func (e *Emitter) Directions() []r3.Vec {
	e.mu.RLock()
	local := e.dirs
	e.mu.RUnlock()

	rot := vmath.OrIdentity(e.pose.Pose().Orientation)
	dirs := make([]r3.Vec, len(local))
	for i, d := range local {
		dirs[i] = rot.Rotate(d)
	}
	return dirs
}

// LastScan returns the report of the most recent ping
func (e *Emitter) LastScan() ScanReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Ping casts every ray synchronously and triggers the responders it hits
// Per-ray failures are counted and never abort the scan
func (e *Emitter) Ping() ScanReport {
	e.mu.RLock()
	cfg := e.cfg
	local := e.dirs
	e.mu.RUnlock()

	pose := e.pose.Pose()
	origin := pose.Position
	rot := vmath.OrIdentity(pose.Orientation)

	// Listener is sampled once; echoes reflect where it was at ping time
	listener := origin
	if e.listener != nil {
		listener = e.listener.ListenerPosition()
	} else {
		e.noListener.Add(1)
		e.log.Warn("no listener, using emitter position")
	}

	e.playPing()

	report := ScanReport{
		Origin:   origin,
		Listener: listener,
		Rays:     len(local),
	}
	for _, d := range local {
		hit, ok := e.rc.Raycast(origin, rot.Rotate(d), cfg.MaxRange)
		if !ok {
			report.Misses++
			continue
		}
		if hit.Responder == nil {
			report.Inert++
			continue
		}

		req := core.EchoRequest{
			Delay:     core.RoundTripDelay(hit.Distance, cfg.SpeedOfSound),
			Listener:  listener,
			HitPoint:  hit.Point,
			HitNormal: hit.Normal,
		}
		if err := req.Dispatch(hit.Responder); err != nil {
			report.Errors++
			e.log.Debug("echo rejected", zap.Float64("distance", hit.Distance), zap.Error(err))
			continue
		}
		report.Requests = append(report.Requests, req)
	}

	e.pings.Add(1)
	e.rays.Add(int64(report.Rays))
	e.misses.Add(int64(report.Misses))
	e.inert.Add(int64(report.Inert))
	e.echoes.Add(int64(len(report.Requests)))
	e.echoErrors.Add(int64(report.Errors))

	e.mu.Lock()
	e.last = report
	e.mu.Unlock()

	e.log.Debug("ping",
		zap.Int("rays", report.Rays),
		zap.Int("hits", report.Hits()),
		zap.Int("echoes", len(report.Requests)),
		zap.Int("errors", report.Errors))
	return report
}

func (e *Emitter) playPing() {
	if e.out == nil || !e.pingClip.Valid() {
		return
	}
	if _, err := e.out.Play(audio.PlayRequest{Clip: e.pingClip, Volume: 1, Pitch: 1}); err != nil {
		e.log.Debug("ping clip failed", zap.Error(err))
	}
}
