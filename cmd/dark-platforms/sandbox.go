package main

import (
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/accessibility"
	"github.com/lixenwraith/dark-platforms/announcer"
	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/config"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/echo"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/physics"
	"github.com/lixenwraith/dark-platforms/relocation"
	"github.com/lixenwraith/dark-platforms/sonar"
	"github.com/lixenwraith/dark-platforms/status"
)

// errQuit ends the run loop on a quit key
var errQuit = errors.New("quit")

// sandbox is the playable level: a player, echoing geometry and the collect loop
// Actions run on the scheduler goroutine; draw may run anywhere
type sandbox struct {
	cfg   *config.Config
	log   *zap.Logger
	reg   *status.Registry
	clock *engine.PausableClock
	sched *engine.Scheduler
	bank  *audio.ClipBank

	world      *physics.World
	player     *core.Transform
	responders []*echo.Responder
	emitter    *sonar.Emitter
	announcer  *announcer.Announcer
	swapper    *relocation.Swapper
	mode       *accessibility.Mode

	started time.Time

	mu      sync.Mutex
	message string
	blank   bool
}

// newSandbox builds the level from cfg on top of the shared output and scheduler
func newSandbox(cfg *config.Config, clock *engine.PausableClock, sched *engine.Scheduler, out audio.Output, reg *status.Registry, log *zap.Logger) (*sandbox, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sb := &sandbox{
		cfg:     cfg,
		log:     log.With(zap.String("component", "sandbox")),
		reg:     status.OrNew(reg),
		clock:   clock,
		sched:   sched,
		bank:    audio.DefaultBank(announcer.Vocabulary()),
		player:  core.NewTransform(cfg.Player.Start.R3()),
		mode:    accessibility.NewMode(log),
		started: clock.Now(),
	}

	deps := echo.Deps{Output: out, Scheduler: sched, Registry: sb.reg, Logger: log}
	colliders, err := cfg.Level.Colliders(func(s config.Surface) (core.EchoCapable, error) {
		clip := sb.bank.Get(s.Clip)
		if clip == nil {
			sb.log.Warn("surface clip not in bank", zap.String("surface", s.Name), zap.String("clip", s.Clip))
		}
		r, err := echo.NewResponder(s.Name, clip, cfg.EchoFor(s), deps)
		if err != nil {
			return nil, err
		}
		sb.responders = append(sb.responders, r)
		return r, nil
	})
	if err != nil {
		return nil, multierr.Append(err, sb.close())
	}
	sb.world = physics.NewWorld(colliders...)

	sb.emitter, err = sonar.NewEmitter(cfg.Sonar, sonar.Options{
		Raycaster: sb.world,
		Pose:      sb.player,
		Listener:  sb.player,
		Output:    out,
		PingClip:  sb.bank.Get(audio.ClipPing),
		Registry:  sb.reg,
		Logger:    log,
	})
	if err != nil {
		return nil, multierr.Append(err, sb.close())
	}

	sb.announcer = announcer.New(sb.bank, out, sched, cfg.Announcer.Gap, log)

	// Half turns keep the objects at the player's height, left and right in turn
	sb.swapper, err = relocation.NewSwapper(relocation.Options{
		Player:      sb.player,
		Placer:      relocation.NewRingPlacer(math.Pi),
		Output:      out,
		CollectClip: sb.bank.Get(audio.ClipCollect),
		MinDistance: cfg.Relocation.MinDistance,
		MaxDistance: cfg.Relocation.MaxDistance,
		Logger:      log,
	})
	if err != nil {
		return nil, multierr.Append(err, sb.close())
	}
	sb.swapper.OnSwap(func(obj relocation.Object) {
		sb.log.Debug("object placed", zap.Stringer("kind", obj.Kind),
			zap.Float64("x", obj.Position.X), zap.Float64("y", obj.Position.Y))
	})

	sb.mode.Register(accessibility.SuppressorFunc(func() {
		sb.mu.Lock()
		sb.blank = true
		sb.mu.Unlock()
	}))
	return sb, nil
}

func (sb *sandbox) setMessage(msg string) {
	sb.mu.Lock()
	sb.message = msg
	sb.mu.Unlock()
}

func (sb *sandbox) status() (msg string, blank bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.message, sb.blank
}

// move steps the player one grid unit along (dx, dy) and checks the active object
func (sb *sandbox) move(dx, dy float64) {
	step := sb.cfg.Player.MoveStep
	delta := r3.Vec{X: dx * step, Y: dy * step}
	pos, blocked := physics.Step(sb.world, sb.player.Pose().Position, delta, sb.cfg.Player.Radius)
	sb.player.SetPosition(pos)
	if blocked {
		sb.setMessage("bump")
	}

	kind := sb.swapper.ActiveKind()
	collected, err := sb.swapper.Reached(pos, sb.cfg.Relocation.CollectRadius)
	if err != nil {
		sb.log.Warn("relocation failed", zap.Error(err))
		return
	}
	if !collected {
		return
	}
	sb.setMessage("collected " + kind.String())
	if kind == relocation.KindCrystal {
		sb.announceElapsed()
	}
}

// ping fires one sonar scan from the player
func (sb *sandbox) ping() sonar.ScanReport {
	report := sb.emitter.Ping()
	sb.log.Debug("ping",
		zap.Int("rays", report.Rays),
		zap.Int("hits", report.Hits()),
		zap.Int("echoes", len(report.Requests)),
		zap.Int("errors", report.Errors))
	return report
}

// elapsed is game time since the level started, pauses excluded
func (sb *sandbox) elapsed() time.Duration {
	return sb.clock.Now().Sub(sb.started)
}

func (sb *sandbox) announceElapsed() {
	secs := int(sb.elapsed().Seconds())
	if err := sb.announcer.Announce(secs); err != nil {
		sb.log.Warn("announce failed", zap.Int("seconds", secs), zap.Error(err))
	}
}

func (sb *sandbox) togglePause() {
	if sb.clock.IsPaused() {
		sb.clock.Resume()
		sb.setMessage("")
		return
	}
	sb.clock.Pause()
	sb.setMessage("paused")
}

// close silences every echo still waiting or playing
func (sb *sandbox) close() error {
	if sb.announcer != nil {
		sb.announcer.Cancel()
	}
	var errs error
	for _, r := range sb.responders {
		errs = multierr.Append(errs, r.Close())
	}
	return errs
}
