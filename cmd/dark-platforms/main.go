// Command dark-platforms is the echolocation sandbox: walk a dark level and find your way by sonar
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lixenwraith/dark-platforms/accessibility"
	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/config"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/service"
	"github.com/lixenwraith/dark-platforms/status"
)

var (
	configFlag = flag.String("config", "", "Level and tuning file (.toml, .yaml)")
	debugFlag  = flag.Bool("debug", false, "Write a debug log to logs/")
	muteFlag   = flag.Bool("mute", false, "Run without audio output")
)

func init() {
	// Accessibility switches are read from the raw arguments, registered here so flag accepts them
	for _, f := range accessibility.Flags {
		flag.Bool(strings.TrimLeft(f, "-"), false, "Audio-only mode, the screen stays blank")
	}
}

func main() {
	flag.Parse()

	logger, logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("sandbox failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "dark-platforms: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger) (err error) {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	// Goroutine panics restore the terminal before reporting
	core.SetCrashHandler(func(r any) {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31mDARK-PLATFORMS CRASHED: %v\x1b[0m\r\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
		os.Exit(1)
	})

	reg := status.NewRegistry()
	clock := engine.NewPausableClock()
	sched := engine.NewScheduler(clock, logger)
	ticker := engine.NewClockScheduler(sched, cfg.Engine.TickInterval, logger)

	hub := service.NewHub(logger)
	audioSvc := audio.NewService(&cfg.Audio, nil, clock, reg, logger)
	for _, svc := range []service.Service{audioSvc, &clockService{cs: ticker}} {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}
	if err := hub.InitAll(*muteFlag); err != nil {
		return err
	}

	sb, err := newSandbox(cfg, clock, sched, audioSvc.Output(), reg, logger)
	if err != nil {
		return multierr.Append(err, hub.StopAll())
	}
	if beep, ok := audioSvc.Output().(*audio.BeepOutput); ok {
		beep.SetListener(sb.player)
	}
	if accessibility.FromArgs(os.Args[1:]) {
		sb.mode.Enable()
	}

	if err := hub.StartAll(); err != nil {
		return multierr.Append(err, sb.close())
	}
	defer func() {
		err = multierr.Combine(err, sb.close(), hub.StopAll())
	}()

	logger.Info("sandbox started",
		zap.Int("surfaces", cfg.Level.Len()),
		zap.Int("rays", cfg.Sonar.RayCount),
		zap.Bool("audio_disabled", audioSvc.IsDisabled()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return sb.run(ctx, screen)
}
