package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/parameter"
	"github.com/lixenwraith/dark-platforms/relocation"
)

// Screen cells per world unit; terminal cells are about twice as tall as wide
const (
	cellsPerUnitX = 2.0
	cellsPerUnitY = 1.0
	fanRadius     = 2.0
)

var (
	styleWall      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFan       = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleHit       = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	stylePlayer    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleTeleport  = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleCrystal   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHUD       = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleHUDAccent = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

const helpLine = "arrows move  e ping  t time  p pause  q quit"

// run polls input and renders until a quit key or ctx ends
func (sb *sandbox) run(ctx context.Context, screen tcell.Screen) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() { core.HandleCrash(recover()) }()
		return sb.pollInput(ctx, screen)
	})
	g.Go(func() error {
		defer func() { core.HandleCrash(recover()) }()
		return sb.renderLoop(ctx, screen)
	})

	err := g.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (sb *sandbox) pollInput(ctx context.Context, screen tcell.Screen) error {
	for {
		ev := screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !sb.handleKey(ev.Key(), ev.Rune()) {
				return errQuit
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

func (sb *sandbox) renderLoop(ctx context.Context, screen tcell.Screen) error {
	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Wake the poller so it observes cancellation
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
			return ctx.Err()
		case <-ticker.C:
			sb.draw(screen)
		}
	}
}

// handleKey queues the action on the game thread; false means quit
func (sb *sandbox) handleKey(key tcell.Key, r rune) bool {
	var action func()
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		action = func() { sb.move(-1, 0) }
	case tcell.KeyRight:
		action = func() { sb.move(1, 0) }
	case tcell.KeyUp:
		action = func() { sb.move(0, 1) }
	case tcell.KeyDown:
		action = func() { sb.move(0, -1) }
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'e':
			action = func() { sb.ping() }
		case 't':
			action = sb.announceElapsed
		case 'p':
			action = sb.togglePause
		}
	}
	if action != nil {
		sb.sched.Post(action)
	}
	return true
}

// viewport maps world space onto the screen, centred on the player
type viewport struct {
	w, h   int
	center r3.Vec
}

func (v viewport) project(p r3.Vec) (int, int) {
	x := v.w/2 + int(math.Round((p.X-v.center.X)*cellsPerUnitX))
	y := v.h/2 - int(math.Round((p.Y-v.center.Y)*cellsPerUnitY))
	return x, y
}

func (v viewport) put(screen tcell.Screen, p r3.Vec, r rune, style tcell.Style) {
	x, y := v.project(p)
	if x >= 0 && x < v.w && y >= 0 && y < v.h {
		screen.SetContent(x, y, r, nil, style)
	}
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

// draw renders one frame; in audio-only mode the screen stays blank
func (sb *sandbox) draw(screen tcell.Screen) {
	screen.Clear()
	msg, blank := sb.status()
	if blank {
		screen.Show()
		return
	}

	w, h := screen.Size()
	pos := sb.player.ListenerPosition()
	view := viewport{w: w, h: h, center: pos}

	sb.drawLevel(screen, view)

	// Fan gizmo, then the points that answered the last ping
	for _, d := range sb.emitter.Directions() {
		view.put(screen, r3.Add(pos, r3.Scale(fanRadius, d)), '·', styleFan)
	}
	for _, req := range sb.emitter.LastScan().Requests {
		view.put(screen, req.HitPoint, '*', styleHit)
	}

	for _, kind := range []relocation.Kind{relocation.KindTeleporter, relocation.KindCrystal} {
		obj, err := sb.swapper.Object(kind)
		if err != nil || !obj.Active {
			continue
		}
		if kind == relocation.KindTeleporter {
			view.put(screen, obj.Position, 'T', styleTeleport)
		} else {
			view.put(screen, obj.Position, '◆', styleCrystal)
		}
	}
	view.put(screen, pos, '@', stylePlayer)

	drawText(screen, 0, 0, styleHUDAccent, "dark-platforms  "+helpLine)
	drawText(screen, 0, 1, styleHUD, fmt.Sprintf("pos %.1f,%.1f  time %ds  swaps %d  %s",
		pos.X, pos.Y, int(sb.elapsed().Seconds()), sb.swapper.Swaps(), msg))
	for i, line := range sb.reg.Lines() {
		row := 2 + i
		if row >= h {
			break
		}
		drawText(screen, 0, row, styleHUD, line)
	}

	screen.Show()
}

func (sb *sandbox) drawLevel(screen tcell.Screen, view viewport) {
	for _, b := range sb.cfg.Level.Boxes {
		c, s := b.Center.R3(), b.Size.R3()
		x0, y0 := view.project(r3.Vec{X: c.X - s.X/2, Y: c.Y + s.Y/2})
		x1, y1 := view.project(r3.Vec{X: c.X + s.X/2, Y: c.Y - s.Y/2})
		for x := max(x0, 0); x <= min(x1, view.w-1); x++ {
			setCell(screen, view, x, y0, '─')
			setCell(screen, view, x, y1, '─')
		}
		for y := max(y0, 0); y <= min(y1, view.h-1); y++ {
			setCell(screen, view, x0, y, '│')
			setCell(screen, view, x1, y, '│')
		}
	}
	for _, s := range sb.cfg.Level.Spheres {
		view.put(screen, s.Center.R3(), 'O', styleWall)
	}
}

func setCell(screen tcell.Screen, view viewport, x, y int, r rune) {
	if x >= 0 && x < view.w && y >= 0 && y < view.h {
		screen.SetContent(x, y, r, nil, styleWall)
	}
}
