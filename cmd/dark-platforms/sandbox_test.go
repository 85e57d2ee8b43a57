package main

import (
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/config"
	"github.com/lixenwraith/dark-platforms/engine"
	"github.com/lixenwraith/dark-platforms/relocation"
	"github.com/lixenwraith/dark-platforms/status"
)

type testRig struct {
	sb    *sandbox
	mock  *engine.MockTimeProvider
	sched *engine.Scheduler
	out   *audio.NullOutput
	reg   *status.Registry
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	mock := engine.NewMockTimeProvider(time.Unix(0, 0))
	clock := engine.NewPausableClockFrom(mock)
	sched := engine.NewScheduler(clock, nil)
	out := audio.NewNullOutput(clock)
	reg := status.NewRegistry()

	sb, err := newSandbox(config.Default(), clock, sched, out, reg, nil)
	if err != nil {
		t.Fatalf("newSandbox failed: %v", err)
	}
	t.Cleanup(func() { sb.close() })
	return &testRig{sb: sb, mock: mock, sched: sched, out: out, reg: reg}
}

func (r *testRig) step(d time.Duration) {
	r.mock.Advance(d)
	r.sched.Advance()
}

func TestSandboxBuildsLevel(t *testing.T) {
	rig := newTestRig(t)
	cfg := config.Default()

	if got := rig.sb.world.Len(); got != cfg.Level.Len() {
		t.Errorf("Expected %d colliders, got %d", cfg.Level.Len(), got)
	}
	// The crate is silent, every other surface echoes
	if got := len(rig.sb.responders); got != cfg.Level.Len()-1 {
		t.Errorf("Expected %d responders, got %d", cfg.Level.Len()-1, got)
	}
	if rig.sb.swapper.ActiveKind() != relocation.KindTeleporter {
		t.Errorf("Expected teleporter active at start")
	}
}

func TestSandboxPingSchedulesEchoes(t *testing.T) {
	rig := newTestRig(t)

	report := rig.sb.ping()
	if report.Rays != config.Default().Sonar.RayCount {
		t.Errorf("Expected %d rays, got %d", config.Default().Sonar.RayCount, report.Rays)
	}
	// Side walls are out of range, the floor and ceiling are not
	if report.Misses == 0 || report.Hits() == 0 {
		t.Errorf("Expected both misses and hits, got %d misses of %d", report.Misses, report.Rays)
	}
	if len(report.Requests) == 0 {
		t.Fatal("Expected echoes to be scheduled")
	}
	if got := rig.reg.Ints.Get(status.EchoScheduled).Load(); got != int64(len(report.Requests)) {
		t.Errorf("Expected %d scheduled echoes, got %d", len(report.Requests), got)
	}

	// Echo delays stay under the max range round trip; everything has played out within a second
	for i := 0; i < 100; i++ {
		rig.step(10 * time.Millisecond)
	}
	if got := rig.reg.Ints.Get(status.EchoActive).Load(); got != 0 {
		t.Errorf("Expected no active echoes, got %d", got)
	}
	if got := rig.reg.Ints.Get(status.EchoPlayed).Load(); got != int64(len(report.Requests)) {
		t.Errorf("Expected %d played echoes, got %d", len(report.Requests), got)
	}
}

func TestSandboxMoveStopsAtFloor(t *testing.T) {
	rig := newTestRig(t)
	for i := 0; i < 3; i++ {
		rig.sb.move(0, -1)
	}
	y := rig.sb.player.ListenerPosition().Y
	if math.Abs(y-config.Default().Player.Radius) > 1e-9 {
		t.Errorf("Expected player resting at y=%v, got %v", config.Default().Player.Radius, y)
	}
	if msg, _ := rig.sb.status(); msg != "bump" {
		t.Errorf("Expected bump message, got %q", msg)
	}
}

func TestSandboxCollectLoop(t *testing.T) {
	rig := newTestRig(t)

	tele, _ := rig.sb.swapper.Object(relocation.KindTeleporter)
	if tele.Position.X <= 0 {
		t.Fatalf("Expected teleporter placed to the right, got %v", tele.Position)
	}
	for i := 0; i < 20 && rig.sb.swapper.Swaps() == 0; i++ {
		rig.sb.move(1, 0)
	}
	if rig.sb.swapper.Swaps() != 1 {
		t.Fatalf("Expected one swap, got %d", rig.sb.swapper.Swaps())
	}
	if rig.sb.swapper.ActiveKind() != relocation.KindCrystal {
		t.Errorf("Expected crystal active after teleporter")
	}
	if rig.out.Plays() == 0 {
		t.Errorf("Expected collect clip to play")
	}

	// The crystal is placed on the other side; walking back collects it and announces the time
	crystal, _ := rig.sb.swapper.Object(relocation.KindCrystal)
	if crystal.Position.X >= rig.sb.player.ListenerPosition().X {
		t.Fatalf("Expected crystal to the left, got %v", crystal.Position)
	}
	for i := 0; i < 40 && rig.sb.swapper.Swaps() == 1; i++ {
		rig.sb.move(-1, 0)
	}
	if rig.sb.swapper.Swaps() != 2 {
		t.Fatalf("Expected two swaps, got %d", rig.sb.swapper.Swaps())
	}
	if !rig.sb.announcer.Busy() {
		t.Errorf("Expected completion time announcement")
	}
}

func TestSandboxPauseHoldsElapsed(t *testing.T) {
	rig := newTestRig(t)
	rig.step(2 * time.Second)
	rig.sb.togglePause()
	rig.step(5 * time.Second)

	if got := rig.sb.elapsed(); got != 2*time.Second {
		t.Errorf("Expected 2s elapsed while paused, got %v", got)
	}
	rig.sb.togglePause()
	rig.step(time.Second)
	if got := rig.sb.elapsed(); got != 3*time.Second {
		t.Errorf("Expected 3s elapsed after resume, got %v", got)
	}
}

func TestHandleKeyPostsToGameThread(t *testing.T) {
	rig := newTestRig(t)
	start := rig.sb.player.ListenerPosition()

	if !rig.sb.handleKey(tcell.KeyRight, 0) {
		t.Fatal("Expected arrow key to keep running")
	}
	if rig.sb.player.ListenerPosition() != start {
		t.Error("Expected move to wait for the scheduler")
	}
	rig.sched.Advance()
	if got := rig.sb.player.ListenerPosition().X; got != start.X+config.Default().Player.MoveStep {
		t.Errorf("Expected x=%v, got %v", start.X+config.Default().Player.MoveStep, got)
	}

	rig.sb.handleKey(tcell.KeyRune, 'e')
	rig.sched.Advance()
	if got := rig.reg.Ints.Get(status.SonarPings).Load(); got != 1 {
		t.Errorf("Expected 1 ping, got %d", got)
	}

	rig.sb.handleKey(tcell.KeyRune, 't')
	rig.sched.Advance()
	if !rig.sb.announcer.Busy() {
		t.Error("Expected announcement after t")
	}

	quits := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"Esc", tcell.KeyEscape, 0},
		{"Ctrl-C", tcell.KeyCtrlC, 0},
	}
	for _, q := range quits {
		if rig.sb.handleKey(q.key, q.r) {
			t.Errorf("Expected %s to quit", q.name)
		}
	}
}

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)
	return screen
}

func cellAt(screen tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := screen.GetContents()
	runes := cells[y*w+x].Runes
	if len(runes) == 0 {
		return ' '
	}
	return runes[0]
}

func TestDrawShowsPlayerAndHUD(t *testing.T) {
	rig := newTestRig(t)
	screen := newSimScreen(t)

	rig.sb.ping()
	rig.sb.draw(screen)

	if r := cellAt(screen, 40, 12); r != '@' {
		t.Errorf("Expected player at screen centre, got %q", r)
	}
	if r := cellAt(screen, 0, 0); r != 'd' {
		t.Errorf("Expected HUD title, got %q", r)
	}
}

func TestAccessibilityBlanksScreen(t *testing.T) {
	rig := newTestRig(t)
	screen := newSimScreen(t)

	rig.sb.mode.Enable()
	rig.sb.draw(screen)

	cells, _, _ := screen.GetContents()
	for i, c := range cells {
		if len(c.Runes) > 0 && c.Runes[0] != ' ' {
			t.Fatalf("Expected blank screen, cell %d holds %q", i, c.Runes[0])
		}
	}
}
