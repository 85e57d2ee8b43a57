package sonar

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/mock/gomock"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/core"
	"github.com/lixenwraith/dark-platforms/mocks"
	"github.com/lixenwraith/dark-platforms/physics"
	"github.com/lixenwraith/dark-platforms/status"
	"github.com/lixenwraith/dark-platforms/vmath"
)

type recorder struct {
	reqs []core.EchoRequest
	err  error
}

func (r *recorder) TriggerEcho(delay float64, listener, hitPoint, hitNormal r3.Vec) error {
	if r.err != nil {
		return r.err
	}
	r.reqs = append(r.reqs, core.EchoRequest{Delay: delay, Listener: listener, HitPoint: hitPoint, HitNormal: hitNormal})
	return nil
}

func minDelay(reqs []core.EchoRequest) float64 {
	m := math.Inf(1)
	for _, r := range reqs {
		m = math.Min(m, r.Delay)
	}
	return m
}

func TestPingWallAhead(t *testing.T) {
	wall := &recorder{}
	world := physics.NewWorld(&physics.Plane{Point: r3.Vec{X: 10}, Normal: r3.Vec{X: -1}, Echo: wall})
	reg := status.NewRegistry()

	e, err := NewEmitter(DefaultScanConfig(), Options{
		Raycaster: world,
		Pose:      core.NewTransform(r3.Vec{}),
		Listener:  core.NewTransform(r3.Vec{}),
		Registry:  reg,
	})
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	report := e.Ping()
	if report.Rays != 72 {
		t.Fatalf("Expected 72 rays, got %d", report.Rays)
	}
	if len(wall.reqs) == 0 {
		t.Fatal("Expected the wall to be triggered")
	}

	// 72 rays over 360 degrees leave no ray at exactly zero, the closest sit at +-2.535 degrees
	want := 2 * 10.0 / 343
	if got := minDelay(wall.reqs); !scalar.EqualWithinAbs(got, want, 1e-3) {
		t.Errorf("Expected min delay ~%.4f, got %.4f", want, got)
	}
	for _, r := range wall.reqs {
		d := vmath.Distance(r.HitPoint, report.Origin)
		if !scalar.EqualWithinAbs(r.Delay, core.RoundTripDelay(d, 343), 1e-12) {
			t.Errorf("delay %v does not match distance %v", r.Delay, d)
		}
		if d > DefaultScanConfig().MaxRange+1e-9 {
			t.Errorf("hit beyond max range: %v", d)
		}
	}
	if report.Misses+len(report.Requests) != report.Rays {
		t.Errorf("rays unaccounted: %+v", report)
	}
	if reg.Ints.Get(status.SonarEchoes).Load() != int64(len(wall.reqs)) {
		t.Error("echo metric mismatch")
	}
	if reg.Ints.Get(status.SonarPings).Load() != 1 {
		t.Error("ping metric mismatch")
	}
}

func TestPingDeterministic(t *testing.T) {
	world := physics.NewWorld(
		physics.NewBox(r3.Vec{Y: 2}, r3.Vec{X: 20, Y: 8, Z: 20}, &recorder{}),
		&physics.Sphere{Center: r3.Vec{X: 3, Y: 1}, Radius: 0.5, Echo: &recorder{}},
	)
	pose := core.NewTransform(r3.Vec{X: 1})
	e, err := NewEmitter(DefaultScanConfig(), Options{Raycaster: world, Pose: pose, Listener: pose})
	if err != nil {
		t.Fatal(err)
	}

	a, b := e.Ping(), e.Ping()
	if len(a.Requests) != len(b.Requests) {
		t.Fatalf("request counts differ: %d vs %d", len(a.Requests), len(b.Requests))
	}
	for i := range a.Requests {
		if a.Requests[i] != b.Requests[i] {
			t.Errorf("request %d differs: %+v vs %+v", i, a.Requests[i], b.Requests[i])
		}
	}
	if len(e.LastScan().Requests) != len(b.Requests) {
		t.Error("LastScan should hold the latest report")
	}
}

func TestPingSkipsMissesAndInertHits(t *testing.T) {
	ctrl := gomock.NewController(t)
	rc := mocks.NewMockRaycaster(ctrl)
	responder := mocks.NewMockEchoCapable(ctrl)

	cfg := ScanConfig{RayCount: 3, FanAngleDegrees: 90, MaxRange: 5, SpeedOfSound: 100}
	gomock.InOrder(
		rc.EXPECT().Raycast(r3.Vec{}, gomock.Any(), 5.0).Return(physics.Hit{}, false),
		rc.EXPECT().Raycast(r3.Vec{}, gomock.Any(), 5.0).Return(physics.Hit{Distance: 2, Point: r3.Vec{X: 2}}, true),
		rc.EXPECT().Raycast(r3.Vec{}, gomock.Any(), 5.0).Return(physics.Hit{
			Distance:  4,
			Point:     r3.Vec{Y: 4},
			Normal:    r3.Vec{Y: -1},
			Responder: responder,
		}, true),
	)
	responder.EXPECT().TriggerEcho(0.08, r3.Vec{}, r3.Vec{Y: 4}, r3.Vec{Y: -1}).Return(nil)

	e, err := NewEmitter(cfg, Options{Raycaster: rc, Pose: core.NewTransform(r3.Vec{}), Listener: core.NewTransform(r3.Vec{})})
	if err != nil {
		t.Fatal(err)
	}
	report := e.Ping()
	if report.Misses != 1 || report.Inert != 1 || len(report.Requests) != 1 {
		t.Errorf("Expected 1 miss, 1 inert, 1 echo, got %+v", report)
	}
	if report.Hits() != 2 {
		t.Errorf("Expected 2 hits, got %d", report.Hits())
	}
}

func TestPingContinuesAfterResponderError(t *testing.T) {
	failing := &recorder{err: errors.New("no clip")}
	ok := &recorder{}
	// Two walls, one on each side; fan of 3 covers -90, 0, +90 about +Z
	world := physics.NewWorld(
		&physics.Plane{Point: r3.Vec{Y: -3}, Normal: r3.Vec{Y: 1}, Echo: failing},
		&physics.Plane{Point: r3.Vec{Y: 3}, Normal: r3.Vec{Y: -1}, Echo: ok},
	)
	reg := status.NewRegistry()
	e, err := NewEmitter(ScanConfig{RayCount: 3, FanAngleDegrees: 180, MaxRange: 10, SpeedOfSound: 343},
		Options{Raycaster: world, Pose: core.NewTransform(r3.Vec{}), Listener: core.NewTransform(r3.Vec{}), Registry: reg})
	if err != nil {
		t.Fatal(err)
	}

	report := e.Ping()
	if report.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", report.Errors)
	}
	if len(ok.reqs) != 1 {
		t.Errorf("Expected scan to reach the second wall, got %d echoes", len(ok.reqs))
	}
	if reg.Ints.Get(status.SonarEchoErrors).Load() != 1 {
		t.Error("error metric mismatch")
	}
}

func TestPingWithoutListenerUsesEmitterPosition(t *testing.T) {
	wall := &recorder{}
	world := physics.NewWorld(&physics.Plane{Point: r3.Vec{X: 5}, Normal: r3.Vec{X: -1}, Echo: wall})
	reg := status.NewRegistry()
	pos := r3.Vec{X: 1, Y: 2}
	e, err := NewEmitter(ScanConfig{RayCount: 2, FanAngleDegrees: 10, MaxRange: 10, SpeedOfSound: 343},
		Options{Raycaster: world, Pose: core.NewTransform(pos), Registry: reg})
	if err != nil {
		t.Fatal(err)
	}

	e.Ping()
	if len(wall.reqs) != 2 {
		t.Fatalf("Expected both rays to hit, got %d", len(wall.reqs))
	}
	for _, r := range wall.reqs {
		if r.Listener != pos {
			t.Errorf("Expected listener fallback %v, got %v", pos, r.Listener)
		}
	}
	if reg.Ints.Get(status.SonarNoListener).Load() != 1 {
		t.Error("Expected no-listener counted once per ping")
	}
}

func TestPingPlaysPingClip(t *testing.T) {
	ctrl := gomock.NewController(t)
	out := mocks.NewMockOutput(ctrl)
	clip := audio.SynthesizePing()
	out.EXPECT().Play(gomock.Any()).DoAndReturn(func(req audio.PlayRequest) (audio.Handle, error) {
		if req.Spatial || req.Clip != clip {
			t.Errorf("Expected non-spatial ping clip, got %+v", req)
		}
		return mocks.NewMockHandle(ctrl), nil
	})

	e, err := NewEmitter(ScanConfig{RayCount: 2, FanAngleDegrees: 10, MaxRange: 1, SpeedOfSound: 343},
		Options{Raycaster: physics.NewWorld(), Pose: core.NewTransform(r3.Vec{}), Output: out, PingClip: clip})
	if err != nil {
		t.Fatal(err)
	}
	if report := e.Ping(); report.Misses != 2 {
		t.Errorf("Expected 2 misses in an empty world, got %d", report.Misses)
	}
}

func TestOrientationRotatesFan(t *testing.T) {
	pose := core.NewTransform(r3.Vec{})
	e, err := NewEmitter(ScanConfig{RayCount: 2, FanAngleDegrees: 2, MaxRange: 1, SpeedOfSound: 1},
		Options{Raycaster: physics.NewWorld(), Pose: pose})
	if err != nil {
		t.Fatal(err)
	}
	pose.SetOrientation(r3.NewRotation(math.Pi, vmath.AxisZ))
	for _, d := range e.Directions() {
		if d.X > -0.99 {
			t.Errorf("Expected fan flipped to -X, got %v", d)
		}
	}
}

func TestVerticalPlane(t *testing.T) {
	cfg := ScanConfig{RayCount: 3, FanAngleDegrees: 180, MaxRange: 1, SpeedOfSound: 1, Plane: PlaneVertical}
	dirs := cfg.directions()
	// +Z swept about +X: -90 -> +Y, 0 -> +Z, +90 -> -Y
	want := []r3.Vec{{Y: 1}, {Z: 1}, {Y: -1}}
	for i := range want {
		if r3.Norm(r3.Sub(dirs[i], want[i])) > 1e-9 {
			t.Errorf("ray %d: Expected %v, got %v", i, want[i], dirs[i])
		}
	}
}

func TestNewEmitterRejectsBadConfig(t *testing.T) {
	opts := Options{Raycaster: physics.NewWorld(), Pose: core.NewTransform(r3.Vec{})}
	tests := []ScanConfig{
		{RayCount: 1, FanAngleDegrees: 90, MaxRange: 1, SpeedOfSound: 1},
		{RayCount: 4, FanAngleDegrees: 0, MaxRange: 1, SpeedOfSound: 1},
		{RayCount: 4, FanAngleDegrees: 361, MaxRange: 1, SpeedOfSound: 1},
		{RayCount: 4, FanAngleDegrees: 90, MaxRange: 0, SpeedOfSound: 1},
		{RayCount: 4, FanAngleDegrees: 90, MaxRange: 1, SpeedOfSound: 0},
		{RayCount: 4, FanAngleDegrees: 90, MaxRange: 1, SpeedOfSound: 1, Plane: 7},
	}
	for i, cfg := range tests {
		if _, err := NewEmitter(cfg, opts); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("case %d: Expected ErrInvalidConfiguration, got %v", i, err)
		}
	}

	all := ScanConfig{RayCount: 0, FanAngleDegrees: -1, MaxRange: -1, SpeedOfSound: -1}
	if n := len(multierr.Errors(all.Validate())); n != 4 {
		t.Errorf("Expected 4 violations, got %d", n)
	}
	if _, err := NewEmitter(DefaultScanConfig(), Options{}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected missing collaborators rejected, got %v", err)
	}
}

func TestReconfigureKeepsOldOnError(t *testing.T) {
	e, err := NewEmitter(DefaultScanConfig(), Options{Raycaster: physics.NewWorld(), Pose: core.NewTransform(r3.Vec{})})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Reconfigure(ScanConfig{RayCount: 1}); err == nil {
		t.Fatal("Expected error")
	}
	if len(e.Directions()) != 72 {
		t.Errorf("Expected old table kept, got %d rays", len(e.Directions()))
	}
	if err := e.Reconfigure(ScanConfig{RayCount: 8, FanAngleDegrees: 45, MaxRange: 3, SpeedOfSound: 343}); err != nil {
		t.Fatal(err)
	}
	if len(e.Directions()) != 8 || e.Config().MaxRange != 3 {
		t.Error("Reconfigure not applied")
	}
}

func TestPlaneText(t *testing.T) {
	var p Plane
	if err := p.UnmarshalText([]byte("Vertical")); err != nil || p != PlaneVertical {
		t.Errorf("Expected vertical, got %v (%v)", p, err)
	}
	if err := p.UnmarshalText([]byte("diagonal")); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
	b, _ := PlaneHorizontal.MarshalText()
	if string(b) != "horizontal" {
		t.Errorf("Expected horizontal, got %s", b)
	}
}

func TestDirectionsAreUnitProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := ScanConfig{
			RayCount:        rapid.IntRange(2, 256).Draw(t, "rays"),
			FanAngleDegrees: rapid.Float64Range(1, 360).Draw(t, "fan"),
			MaxRange:        1,
			SpeedOfSound:    1,
			Plane:           Plane(rapid.IntRange(0, 1).Draw(t, "plane")),
		}
		for i, d := range cfg.directions() {
			if !scalar.EqualWithinAbs(r3.Norm(d), 1, 1e-9) {
				t.Fatalf("ray %d not unit: %v", i, d)
			}
		}
	})
}
