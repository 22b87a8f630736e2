package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/physics/bridge"
	"github.com/res-engine/res/internal/render"
	"github.com/res-engine/res/internal/scripting"
)

const frame = time.Second / 60

const roomYAML = `
name: room
boxes:
  - { min: [-8.0, -0.5, -8.0], max: [8.0, 0.0, 8.0] }
`

const sceneYAML = `
name: test
entities:
  - name: camera
    camera:
      position: [5.6, 3.3, -5.3]
      target: [0.3, 0.6, -2.0]
      fovy: 45
      follow: true
  - name: room
    model: room.yaml
    renderable: true
    static_collider: true
  - name: player
    capsule: true
    renderable: true
    player: true
    character: { height: 2.0, radius: 0.5 }
  - name: drone
    position: [2.0, 6.0, 2.0]
    sphere: true
    renderable: true
    dynamic_sphere: true
    gravity: [0.0, 0.0, 0.0]
  - name: ball
    position: [-2.0, 5.0, 1.0]
    sphere: true
    renderable: true
    dynamic_sphere: true
  - name: title
    text: { value: "hello", x: 1, y: 1, size: 10 }
`

type nopHooks struct{}

func (nopHooks) Tick(scripting.TickContext) scripting.TickResult { return scripting.TickResult{} }
func (nopHooks) SpawnPosition(_ int, fallback mgl32.Vec3) (mgl32.Vec3, bool) {
	return fallback, false
}

func testConfig(t *testing.T, scene string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Physics.WorkerThreads = 2
	cfg.Physics.TempAllocatorBytes = 1 << 20
	cfg.Physics.MaxBodies = 128
	cfg.Scene.Path = ""
	if scene != "" {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "room.yaml"), []byte(roomYAML), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg.Scene.Path = filepath.Join(dir, "scene.yaml")
		if err := os.WriteFile(cfg.Scene.Path, []byte(scene), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return *cfg
}

func newApp(t *testing.T, cfg config.Config, deps Deps) (*App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	if deps.Backend == nil {
		deps.Backend = render.NewRecorder(80, 24)
	}
	if deps.Keys == nil {
		deps.Keys = input.NewStatic()
	}
	a, err := New(cfg, deps, zap.New(core))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a, logs
}

func TestNewRequiresSurfaces(t *testing.T) {
	if _, err := New(*config.Default(), Deps{}, zap.NewNop()); err == nil {
		t.Fatal("expected error without backend and input")
	}
}

func TestLifecycleWithoutScene(t *testing.T) {
	a, _ := newApp(t, testConfig(t, ""), Deps{Hooks: nopHooks{}})
	if a.Bridge().State() != bridge.Initialized {
		t.Fatalf("state = %v", a.Bridge().State())
	}
	a.Step(frame)
	a.Step(frame)
	if a.Runner().Frame() != 2 {
		t.Errorf("frames = %d", a.Runner().Frame())
	}
	a.Close()
	a.Close()
	if a.Bridge().State() != bridge.Destroyed {
		t.Errorf("state after close = %v", a.Bridge().State())
	}
}

func TestSceneSpawnsBodies(t *testing.T) {
	rec := render.NewRecorder(80, 24)
	a, logs := newApp(t, testConfig(t, sceneYAML), Deps{Backend: rec, Hooks: nopHooks{}})
	w := a.World()

	// room, player, drone, ball
	if n := a.Bridge().BodyCount(); n != 4 {
		t.Fatalf("bodies = %d, want 4", n)
	}
	for _, name := range []string{"room", "player", "drone", "ball"} {
		h, ok := ecs.Get[component.BodyHandle](w, w.Lookup(name))
		if !ok || !h.Valid() {
			t.Errorf("%s has no body", name)
		}
	}
	if g, ok := ecs.Get[component.Gravity](w, w.Lookup("drone")); !ok || g.Force.Y() >= 0 {
		t.Errorf("drone gravity %+v", g)
	}

	ball := w.Lookup("ball")
	a.Step(frame)

	m, _ := ecs.Get[component.Matrix](w, ball)
	if m.Translation().Y() >= 5 {
		t.Errorf("ball did not fall: %v", m.Translation())
	}
	cam, _ := ecs.Get[component.Camera](w, w.Lookup("camera"))
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{5.6, 3.3, -5.3}, 1e-3) {
		t.Errorf("camera at %v", cam.Position)
	}
	if p, _ := ecs.Get[component.Position](w, ball); p.V.Y() >= 5 {
		t.Errorf("position marker not applied: %v", p.V)
	}
	if rec.Frames() != 1 || rec.Misuse() != 0 {
		t.Errorf("frames=%d misuse=%d", rec.Frames(), rec.Misuse())
	}
	if len(rec.Find(render.OpDrawSphere)) != 2 || len(rec.Find(render.OpDrawCapsule)) != 1 {
		t.Errorf("draw calls %v", rec.Ops())
	}

	a.Close()
	if a.Bridge().BodyCount() != 0 || a.Bridge().State() != bridge.Destroyed {
		t.Errorf("after close: bodies=%d state=%v", a.Bridge().BodyCount(), a.Bridge().State())
	}
	if logs.FilterMessage("bodies alive at shutdown").Len() != 0 {
		t.Error("bodies leaked to shutdown")
	}
}

func TestMissingSceneFails(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Scene.Path = filepath.Join(t.TempDir(), "absent.yaml")
	_, err := New(cfg, Deps{Backend: render.NewRecorder(10, 10), Keys: input.NewStatic(), Hooks: nopHooks{}}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing scene")
	}
}

func TestRunStopsOnCloseRequest(t *testing.T) {
	keys := input.NewStatic()
	keys.Close = true
	cfg := testConfig(t, "")
	cfg.Window.TargetFPS = 200
	a, _ := newApp(t, cfg, Deps{Keys: keys, Hooks: nopHooks{}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Runner().Frame() != 1 {
		t.Errorf("frames = %d, want 1", a.Runner().Frame())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	a, _ := newApp(t, testConfig(t, ""), Deps{Hooks: nopHooks{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestLuaGameplaySpawnsBall(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Gameplay.ScriptDir = filepath.Join("..", "..", "scripts")
	a, _ := newApp(t, cfg, Deps{Keys: input.NewStatic(input.KeySpace)})

	a.Step(frame)
	if n := a.Bridge().BodyCount(); n != 1 {
		t.Fatalf("bodies after first frame = %d, want 1", n)
	}
	a.Step(frame)
	if n := a.Bridge().BodyCount(); n != 1 {
		t.Errorf("spawn cooldown ignored: %d bodies", n)
	}
}
