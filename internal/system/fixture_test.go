package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/data"
	"github.com/res-engine/res/internal/geometry"
	"github.com/res-engine/res/internal/physics/bridge"
	"github.com/res-engine/res/internal/scripting"
)

const frame = time.Second / 60

type fixture struct {
	w     *ecs.World
	bus   *event.Bus
	br    *bridge.Bridge
	cache *geometry.ShapeCache
	gp    config.GameplayConfig
	log   *zap.Logger
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	cfg := config.Default()
	cfg.Physics.WorkerThreads = 2
	cfg.Physics.TempAllocatorBytes = 1 << 20
	cfg.Physics.MaxBodies = 128

	f := &fixture{
		w:     ecs.NewWorld(),
		bus:   event.NewBus(),
		br:    bridge.New(cfg.Physics, log),
		cache: geometry.NewShapeCache(log),
		gp:    cfg.Gameplay,
		log:   log,
		logs:  logs,
	}
	RegisterPhysicsObservers(f.w, f.br, f.bus, f.cache, f.gp, log)
	ecs.SetSingleton(f.w, component.PhysicsHandle{})
	t.Cleanup(func() {
		if f.br.State() == bridge.Initialized {
			f.w.Clear()
		}
	})
	return f
}

// collect subscribes to T and returns the slice events are appended to.
func collect[T any](bus *event.Bus) *[]T {
	var out []T
	event.Subscribe(bus, func(ev T) { out = append(out, ev) })
	return &out
}

func (f *fixture) dispatch() {
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
}

// quad is a 20x20 upward-facing floor at height y.
func quad(y float32) data.Mesh {
	return data.Mesh{
		Vertices:      []float32{-10, y, -10, 10, y, -10, 10, y, 10, -10, y, 10},
		VertexCount:   4,
		Indices:       []uint16{0, 2, 1, 0, 3, 2},
		TriangleCount: 2,
	}
}

func (f *fixture) floorMeshes() []data.Mesh { return []data.Mesh{quad(0)} }

func (f *fixture) floor(meshes ...data.Mesh) ecs.EntityID {
	if len(meshes) == 0 {
		meshes = f.floorMeshes()
	}
	id := f.w.CreateNamed("floor")
	ecs.Set(f.w, id, component.Model{Name: "floor", Meshes: meshes})
	ecs.Set(f.w, id, component.Translate(mgl32.Vec3{}))
	ecs.Set(f.w, id, component.StaticCollider{})
	ecs.Set(f.w, id, component.BodyHandle{})
	return id
}

func (f *fixture) ball(name string, pos mgl32.Vec3) ecs.EntityID {
	id := f.w.CreateNamed(name)
	ecs.Set(f.w, id, component.Translate(pos))
	ecs.Set(f.w, id, component.DynamicSphere{})
	ecs.Set(f.w, id, component.BodyHandle{})
	return id
}

func (f *fixture) character(pos mgl32.Vec3) ecs.EntityID {
	id := f.w.CreateNamed("player")
	ecs.Set(f.w, id, component.Translate(pos))
	ecs.Set(f.w, id, component.Player{})
	ecs.Set(f.w, id, component.MovementInput{})
	ecs.Set(f.w, id, component.DefaultCharacterController())
	ecs.Set(f.w, id, component.BodyHandle{})
	return id
}

func handle(t *testing.T, w *ecs.World, id ecs.EntityID) *component.BodyHandle {
	t.Helper()
	h, ok := ecs.Get[component.BodyHandle](w, id)
	if !ok {
		t.Fatalf("%s has no BodyHandle", id)
	}
	return h
}

// hooks is a scripted Hooks double.
type hooks struct {
	calls []scripting.TickContext
	next  func(scripting.TickContext) scripting.TickResult
}

func (h *hooks) Tick(ctx scripting.TickContext) scripting.TickResult {
	h.calls = append(h.calls, ctx)
	if h.next == nil {
		return scripting.TickResult{}
	}
	return h.next(ctx)
}

func (h *hooks) SpawnPosition(index int, fallback mgl32.Vec3) (mgl32.Vec3, bool) {
	return fallback.Add(mgl32.Vec3{float32(index), 0, 0}), true
}

func renderBall(f *fixture, id ecs.EntityID) {
	ecs.Set(f.w, id, component.SpherePrimitive{Radius: f.gp.SphereRadius})
	ecs.Set(f.w, id, component.Renderable{})
}
