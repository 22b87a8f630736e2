package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/physics"
	"github.com/res-engine/res/internal/physics/bridge"
	"github.com/res-engine/res/internal/scripting"
)

// Hooks is the scripting surface the gameplay system needs.
type Hooks interface {
	Tick(ctx scripting.TickContext) scripting.TickResult
	SpawnPosition(index int, fallback mgl32.Vec3) (mgl32.Vec3, bool)
}

// GameplaySystem asks the gameplay script each tick whether to spawn a new
// ball or despawn the oldest one. Tick, before Gravity.
type GameplaySystem struct {
	world  *ecs.World
	br     *bridge.Bridge
	bus    *event.Bus
	keys   input.Source
	hooks  Hooks
	cfg    config.GameplayConfig
	log    *zap.Logger
	frame  uint64
	spawns uint64
}

func NewGameplaySystem(w *ecs.World, br *bridge.Bridge, bus *event.Bus, keys input.Source, hooks Hooks, cfg config.GameplayConfig, log *zap.Logger) *GameplaySystem {
	return &GameplaySystem{world: w, br: br, bus: bus, keys: keys, hooks: hooks, cfg: cfg, log: log}
}

func (s *GameplaySystem) Name() string { return "Gameplay" }

func (s *GameplaySystem) Update(_ time.Duration) {
	s.frame++
	balls, oldest := s.spawned()

	ctx := scripting.TickContext{
		Frame:     s.frame,
		Balls:     balls,
		MaxBalls:  s.cfg.MaxBalls,
		SpaceHeld: s.keys.IsKeyDown(input.KeySpace),
	}
	if id, ok := s.player(); ok {
		if h, ok := ecs.Get[component.BodyHandle](s.world, id); ok && h.Valid() {
			ctx.Player, _ = s.br.Position(h.ID)
			g, _ := s.br.GroundState(h.ID)
			ctx.Grounded = g == physics.OnGround
		}
	}

	res := s.hooks.Tick(ctx)
	if res.DespawnOldest && !oldest.IsZero() {
		event.Emit(s.bus, event.EntityDespawned{Entity: oldest, Name: s.world.Name(oldest)})
		s.world.MarkForDestruction(oldest)
	}
	if res.SpawnBall {
		if s.cfg.MaxBalls > 0 && balls >= s.cfg.MaxBalls {
			s.log.Debug("spawn refused, ball limit reached", zap.Int("balls", balls))
			return
		}
		s.SpawnBall()
	}
}

// spawned counts gameplay-spawned balls and finds the oldest.
func (s *GameplaySystem) spawned() (int, ecs.EntityID) {
	n := 0
	var oldest ecs.EntityID
	var order uint64
	ecs.Each2(ecs.Register[component.Spawned](s.world), ecs.Register[component.DynamicSphere](s.world),
		func(id ecs.EntityID, sp *component.Spawned, _ *component.DynamicSphere) {
			n++
			if oldest.IsZero() || sp.Order < order {
				oldest, order = id, sp.Order
			}
		})
	return n, oldest
}

func (s *GameplaySystem) player() (ecs.EntityID, bool) {
	var found ecs.EntityID
	ecs.Register[component.Player](s.world).Each(func(id ecs.EntityID, _ *component.Player) {
		if found.IsZero() {
			found = id
		}
	})
	return found, !found.IsZero()
}

// SpawnBall creates a renderable dynamic sphere. The body itself is built
// by the sphere observer when BodyHandle is attached last.
func (s *GameplaySystem) SpawnBall() ecs.EntityID {
	w := s.world
	index := int(s.spawns)
	pos, _ := s.hooks.SpawnPosition(index, mgl32.Vec3{0, s.cfg.SphereSpawnHeight, 0})

	name := "ball-" + uuid.NewString()
	id := w.CreateNamed(name)
	ecs.Set(w, id, component.Translate(pos))
	ecs.Set(w, id, component.Position{V: pos})
	ecs.Set(w, id, component.SpherePrimitive{Radius: s.cfg.SphereRadius})
	ecs.Set(w, id, component.Color{Name: "red"})
	ecs.Set(w, id, component.Renderable{})
	ecs.Set(w, id, component.Spawned{Frame: s.frame, Order: s.spawns})
	ecs.Set(w, id, component.DynamicSphere{})
	ecs.Set(w, id, component.BodyHandle{})
	s.spawns++

	event.Emit(s.bus, event.EntitySpawned{Entity: id, Name: name})
	s.log.Debug("ball spawned", zap.String("name", name), zap.Stringer("entity", id))
	return id
}
