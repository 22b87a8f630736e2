package system

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/geometry"
	"github.com/res-engine/res/internal/physics"
	"github.com/res-engine/res/internal/physics/bridge"
)

// Observer names, in registration order.
const (
	ObserverPhysicsInit   = "physics.init"
	ObserverPhysicsDeinit = "physics.deinit"
	ObserverStaticBody    = "physics.static_body"
	ObserverSphereBody    = "physics.sphere_body"
	ObserverCharacterBody = "physics.character_body"
	ObserverGuardBody     = "physics.guard_body"
	ObserverReleaseBody   = "physics.release_body"
)

func bodyKind(k bridge.IntentKind) event.BodyKind {
	switch k {
	case bridge.IntentSphere:
		return event.BodySphere
	case bridge.IntentCharacter:
		return event.BodyCharacter
	}
	return event.BodyStatic
}

// RegisterPhysicsObservers wires component lifecycle notifications to the
// bridge. Bodies are created when the last required component arrives and
// destroyed when the BodyHandle leaves, whether by Remove or by entity
// destruction.
func RegisterPhysicsObservers(w *ecs.World, br *bridge.Bridge, bus *event.Bus, cache *geometry.ShapeCache, gp config.GameplayConfig, log *zap.Logger) {
	ecs.Observe1(w, ObserverPhysicsInit, ecs.OnAdd, func(ecs.Trigger, *component.PhysicsHandle) {
		br.Init()
	})
	ecs.Observe1(w, ObserverPhysicsDeinit, ecs.OnRemove, func(ecs.Trigger, *component.PhysicsHandle) {
		br.Shutdown()
	})

	ecs.Observe4(w, ObserverStaticBody, ecs.OnAdd, func(tr ecs.Trigger, model *component.Model, h *component.BodyHandle, m *component.Matrix, _ *component.StaticCollider) {
		if h.Valid() {
			return
		}
		shape, skipped, err := cache.StaticCompound(model.Meshes)
		if skipped > 0 || err != nil {
			event.Emit(bus, event.ShapeSkipped{Entity: tr.Entity, Skipped: skipped, Err: err})
		}
		if err != nil {
			log.Error("static collider has no usable mesh",
				zap.Stringer("entity", tr.Entity),
				zap.String("model", model.Name),
				zap.Error(err),
			)
			return
		}
		id, err := br.CreateBody(bridge.Static(bridge.StaticIntent{
			Shape:    shape,
			Position: m.Translation(),
			Rotation: m.Rotation(),
		}, uint64(tr.Entity)))
		if err != nil {
			log.Error("create static body", zap.Stringer("entity", tr.Entity), zap.Error(err))
			return
		}
		h.ID = id
		event.Emit(bus, event.BodyCreated{Entity: tr.Entity, Body: id, Kind: event.BodyStatic})
	})

	ecs.Observe2(w, ObserverSphereBody, ecs.OnAdd, func(tr ecs.Trigger, _ *component.DynamicSphere, h *component.BodyHandle) {
		if h.Valid() {
			return
		}
		pos := mgl32.Vec3{0, gp.SphereSpawnHeight, 0}
		if m, ok := ecs.Get[component.Matrix](w, tr.Entity); ok {
			if t := m.Translation(); t != (mgl32.Vec3{}) {
				pos = t
			}
		}
		id, err := br.CreateBody(bridge.Sphere(bridge.SphereIntent{
			Radius:      gp.SphereRadius,
			Position:    pos,
			Velocity:    mgl32.Vec3{0, gp.SphereInitialVelocityY, 0},
			Restitution: gp.SphereRestitution,
			Friction:    gp.SphereFriction,
		}, uint64(tr.Entity)))
		if err != nil {
			log.Error("create sphere body", zap.Stringer("entity", tr.Entity), zap.Error(err))
			return
		}
		h.ID = id
		event.Emit(bus, event.BodyCreated{Entity: tr.Entity, Body: id, Kind: event.BodySphere})
	})

	// Characters build on OnSet so that writing a new CharacterController
	// rebuilds the capsule. A BodyHandle write only builds when the handle
	// is still empty.
	ecs.Observe2(w, ObserverCharacterBody, ecs.OnSet, func(tr ecs.Trigger, cc *component.CharacterController, h *component.BodyHandle) {
		feet := mgl32.Vec3{}
		if m, ok := ecs.Get[component.Matrix](w, tr.Entity); ok {
			feet = m.Translation()
		}
		if h.Valid() {
			if !ecs.TriggeredBy[component.CharacterController](tr) {
				return
			}
			if p, ok := br.Position(h.ID); ok {
				feet = p
			}
			old := h.ID
			br.RemoveAndDestroy(old)
			h.ID = physics.InvalidBodyID
			event.Emit(bus, event.BodyDestroyed{Entity: tr.Entity, Body: old})
		}
		id, err := br.CreateBody(bridge.Character(bridge.CharacterIntent{
			Height:      cc.Height,
			Radius:      cc.Radius,
			Position:    feet,
			Rotation:    physics.Identity,
			MaxSlopeDeg: gp.CharacterMaxSlopeDeg,
			Friction:    gp.CharacterFriction,
		}, uint64(tr.Entity)))
		if err != nil {
			log.Error("create character", zap.Stringer("entity", tr.Entity), zap.Error(err))
			return
		}
		h.ID = id
		event.Emit(bus, event.BodyCreated{Entity: tr.Entity, Body: id, Kind: event.BodyCharacter})
	})

	// The bridge owns what a BodyHandle names. Writing over a live handle
	// keeps the current body, and an ID owned by another entity is refused.
	ecs.ObserveReplace(w, ObserverGuardBody, func(tr ecs.Trigger, cur, next *component.BodyHandle) {
		if next.ID == cur.ID {
			return
		}
		if cur.Valid() {
			log.Warn("body handle overwrite ignored",
				zap.Stringer("entity", tr.Entity),
				zap.Stringer("body", cur.ID),
				zap.Stringer("incoming", next.ID),
			)
			next.ID = cur.ID
			return
		}
		if !next.Valid() {
			return
		}
		if owner, ok := br.Owner(next.ID); !ok || owner != uint64(tr.Entity) {
			log.Error("foreign body id refused",
				zap.Stringer("entity", tr.Entity),
				zap.Stringer("incoming", next.ID),
			)
			next.ID = physics.InvalidBodyID
		}
	})

	ecs.Observe1(w, ObserverReleaseBody, ecs.OnRemove, func(tr ecs.Trigger, h *component.BodyHandle) {
		if !h.Valid() {
			log.Warn("release of empty body handle", zap.Stringer("entity", tr.Entity))
			return
		}
		if br.State() == bridge.Destroyed {
			// Shutdown already swept the body.
			log.Error("body handle outlived physics",
				zap.Stringer("entity", tr.Entity),
				zap.Stringer("body", h.ID),
			)
			h.ID = physics.InvalidBodyID
			return
		}
		kind, _ := br.Kind(h.ID)
		if br.RemoveAndDestroy(h.ID) {
			event.Emit(bus, event.BodyDestroyed{Entity: tr.Entity, Body: h.ID})
			log.Debug("body released",
				zap.Stringer("entity", tr.Entity),
				zap.Stringer("body", h.ID),
				zap.Stringer("kind", bodyKind(kind)),
			)
		}
		h.ID = physics.InvalidBodyID
	})
}
