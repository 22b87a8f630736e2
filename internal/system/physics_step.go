package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/physics"
	"github.com/res-engine/res/internal/physics/bridge"
)

// GravitySystem displaces each body's centre of mass by Force·dt through a
// kinematic move, leaving its orientation alone. Tick.
type GravitySystem struct {
	world *ecs.World
	br    *bridge.Bridge
	log   *zap.Logger
}

func NewGravitySystem(w *ecs.World, br *bridge.Bridge, log *zap.Logger) *GravitySystem {
	return &GravitySystem{world: w, br: br, log: log}
}

func (s *GravitySystem) Name() string { return "Gravity" }

func (s *GravitySystem) Update(dt time.Duration) {
	secs := float32(dt.Seconds())
	ecs.Each2(ecs.Register[component.Gravity](s.world), ecs.Register[component.BodyHandle](s.world),
		func(id ecs.EntityID, g *component.Gravity, h *component.BodyHandle) {
			if !h.Valid() {
				s.log.Debug("gravity: entity has no body", zap.Stringer("entity", id))
				return
			}
			com, ok := s.br.CenterOfMass(h.ID)
			if !ok {
				return
			}
			pos, _ := s.br.Position(h.ID)
			// MoveKinematic targets the body origin, not the centre of mass.
			target := com.Add(g.Force.Mul(secs)).Add(pos.Sub(com))
			s.br.MoveKinematic(h.ID, target, physics.Identity, dt)
		})
}

// CharacterMovementSystem turns a character's MovementInput into horizontal
// velocity, replacing whatever it had. Tick.
type CharacterMovementSystem struct {
	world *ecs.World
	br    *bridge.Bridge
	speed float32
}

func NewCharacterMovementSystem(w *ecs.World, br *bridge.Bridge, speed float32) *CharacterMovementSystem {
	return &CharacterMovementSystem{world: w, br: br, speed: speed}
}

func (s *CharacterMovementSystem) Name() string { return "CharacterMovement" }

func (s *CharacterMovementSystem) Update(_ time.Duration) {
	ecs.Each3(ecs.Register[component.MovementInput](s.world), ecs.Register[component.CharacterController](s.world), ecs.Register[component.BodyHandle](s.world),
		func(_ ecs.EntityID, in *component.MovementInput, _ *component.CharacterController, h *component.BodyHandle) {
			if !h.Valid() {
				return
			}
			v := in.Input.Mul(s.speed)
			s.br.SetLinearVelocity(h.ID, mgl32.Vec3{v.X(), 0, v.Y()})
		})
}

// PhysicsStepSystem advances the world by one frame. Tick.
type PhysicsStepSystem struct {
	br  *bridge.Bridge
	log *zap.Logger
}

func NewPhysicsStepSystem(br *bridge.Bridge, log *zap.Logger) *PhysicsStepSystem {
	return &PhysicsStepSystem{br: br, log: log}
}

func (s *PhysicsStepSystem) Name() string { return "PhysicsStep" }

func (s *PhysicsStepSystem) Update(dt time.Duration) {
	if err := s.br.Step(dt); err != nil {
		s.log.Error("physics step failed", zap.Duration("dt", dt), zap.Error(err))
	}
}

// PoseFeedbackSystem writes each moving body's centre of mass into its
// entity's Matrix as a pure translation. Tick, after PhysicsStep.
type PoseFeedbackSystem struct {
	world *ecs.World
	br    *bridge.Bridge
	log   *zap.Logger
}

func NewPoseFeedbackSystem(w *ecs.World, br *bridge.Bridge, log *zap.Logger) *PoseFeedbackSystem {
	return &PoseFeedbackSystem{world: w, br: br, log: log}
}

func (s *PoseFeedbackSystem) Name() string { return "PoseFeedback" }

func (s *PoseFeedbackSystem) Update(_ time.Duration) {
	ecs.Each2(ecs.Register[component.BodyHandle](s.world), ecs.Register[component.Matrix](s.world),
		func(id ecs.EntityID, h *component.BodyHandle, m *component.Matrix) {
			if !h.Valid() {
				s.log.Debug("pose feedback: invalid body handle", zap.Stringer("entity", id))
				return
			}
			// Static bodies never move and keep their full transform.
			if k, _ := s.br.Kind(h.ID); k == bridge.IntentStatic {
				return
			}
			com, ok := s.br.CenterOfMass(h.ID)
			if !ok {
				return
			}
			*m = component.Translate(com)
		})
}

// BounceDetectSystem raises BodyBounced when a ball's vertical velocity
// turns from falling to rising. PostTick.
type BounceDetectSystem struct {
	world     *ecs.World
	br        *bridge.Bridge
	bus       *event.Bus
	threshold float32
	last      map[ecs.EntityID]float32
	next      map[ecs.EntityID]float32
}

func NewBounceDetectSystem(w *ecs.World, br *bridge.Bridge, bus *event.Bus) *BounceDetectSystem {
	return &BounceDetectSystem{
		world:     w,
		br:        br,
		bus:       bus,
		threshold: 0.5,
		last:      make(map[ecs.EntityID]float32),
		next:      make(map[ecs.EntityID]float32),
	}
}

func (s *BounceDetectSystem) Name() string { return "BounceDetect" }

func (s *BounceDetectSystem) Update(_ time.Duration) {
	ecs.Each2(ecs.Register[component.DynamicSphere](s.world), ecs.Register[component.BodyHandle](s.world),
		func(id ecs.EntityID, _ *component.DynamicSphere, h *component.BodyHandle) {
			if !h.Valid() {
				return
			}
			v, ok := s.br.LinearVelocity(h.ID)
			if !ok {
				return
			}
			vy := v.Y()
			if prev, seen := s.last[id]; seen && prev < -s.threshold && vy > s.threshold {
				event.Emit(s.bus, event.BodyBounced{Entity: id, Speed: vy})
			}
			s.next[id] = vy
		})
	s.last, s.next = s.next, s.last
	clear(s.next)
}
