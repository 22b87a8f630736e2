// Package bridge owns the physics world for the lifetime of a scene and is
// the only path through which entity code creates, moves or destroys bodies.
package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/physics"
)

var ErrNotInitialized = errors.New("physics bridge not initialized")

type State uint8

const (
	Uninitialized State = iota
	Initialized
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initialized:
		return "Initialized"
	case Destroyed:
		return "Destroyed"
	}
	return "Unknown"
}

type record struct {
	kind      IntentKind
	owner     uint64
	character *physics.Character
}

// Bridge is the physics handle. Init and Shutdown each run exactly once;
// every body operation in between must run on the driving goroutine.
type Bridge struct {
	cfg   config.PhysicsConfig
	log   *zap.Logger
	state State

	factory *physics.Factory
	system  *physics.PhysicsSystem
	alloc   *physics.TempAllocator
	jobs    *physics.JobSystem

	bodies     map[physics.BodyID]*record
	characters []physics.BodyID
}

func New(cfg config.PhysicsConfig, log *zap.Logger) *Bridge {
	return &Bridge{
		cfg:    cfg,
		log:    log,
		bodies: make(map[physics.BodyID]*record),
	}
}

func (b *Bridge) State() State { return b.state }

// Init registers the shape types, allocates the temp arena and worker pool
// and sizes the world.
func (b *Bridge) Init() {
	if b.state != Uninitialized {
		panic(fmt.Sprintf("bridge: Init in state %s", b.state))
	}
	b.factory = physics.NewFactory()
	b.factory.RegisterTypes()
	b.alloc = physics.NewTempAllocator(b.cfg.TempAllocatorBytes)
	b.jobs = physics.NewJobSystem(physics.MaxPhysicsJobs, physics.MaxPhysicsBarriers, b.cfg.WorkerThreads)

	b.system = physics.NewPhysicsSystem(b.factory)
	b.system.Init(b.cfg.MaxBodies, b.cfg.NumBodyMutexes, b.cfg.MaxBodyPairs, b.cfg.MaxContactConstraints,
		physics.LayerTable{}, physics.ObjectVsBroadPhase{}, physics.ObjectPairs{})
	b.system.SetGravity(mgl32.Vec3(b.cfg.Gravity))
	b.state = Initialized

	b.log.Info("physics initialized",
		zap.Int("workers", b.jobs.Threads()),
		zap.Int("temp_bytes", b.alloc.Capacity()),
		zap.Int("max_bodies", b.cfg.MaxBodies),
		zap.Int("max_body_pairs", b.cfg.MaxBodyPairs),
		zap.Int("max_contacts", b.cfg.MaxContactConstraints),
	)
}

// Shutdown destroys any body still alive, stops the workers and releases
// the type registry.
func (b *Bridge) Shutdown() {
	if b.state != Initialized {
		panic(fmt.Sprintf("bridge: Shutdown in state %s", b.state))
	}
	if n := len(b.bodies); n > 0 {
		b.log.Error("bodies alive at shutdown", zap.Int("count", n))
		for id, rec := range b.bodies {
			b.log.Error("destroying leaked body",
				zap.Stringer("body", id),
				zap.Stringer("kind", rec.kind),
				zap.Uint64("owner", rec.owner),
			)
			b.destroy(id)
		}
	}
	b.jobs.Close()
	b.factory.UnregisterTypes()
	b.state = Destroyed
	b.log.Info("physics destroyed", zap.Int("temp_high_water", b.alloc.HighWater()))
}

func (b *Bridge) mustInit(op string) {
	if b.state != Initialized {
		panic(fmt.Sprintf("bridge: %s in state %s: %v", op, b.state, ErrNotInitialized))
	}
}

// valid reports whether id names a live body, logging when it does not.
func (b *Bridge) valid(op string, id physics.BodyID) bool {
	b.mustInit(op)
	if id.IsInvalid() {
		b.log.Warn("invalid body id", zap.String("op", op))
		return false
	}
	if _, ok := b.bodies[id]; !ok {
		b.log.Warn("unknown body id", zap.String("op", op), zap.Stringer("body", id))
		return false
	}
	return true
}

// CreateBody resolves an intent into a live body that has been added to
// the world.
func (b *Bridge) CreateBody(in Intent) (physics.BodyID, error) {
	b.mustInit("CreateBody")
	switch in.Kind {
	case IntentStatic:
		return b.createStatic(in.Static, in.UserData)
	case IntentSphere:
		return b.createSphere(in.Sphere, in.UserData)
	case IntentCharacter:
		return b.createCharacter(in.Character, in.UserData)
	}
	return physics.InvalidBodyID, fmt.Errorf("create body: unknown intent kind %d", in.Kind)
}

func (b *Bridge) createStatic(in StaticIntent, userData uint64) (physics.BodyID, error) {
	if in.Shape == nil {
		return physics.InvalidBodyID, fmt.Errorf("create static body: %w", physics.ErrNilShape)
	}
	set := physics.NewBodyCreationSettings(in.Shape, in.Position, orIdentity(in.Rotation), physics.Static, physics.NonMoving)
	set.UserData = userData
	bi := b.system.BodyInterface()
	id, err := bi.CreateBody(set)
	if err != nil {
		return physics.InvalidBodyID, fmt.Errorf("create static body: %w", err)
	}
	bi.AddBody(id, physics.DontActivate)
	b.bodies[id] = &record{kind: IntentStatic, owner: userData}
	return id, nil
}

func (b *Bridge) createSphere(in SphereIntent, userData uint64) (physics.BodyID, error) {
	shape, err := physics.SphereShapeSettings{Radius: in.Radius}.Create()
	if err != nil {
		return physics.InvalidBodyID, fmt.Errorf("create sphere body: %w", err)
	}
	set := physics.NewBodyCreationSettings(shape, in.Position, physics.Identity, physics.Dynamic, physics.Moving)
	set.Restitution = in.Restitution
	set.Friction = in.Friction
	set.UserData = userData
	bi := b.system.BodyInterface()
	id, err := bi.CreateAndAddBody(set, physics.Activate)
	if err != nil {
		return physics.InvalidBodyID, fmt.Errorf("create sphere body: %w", err)
	}
	bi.SetLinearVelocity(id, in.Velocity)
	b.bodies[id] = &record{kind: IntentSphere, owner: userData}
	return id, nil
}

func (b *Bridge) createCharacter(in CharacterIntent, userData uint64) (physics.BodyID, error) {
	shape, err := physics.RotatedTranslatedShapeSettings{
		Position: mgl32.Vec3{0, 0.5*in.Height + in.Radius, 0},
		Rotation: physics.Identity,
		Inner:    physics.CapsuleShapeSettings{HalfHeight: 0.5 * in.Height, Radius: in.Radius},
	}.Create()
	if err != nil {
		return physics.InvalidBodyID, fmt.Errorf("create character: %w", err)
	}
	set := physics.NewCharacterSettings()
	set.Shape = shape
	set.Layer = physics.Moving
	set.MaxSlopeAngle = mgl32.DegToRad(in.MaxSlopeDeg)
	set.Friction = in.Friction
	set.SupportingVolume = physics.Plane{Normal: physics.AxisY, Constant: -in.Radius}

	ch, err := physics.NewCharacter(set, in.Position, orIdentity(in.Rotation), userData, b.system)
	if err != nil {
		return physics.InvalidBodyID, fmt.Errorf("create character: %w", err)
	}
	ch.AddToPhysicsSystem(physics.Activate)
	id := ch.BodyID()
	b.bodies[id] = &record{kind: IntentCharacter, owner: userData, character: ch}
	b.characters = append(b.characters, id)
	return id, nil
}

// RemoveAndDestroy takes the body out of the world and frees it. It returns
// false, after logging, when id does not name a live body.
func (b *Bridge) RemoveAndDestroy(id physics.BodyID) bool {
	if !b.valid("RemoveAndDestroy", id) {
		return false
	}
	b.destroy(id)
	return true
}

func (b *Bridge) destroy(id physics.BodyID) {
	rec := b.bodies[id]
	bi := b.system.BodyInterface()
	if rec.character != nil {
		rec.character.RemoveFromPhysicsSystem()
		for i, c := range b.characters {
			if c == id {
				b.characters = append(b.characters[:i], b.characters[i+1:]...)
				break
			}
		}
	} else if bi.IsAdded(id) {
		bi.RemoveBody(id)
	}
	bi.DestroyBody(id)
	delete(b.bodies, id)
}

func (b *Bridge) CenterOfMass(id physics.BodyID) (mgl32.Vec3, bool) {
	if !b.valid("CenterOfMass", id) {
		return mgl32.Vec3{}, false
	}
	return b.system.BodyInterface().GetCenterOfMassPosition(id), true
}

func (b *Bridge) Position(id physics.BodyID) (mgl32.Vec3, bool) {
	if !b.valid("Position", id) {
		return mgl32.Vec3{}, false
	}
	return b.system.BodyInterface().GetPosition(id), true
}

func (b *Bridge) Rotation(id physics.BodyID) (mgl32.Quat, bool) {
	if !b.valid("Rotation", id) {
		return physics.Identity, false
	}
	return b.system.BodyInterface().GetRotation(id), true
}

func (b *Bridge) SetLinearVelocity(id physics.BodyID, v mgl32.Vec3) {
	if !b.valid("SetLinearVelocity", id) {
		return
	}
	b.system.BodyInterface().SetLinearVelocity(id, v)
}

func (b *Bridge) LinearVelocity(id physics.BodyID) (mgl32.Vec3, bool) {
	if !b.valid("LinearVelocity", id) {
		return mgl32.Vec3{}, false
	}
	return b.system.BodyInterface().GetLinearVelocity(id), true
}

// MoveKinematic sets the velocity that carries the body to pos within dt.
func (b *Bridge) MoveKinematic(id physics.BodyID, pos mgl32.Vec3, rot mgl32.Quat, dt time.Duration) {
	if !b.valid("MoveKinematic", id) {
		return
	}
	b.system.BodyInterface().MoveKinematic(id, pos, orIdentity(rot), float32(dt.Seconds()))
}

// Step advances the world by dt and refreshes every character's ground
// state.
func (b *Bridge) Step(dt time.Duration) error {
	b.mustInit("Step")
	if err := b.system.Update(float32(dt.Seconds()), b.cfg.CollisionSteps, b.alloc, b.jobs); err != nil {
		return fmt.Errorf("physics step: %w", err)
	}
	for _, id := range b.characters {
		b.bodies[id].character.PostSimulation()
	}
	return nil
}

func (b *Bridge) BodyCount() int {
	b.mustInit("BodyCount")
	return b.system.NumBodies()
}

func (b *Bridge) ActiveBodyCount() int {
	b.mustInit("ActiveBodyCount")
	return b.system.NumActiveBodies()
}

// Kind reports what intent created id.
func (b *Bridge) Kind(id physics.BodyID) (IntentKind, bool) {
	rec, ok := b.bodies[id]
	if !ok {
		return 0, false
	}
	return rec.kind, true
}

// Owner reports the user data the body was created with.
func (b *Bridge) Owner(id physics.BodyID) (uint64, bool) {
	rec, ok := b.bodies[id]
	if !ok {
		return 0, false
	}
	return rec.owner, true
}

// Character returns the character wrapper for id, or nil.
func (b *Bridge) Character(id physics.BodyID) *physics.Character {
	if !b.valid("Character", id) {
		return nil
	}
	return b.bodies[id].character
}

func (b *Bridge) GroundState(id physics.BodyID) (physics.GroundState, bool) {
	ch := b.Character(id)
	if ch == nil {
		return physics.InAir, false
	}
	return ch.GroundState(), true
}

func (b *Bridge) Stats() physics.StepStats {
	b.mustInit("Stats")
	return b.system.LastStepStats()
}

func (b *Bridge) Workers() *physics.JobSystem           { return b.jobs }
func (b *Bridge) TempAllocator() *physics.TempAllocator { return b.alloc }
