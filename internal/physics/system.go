package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrTooManyBodies = errors.New("body capacity reached")
	ErrNilShape      = errors.New("body has no shape")
)

// StepStats describes the most recent Update.
type StepStats struct {
	Pairs           int
	Contacts        int
	DroppedPairs    int
	DroppedContacts int
	TempBytes       int
}

// PhysicsSystem owns every body and advances the simulation.
type PhysicsSystem struct {
	factory *Factory

	bodies    []*Body
	sequences []uint8
	free      []uint32
	numBodies int

	maxBodies      int
	numBodyMutexes int
	maxBodyPairs   int
	maxContacts    int

	bpi BroadPhaseLayerInterface
	ovb ObjectVsBroadPhaseLayerFilter
	ovo ObjectLayerPairFilter

	gravity       mgl32.Vec3
	velocitySteps int
	contacts      []Contact
	stats         StepStats

	bodyInterface *BodyInterface
	initialized   bool
}

func NewPhysicsSystem(factory *Factory) *PhysicsSystem {
	s := &PhysicsSystem{
		factory:       factory,
		gravity:       mgl32.Vec3{0, -9.81, 0},
		velocitySteps: 10,
	}
	s.bodyInterface = &BodyInterface{s: s}
	return s
}

// Init sizes the system. It must run once before any body is created.
func (s *PhysicsSystem) Init(maxBodies, numBodyMutexes, maxBodyPairs, maxContactConstraints int,
	bpi BroadPhaseLayerInterface, ovb ObjectVsBroadPhaseLayerFilter, ovo ObjectLayerPairFilter) {
	if s.initialized {
		panic("physics: system initialised twice")
	}
	s.factory.mustRegistered("init physics system")
	if maxBodies <= 0 || maxBodies > bodyIndexMask {
		panic(fmt.Sprintf("physics: max bodies %d out of range", maxBodies))
	}
	s.maxBodies = maxBodies
	s.numBodyMutexes = numBodyMutexes
	s.maxBodyPairs = maxBodyPairs
	s.maxContacts = maxContactConstraints
	s.bpi, s.ovb, s.ovo = bpi, ovb, ovo
	s.bodies = make([]*Body, 0, 64)
	s.sequences = make([]uint8, 0, 64)
	s.initialized = true
}

func (s *PhysicsSystem) BodyInterface() *BodyInterface { return s.bodyInterface }

func (s *PhysicsSystem) SetGravity(g mgl32.Vec3) { s.gravity = g }
func (s *PhysicsSystem) Gravity() mgl32.Vec3     { return s.gravity }

// NumBodies returns how many bodies exist, added to the simulation or not.
func (s *PhysicsSystem) NumBodies() int { return s.numBodies }

func (s *PhysicsSystem) NumActiveBodies() int {
	n := 0
	for _, b := range s.bodies {
		if b != nil && b.added && b.active {
			n++
		}
	}
	return n
}

func (s *PhysicsSystem) MaxBodies() int { return s.maxBodies }

// LastStepStats returns counters from the most recent Update.
func (s *PhysicsSystem) LastStepStats() StepStats { return s.stats }

// Contacts returns the contacts found in the last collision step.
func (s *PhysicsSystem) Contacts() []Contact { return s.contacts }

// ContactsOf appends the last-step contacts touching id, oriented so the
// normal points towards id.
func (s *PhysicsSystem) ContactsOf(id BodyID, out []Contact) []Contact {
	for _, c := range s.contacts {
		switch id {
		case c.Body1:
			out = append(out, c)
		case c.Body2:
			out = append(out, c.flipped())
		}
	}
	return out
}

// body resolves id to a live body, or nil.
func (s *PhysicsSystem) body(id BodyID) *Body {
	if id.IsInvalid() {
		return nil
	}
	idx := id.Index()
	if int(idx) >= len(s.bodies) {
		return nil
	}
	b := s.bodies[idx]
	if b == nil || b.id != id {
		return nil
	}
	return b
}

func (s *PhysicsSystem) createBody(set BodyCreationSettings) (*Body, error) {
	if !s.initialized {
		panic("physics: create body before init")
	}
	s.factory.mustRegistered("create body")
	if set.Shape == nil {
		return nil, ErrNilShape
	}
	if s.numBodies >= s.maxBodies {
		return nil, fmt.Errorf("create body (%d/%d): %w", s.numBodies, s.maxBodies, ErrTooManyBodies)
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.bodies))
		s.bodies = append(s.bodies, nil)
		s.sequences = append(s.sequences, 0)
	}
	seq := s.sequences[idx] + 1
	if seq == 0 {
		seq = 1
	}
	s.sequences[idx] = seq

	rot := set.Rotation
	if rot.Len() < epsilon {
		rot = Identity
	}
	b := &Body{
		id:            newBodyID(idx, seq),
		shape:         set.Shape,
		position:      set.Position,
		rotation:      rot.Normalize(),
		motion:        set.MotionType,
		layer:         set.Layer,
		restitution:   set.Restitution,
		friction:      set.Friction,
		gravityFactor: set.GravityFactor,
		lockRotation:  set.LockRotation,
		userData:      set.UserData,
	}
	if b.motion == Dynamic {
		mass := set.Mass
		if mass <= 0 {
			mass = defaultDensity * set.Shape.Volume()
		}
		if mass <= 0 {
			mass = 1
		}
		b.invMass = 1 / mass
	}
	b.updateBounds()
	s.bodies[idx] = b
	s.numBodies++
	return b, nil
}

func (s *PhysicsSystem) destroyBody(b *Body) {
	if b.added {
		panic(fmt.Sprintf("physics: destroy of %s while still added", b.id))
	}
	idx := b.id.Index()
	s.bodies[idx] = nil
	s.free = append(s.free, idx)
	s.numBodies--
}
