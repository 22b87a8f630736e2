package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyID identifies a body: 23 bits of slot index and 8 bits of sequence.
// The sequence starts at 1 so the zero BodyID is invalid.
type BodyID uint32

const (
	InvalidBodyID BodyID = 0

	bodyIndexBits = 23
	bodyIndexMask = 1<<bodyIndexBits - 1
)

func newBodyID(index uint32, seq uint8) BodyID {
	return BodyID(uint32(seq)<<bodyIndexBits | index&bodyIndexMask)
}

func (id BodyID) Index() uint32   { return uint32(id) & bodyIndexMask }
func (id BodyID) Sequence() uint8 { return uint8(uint32(id) >> bodyIndexBits) }
func (id BodyID) IsInvalid() bool { return id.Sequence() == 0 }

func (id BodyID) String() string {
	if id.IsInvalid() {
		return "BodyID(invalid)"
	}
	return fmt.Sprintf("BodyID(%d:%d)", id.Index(), id.Sequence())
}

type MotionType uint8

const (
	Static MotionType = iota
	Kinematic
	Dynamic
)

func (m MotionType) String() string {
	switch m {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

type Activation uint8

const (
	Activate Activation = iota
	DontActivate
)

const defaultDensity = 1000 // kg/m³

// BodyCreationSettings describes a body before it exists.
type BodyCreationSettings struct {
	Shape         Shape
	Position      RVec3
	Rotation      mgl32.Quat
	MotionType    MotionType
	Layer         ObjectLayer
	Restitution   float32
	Friction      float32
	GravityFactor float32
	LockRotation  bool
	// Mass overrides the density derived mass when positive.
	Mass     float32
	UserData uint64
}

// NewBodyCreationSettings fills the defaults a new body starts with.
func NewBodyCreationSettings(shape Shape, pos RVec3, rot mgl32.Quat, motion MotionType, layer ObjectLayer) BodyCreationSettings {
	return BodyCreationSettings{
		Shape:         shape,
		Position:      pos,
		Rotation:      rot,
		MotionType:    motion,
		Layer:         layer,
		Friction:      0.2,
		GravityFactor: 1,
	}
}

// Body is a rigid body owned by a PhysicsSystem.
type Body struct {
	id            BodyID
	shape         Shape
	position      RVec3
	rotation      mgl32.Quat
	velocity      mgl32.Vec3
	motion        MotionType
	layer         ObjectLayer
	restitution   float32
	friction      float32
	gravityFactor float32
	invMass       float32
	lockRotation  bool
	userData      uint64

	added  bool
	active bool
	idle   float32

	kinematicRot *mgl32.Quat
	staticLeaves []leaf
	bounds       AABB
}

func (b *Body) ID() BodyID                 { return b.id }
func (b *Body) Shape() Shape               { return b.shape }
func (b *Body) Position() RVec3            { return b.position }
func (b *Body) Rotation() mgl32.Quat       { return b.rotation }
func (b *Body) LinearVelocity() mgl32.Vec3 { return b.velocity }
func (b *Body) MotionType() MotionType     { return b.motion }
func (b *Body) ObjectLayer() ObjectLayer   { return b.layer }
func (b *Body) IsActive() bool             { return b.active }
func (b *Body) UserData() uint64           { return b.userData }
func (b *Body) RotationLocked() bool       { return b.lockRotation }

// CenterOfMassPosition returns the world position of the shape's centre of mass.
func (b *Body) CenterOfMassPosition() RVec3 {
	return b.position.Add(b.rotation.Rotate(b.shape.CenterOfMass()))
}

func (b *Body) movable() bool { return b.motion != Static }

func (b *Body) worldLeaves(buf []leaf) []leaf {
	if b.motion == Static && b.staticLeaves != nil {
		return append(buf, b.staticLeaves...)
	}
	return b.shape.leaves(b.position, b.rotation, buf)
}

func (b *Body) updateBounds() {
	b.bounds = b.shape.LocalBounds().Transformed(b.position, b.rotation)
}
