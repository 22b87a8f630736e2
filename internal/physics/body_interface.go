package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyInterface is the body-level API of a PhysicsSystem. Calls that name
// a stale or invalid BodyID return zero values and change nothing.
type BodyInterface struct {
	s *PhysicsSystem
}

// CreateBody builds a body that is not yet part of the simulation.
func (bi *BodyInterface) CreateBody(set BodyCreationSettings) (BodyID, error) {
	b, err := bi.s.createBody(set)
	if err != nil {
		return InvalidBodyID, err
	}
	return b.id, nil
}

// CreateAndAddBody is CreateBody followed by AddBody.
func (bi *BodyInterface) CreateAndAddBody(set BodyCreationSettings, act Activation) (BodyID, error) {
	id, err := bi.CreateBody(set)
	if err != nil {
		return InvalidBodyID, err
	}
	bi.AddBody(id, act)
	return id, nil
}

func (bi *BodyInterface) AddBody(id BodyID, act Activation) {
	b := bi.s.body(id)
	if b == nil {
		return
	}
	if b.added {
		panic(fmt.Sprintf("physics: %s added twice", id))
	}
	b.added = true
	b.active = act == Activate && b.movable()
	b.idle = 0
	if b.motion == Static {
		b.staticLeaves = b.shape.leaves(b.position, b.rotation, nil)
	}
}

// RemoveBody takes the body out of the simulation; it still exists.
func (bi *BodyInterface) RemoveBody(id BodyID) {
	b := bi.s.body(id)
	if b == nil || !b.added {
		return
	}
	b.added = false
	b.active = false
}

// DestroyBody frees a body that is no longer added.
func (bi *BodyInterface) DestroyBody(id BodyID) {
	b := bi.s.body(id)
	if b == nil {
		return
	}
	bi.s.destroyBody(b)
}

func (bi *BodyInterface) IsAdded(id BodyID) bool {
	b := bi.s.body(id)
	return b != nil && b.added
}

// Exists reports whether id names a body that has not been destroyed.
func (bi *BodyInterface) Exists(id BodyID) bool { return bi.s.body(id) != nil }

func (bi *BodyInterface) GetCenterOfMassPosition(id BodyID) RVec3 {
	if b := bi.s.body(id); b != nil {
		return b.CenterOfMassPosition()
	}
	return RVec3{}
}

func (bi *BodyInterface) GetPosition(id BodyID) RVec3 {
	if b := bi.s.body(id); b != nil {
		return b.position
	}
	return RVec3{}
}

func (bi *BodyInterface) GetRotation(id BodyID) mgl32.Quat {
	if b := bi.s.body(id); b != nil {
		return b.rotation
	}
	return Identity
}

// SetPosition teleports the body.
func (bi *BodyInterface) SetPosition(id BodyID, pos RVec3, act Activation) {
	b := bi.s.body(id)
	if b == nil {
		return
	}
	b.position = pos
	b.updateBounds()
	if b.motion == Static && b.added {
		b.staticLeaves = b.shape.leaves(b.position, b.rotation, nil)
	}
	if act == Activate {
		bi.wake(b)
	}
}

func (bi *BodyInterface) SetLinearVelocity(id BodyID, v mgl32.Vec3) {
	b := bi.s.body(id)
	if b == nil || !b.movable() {
		return
	}
	b.velocity = v
	if v.LenSqr() > 0 {
		bi.wake(b)
	}
}

func (bi *BodyInterface) GetLinearVelocity(id BodyID) mgl32.Vec3 {
	if b := bi.s.body(id); b != nil {
		return b.velocity
	}
	return mgl32.Vec3{}
}

// MoveKinematic sets the velocity that carries the body to pos in dt and
// holds rot once the step completes.
func (bi *BodyInterface) MoveKinematic(id BodyID, pos RVec3, rot mgl32.Quat, dt float32) {
	b := bi.s.body(id)
	if b == nil || !b.movable() || dt <= 0 {
		return
	}
	b.velocity = pos.Sub(b.position).Mul(1 / dt)
	r := rot.Normalize()
	b.kinematicRot = &r
	bi.wake(b)
}

func (bi *BodyInterface) ActivateBody(id BodyID) {
	if b := bi.s.body(id); b != nil {
		bi.wake(b)
	}
}

func (bi *BodyInterface) IsActive(id BodyID) bool {
	b := bi.s.body(id)
	return b != nil && b.active
}

func (bi *BodyInterface) GetMotionType(id BodyID) MotionType {
	if b := bi.s.body(id); b != nil {
		return b.motion
	}
	return Static
}

func (bi *BodyInterface) GetObjectLayer(id BodyID) ObjectLayer {
	if b := bi.s.body(id); b != nil {
		return b.layer
	}
	return NonMoving
}

func (bi *BodyInterface) GetShape(id BodyID) Shape {
	if b := bi.s.body(id); b != nil {
		return b.shape
	}
	return nil
}

func (bi *BodyInterface) wake(b *Body) {
	if b.added && b.movable() {
		b.active = true
		b.idle = 0
	}
}
