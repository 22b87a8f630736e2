package component

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/physics"
)

// PhysicsHandle lives on the singleton entity. Attaching it brings the
// physics world up, detaching it tears the world down.
type PhysicsHandle struct{}

// BodyHandle links an entity to its physics body. The zero value is an
// invalid handle.
type BodyHandle struct {
	ID physics.BodyID
}

func (h BodyHandle) Valid() bool { return !h.ID.IsInvalid() }

// StaticCollider turns an entity's Model into a non-moving compound body.
type StaticCollider struct{}

// DynamicSphere requests a bouncing ball.
type DynamicSphere struct{}

// Gravity moves a kinematic body by Force·dt every tick.
type Gravity struct {
	Force mgl32.Vec3
}

func DefaultGravity() Gravity {
	return Gravity{Force: mgl32.Vec3{0, -9.8, 0}}
}

// MovementInput is the normalised horizontal intent; X maps to world X and
// Y to world Z.
type MovementInput struct {
	Input mgl32.Vec2
}
