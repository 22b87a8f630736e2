package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type GroundState uint8

const (
	OnGround      GroundState = iota // standing on a walkable slope
	OnSteepGround                    // supported, but the slope is too steep to walk
	NotSupported                     // touching something outside the supporting volume
	InAir                            // touching nothing
)

func (g GroundState) String() string {
	switch g {
	case OnGround:
		return "OnGround"
	case OnSteepGround:
		return "OnSteepGround"
	case NotSupported:
		return "NotSupported"
	case InAir:
		return "InAir"
	}
	return "Unknown"
}

// Plane is n·p + c = 0.
type Plane struct {
	Normal   mgl32.Vec3
	Constant float32
}

func (p Plane) SignedDistance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.Constant
}

// CharacterSettings configures a rigid-body character.
type CharacterSettings struct {
	Shape         Shape
	Layer         ObjectLayer
	MaxSlopeAngle float32 // radians
	Friction      float32
	Mass          float32
	GravityFactor float32
	// Contacts whose local point lies below this plane support the character.
	SupportingVolume Plane
}

func NewCharacterSettings() *CharacterSettings {
	return &CharacterSettings{
		Layer:            Moving,
		MaxSlopeAngle:    mgl32.DegToRad(50),
		Friction:         0.2,
		Mass:             80,
		GravityFactor:    1,
		SupportingVolume: Plane{Normal: AxisY, Constant: -1e10},
	}
}

// Character is a dynamic body with locked rotation that tracks whether it
// is standing on something.
type Character struct {
	system   *PhysicsSystem
	settings CharacterSettings
	id       BodyID
	cosSlope float32

	ground       GroundState
	groundNormal mgl32.Vec3
	groundBody   BodyID
	scratch      []Contact
}

func NewCharacter(set *CharacterSettings, pos RVec3, rot mgl32.Quat, userData uint64, sys *PhysicsSystem) (*Character, error) {
	bcs := NewBodyCreationSettings(set.Shape, pos, rot, Dynamic, set.Layer)
	bcs.Friction = set.Friction
	bcs.Mass = set.Mass
	bcs.GravityFactor = set.GravityFactor
	bcs.LockRotation = true
	bcs.UserData = userData

	id, err := sys.BodyInterface().CreateBody(bcs)
	if err != nil {
		return nil, err
	}
	return &Character{
		system:   sys,
		settings: *set,
		id:       id,
		cosSlope: math32.Cos(set.MaxSlopeAngle),
		ground:   InAir,
	}, nil
}

func (c *Character) BodyID() BodyID { return c.id }

func (c *Character) AddToPhysicsSystem(act Activation) {
	c.system.BodyInterface().AddBody(c.id, act)
}

func (c *Character) RemoveFromPhysicsSystem() {
	c.system.BodyInterface().RemoveBody(c.id)
}

func (c *Character) Position() RVec3 {
	return c.system.BodyInterface().GetPosition(c.id)
}

func (c *Character) SetLinearVelocity(v mgl32.Vec3) {
	c.system.BodyInterface().SetLinearVelocity(c.id, v)
}

func (c *Character) LinearVelocity() mgl32.Vec3 {
	return c.system.BodyInterface().GetLinearVelocity(c.id)
}

// PostSimulation refreshes the ground state from the last step's contacts.
func (c *Character) PostSimulation() {
	b := c.system.body(c.id)
	if b == nil {
		c.ground = InAir
		return
	}
	c.scratch = c.system.ContactsOf(c.id, c.scratch[:0])
	if len(c.scratch) == 0 {
		// A sleeping character keeps its last state.
		if !b.active && c.ground != InAir {
			return
		}
		c.ground, c.groundBody, c.groundNormal = InAir, InvalidBodyID, mgl32.Vec3{}
		return
	}

	inv := b.rotation.Inverse()
	best := -1
	for i, ct := range c.scratch {
		local := inv.Rotate(ct.Point.Sub(b.position))
		if c.settings.SupportingVolume.SignedDistance(local) >= 0 {
			continue
		}
		if best < 0 || ct.Normal.Y() > c.scratch[best].Normal.Y() {
			best = i
		}
	}
	if best < 0 {
		c.ground, c.groundBody, c.groundNormal = NotSupported, InvalidBodyID, mgl32.Vec3{}
		return
	}
	ct := c.scratch[best]
	c.groundBody, c.groundNormal = ct.Body2, ct.Normal
	if ct.Normal.Dot(AxisY) >= c.cosSlope {
		c.ground = OnGround
	} else {
		c.ground = OnSteepGround
	}
}

func (c *Character) GroundState() GroundState { return c.ground }
func (c *Character) GroundNormal() mgl32.Vec3 { return c.groundNormal }
func (c *Character) GroundBodyID() BodyID     { return c.groundBody }
func (c *Character) IsSupported() bool        { return c.ground == OnGround || c.ground == OnSteepGround }
