package bridge

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/physics"
)

// IntentKind selects which variant of an Intent is populated.
type IntentKind uint8

const (
	IntentStatic IntentKind = iota + 1
	IntentSphere
	IntentCharacter
)

func (k IntentKind) String() string {
	switch k {
	case IntentStatic:
		return "static"
	case IntentSphere:
		return "sphere"
	case IntentCharacter:
		return "character"
	}
	return "unknown"
}

// StaticIntent places an already built shape as a non-moving body.
type StaticIntent struct {
	Shape    physics.Shape
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

type SphereIntent struct {
	Radius      float32
	Position    mgl32.Vec3
	Velocity    mgl32.Vec3
	Restitution float32
	Friction    float32
}

// CharacterIntent describes an upright capsule whose feet sit at Position.
type CharacterIntent struct {
	Height      float32
	Radius      float32
	Position    mgl32.Vec3
	Rotation    mgl32.Quat
	MaxSlopeDeg float32
	Friction    float32
}

// Intent is a request for one body. Exactly the field named by Kind is read.
type Intent struct {
	Kind      IntentKind
	Static    StaticIntent
	Sphere    SphereIntent
	Character CharacterIntent
	UserData  uint64
}

func Static(s StaticIntent, userData uint64) Intent {
	return Intent{Kind: IntentStatic, Static: s, UserData: userData}
}

func Sphere(s SphereIntent, userData uint64) Intent {
	return Intent{Kind: IntentSphere, Sphere: s, UserData: userData}
}

func Character(c CharacterIntent, userData uint64) Intent {
	return Intent{Kind: IntentCharacter, Character: c, UserData: userData}
}

func orIdentity(q mgl32.Quat) mgl32.Quat {
	if q.Len() == 0 {
		return physics.Identity
	}
	return q
}
