package event

import (
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/physics"
)

// BodyKind names what produced a physics body.
type BodyKind uint8

const (
	BodyStatic BodyKind = iota
	BodySphere
	BodyCharacter
)

func (k BodyKind) String() string {
	switch k {
	case BodyStatic:
		return "static"
	case BodySphere:
		return "sphere"
	case BodyCharacter:
		return "character"
	}
	return "unknown"
}

type BodyCreated struct {
	Entity ecs.EntityID
	Body   physics.BodyID
	Kind   BodyKind
}

type BodyDestroyed struct {
	Entity ecs.EntityID
	Body   physics.BodyID
}

// BodyBounced is raised when a dynamic body's vertical velocity flips upward.
type BodyBounced struct {
	Entity ecs.EntityID
	Speed  float32
}

// ShapeSkipped reports sub-meshes that could not become collision shapes.
// Err is set when no usable shape remained and the body was not created.
type ShapeSkipped struct {
	Entity  ecs.EntityID
	Skipped int
	Err     error
}

type EntitySpawned struct {
	Entity ecs.EntityID
	Name   string
}

type EntityDespawned struct {
	Entity ecs.EntityID
	Name   string
}
