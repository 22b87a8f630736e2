package component

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/data"
)

type Projection uint8

const (
	Perspective Projection = iota
	Orthographic
)

type Camera struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	Up         mgl32.Vec3
	FovY       float32 // degrees
	Projection Projection
	// FollowMatrix re-derives Position and Target from Matrix every frame.
	FollowMatrix bool
}

type CameraMode uint8

const (
	CameraFree CameraMode = iota
	CameraOrbital
)

func (m CameraMode) String() string {
	if m == CameraOrbital {
		return "orbital"
	}
	return "free"
}

// DebugCameraMovement lets the keyboard fly the camera it is attached to.
type DebugCameraMovement struct {
	Mode  CameraMode
	Speed float32 // units per second
	Turn  float32 // radians per second
}

// Renderable marks an entity the 3D pass should draw.
type Renderable struct{}

// Model references immutable mesh geometry owned by the loaded scene.
type Model struct {
	Name   string
	Meshes []data.Mesh
}

type SpherePrimitive struct {
	Radius float32
}

// CapsulePrimitive is drawn from HalfLength below to HalfLength above the
// entity position.
type CapsulePrimitive struct {
	HalfLength float32
	Radius     float32
}

type CubePrimitive struct {
	Size mgl32.Vec3
}

type GridPrimitive struct {
	Slices  int
	Spacing float32
}

// Color is a named palette entry, e.g. "red" or "gray".
type Color struct {
	Name string
}
