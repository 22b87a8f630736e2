package physics

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrEmptyMesh       = errors.New("mesh has no vertices or triangles")
	ErrDegenerateShape = errors.New("shape is degenerate")
	ErrEmptyCompound   = errors.New("compound has no sub shapes")
)

type ShapeType uint8

const (
	ShapeSphere ShapeType = iota
	ShapeCapsule
	ShapeMesh
	ShapeStaticCompound
	ShapeRotatedTranslated
)

// Shape is an immutable collision shape in its local frame.
type Shape interface {
	Type() ShapeType
	LocalBounds() AABB
	CenterOfMass() mgl32.Vec3
	Volume() float32
	// leaves appends the world-space collision primitives of the shape.
	leaves(pos mgl32.Vec3, rot mgl32.Quat, out []leaf) []leaf
}

// ShapeSettings describes a shape; Create validates and builds it.
type ShapeSettings interface {
	Create() (Shape, error)
}

// leaf is either a swept sphere (segment a-b inflated by radius) or a set of
// world-space triangles.
type leaf struct {
	a, b   mgl32.Vec3
	radius float32
	tris   []worldTriangle
	bounds AABB
}

type worldTriangle struct {
	v      [3]mgl32.Vec3
	normal mgl32.Vec3
}

// ── Sphere ──

type SphereShape struct {
	Radius float32
}

type SphereShapeSettings struct {
	Radius float32
}

func NewSphereShape(radius float32) *SphereShape {
	return &SphereShape{Radius: radius}
}

func (s SphereShapeSettings) Create() (Shape, error) {
	if s.Radius <= 0 {
		return nil, fmt.Errorf("sphere radius %v: %w", s.Radius, ErrDegenerateShape)
	}
	return NewSphereShape(s.Radius), nil
}

func (s *SphereShape) Type() ShapeType          { return ShapeSphere }
func (s *SphereShape) CenterOfMass() mgl32.Vec3 { return mgl32.Vec3{} }
func (s *SphereShape) Volume() float32 {
	return 4.0 / 3.0 * math32.Pi * s.Radius * s.Radius * s.Radius
}

func (s *SphereShape) LocalBounds() AABB {
	r := s.Radius
	return AABB{Min: mgl32.Vec3{-r, -r, -r}, Max: mgl32.Vec3{r, r, r}}
}

func (s *SphereShape) leaves(pos mgl32.Vec3, _ mgl32.Quat, out []leaf) []leaf {
	return append(out, leaf{
		a: pos, b: pos, radius: s.Radius,
		bounds: AABB{Min: pos, Max: pos}.Expand(s.Radius),
	})
}

// ── Capsule ──

// CapsuleShape is a Y-aligned cylinder of half height HalfHeight capped by
// hemispheres of Radius.
type CapsuleShape struct {
	HalfHeight float32
	Radius     float32
}

type CapsuleShapeSettings struct {
	HalfHeight float32
	Radius     float32
}

func NewCapsuleShape(halfHeight, radius float32) *CapsuleShape {
	return &CapsuleShape{HalfHeight: halfHeight, Radius: radius}
}

func (s CapsuleShapeSettings) Create() (Shape, error) {
	if s.Radius <= 0 || s.HalfHeight < 0 {
		return nil, fmt.Errorf("capsule half height %v radius %v: %w", s.HalfHeight, s.Radius, ErrDegenerateShape)
	}
	return NewCapsuleShape(s.HalfHeight, s.Radius), nil
}

func (s *CapsuleShape) Type() ShapeType          { return ShapeCapsule }
func (s *CapsuleShape) CenterOfMass() mgl32.Vec3 { return mgl32.Vec3{} }

func (s *CapsuleShape) Volume() float32 {
	r := s.Radius
	return math32.Pi*r*r*2*s.HalfHeight + 4.0/3.0*math32.Pi*r*r*r
}

func (s *CapsuleShape) LocalBounds() AABB {
	r, h := s.Radius, s.HalfHeight+s.Radius
	return AABB{Min: mgl32.Vec3{-r, -h, -r}, Max: mgl32.Vec3{r, h, r}}
}

func (s *CapsuleShape) leaves(pos mgl32.Vec3, rot mgl32.Quat, out []leaf) []leaf {
	axis := rot.Rotate(mgl32.Vec3{0, s.HalfHeight, 0})
	a, b := pos.Sub(axis), pos.Add(axis)
	return append(out, leaf{
		a: a, b: b, radius: s.Radius,
		bounds: AABB{Min: a, Max: a}.Encapsulate(b).Expand(s.Radius),
	})
}

// ── Triangle mesh ──

// IndexedTriangle references three vertices of a mesh, counter-clockwise.
type IndexedTriangle struct {
	Idx [3]uint32
}

type MeshShape struct {
	Vertices  []mgl32.Vec3
	Triangles []IndexedTriangle
	bounds    AABB
}

type MeshShapeSettings struct {
	Vertices  []mgl32.Vec3
	Triangles []IndexedTriangle
}

func NewMeshShapeSettings(vertices []mgl32.Vec3, triangles []IndexedTriangle) *MeshShapeSettings {
	return &MeshShapeSettings{Vertices: vertices, Triangles: triangles}
}

// Create drops zero-area triangles and fails when nothing usable is left.
func (s *MeshShapeSettings) Create() (Shape, error) {
	if len(s.Vertices) == 0 || len(s.Triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	n := uint32(len(s.Vertices))
	tris := make([]IndexedTriangle, 0, len(s.Triangles))
	for i, t := range s.Triangles {
		if t.Idx[0] >= n || t.Idx[1] >= n || t.Idx[2] >= n {
			return nil, fmt.Errorf("triangle %d references vertex out of %d", i, n)
		}
		a, b, c := s.Vertices[t.Idx[0]], s.Vertices[t.Idx[1]], s.Vertices[t.Idx[2]]
		if b.Sub(a).Cross(c.Sub(a)).Len() < epsilon {
			continue
		}
		tris = append(tris, t)
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("all %d triangles have zero area: %w", len(s.Triangles), ErrDegenerateShape)
	}
	bounds := emptyAABB()
	for _, v := range s.Vertices {
		bounds = bounds.Encapsulate(v)
	}
	return &MeshShape{Vertices: s.Vertices, Triangles: tris, bounds: bounds}, nil
}

func (s *MeshShape) Type() ShapeType          { return ShapeMesh }
func (s *MeshShape) LocalBounds() AABB        { return s.bounds }
func (s *MeshShape) CenterOfMass() mgl32.Vec3 { return mgl32.Vec3{} }

// Volume is zero: meshes only serve static geometry.
func (s *MeshShape) Volume() float32 { return 0 }

func (s *MeshShape) leaves(pos mgl32.Vec3, rot mgl32.Quat, out []leaf) []leaf {
	l := leaf{tris: make([]worldTriangle, len(s.Triangles)), bounds: emptyAABB()}
	for i, t := range s.Triangles {
		var wt worldTriangle
		for k := 0; k < 3; k++ {
			wt.v[k] = pos.Add(rot.Rotate(s.Vertices[t.Idx[k]]))
			l.bounds = l.bounds.Encapsulate(wt.v[k])
		}
		wt.normal = wt.v[1].Sub(wt.v[0]).Cross(wt.v[2].Sub(wt.v[0])).Normalize()
		l.tris[i] = wt
	}
	return append(out, l)
}

// ── Static compound ──

type SubShape struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Shape    Shape
}

type StaticCompoundShape struct {
	SubShapes []SubShape
	bounds    AABB
}

type StaticCompoundShapeSettings struct {
	SubShapes []SubShape
}

// AddShape appends an already built sub shape at the given offset.
func (s *StaticCompoundShapeSettings) AddShape(pos mgl32.Vec3, rot mgl32.Quat, shape Shape) {
	s.SubShapes = append(s.SubShapes, SubShape{Position: pos, Rotation: rot, Shape: shape})
}

func (s *StaticCompoundShapeSettings) Create() (Shape, error) {
	if len(s.SubShapes) == 0 {
		return nil, ErrEmptyCompound
	}
	bounds := emptyAABB()
	for i, sub := range s.SubShapes {
		if sub.Shape == nil {
			return nil, fmt.Errorf("sub shape %d is nil", i)
		}
		bounds = bounds.Union(sub.Shape.LocalBounds().Transformed(sub.Position, sub.Rotation))
	}
	subs := make([]SubShape, len(s.SubShapes))
	copy(subs, s.SubShapes)
	return &StaticCompoundShape{SubShapes: subs, bounds: bounds}, nil
}

func (s *StaticCompoundShape) Type() ShapeType          { return ShapeStaticCompound }
func (s *StaticCompoundShape) LocalBounds() AABB        { return s.bounds }
func (s *StaticCompoundShape) CenterOfMass() mgl32.Vec3 { return mgl32.Vec3{} }

func (s *StaticCompoundShape) Volume() float32 {
	var v float32
	for _, sub := range s.SubShapes {
		v += sub.Shape.Volume()
	}
	return v
}

// NumSubShapes returns how many sub shapes the compound holds.
func (s *StaticCompoundShape) NumSubShapes() int { return len(s.SubShapes) }

func (s *StaticCompoundShape) leaves(pos mgl32.Vec3, rot mgl32.Quat, out []leaf) []leaf {
	for _, sub := range s.SubShapes {
		out = sub.Shape.leaves(pos.Add(rot.Rotate(sub.Position)), rot.Mul(sub.Rotation), out)
	}
	return out
}

// ── Rotated / translated ──

// RotatedTranslatedShape offsets an inner shape inside the body frame.
type RotatedTranslatedShape struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Inner    Shape
}

type RotatedTranslatedShapeSettings struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Inner    ShapeSettings
}

func (s RotatedTranslatedShapeSettings) Create() (Shape, error) {
	if s.Inner == nil {
		return nil, errors.New("rotated translated shape has no inner shape")
	}
	inner, err := s.Inner.Create()
	if err != nil {
		return nil, fmt.Errorf("inner shape: %w", err)
	}
	rot := s.Rotation
	if rot.Len() < epsilon {
		rot = Identity
	}
	return &RotatedTranslatedShape{Position: s.Position, Rotation: rot.Normalize(), Inner: inner}, nil
}

func (s *RotatedTranslatedShape) Type() ShapeType { return ShapeRotatedTranslated }

func (s *RotatedTranslatedShape) LocalBounds() AABB {
	return s.Inner.LocalBounds().Transformed(s.Position, s.Rotation)
}

func (s *RotatedTranslatedShape) CenterOfMass() mgl32.Vec3 {
	return s.Position.Add(s.Rotation.Rotate(s.Inner.CenterOfMass()))
}

func (s *RotatedTranslatedShape) Volume() float32 { return s.Inner.Volume() }

func (s *RotatedTranslatedShape) leaves(pos mgl32.Vec3, rot mgl32.Quat, out []leaf) []leaf {
	return s.Inner.leaves(pos.Add(rot.Rotate(s.Position)), rot.Mul(s.Rotation), out)
}
