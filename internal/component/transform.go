package component

import "github.com/go-gl/mathgl/mgl32"

// Matrix is the authoritative world pose of an entity.
type Matrix struct {
	M mgl32.Mat4
}

// Translate returns a matrix holding only the translation p.
func Translate(p mgl32.Vec3) Matrix {
	return Matrix{M: mgl32.Translate3D(p.X(), p.Y(), p.Z())}
}

// Compose builds T·R·S.
func Compose(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) Matrix {
	m := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
	return Matrix{M: m}
}

func (m Matrix) Translation() mgl32.Vec3 { return m.M.Col(3).Vec3() }

// Rotation extracts the rotation, ignoring any scale.
func (m Matrix) Rotation() mgl32.Quat {
	c0, c1, c2 := m.M.Col(0).Vec3(), m.M.Col(1).Vec3(), m.M.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if sx == 0 || sy == 0 || sz == 0 {
		return mgl32.QuatIdent()
	}
	r := mgl32.Mat3FromCols(c0.Mul(1/sx), c1.Mul(1/sy), c2.Mul(1/sz))
	return mgl32.Mat4ToQuat(r.Mat4()).Normalize()
}

// Position, Rotation and Scale are decomposed views of Matrix kept for
// systems that want them separately.
type Position struct{ V mgl32.Vec3 }
type Rotation struct{ Q mgl32.Quat }
type Scale struct{ V mgl32.Vec3 }

// UpdatePositionFromMatrix asks the transform system to copy Matrix's
// translation into Position once.
type UpdatePositionFromMatrix struct{}

// UpdateRotationFromMatrix is the rotation counterpart.
type UpdateRotationFromMatrix struct{}
