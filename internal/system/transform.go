package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
)

// TransformFromMatrixSystem copies Matrix into Position/Rotation for
// entities carrying an update marker, then drops the marker. PostTick.
type TransformFromMatrixSystem struct {
	world *ecs.World
	done  []ecs.EntityID
}

func NewTransformFromMatrixSystem(w *ecs.World) *TransformFromMatrixSystem {
	return &TransformFromMatrixSystem{world: w}
}

func (s *TransformFromMatrixSystem) Name() string { return "TransformFromMatrix" }

func (s *TransformFromMatrixSystem) Update(_ time.Duration) {
	w := s.world
	matrices := ecs.Register[component.Matrix](w)

	s.done = s.done[:0]
	ecs.Each3(ecs.Register[component.UpdatePositionFromMatrix](w), matrices, ecs.Register[component.Position](w),
		func(id ecs.EntityID, _ *component.UpdatePositionFromMatrix, m *component.Matrix, p *component.Position) {
			p.V = m.Translation()
			s.done = append(s.done, id)
		})
	for _, id := range s.done {
		ecs.Remove[component.UpdatePositionFromMatrix](w, id)
	}

	s.done = s.done[:0]
	ecs.Each3(ecs.Register[component.UpdateRotationFromMatrix](w), matrices, ecs.Register[component.Rotation](w),
		func(id ecs.EntityID, _ *component.UpdateRotationFromMatrix, m *component.Matrix, r *component.Rotation) {
			r.Q = m.Rotation()
			s.done = append(s.done, id)
		})
	for _, id := range s.done {
		ecs.Remove[component.UpdateRotationFromMatrix](w, id)
	}
}

// CameraFromMatrixSystem re-derives a following camera's eye, target and
// up from its world Matrix. Begin.
type CameraFromMatrixSystem struct {
	world *ecs.World
}

func NewCameraFromMatrixSystem(w *ecs.World) *CameraFromMatrixSystem {
	return &CameraFromMatrixSystem{world: w}
}

func (s *CameraFromMatrixSystem) Name() string { return "CameraFromMatrix" }

func (s *CameraFromMatrixSystem) Update(_ time.Duration) {
	ecs.Each2(ecs.Register[component.Camera](s.world), ecs.Register[component.Matrix](s.world),
		func(_ ecs.EntityID, c *component.Camera, m *component.Matrix) {
			if !c.FollowMatrix {
				return
			}
			CameraFromMatrix(c, m.M)
		})
}

// CameraFromMatrix points c along world's -Z axis from its translation.
func CameraFromMatrix(c *component.Camera, world mgl32.Mat4) {
	eye := world.Col(3).Vec3()
	fwd := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	up := world.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3()
	if fwd.Len() == 0 {
		return
	}
	c.Position = eye
	c.Target = eye.Add(fwd.Normalize())
	if up.Len() > 0 {
		c.Up = up.Normalize()
	}
}

// CameraMatrix is the world transform of a camera looking from eye at
// target; CameraFromMatrix inverts it.
func CameraMatrix(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, target, up).Inv()
}
