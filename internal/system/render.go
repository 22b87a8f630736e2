package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/render"
)

func colorOf(w *ecs.World, id ecs.EntityID, def render.Color) render.Color {
	if c, ok := ecs.Get[component.Color](w, id); ok && c.Name != "" {
		return render.Color(c.Name)
	}
	return def
}

// BeginRenderSystem opens the frame and clears it. PreRender.
type BeginRenderSystem struct {
	backend render.Backend
	clear   render.Color
}

func NewBeginRenderSystem(b render.Backend, clear render.Color) *BeginRenderSystem {
	return &BeginRenderSystem{backend: b, clear: clear}
}

func (s *BeginRenderSystem) Name() string { return "BeginRender" }

func (s *BeginRenderSystem) Update(_ time.Duration) {
	s.backend.BeginDrawing()
	s.backend.ClearBackground(s.clear)
}

// BeginRender3DSystem binds the scene camera. PreRender3D.
type BeginRender3DSystem struct {
	world   *ecs.World
	backend render.Backend
	camera  string
	log     *zap.Logger
	warned  bool
}

func NewBeginRender3DSystem(w *ecs.World, b render.Backend, camera string, log *zap.Logger) *BeginRender3DSystem {
	return &BeginRender3DSystem{world: w, backend: b, camera: camera, log: log}
}

func (s *BeginRender3DSystem) Name() string { return "BeginRender3D" }

func (s *BeginRender3DSystem) Update(_ time.Duration) {
	cam, ok := ActiveCamera(s.world, s.camera)
	if !ok && !s.warned {
		s.warned = true
		s.log.Warn("no camera entity, using default view", zap.String("camera", s.camera))
	}
	s.backend.BeginMode3D(cam)
}

// ActiveCamera returns the camera of the entity called name, or of any
// entity with a Camera when there is none by that name.
func ActiveCamera(w *ecs.World, name string) (render.Camera, bool) {
	var c *component.Camera
	if id := w.Lookup(name); !id.IsZero() {
		c, _ = ecs.Get[component.Camera](w, id)
	}
	if c == nil {
		ecs.Register[component.Camera](w).Each(func(_ ecs.EntityID, cc *component.Camera) {
			if c == nil {
				c = cc
			}
		})
	}
	if c == nil {
		return render.Camera{
			Position: mgl32.Vec3{10, 10, 10},
			Up:       mgl32.Vec3{0, 1, 0},
			FovY:     45,
		}, false
	}
	return render.Camera{
		Position: c.Position,
		Target:   c.Target,
		Up:       c.Up,
		FovY:     c.FovY,
		Ortho:    c.Projection == component.Orthographic,
	}, true
}

// DrawModelsSystem draws renderable models at their Matrix translation.
// Render3D.
type DrawModelsSystem struct {
	world   *ecs.World
	backend render.Backend
}

func NewDrawModelsSystem(w *ecs.World, b render.Backend) *DrawModelsSystem {
	return &DrawModelsSystem{world: w, backend: b}
}

func (s *DrawModelsSystem) Name() string { return "DrawModels" }

func (s *DrawModelsSystem) Update(_ time.Duration) {
	w := s.world
	ecs.Each3(ecs.Register[component.Model](w), ecs.Register[component.Renderable](w), ecs.Register[component.Matrix](w),
		func(id ecs.EntityID, m *component.Model, _ *component.Renderable, mx *component.Matrix) {
			scale := float32(1)
			if sc, ok := ecs.Get[component.Scale](w, id); ok && sc.V.X() != 0 {
				scale = sc.V.X()
			}
			s.backend.DrawModel(render.Model{Name: m.Name, Meshes: m.Meshes}, mx.Translation(), scale, colorOf(w, id, render.White))
		})
}

// DrawSpheresSystem draws sphere primitives. Render3D.
type DrawSpheresSystem struct {
	world   *ecs.World
	backend render.Backend
}

func NewDrawSpheresSystem(w *ecs.World, b render.Backend) *DrawSpheresSystem {
	return &DrawSpheresSystem{world: w, backend: b}
}

func (s *DrawSpheresSystem) Name() string { return "DrawSpheres" }

func (s *DrawSpheresSystem) Update(_ time.Duration) {
	w := s.world
	ecs.Each3(ecs.Register[component.SpherePrimitive](w), ecs.Register[component.Renderable](w), ecs.Register[component.Matrix](w),
		func(id ecs.EntityID, sp *component.SpherePrimitive, _ *component.Renderable, mx *component.Matrix) {
			s.backend.DrawSphere(mx.Translation(), sp.Radius, colorOf(w, id, render.Red))
		})
}

// DrawCapsulesSystem draws capsule primitives centred on the Matrix
// translation. Render3D.
type DrawCapsulesSystem struct {
	world   *ecs.World
	backend render.Backend
}

func NewDrawCapsulesSystem(w *ecs.World, b render.Backend) *DrawCapsulesSystem {
	return &DrawCapsulesSystem{world: w, backend: b}
}

func (s *DrawCapsulesSystem) Name() string { return "DrawCapsules" }

func (s *DrawCapsulesSystem) Update(_ time.Duration) {
	w := s.world
	ecs.Each3(ecs.Register[component.CapsulePrimitive](w), ecs.Register[component.Renderable](w), ecs.Register[component.Matrix](w),
		func(id ecs.EntityID, cp *component.CapsulePrimitive, _ *component.Renderable, mx *component.Matrix) {
			p := mx.Translation()
			half := mgl32.Vec3{0, cp.HalfLength, 0}
			s.backend.DrawCapsule(p.Sub(half), p.Add(half), cp.Radius, colorOf(w, id, render.SkyBlue))
		})
}

// DrawGridSystem draws reference grids. Render3D.
type DrawGridSystem struct {
	world   *ecs.World
	backend render.Backend
}

func NewDrawGridSystem(w *ecs.World, b render.Backend) *DrawGridSystem {
	return &DrawGridSystem{world: w, backend: b}
}

func (s *DrawGridSystem) Name() string { return "DrawGrid" }

func (s *DrawGridSystem) Update(_ time.Duration) {
	ecs.Each2(ecs.Register[component.GridPrimitive](s.world), ecs.Register[component.Renderable](s.world),
		func(_ ecs.EntityID, g *component.GridPrimitive, _ *component.Renderable) {
			s.backend.DrawGrid(g.Slices, g.Spacing)
		})
}

// DrawFPSSystem prints the frame rate in the top-left corner. Render2D.
type DrawFPSSystem struct {
	backend render.Backend
}

func NewDrawFPSSystem(b render.Backend) *DrawFPSSystem { return &DrawFPSSystem{backend: b} }

func (s *DrawFPSSystem) Name() string           { return "DrawFPS" }
func (s *DrawFPSSystem) Update(_ time.Duration) { s.backend.DrawFPS(1, 0) }

// DrawUITextSystem draws UI labels. Render2D.
type DrawUITextSystem struct {
	world   *ecs.World
	backend render.Backend
}

func NewDrawUITextSystem(w *ecs.World, b render.Backend) *DrawUITextSystem {
	return &DrawUITextSystem{world: w, backend: b}
}

func (s *DrawUITextSystem) Name() string { return "DrawUIText" }

func (s *DrawUITextSystem) Update(_ time.Duration) {
	w := s.world
	ecs.Each3(ecs.Register[component.Text](w), ecs.Register[component.Position2D](w), ecs.Register[component.Renderable2D](w),
		func(id ecs.EntityID, t *component.Text, p *component.Position2D, _ *component.Renderable2D) {
			size := 10
			if te, ok := ecs.Get[component.TextElement](w, id); ok && te.FontSize > 0 {
				size = te.FontSize
			}
			s.backend.DrawText(t.Value, p.X, p.Y, size, colorOf(w, id, render.White))
		})
}

// EndRender3DSystem closes the 3D pass. PostRender3D.
type EndRender3DSystem struct{ backend render.Backend }

func NewEndRender3DSystem(b render.Backend) *EndRender3DSystem { return &EndRender3DSystem{backend: b} }

func (s *EndRender3DSystem) Name() string           { return "EndRender3D" }
func (s *EndRender3DSystem) Update(_ time.Duration) { s.backend.EndMode3D() }

// EndRenderSystem presents the frame. PostRender.
type EndRenderSystem struct{ backend render.Backend }

func NewEndRenderSystem(b render.Backend) *EndRenderSystem { return &EndRenderSystem{backend: b} }

func (s *EndRenderSystem) Name() string           { return "EndRender" }
func (s *EndRenderSystem) Update(_ time.Duration) { s.backend.EndDrawing() }
