package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/phase"
	coresys "github.com/res-engine/res/internal/core/system"
	"github.com/res-engine/res/internal/render"
)

func renderRunner(f *fixture, rec *render.Recorder) *coresys.Runner {
	g, p := phase.Standard()
	r := coresys.NewRunner(g, f.log)
	d := Deps{World: f.w, Bus: f.bus, Runner: r, Phases: p, Bridge: f.br, Backend: rec, Log: f.log}
	InstallRender(d)
	InstallUI(d)
	return r
}

func TestRenderFrameOrder(t *testing.T) {
	f := newFixture(t)
	rec := render.NewRecorder(80, 24)

	cam := f.w.CreateNamed(CameraEntity)
	ecs.Set(f.w, cam, component.Camera{
		Position: mgl32.Vec3{0, 2, -5},
		Target:   mgl32.Vec3{},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     45,
	})

	ball := f.w.CreateNamed("ball")
	ecs.Set(f.w, ball, component.Translate(mgl32.Vec3{0, 1, 0}))
	ecs.Set(f.w, ball, component.SpherePrimitive{Radius: 0.5})
	ecs.Set(f.w, ball, component.Renderable{})

	pill := f.w.CreateNamed("pill")
	ecs.Set(f.w, pill, component.Translate(mgl32.Vec3{2, 1, 0}))
	ecs.Set(f.w, pill, component.CapsulePrimitive{HalfLength: 1, Radius: 0.5})
	ecs.Set(f.w, pill, component.Renderable{})
	ecs.Set(f.w, pill, component.Color{Name: "green"})

	grid := f.w.CreateNamed("grid")
	ecs.Set(f.w, grid, component.GridPrimitive{Slices: 10, Spacing: 1})
	ecs.Set(f.w, grid, component.Renderable{})

	label := f.w.CreateNamed("label")
	ecs.Set(f.w, label, component.Text{Value: "hello"})
	ecs.Set(f.w, label, component.Position2D{X: 3, Y: 4})
	ecs.Set(f.w, label, component.Renderable2D{})

	renderRunner(f, rec).Tick(frame)

	want := []render.Op{
		render.OpBeginDrawing, render.OpClearBackground, render.OpBeginMode3D,
		render.OpDrawSphere, render.OpDrawCapsule, render.OpDrawGrid,
		render.OpEndMode3D, render.OpDrawFPS, render.OpDrawText, render.OpEndDrawing,
	}
	got := rec.Ops()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d = %v, want %v", i, got[i], want[i])
		}
	}
	if rec.Misuse() != 0 {
		t.Errorf("misuse = %d", rec.Misuse())
	}

	if c := rec.Find(render.OpBeginMode3D)[0].Camera; c.Position != (mgl32.Vec3{0, 2, -5}) {
		t.Errorf("bound camera %+v", c)
	}
	if s := rec.Find(render.OpDrawSphere)[0]; s.Pos != (mgl32.Vec3{0, 1, 0}) || s.Color != render.Red {
		t.Errorf("sphere call %+v", s)
	}
	c := rec.Find(render.OpDrawCapsule)[0]
	if c.Pos != (mgl32.Vec3{2, 0, 0}) || c.End != (mgl32.Vec3{2, 2, 0}) || c.Color != render.Green {
		t.Errorf("capsule call %+v", c)
	}
	if txt := rec.Find(render.OpDrawText)[0]; txt.Text != "hello" || txt.X != 3 || txt.Y != 4 {
		t.Errorf("text call %+v", txt)
	}
}

func TestActiveCameraFallsBack(t *testing.T) {
	w := ecs.NewWorld()
	if _, ok := ActiveCamera(w, CameraEntity); ok {
		t.Fatal("empty world has a camera")
	}
	id := w.CreateNamed("other")
	ecs.Set(w, id, component.Camera{Position: mgl32.Vec3{1, 2, 3}, Projection: component.Orthographic})
	cam, ok := ActiveCamera(w, CameraEntity)
	if !ok || cam.Position != (mgl32.Vec3{1, 2, 3}) || !cam.Ortho {
		t.Errorf("fallback camera %+v (%v)", cam, ok)
	}
}

func TestCameraMatrixRoundTrip(t *testing.T) {
	eye := mgl32.Vec3{5.6, 3.3, -5.3}
	target := mgl32.Vec3{0.3, 0.6, -2}
	var c component.Camera
	CameraFromMatrix(&c, CameraMatrix(eye, target, mgl32.Vec3{0, 1, 0}))

	if !c.Position.ApproxEqualThreshold(eye, 1e-4) {
		t.Errorf("eye = %v", c.Position)
	}
	dir := target.Sub(eye).Normalize()
	if got := c.Target.Sub(c.Position); !got.ApproxEqualThreshold(dir, 1e-4) {
		t.Errorf("direction = %v, want %v", got, dir)
	}
	if c.Up.Y() <= 0 {
		t.Errorf("up = %v", c.Up)
	}
}

func TestTransformMarkersApplyOnce(t *testing.T) {
	w := ecs.NewWorld()
	id := w.CreateEntity()
	rot := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	ecs.Set(w, id, component.Compose(mgl32.Vec3{1, 2, 3}, rot, mgl32.Vec3{1, 1, 1}))
	ecs.Set(w, id, component.Position{})
	ecs.Set(w, id, component.Rotation{Q: mgl32.QuatIdent()})
	ecs.Add[component.UpdatePositionFromMatrix](w, id)
	ecs.Add[component.UpdateRotationFromMatrix](w, id)

	s := NewTransformFromMatrixSystem(w)
	s.Update(frame)

	p, _ := ecs.Get[component.Position](w, id)
	if !p.V.ApproxEqual(mgl32.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", p.V)
	}
	r, _ := ecs.Get[component.Rotation](w, id)
	if !r.Q.ApproxEqualThreshold(rot, 1e-4) {
		t.Errorf("rotation = %v, want %v", r.Q, rot)
	}
	if ecs.Has[component.UpdatePositionFromMatrix](w, id) || ecs.Has[component.UpdateRotationFromMatrix](w, id) {
		t.Fatal("markers not removed")
	}

	ecs.Set(w, id, component.Translate(mgl32.Vec3{9, 9, 9}))
	s.Update(frame)
	if p, _ := ecs.Get[component.Position](w, id); p.V.X() == 9 {
		t.Error("position copied without a marker")
	}
}

func TestCameraFollowsMatrixOnlyWhenFlagged(t *testing.T) {
	w := ecs.NewWorld()
	m := CameraMatrix(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	still := w.CreateEntity()
	ecs.Set(w, still, component.Camera{Position: mgl32.Vec3{7, 7, 7}})
	ecs.Set(w, still, component.Matrix{M: m})
	follow := w.CreateEntity()
	ecs.Set(w, follow, component.Camera{FollowMatrix: true})
	ecs.Set(w, follow, component.Matrix{M: m})

	NewCameraFromMatrixSystem(w).Update(frame)

	if c, _ := ecs.Get[component.Camera](w, still); c.Position != (mgl32.Vec3{7, 7, 7}) {
		t.Errorf("unflagged camera moved to %v", c.Position)
	}
	if c, _ := ecs.Get[component.Camera](w, follow); !c.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, 5}, 1e-4) {
		t.Errorf("following camera at %v", c.Position)
	}
}
