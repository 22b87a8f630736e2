package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/core/phase"
	coresys "github.com/res-engine/res/internal/core/system"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/render"
)

func TestInstallAllPhaseBindings(t *testing.T) {
	f := newFixture(t)
	g, p := phase.Standard()
	r := coresys.NewRunner(g, f.log)
	got := InstallAll(Deps{
		World: f.w, Bus: f.bus, Runner: r, Phases: p, Bridge: f.br,
		Backend: render.NewRecorder(80, 24), Keys: input.NewStatic(), Hooks: &hooks{},
		Gameplay: f.gp, Log: f.log,
	})
	if got.Gameplay == nil || got.Overlay == nil {
		t.Fatal("installed systems not returned")
	}

	want := []struct {
		phase phase.Handle
		names []string
	}{
		{p.Begin, []string{"EventDispatch", "CameraFromMatrix"}},
		{p.Tick, []string{"PlayerInput", "Gameplay", "Gravity", "CharacterMovement", "PhysicsStep", "PoseFeedback"}},
		{p.PostTick, []string{"TransformFromMatrix", "Lifetime", "BounceDetect"}},
		{p.PreRender, []string{"BeginRender", "DebugCameraMovement"}},
		{p.Render, nil},
		{p.PreRender3D, []string{"BeginRender3D"}},
		{p.Render3D, []string{"DrawModels", "DrawSpheres", "DrawCapsules", "DrawGrid"}},
		{p.PostRender3D, []string{"EndRender3D"}},
		{p.Render2D, []string{"DrawFPS", "DrawUIText", "DebugOverlay"}},
		{p.PostRender, []string{"EndRender"}},
	}
	for _, w := range want {
		names := r.Systems(w.phase)
		if len(names) != len(w.names) {
			t.Errorf("%s: %v, want %v", w.phase.Name(), names, w.names)
			continue
		}
		for i := range names {
			if names[i] != w.names[i] {
				t.Errorf("%s[%d] = %s, want %s", w.phase.Name(), i, names[i], w.names[i])
			}
		}
	}
}

func TestFullFrameDrawsFedBackPose(t *testing.T) {
	f := newFixture(t)
	g, p := phase.Standard()
	r := coresys.NewRunner(g, f.log)
	rec := render.NewRecorder(80, 24)
	InstallAll(Deps{
		World: f.w, Bus: f.bus, Runner: r, Phases: p, Bridge: f.br,
		Backend: rec, Keys: input.NewStatic(), Hooks: &hooks{},
		Gameplay: f.gp, Log: f.log,
	})

	id := f.ball("ball", mgl32.Vec3{0, 5, 0})
	renderBall(f, id)
	r.Tick(frame)

	spheres := rec.Find(render.OpDrawSphere)
	if len(spheres) != 1 {
		t.Fatalf("sphere draws = %d", len(spheres))
	}
	if y := spheres[0].Pos.Y(); y >= 5 {
		t.Errorf("drawn at y=%v, want below the spawn height", y)
	}
	if rec.Misuse() != 0 {
		t.Errorf("misuse = %d", rec.Misuse())
	}
	if r.Frame() != 1 {
		t.Errorf("frame = %d", r.Frame())
	}
}
