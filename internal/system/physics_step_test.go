package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/physics"
)

func TestSphereFallsAndFeedsBackPose(t *testing.T) {
	f := newFixture(t)
	id := f.ball("ball", mgl32.Vec3{0, 5, 0})

	step := NewPhysicsStepSystem(f.br, f.log)
	pose := NewPoseFeedbackSystem(f.w, f.br, f.log)
	step.Update(frame)
	pose.Update(frame)

	m, _ := ecs.Get[component.Matrix](f.w, id)
	y := m.Translation().Y()
	if y >= 5 {
		t.Fatalf("ball did not fall: y=%v", y)
	}
	com, _ := f.br.CenterOfMass(handle(t, f.w, id).ID)
	if !m.Translation().ApproxEqual(com) {
		t.Errorf("matrix %v, centre of mass %v", m.Translation(), com)
	}
}

func TestPoseFeedbackLeavesStaticTransform(t *testing.T) {
	f := newFixture(t)
	id := f.w.CreateNamed("tilted")
	rot := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
	want := component.Compose(mgl32.Vec3{1, 0, 0}, rot, mgl32.Vec3{1, 1, 1})
	ecs.Set(f.w, id, component.Model{Name: "floor", Meshes: f.floorMeshes()})
	ecs.Set(f.w, id, want)
	ecs.Set(f.w, id, component.StaticCollider{})
	ecs.Set(f.w, id, component.BodyHandle{})

	NewPoseFeedbackSystem(f.w, f.br, f.log).Update(frame)
	m, _ := ecs.Get[component.Matrix](f.w, id)
	if m.M != want.M {
		t.Errorf("static matrix rewritten: %v", m.M)
	}
}

func TestGravityMovesKinematically(t *testing.T) {
	f := newFixture(t)
	id := f.ball("drone", mgl32.Vec3{0, 10, 0})
	ecs.Set(f.w, id, component.Gravity{Force: mgl32.Vec3{0, -6, 0}})
	h := handle(t, f.w, id)

	NewGravitySystem(f.w, f.br, f.log).Update(frame)
	v, _ := f.br.LinearVelocity(h.ID)
	// Displacement of Force*dt over dt seconds is a velocity equal to Force.
	if !v.ApproxEqualThreshold(mgl32.Vec3{0, -6, 0}, 1e-3) {
		t.Errorf("velocity = %v", v)
	}
}

func TestGravityOnOffsetCentreOfMass(t *testing.T) {
	f := newFixture(t)
	id := f.character(mgl32.Vec3{0, 4, 0})
	ecs.Set(f.w, id, component.Gravity{Force: mgl32.Vec3{0, -3, 0}})
	h := handle(t, f.w, id)
	com, _ := f.br.CenterOfMass(h.ID)
	pos, _ := f.br.Position(h.ID)
	if com.ApproxEqual(pos) {
		t.Fatalf("capsule centre of mass %v should sit above its feet %v", com, pos)
	}

	NewGravitySystem(f.w, f.br, f.log).Update(frame)
	v, _ := f.br.LinearVelocity(h.ID)
	if !v.ApproxEqualThreshold(mgl32.Vec3{0, -3, 0}, 1e-3) {
		t.Errorf("velocity = %v, want only the gravity displacement", v)
	}
}

func TestCharacterMovementFromKeys(t *testing.T) {
	f := newFixture(t)
	id := f.character(mgl32.Vec3{0, 0.25, 0})
	keys := input.NewStatic(input.KeyW)

	NewPlayerInputSystem(f.w, keys).Update(frame)
	NewCharacterMovementSystem(f.w, f.br, 5).Update(frame)

	in, _ := ecs.Get[component.MovementInput](f.w, id)
	if in.Input != (mgl32.Vec2{1, 0}) {
		t.Fatalf("input = %v", in.Input)
	}
	v, _ := f.br.LinearVelocity(handle(t, f.w, id).ID)
	if !v.ApproxEqual(mgl32.Vec3{5, 0, 0}) {
		t.Errorf("velocity = %v", v)
	}
}

func TestReadMovement(t *testing.T) {
	tests := []struct {
		name string
		keys []input.Key
		want mgl32.Vec2
	}{
		{"none", nil, mgl32.Vec2{}},
		{"forward", []input.Key{input.KeyW}, mgl32.Vec2{1, 0}},
		{"back", []input.Key{input.KeyS}, mgl32.Vec2{-1, 0}},
		{"right", []input.Key{input.KeyD}, mgl32.Vec2{0, 1}},
		{"left", []input.Key{input.KeyA}, mgl32.Vec2{0, -1}},
		{"opposed", []input.Key{input.KeyW, input.KeyS}, mgl32.Vec2{}},
		{"diagonal", []input.Key{input.KeyW, input.KeyD}, mgl32.Vec2{0.70710677, 0.70710677}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadMovement(input.NewStatic(tt.keys...))
			if !got.ApproxEqual(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounceDetected(t *testing.T) {
	f := newFixture(t)
	bounced := collect[event.BodyBounced](f.bus)
	f.floor()
	f.ball("ball", mgl32.Vec3{0, 2, 0})

	step := NewPhysicsStepSystem(f.br, f.log)
	detect := NewBounceDetectSystem(f.w, f.br, f.bus)
	for i := 0; i < 240 && len(*bounced) == 0; i++ {
		step.Update(frame)
		detect.Update(frame)
		f.dispatch()
	}
	if len(*bounced) == 0 {
		t.Fatal("no bounce reported")
	}
	if (*bounced)[0].Speed <= 0.5 {
		t.Errorf("bounce speed %v", (*bounced)[0].Speed)
	}
}

func TestCharacterLandsOnFloor(t *testing.T) {
	f := newFixture(t)
	f.floor()
	id := f.character(mgl32.Vec3{0, 0.25, 0})

	step := NewPhysicsStepSystem(f.br, f.log)
	for i := 0; i < 120; i++ {
		step.Update(frame)
	}
	g, ok := f.br.GroundState(handle(t, f.w, id).ID)
	if !ok || g != physics.OnGround {
		t.Errorf("ground state = %v (%v)", g, ok)
	}
}

func TestLifetimeDespawns(t *testing.T) {
	f := newFixture(t)
	despawned := collect[event.EntityDespawned](f.bus)
	id := f.ball("short", mgl32.Vec3{0, 3, 0})
	ecs.Set(f.w, id, component.Lifetime{Remaining: frame + frame/2})
	keep := f.ball("long", mgl32.Vec3{2, 3, 0})

	life := NewLifetimeSystem(f.w, f.bus, f.log)
	life.Update(frame)
	if !f.w.Alive(id) {
		t.Fatal("despawned one frame early")
	}
	life.Update(frame)
	if f.w.Alive(id) {
		t.Fatal("expired entity still alive")
	}
	if !f.w.Alive(keep) {
		t.Error("entity without lifetime destroyed")
	}
	if f.br.BodyCount() != 1 {
		t.Errorf("body count = %d", f.br.BodyCount())
	}
	f.dispatch()
	if len(*despawned) != 1 || (*despawned)[0].Name != "short" {
		t.Errorf("despawned events = %+v", *despawned)
	}
}

func TestMovementIgnoresNonCharacters(t *testing.T) {
	f := newFixture(t)
	id := f.ball("ball", mgl32.Vec3{0, 3, 0})
	ecs.Set(f.w, id, component.MovementInput{Input: mgl32.Vec2{1, 0}})

	NewCharacterMovementSystem(f.w, f.br, 5).Update(frame)
	v, _ := f.br.LinearVelocity(handle(t, f.w, id).ID)
	if v.X() != 0 {
		t.Errorf("sphere driven by movement input: %v", v)
	}
}
