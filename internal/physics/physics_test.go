package physics

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestSystem(t *testing.T) (*PhysicsSystem, *TempAllocator, *JobSystem) {
	t.Helper()
	f := NewFactory()
	f.RegisterTypes()
	s := NewPhysicsSystem(f)
	s.Init(1024, 0, 1024, 1024, LayerTable{}, ObjectVsBroadPhase{}, ObjectPairs{})
	js := NewJobSystem(MaxPhysicsJobs, MaxPhysicsBarriers, 2)
	t.Cleanup(js.Close)
	return s, NewTempAllocator(1 << 20), js
}

// floorMesh is a 20x20 quad at y=0 facing up.
func floorMesh(t *testing.T) Shape {
	t.Helper()
	verts := []mgl32.Vec3{{-10, 0, -10}, {10, 0, -10}, {10, 0, 10}, {-10, 0, 10}}
	tris := []IndexedTriangle{{Idx: [3]uint32{0, 2, 1}}, {Idx: [3]uint32{0, 3, 2}}}
	mesh, err := NewMeshShapeSettings(verts, tris).Create()
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	var cs StaticCompoundShapeSettings
	cs.AddShape(mgl32.Vec3{}, Identity, mesh)
	shape, err := cs.Create()
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	return shape
}

func TestLayerTable(t *testing.T) {
	tests := []struct {
		a, b ObjectLayer
		want bool
	}{
		{NonMoving, NonMoving, false},
		{NonMoving, Moving, true},
		{Moving, NonMoving, true},
		{Moving, Moving, true},
	}
	var pairs ObjectPairs
	var ovb ObjectVsBroadPhase
	var bpi LayerTable
	for _, tt := range tests {
		if got := pairs.ShouldCollide(tt.a, tt.b); got != tt.want {
			t.Errorf("pairs(%s,%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := ovb.ShouldCollide(tt.a, bpi.BroadPhaseLayer(tt.b)); got != tt.want {
			t.Errorf("ovb(%s,%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestShapeSettingsValidation(t *testing.T) {
	if _, err := (SphereShapeSettings{Radius: 0}).Create(); !errors.Is(err, ErrDegenerateShape) {
		t.Errorf("sphere r=0: %v", err)
	}
	if _, err := (CapsuleShapeSettings{HalfHeight: 1, Radius: -1}).Create(); !errors.Is(err, ErrDegenerateShape) {
		t.Errorf("capsule r<0: %v", err)
	}
	if _, err := NewMeshShapeSettings(nil, nil).Create(); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("empty mesh: %v", err)
	}
	line := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	if _, err := NewMeshShapeSettings(line, []IndexedTriangle{{Idx: [3]uint32{0, 1, 2}}}).Create(); !errors.Is(err, ErrDegenerateShape) {
		t.Errorf("collinear mesh: %v", err)
	}
	if _, err := NewMeshShapeSettings(line, []IndexedTriangle{{Idx: [3]uint32{0, 1, 7}}}).Create(); err == nil {
		t.Error("out of range index accepted")
	}
	if _, err := (&StaticCompoundShapeSettings{}).Create(); !errors.Is(err, ErrEmptyCompound) {
		t.Errorf("empty compound: %v", err)
	}
}

func TestRotatedTranslatedCenterOfMass(t *testing.T) {
	shape, err := RotatedTranslatedShapeSettings{
		Position: mgl32.Vec3{0, 1.5, 0},
		Rotation: Identity,
		Inner:    CapsuleShapeSettings{HalfHeight: 1, Radius: 0.5},
	}.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if com := shape.CenterOfMass(); !com.ApproxEqual(mgl32.Vec3{0, 1.5, 0}) {
		t.Errorf("com = %v", com)
	}
	b := shape.LocalBounds()
	if !mgl32.FloatEqual(b.Min.Y(), 0) || !mgl32.FloatEqual(b.Max.Y(), 3) {
		t.Errorf("bounds = %+v, want y in [0,3]", b)
	}
}

func TestTempAllocatorBounded(t *testing.T) {
	a := NewTempAllocator(64)
	if _, err := a.Allocate(40); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	if _, err := a.Allocate(40); !errors.Is(err, ErrTempAllocatorFull) {
		t.Fatalf("err = %v, want ErrTempAllocatorFull", err)
	}
	a.Reset()
	if a.InUse() != 0 || a.Capacity() != 64 {
		t.Errorf("after reset in use %d cap %d", a.InUse(), a.Capacity())
	}
	if a.HighWater() != 48 {
		t.Errorf("high water = %d, want 48", a.HighWater())
	}
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js := NewJobSystem(3, 1, 4)
	defer js.Close()
	var n atomic.Int32
	jobs := make([]func(), 10)
	for i := range jobs {
		jobs[i] = func() { n.Add(1) }
	}
	js.Run(jobs)
	if n.Load() != 10 {
		t.Fatalf("ran %d jobs, want 10", n.Load())
	}
}

func TestBodyLifecycle(t *testing.T) {
	s, _, _ := newTestSystem(t)
	bi := s.BodyInterface()

	id, err := bi.CreateAndAddBody(NewBodyCreationSettings(NewSphereShape(0.5), RVec3{}, Identity, Dynamic, Moving), Activate)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.NumBodies() != 1 || !bi.IsAdded(id) || !bi.IsActive(id) {
		t.Fatalf("bodies=%d added=%v active=%v", s.NumBodies(), bi.IsAdded(id), bi.IsActive(id))
	}
	bi.RemoveBody(id)
	bi.DestroyBody(id)
	if s.NumBodies() != 0 || bi.Exists(id) {
		t.Fatalf("body survived destroy")
	}
	// Stale id is ignored.
	bi.DestroyBody(id)
	bi.SetLinearVelocity(id, mgl32.Vec3{1, 0, 0})
	if s.NumBodies() != 0 {
		t.Errorf("stale destroy changed body count")
	}

	again, _ := bi.CreateBody(NewBodyCreationSettings(NewSphereShape(0.5), RVec3{}, Identity, Dynamic, Moving))
	if again == id || again.Index() != id.Index() {
		t.Errorf("recycled id %s vs %s", again, id)
	}
}

func TestDestroyAddedBodyPanics(t *testing.T) {
	s, _, _ := newTestSystem(t)
	bi := s.BodyInterface()
	id, _ := bi.CreateAndAddBody(NewBodyCreationSettings(NewSphereShape(1), RVec3{}, Identity, Dynamic, Moving), Activate)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	bi.DestroyBody(id)
}

func TestCapacity(t *testing.T) {
	f := NewFactory()
	f.RegisterTypes()
	s := NewPhysicsSystem(f)
	s.Init(1, 0, 8, 8, LayerTable{}, ObjectVsBroadPhase{}, ObjectPairs{})
	set := NewBodyCreationSettings(NewSphereShape(1), RVec3{}, Identity, Dynamic, Moving)
	if _, err := s.BodyInterface().CreateBody(set); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := s.BodyInterface().CreateBody(set); !errors.Is(err, ErrTooManyBodies) {
		t.Fatalf("err = %v, want ErrTooManyBodies", err)
	}
}

func TestCreateWithoutRegisteredTypesPanics(t *testing.T) {
	f := NewFactory()
	f.RegisterTypes()
	s := NewPhysicsSystem(f)
	s.Init(8, 0, 8, 8, LayerTable{}, ObjectVsBroadPhase{}, ObjectPairs{})
	f.UnregisterTypes()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s.BodyInterface().CreateBody(NewBodyCreationSettings(NewSphereShape(1), RVec3{}, Identity, Dynamic, Moving))
}

func TestFreeFallWithoutGravity(t *testing.T) {
	s, alloc, js := newTestSystem(t)
	s.SetGravity(mgl32.Vec3{})
	bi := s.BodyInterface()
	id, _ := bi.CreateAndAddBody(NewBodyCreationSettings(NewSphereShape(0.5), RVec3{0, 5, 0}, Identity, Dynamic, Moving), Activate)
	bi.SetLinearVelocity(id, mgl32.Vec3{0, -1, 0})

	if err := s.Update(1.0/60, 1, alloc, js); err != nil {
		t.Fatalf("update: %v", err)
	}
	y := bi.GetCenterOfMassPosition(id).Y()
	if !(y < 5) || math32.Abs(y-(5-1.0/60)) > 1e-4 {
		t.Errorf("y = %v, want %v", y, 5-1.0/60)
	}
}

func TestSphereBouncesOffStaticFloor(t *testing.T) {
	s, alloc, js := newTestSystem(t)
	bi := s.BodyInterface()
	floor, err := bi.CreateBody(NewBodyCreationSettings(floorMesh(t), RVec3{}, Identity, Static, NonMoving))
	if err != nil {
		t.Fatalf("floor: %v", err)
	}
	bi.AddBody(floor, DontActivate)

	set := NewBodyCreationSettings(NewSphereShape(0.5), RVec3{0, 2, 0}, Identity, Dynamic, Moving)
	set.Restitution = 1
	set.Friction = 0
	ball, _ := bi.CreateAndAddBody(set, Activate)
	bi.SetLinearVelocity(ball, mgl32.Vec3{0, -1, 0})

	bounced := false
	lowest := float32(10)
	for i := 0; i < 240; i++ {
		if err := s.Update(1.0/60, 1, alloc, js); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		p := bi.GetCenterOfMassPosition(ball)
		lowest = math32.Min(lowest, p.Y())
		if bi.GetLinearVelocity(ball).Y() > 1 {
			bounced = true
		}
	}
	if !bounced {
		t.Error("ball never bounced")
	}
	if lowest < 0.3 {
		t.Errorf("ball sank to %v", lowest)
	}
	if bi.IsActive(floor) {
		t.Error("static floor must never be active")
	}
}

func TestStaticBodiesDoNotCollideWithEachOther(t *testing.T) {
	s, alloc, js := newTestSystem(t)
	bi := s.BodyInterface()
	a, _ := bi.CreateAndAddBody(NewBodyCreationSettings(NewSphereShape(1), RVec3{}, Identity, Static, NonMoving), DontActivate)
	b, _ := bi.CreateAndAddBody(NewBodyCreationSettings(NewSphereShape(1), RVec3{0.5, 0, 0}, Identity, Static, NonMoving), DontActivate)
	if err := s.Update(1.0/60, 1, alloc, js); err != nil {
		t.Fatal(err)
	}
	if len(s.Contacts()) != 0 || s.LastStepStats().Pairs != 0 {
		t.Errorf("static pair produced contacts: %+v", s.LastStepStats())
	}
	if !bi.GetPosition(a).ApproxEqual(RVec3{}) || !bi.GetPosition(b).ApproxEqual(RVec3{0.5, 0, 0}) {
		t.Error("static bodies moved")
	}
}

func TestMoveKinematic(t *testing.T) {
	s, alloc, js := newTestSystem(t)
	s.SetGravity(mgl32.Vec3{})
	bi := s.BodyInterface()
	id, _ := bi.CreateAndAddBody(NewBodyCreationSettings(NewSphereShape(0.5), RVec3{0, 3, 0}, Identity, Kinematic, Moving), DontActivate)

	dt := float32(1.0 / 60)
	bi.MoveKinematic(id, RVec3{0, 3 - 9.8*dt, 0}, Identity, dt)
	if err := s.Update(dt, 1, alloc, js); err != nil {
		t.Fatal(err)
	}
	if got := bi.GetPosition(id).Y(); math32.Abs(got-(3-9.8*dt)) > 1e-4 {
		t.Errorf("y = %v, want %v", got, 3-9.8*dt)
	}
}

func TestCharacterGroundState(t *testing.T) {
	s, alloc, js := newTestSystem(t)
	bi := s.BodyInterface()
	floor, _ := bi.CreateBody(NewBodyCreationSettings(floorMesh(t), RVec3{}, Identity, Static, NonMoving))
	bi.AddBody(floor, DontActivate)

	const height, radius = 2, 0.5
	shape, err := RotatedTranslatedShapeSettings{
		Position: mgl32.Vec3{0, 0.5*height + radius, 0},
		Rotation: Identity,
		Inner:    CapsuleShapeSettings{HalfHeight: 0.5 * height, Radius: radius},
	}.Create()
	if err != nil {
		t.Fatal(err)
	}
	set := NewCharacterSettings()
	set.Shape = shape
	set.MaxSlopeAngle = mgl32.DegToRad(45)
	set.SupportingVolume = Plane{Normal: AxisY, Constant: -radius}
	ch, err := NewCharacter(set, RVec3{0, 0.5, 0}, Identity, 0, s)
	if err != nil {
		t.Fatal(err)
	}
	ch.AddToPhysicsSystem(Activate)
	if ch.GroundState() != InAir {
		t.Fatalf("initial state %s", ch.GroundState())
	}

	for i := 0; i < 120; i++ {
		if err := s.Update(1.0/60, 1, alloc, js); err != nil {
			t.Fatal(err)
		}
		ch.PostSimulation()
	}
	if ch.GroundState() != OnGround {
		t.Errorf("state = %s, want OnGround", ch.GroundState())
	}
	if ch.GroundBodyID() != floor && ch.GroundState() == OnGround {
		t.Errorf("ground body = %s, want %s", ch.GroundBodyID(), floor)
	}
	if y := ch.Position().Y(); y < -0.1 || y > 0.1 {
		t.Errorf("feet at y=%v, want ~0", y)
	}
}
