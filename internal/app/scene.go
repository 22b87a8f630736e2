package app

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/data"
	"github.com/res-engine/res/internal/system"
)

// Spawn creates one entity per scene entry and returns how many it made.
// Physics-bearing entities get their BodyHandle last so the body observers
// see every component they read.
func (a *App) Spawn(scene *data.Scene) int {
	n := 0
	for _, e := range scene.Entities {
		if !a.world.Lookup(e.Name).IsZero() {
			a.log.Warn("duplicate scene entity skipped", zap.String("name", e.Name))
			continue
		}
		a.spawnEntry(scene, e)
		n++
	}
	return n
}

func vec3(v *[3]float32, def mgl32.Vec3) mgl32.Vec3 {
	if v == nil {
		return def
	}
	return mgl32.Vec3(*v)
}

func (a *App) spawnEntry(scene *data.Scene, e data.EntityEntry) ecs.EntityID {
	w := a.world
	gp := a.cfg.Gameplay
	id := w.CreateNamed(e.Name)

	pos := vec3(e.Position, mgl32.Vec3{})
	rot := mgl32.QuatIdent()
	if e.Rotation != nil {
		r := *e.Rotation
		rot = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	scale := vec3(e.Scale, mgl32.Vec3{1, 1, 1})
	matrix := component.Compose(pos, rot, scale)

	if c := e.Camera; c != nil {
		eye, target := mgl32.Vec3(c.Position), mgl32.Vec3(c.Target)
		up := mgl32.Vec3(c.Up)
		if up.Len() == 0 {
			up = mgl32.Vec3{0, 1, 0}
		}
		fovy := c.FovY
		if fovy <= 0 {
			fovy = 45
		}
		matrix = component.Matrix{M: system.CameraMatrix(eye, target, up)}
		ecs.Set(w, id, component.Camera{
			Position:     eye,
			Target:       target,
			Up:           up,
			FovY:         fovy,
			Projection:   component.Perspective,
			FollowMatrix: c.Follow,
		})
		if c.Debug {
			ecs.Set(w, id, component.DebugCameraMovement{})
		}
	}

	ecs.Set(w, id, matrix)
	ecs.Set(w, id, component.Position{})
	ecs.Set(w, id, component.Rotation{Q: mgl32.QuatIdent()})
	ecs.Set(w, id, component.Scale{V: scale})
	ecs.Add[component.UpdatePositionFromMatrix](w, id)
	ecs.Add[component.UpdateRotationFromMatrix](w, id)

	if e.Color != "" {
		ecs.Set(w, id, component.Color{Name: e.Color})
	}
	if e.Model != "" {
		if m, ok := scene.Models[e.Model]; ok {
			name := m.Name
			if name == "" {
				name = e.Model
			}
			ecs.Set(w, id, component.Model{Name: name, Meshes: m.Meshes})
		}
	}
	if e.Sphere {
		ecs.Set(w, id, component.SpherePrimitive{Radius: gp.SphereRadius})
	}
	if e.Capsule {
		cc := component.DefaultCharacterController()
		if e.Character != nil {
			cc = component.CharacterController{Height: e.Character.Height, Radius: e.Character.Radius}
		}
		ecs.Set(w, id, component.CapsulePrimitive{HalfLength: cc.Height / 2, Radius: cc.Radius})
	}
	if g := e.Grid; g != nil {
		ecs.Set(w, id, component.GridPrimitive{Slices: g.Slices, Spacing: g.Spacing})
	}
	if e.Renderable {
		ecs.Set(w, id, component.Renderable{})
	}
	if t := e.Text; t != nil {
		ecs.Set(w, id, component.Text{Value: t.Value})
		ecs.Set(w, id, component.Position2D{X: t.X, Y: t.Y})
		ecs.Set(w, id, component.TextElement{FontSize: t.Size})
		if t.Color != "" {
			ecs.Set(w, id, component.Color{Name: t.Color})
		}
		ecs.Set(w, id, component.Renderable2D{})
	}
	if e.Lifetime > 0 {
		ecs.Set(w, id, component.Lifetime{Remaining: e.Lifetime})
	}
	if e.Player {
		ecs.Set(w, id, component.Player{})
		ecs.Set(w, id, component.MovementInput{})
	}
	if e.Gravity != nil {
		force := mgl32.Vec3(*e.Gravity)
		if force.Len() == 0 {
			force = mgl32.Vec3(gp.GravityForce)
		}
		ecs.Set(w, id, component.Gravity{Force: force})
	}

	body := false
	if e.StaticCollider {
		ecs.Set(w, id, component.StaticCollider{})
		body = true
	}
	if e.DynamicSphere {
		ecs.Set(w, id, component.DynamicSphere{})
		body = true
	}
	if c := e.Character; c != nil {
		ecs.Set(w, id, component.CharacterController{Height: c.Height, Radius: c.Radius})
		body = true
	}
	if body {
		ecs.Set(w, id, component.BodyHandle{})
	}
	return id
}
