package system

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/physics/bridge"
	"github.com/res-engine/res/internal/render"
)

const (
	defaultCameraSpeed = 4  // units per second
	defaultCameraTurn  = 1.5 // radians per second
	minOrbitDistance   = 0.5
)

// edge reports true once per press of a held key.
type edge struct{ down bool }

func (e *edge) pressed(now bool) bool {
	hit := now && !e.down
	e.down = now
	return hit
}

// DebugCameraMovementSystem flies cameras carrying DebugCameraMovement.
// Tab toggles free and orbital modes. In free mode the arrows move and
// strafe and Q/E lower and raise the camera; in orbital mode Left/Right
// circle the target and Up/Down zoom. PreRender.
type DebugCameraMovementSystem struct {
	world *ecs.World
	keys  input.Source
	tab   edge
}

func NewDebugCameraMovementSystem(w *ecs.World, keys input.Source) *DebugCameraMovementSystem {
	return &DebugCameraMovementSystem{world: w, keys: keys}
}

func (s *DebugCameraMovementSystem) Name() string { return "DebugCameraMovement" }

func (s *DebugCameraMovementSystem) Update(dt time.Duration) {
	toggle := s.tab.pressed(s.keys.IsKeyDown(input.KeyTab))
	sec := float32(dt.Seconds())
	w := s.world

	ecs.Each2(ecs.Register[component.Camera](w), ecs.Register[component.DebugCameraMovement](w),
		func(id ecs.EntityID, c *component.Camera, m *component.DebugCameraMovement) {
			if toggle {
				if m.Mode == component.CameraFree {
					m.Mode = component.CameraOrbital
				} else {
					m.Mode = component.CameraFree
				}
			}
			speed, turn := m.Speed, m.Turn
			if speed <= 0 {
				speed = defaultCameraSpeed
			}
			if turn <= 0 {
				turn = defaultCameraTurn
			}
			var moved bool
			if m.Mode == component.CameraOrbital {
				moved = s.orbit(c, turn*sec, speed*sec)
			} else {
				moved = s.fly(c, speed*sec)
			}
			if !moved {
				return
			}
			if mx, ok := ecs.Get[component.Matrix](w, id); ok && c.FollowMatrix {
				up := c.Up
				if up.Len() == 0 {
					up = mgl32.Vec3{0, 1, 0}
				}
				mx.M = CameraMatrix(c.Position, c.Target, up)
			}
		})
}

func (s *DebugCameraMovementSystem) axis(pos, neg input.Key) float32 {
	var v float32
	if s.keys.IsKeyDown(pos) {
		v++
	}
	if s.keys.IsKeyDown(neg) {
		v--
	}
	return v
}

func (s *DebugCameraMovementSystem) fly(c *component.Camera, step float32) bool {
	fwd := c.Target.Sub(c.Position)
	if fwd.Len() == 0 {
		return false
	}
	fwd = fwd.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	right := fwd.Cross(up)
	if right.Len() == 0 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()

	d := fwd.Mul(s.axis(input.KeyUp, input.KeyDown)).
		Add(right.Mul(s.axis(input.KeyRight, input.KeyLeft))).
		Add(up.Mul(s.axis(input.KeyE, input.KeyQ)))
	if d.Len() == 0 {
		return false
	}
	d = d.Normalize().Mul(step)
	c.Position = c.Position.Add(d)
	c.Target = c.Target.Add(d)
	return true
}

func (s *DebugCameraMovementSystem) orbit(c *component.Camera, angle, step float32) bool {
	turn := s.axis(input.KeyRight, input.KeyLeft)
	zoom := s.axis(input.KeyUp, input.KeyDown)
	if turn == 0 && zoom == 0 {
		return false
	}
	off := c.Position.Sub(c.Target)
	if turn != 0 {
		a := turn * angle
		sin, cos := math32.Sin(a), math32.Cos(a)
		off = mgl32.Vec3{off.X()*cos + off.Z()*sin, off.Y(), -off.X()*sin + off.Z()*cos}
	}
	if zoom != 0 {
		dist := off.Len()
		next := dist - zoom*step
		if next < minOrbitDistance {
			next = minOrbitDistance
		}
		if dist > 0 {
			off = off.Mul(next / dist)
		}
	}
	c.Position = c.Target.Add(off)
	return true
}

// DebugOverlaySystem prints body count, player position and ground state
// in the bottom-left corner. F1 hides and shows it. Render2D.
type DebugOverlaySystem struct {
	world   *ecs.World
	br      *bridge.Bridge
	backend render.Backend
	keys    input.Source
	f1      edge
	hidden  bool
	lines   []string
}

func NewDebugOverlaySystem(w *ecs.World, br *bridge.Bridge, b render.Backend, keys input.Source) *DebugOverlaySystem {
	return &DebugOverlaySystem{world: w, br: br, backend: b, keys: keys}
}

func (s *DebugOverlaySystem) Name() string { return "DebugOverlay" }

// Lines returns the text drawn on the last visible frame.
func (s *DebugOverlaySystem) Lines() []string { return s.lines }

func (s *DebugOverlaySystem) Update(_ time.Duration) {
	if s.f1.pressed(s.keys.IsKeyDown(input.KeyF1)) {
		s.hidden = !s.hidden
	}
	if s.hidden {
		return
	}

	s.lines = s.lines[:0]
	s.lines = append(s.lines, fmt.Sprintf("bodies %d (%d active)", s.br.BodyCount(), s.br.ActiveBodyCount()))

	player := "player -"
	ground := "ground -"
	ecs.Each2(ecs.Register[component.Player](s.world), ecs.Register[component.BodyHandle](s.world),
		func(_ ecs.EntityID, _ *component.Player, h *component.BodyHandle) {
			if !h.Valid() {
				return
			}
			if p, ok := s.br.Position(h.ID); ok {
				player = fmt.Sprintf("player %.2f %.2f %.2f", p.X(), p.Y(), p.Z())
			}
			if g, ok := s.br.GroundState(h.ID); ok {
				ground = "ground " + g.String()
			}
		})
	s.lines = append(s.lines, player, ground)

	_, h := s.backend.Size()
	y := h - len(s.lines)
	if y < 1 {
		y = 1
	}
	for i, l := range s.lines {
		s.backend.DrawText(l, 1, y+i, 10, render.Yellow)
	}
}
