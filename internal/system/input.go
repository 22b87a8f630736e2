package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/input"
)

// PlayerInputSystem samples WASD into the player's MovementInput.
// W/S drive the X axis and D/A the Z axis; diagonals are normalised. Tick.
type PlayerInputSystem struct {
	world *ecs.World
	keys  input.Source
}

func NewPlayerInputSystem(w *ecs.World, keys input.Source) *PlayerInputSystem {
	return &PlayerInputSystem{world: w, keys: keys}
}

func (s *PlayerInputSystem) Name() string { return "PlayerInput" }

func (s *PlayerInputSystem) Update(_ time.Duration) {
	v := ReadMovement(s.keys)
	ecs.Each2(ecs.Register[component.Player](s.world), ecs.Register[component.MovementInput](s.world),
		func(_ ecs.EntityID, _ *component.Player, in *component.MovementInput) {
			in.Input = v
		})
}

// ReadMovement maps the held movement keys to a unit (or zero) vector.
func ReadMovement(keys input.Source) mgl32.Vec2 {
	var v mgl32.Vec2
	if keys.IsKeyDown(input.KeyW) {
		v[0]++
	}
	if keys.IsKeyDown(input.KeyS) {
		v[0]--
	}
	if keys.IsKeyDown(input.KeyD) {
		v[1]++
	}
	if keys.IsKeyDown(input.KeyA) {
		v[1]--
	}
	if v.Len() > 0 {
		v = v.Normalize()
	}
	return v
}
