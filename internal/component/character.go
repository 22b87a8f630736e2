package component

// CharacterController requests an upright capsule character body.
// Height is the cylinder length between the two hemispheres.
type CharacterController struct {
	Height float32
	Radius float32
}

// DefaultCharacterController is a two metre capsule with half metre caps.
func DefaultCharacterController() CharacterController {
	return CharacterController{Height: 2, Radius: 0.5}
}

// Player marks the entity driven by keyboard input.
type Player struct{}
