package component

// Text is a UI label drawn in the 2D pass.
type Text struct {
	Value string
}

// Position2D is in screen cells from the top-left corner.
type Position2D struct {
	X, Y int
}

type Renderable2D struct{}

type TextElement struct {
	FontSize int
}
