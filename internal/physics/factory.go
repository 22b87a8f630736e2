package physics

import "fmt"

// Factory is the shape type registry. Shapes and bodies may only be built
// while the registry is populated.
type Factory struct {
	names map[ShapeType]string
}

func NewFactory() *Factory {
	return &Factory{}
}

// RegisterTypes populates the registry. Calling it twice is a lifecycle bug.
func (f *Factory) RegisterTypes() {
	if f.names != nil {
		panic("physics: shape types already registered")
	}
	f.names = map[ShapeType]string{
		ShapeSphere:            "Sphere",
		ShapeCapsule:           "Capsule",
		ShapeMesh:              "Mesh",
		ShapeStaticCompound:    "StaticCompound",
		ShapeRotatedTranslated: "RotatedTranslated",
	}
}

func (f *Factory) UnregisterTypes() {
	f.names = nil
}

func (f *Factory) Registered() bool { return f.names != nil }

func (f *Factory) Name(t ShapeType) string {
	if n, ok := f.names[t]; ok {
		return n
	}
	return fmt.Sprintf("ShapeType(%d)", t)
}

func (f *Factory) mustRegistered(op string) {
	if !f.Registered() {
		panic("physics: " + op + " with no registered shape types")
	}
}
