// Package render defines the drawing backend the render systems talk to.
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/res-engine/res/internal/data"
)

// Color is a palette name.
type Color string

const (
	White     Color = "white"
	Black     Color = "black"
	Red       Color = "red"
	Green     Color = "green"
	Blue      Color = "blue"
	Yellow    Color = "yellow"
	Orange    Color = "orange"
	Purple    Color = "purple"
	Maroon    Color = "maroon"
	Gray      Color = "gray"
	LightGray Color = "lightgray"
	DarkGray  Color = "darkgray"
	SkyBlue   Color = "skyblue"
)

var palette = map[Color]tcell.Color{
	White:     tcell.ColorWhite,
	Black:     tcell.ColorBlack,
	Red:       tcell.ColorRed,
	Green:     tcell.ColorGreen,
	Blue:      tcell.ColorBlue,
	Yellow:    tcell.ColorYellow,
	Orange:    tcell.ColorOrange,
	Purple:    tcell.ColorPurple,
	Maroon:    tcell.ColorMaroon,
	Gray:      tcell.ColorGray,
	LightGray: tcell.ColorLightGray,
	DarkGray:  tcell.ColorDarkGray,
	SkyBlue:   tcell.ColorSkyblue,
}

// TCell maps the name to a terminal colour; unknown names are white.
func (c Color) TCell() tcell.Color {
	if tc, ok := palette[c]; ok {
		return tc
	}
	return tcell.ColorWhite
}

func (c Color) Known() bool {
	_, ok := palette[c]
	return ok
}

type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32 // degrees
	Ortho    bool
}

// View returns the look-at matrix for the camera.
func (c Camera) View() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}

type Model struct {
	Name   string
	Meshes []data.Mesh
}

// Backend is an immediate-mode drawing target. 3D calls are only valid
// between BeginMode3D and EndMode3D, and every call between BeginDrawing
// and EndDrawing.
type Backend interface {
	BeginDrawing()
	ClearBackground(c Color)
	EndDrawing()
	BeginMode3D(cam Camera)
	EndMode3D()
	DrawModel(m Model, pos mgl32.Vec3, scale float32, c Color)
	DrawSphere(center mgl32.Vec3, radius float32, c Color)
	DrawCapsule(start, end mgl32.Vec3, radius float32, c Color)
	DrawGrid(slices int, spacing float32)
	DrawText(text string, x, y, size int, c Color)
	DrawFPS(x, y int)
	FPS() int
	Size() (int, int)
}
