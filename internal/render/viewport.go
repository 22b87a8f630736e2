package render

import "github.com/gdamore/tcell/v2"

// Viewport limits drawing to the top-left width x height cells of a
// screen. A non-positive dimension keeps the screen's own.
type Viewport struct {
	Screen
	Width, Height int
}

func Clip(s Screen, width, height int) Screen {
	if width <= 0 && height <= 0 {
		return s
	}
	return &Viewport{Screen: s, Width: width, Height: height}
}

func (v *Viewport) Size() (int, int) {
	w, h := v.Screen.Size()
	if v.Width > 0 && v.Width < w {
		w = v.Width
	}
	if v.Height > 0 && v.Height < h {
		h = v.Height
	}
	return w, h
}

func (v *Viewport) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	w, h := v.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	v.Screen.SetContent(x, y, primary, combining, style)
}
