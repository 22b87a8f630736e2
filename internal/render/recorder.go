package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type Op uint8

const (
	OpBeginDrawing Op = iota
	OpClearBackground
	OpEndDrawing
	OpBeginMode3D
	OpEndMode3D
	OpDrawModel
	OpDrawSphere
	OpDrawCapsule
	OpDrawGrid
	OpDrawText
	OpDrawFPS
)

var opNames = [...]string{
	"BeginDrawing", "ClearBackground", "EndDrawing", "BeginMode3D", "EndMode3D",
	"DrawModel", "DrawSphere", "DrawCapsule", "DrawGrid", "DrawText", "DrawFPS",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Call is one recorded draw call. Only the fields relevant to Op are set.
type Call struct {
	Op     Op
	Pos    mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
	Color  Color
	Text   string
	X, Y   int
	Name   string
	Camera Camera
}

// Recorder keeps the draw calls of the frame in progress and of the last
// completed frame. It enforces the same ordering rules as Terminal and
// counts violations instead of logging them.
type Recorder struct {
	Width, Height int

	calls   []Call
	last    []Call
	frames  int
	misuse  int
	drawing bool
	in3D    bool
	fps     fpsCounter
	now     func() time.Time
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height, now: time.Now}
}

// Calls returns the calls of the last completed frame.
func (r *Recorder) Calls() []Call { return r.last }

// Pending returns the calls recorded since the current BeginDrawing.
func (r *Recorder) Pending() []Call { return r.calls }

func (r *Recorder) Frames() int { return r.frames }
func (r *Recorder) Misuse() int { return r.misuse }

// Ops lists the ops of the last completed frame.
func (r *Recorder) Ops() []Op {
	ops := make([]Op, len(r.last))
	for i, c := range r.last {
		ops[i] = c.Op
	}
	return ops
}

// Find returns the calls of the last frame with the given op.
func (r *Recorder) Find(op Op) []Call {
	var out []Call
	for _, c := range r.last {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) add(c Call, ok bool) {
	if !ok {
		r.misuse++
		return
	}
	r.calls = append(r.calls, c)
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }
func (r *Recorder) FPS() int         { return r.fps.fps }

func (r *Recorder) BeginDrawing() {
	if r.drawing {
		r.misuse++
		return
	}
	r.drawing = true
	r.calls = r.calls[:0]
	r.calls = append(r.calls, Call{Op: OpBeginDrawing})
}

func (r *Recorder) ClearBackground(c Color) {
	r.add(Call{Op: OpClearBackground, Color: c}, r.drawing)
}

func (r *Recorder) EndDrawing() {
	if !r.drawing || r.in3D {
		r.misuse++
		return
	}
	r.calls = append(r.calls, Call{Op: OpEndDrawing})
	r.drawing = false
	r.last = append(r.last[:0], r.calls...)
	r.frames++
	r.fps.frame(r.now())
}

func (r *Recorder) BeginMode3D(cam Camera) {
	ok := r.drawing && !r.in3D
	r.add(Call{Op: OpBeginMode3D, Camera: cam}, ok)
	if ok {
		r.in3D = true
	}
}

func (r *Recorder) EndMode3D() {
	ok := r.in3D
	r.add(Call{Op: OpEndMode3D}, ok)
	r.in3D = false
}

func (r *Recorder) DrawModel(m Model, pos mgl32.Vec3, scale float32, c Color) {
	r.add(Call{Op: OpDrawModel, Name: m.Name, Pos: pos, Radius: scale, Color: c}, r.in3D)
}

func (r *Recorder) DrawSphere(center mgl32.Vec3, radius float32, c Color) {
	r.add(Call{Op: OpDrawSphere, Pos: center, Radius: radius, Color: c}, r.in3D)
}

func (r *Recorder) DrawCapsule(start, end mgl32.Vec3, radius float32, c Color) {
	r.add(Call{Op: OpDrawCapsule, Pos: start, End: end, Radius: radius, Color: c}, r.in3D)
}

func (r *Recorder) DrawGrid(slices int, spacing float32) {
	r.add(Call{Op: OpDrawGrid, X: slices, Radius: spacing}, r.in3D)
}

func (r *Recorder) DrawText(text string, x, y, size int, c Color) {
	r.add(Call{Op: OpDrawText, Text: text, X: x, Y: y, Radius: float32(size), Color: c}, r.drawing && !r.in3D)
}

func (r *Recorder) DrawFPS(x, y int) {
	r.add(Call{Op: OpDrawFPS, X: x, Y: y, Text: fpsText(r.fps.fps)}, r.drawing && !r.in3D)
}
