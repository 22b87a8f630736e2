package render

import (
	"math"
	"time"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Screen is the subset of tcell.Screen the terminal backend draws through.
type Screen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Fill(r rune, style tcell.Style)
	Size() (int, int)
	Show()
}

const (
	near = 0.1
	far  = 200
	// Terminal cells are roughly twice as tall as they are wide.
	cellAspect = 2
)

// Terminal rasterises wireframes into terminal cells with a per-cell depth
// buffer.
type Terminal struct {
	screen Screen
	log    *zap.Logger
	now    func() time.Time

	drawing  bool
	in3D     bool
	width    int
	height   int
	bg       tcell.Color
	depth    []float32
	viewProj mgl32.Mat4
	cam      Camera

	fps fpsCounter
}

func NewTerminal(screen Screen, log *zap.Logger) *Terminal {
	return &Terminal{screen: screen, log: log, now: time.Now, bg: tcell.ColorBlack}
}

func (t *Terminal) Size() (int, int) { return t.screen.Size() }
func (t *Terminal) FPS() int         { return t.fps.fps }

func (t *Terminal) misuse(call string) {
	t.log.Warn("draw call out of order",
		zap.String("call", call),
		zap.Bool("drawing", t.drawing),
		zap.Bool("mode3d", t.in3D),
	)
}

func (t *Terminal) BeginDrawing() {
	if t.drawing {
		t.misuse("BeginDrawing")
		return
	}
	t.drawing = true
	t.width, t.height = t.screen.Size()
	if n := t.width * t.height; cap(t.depth) < n {
		t.depth = make([]float32, n)
	} else {
		t.depth = t.depth[:n]
	}
	t.resetDepth()
}

func (t *Terminal) resetDepth() {
	for i := range t.depth {
		t.depth[i] = math.MaxFloat32
	}
}

func (t *Terminal) ClearBackground(c Color) {
	if !t.drawing {
		t.misuse("ClearBackground")
		return
	}
	t.bg = c.TCell()
	t.screen.Fill(' ', tcell.StyleDefault.Background(t.bg))
	t.resetDepth()
}

func (t *Terminal) EndDrawing() {
	if !t.drawing || t.in3D {
		t.misuse("EndDrawing")
		return
	}
	t.drawing = false
	t.screen.Show()
	t.fps.frame(t.now())
}

func (t *Terminal) BeginMode3D(cam Camera) {
	if !t.drawing || t.in3D {
		t.misuse("BeginMode3D")
		return
	}
	t.in3D = true
	t.cam = cam
	aspect := float32(1)
	if t.height > 0 {
		aspect = float32(t.width) / (float32(t.height) * cellAspect)
	}
	var proj mgl32.Mat4
	if cam.Ortho {
		h := cam.FovY / 2
		proj = mgl32.Ortho(-h*aspect, h*aspect, -h, h, near, far)
	} else {
		fov := cam.FovY
		if fov <= 0 {
			fov = 45
		}
		proj = mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
	}
	t.viewProj = proj.Mul4(cam.View())
}

func (t *Terminal) EndMode3D() {
	if !t.in3D {
		t.misuse("EndMode3D")
		return
	}
	t.in3D = false
}

// project maps a world point to a cell and a depth in [0,1]. ok is false
// for points behind the near plane.
func (t *Terminal) project(p mgl32.Vec3) (x, y int, z float32, ok bool) {
	clip := t.viewProj.Mul4x1(p.Vec4(1))
	if clip.W() < near {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	fx := (ndc.X() + 1) * 0.5 * float32(t.width)
	fy := (1 - ndc.Y()) * 0.5 * float32(t.height)
	if math32.Abs(fx) > 1e6 || math32.Abs(fy) > 1e6 {
		return 0, 0, 0, false
	}
	return int(math32.Floor(fx)), int(math32.Floor(fy)), ndc.Z(), true
}

// Project exposes the current 3D projection; ok is false outside 3D mode
// or behind the camera.
func (t *Terminal) Project(p mgl32.Vec3) (x, y int, ok bool) {
	if !t.in3D {
		return 0, 0, false
	}
	x, y, _, ok = t.project(p)
	return x, y, ok
}

func (t *Terminal) plot(x, y int, z float32, r rune, fg tcell.Color) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	i := y*t.width + x
	if z > t.depth[i] {
		return
	}
	t.depth[i] = z
	t.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(fg).Background(t.bg))
}

// line draws a Bresenham line, interpolating depth.
func (t *Terminal) line(x0, y0 int, z0 float32, x1, y1 int, z1 float32, r rune, fg tcell.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	steps := max(dx, -dy)
	if steps > 4*(t.width+t.height) {
		return
	}
	err := dx + dy
	for i := 0; ; i++ {
		z := z0
		if steps > 0 {
			z = z0 + (z1-z0)*float32(i)/float32(steps)
		}
		t.plot(x0, y0, z, r, fg)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (t *Terminal) segment(a, b mgl32.Vec3, r rune, fg tcell.Color) {
	x0, y0, z0, ok0 := t.project(a)
	x1, y1, z1, ok1 := t.project(b)
	if !ok0 || !ok1 {
		return
	}
	t.line(x0, y0, z0, x1, y1, z1, r, fg)
}

func (t *Terminal) DrawModel(m Model, pos mgl32.Vec3, scale float32, c Color) {
	if !t.in3D {
		t.misuse("DrawModel")
		return
	}
	if scale == 0 {
		scale = 1
	}
	fg := c.TCell()
	vtx := func(mesh []float32, i uint16) mgl32.Vec3 {
		j := int(i) * 3
		return mgl32.Vec3{mesh[j], mesh[j+1], mesh[j+2]}.Mul(scale).Add(pos)
	}
	for _, mesh := range m.Meshes {
		n := min(mesh.TriangleCount*3, len(mesh.Indices))
		for i := 0; i+2 < n; i += 3 {
			ia, ib, ic := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
			if int(max(ia, ib, ic)) >= mesh.VertexCount || int(max(ia, ib, ic))*3+2 >= len(mesh.Vertices) {
				continue
			}
			a, b, cc := vtx(mesh.Vertices, ia), vtx(mesh.Vertices, ib), vtx(mesh.Vertices, ic)
			t.segment(a, b, '.', fg)
			t.segment(b, cc, '.', fg)
			t.segment(cc, a, '.', fg)
		}
	}
}

// disc fills an ellipse whose radii come from projecting the camera-space
// right and up offsets of radius.
func (t *Terminal) disc(center mgl32.Vec3, radius float32, r rune, fg tcell.Color) {
	cx, cy, cz, ok := t.project(center)
	if !ok {
		return
	}
	fwd := t.cam.Target.Sub(t.cam.Position)
	up := t.cam.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	right := fwd.Cross(up)
	if right.Len() < 1e-6 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize().Mul(radius)
	camUp := right.Cross(fwd).Normalize().Mul(radius)

	rx, ry := 0, 0
	if x, _, _, ok := t.project(center.Add(right)); ok {
		rx = abs(x - cx)
	}
	if _, y, _, ok := t.project(center.Add(camUp)); ok {
		ry = abs(y - cy)
	}
	if rx > t.width || ry > t.height {
		return
	}
	if rx == 0 && ry == 0 {
		t.plot(cx, cy, cz, r, fg)
		return
	}
	fx, fy := float64(max(rx, 1)), float64(max(ry, 1))
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			nx, ny := float64(dx)/fx, float64(dy)/fy
			if nx*nx+ny*ny <= 1 {
				t.plot(cx+dx, cy+dy, cz, r, fg)
			}
		}
	}
}

func (t *Terminal) DrawSphere(center mgl32.Vec3, radius float32, c Color) {
	if !t.in3D {
		t.misuse("DrawSphere")
		return
	}
	t.disc(center, radius, 'o', c.TCell())
}

func (t *Terminal) DrawCapsule(start, end mgl32.Vec3, radius float32, c Color) {
	if !t.in3D {
		t.misuse("DrawCapsule")
		return
	}
	fg := c.TCell()
	t.disc(start, radius, '#', fg)
	t.disc(end, radius, '#', fg)
	t.segment(start, end, '#', fg)
}

func (t *Terminal) DrawGrid(slices int, spacing float32) {
	if !t.in3D {
		t.misuse("DrawGrid")
		return
	}
	if slices <= 0 || spacing <= 0 {
		return
	}
	half := float32(slices/2) * spacing
	fg := tcell.ColorDarkGray
	for i := -slices / 2; i <= slices/2; i++ {
		o := float32(i) * spacing
		t.gridLine(mgl32.Vec3{o, 0, -half}, mgl32.Vec3{o, 0, half}, fg)
		t.gridLine(mgl32.Vec3{-half, 0, o}, mgl32.Vec3{half, 0, o}, fg)
	}
}

// gridLine splits long lines so pieces behind the camera drop out
// individually.
func (t *Terminal) gridLine(a, b mgl32.Vec3, fg tcell.Color) {
	const pieces = 8
	for i := 0; i < pieces; i++ {
		p := a.Add(b.Sub(a).Mul(float32(i) / pieces))
		q := a.Add(b.Sub(a).Mul(float32(i+1) / pieces))
		t.segment(p, q, '+', fg)
	}
}

func (t *Terminal) DrawText(text string, x, y, size int, c Color) {
	if !t.drawing || t.in3D {
		t.misuse("DrawText")
		return
	}
	style := tcell.StyleDefault.Foreground(c.TCell()).Background(t.bg)
	if size >= 20 {
		style = style.Bold(true)
	}
	col := x
	for _, r := range text {
		if col >= 0 && col < t.width && y >= 0 && y < t.height {
			t.screen.SetContent(col, y, r, nil, style)
		}
		col++
	}
}

func (t *Terminal) DrawFPS(x, y int) {
	t.DrawText(fpsText(t.fps.fps), x, y, 10, Green)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
