package phase

// Stage names of the frame pipeline.
const (
	OnBegin        = "OnBeginPhase"
	OnTick         = "OnTickPhase"
	OnPostTick     = "OnPostTickPhase"
	OnPreRender    = "OnPreRenderPhase"
	OnRender       = "OnRenderPhase"
	OnPreRender3D  = "OnPreRender3DPhase"
	OnRender3D     = "OnRender3DPhase"
	OnPostRender3D = "OnPostRender3DPhase"
	OnRender2D     = "OnRender2DPhase"
	OnPostRender   = "OnPostRenderPhase"
)

// Phases is the ordering table handed to every module that binds work.
type Phases struct {
	Begin        Handle
	Tick         Handle
	PostTick     Handle
	PreRender    Handle
	Render       Handle
	PreRender3D  Handle
	Render3D     Handle
	PostRender3D Handle
	Render2D     Handle
	PostRender   Handle
}

// Standard declares the frame pipeline:
//
//	Begin → Tick → PostTick → PreRender → Render → PreRender3D →
//	Render3D → PostRender3D → Render2D → PostRender
func Standard() (*Graph, Phases) {
	g := NewGraph()
	var p Phases
	p.Begin = g.MustDeclare(OnBegin, Handle{})
	p.Tick = g.MustDeclare(OnTick, p.Begin)
	p.PostTick = g.MustDeclare(OnPostTick, p.Tick)
	p.PreRender = g.MustDeclare(OnPreRender, p.PostTick)
	p.Render = g.MustDeclare(OnRender, p.PreRender)
	p.PreRender3D = g.MustDeclare(OnPreRender3D, p.Render)
	p.Render3D = g.MustDeclare(OnRender3D, p.PreRender3D)
	p.PostRender3D = g.MustDeclare(OnPostRender3D, p.Render3D)
	p.Render2D = g.MustDeclare(OnRender2D, p.PostRender3D)
	p.PostRender = g.MustDeclare(OnPostRender, p.Render2D)
	return g, p
}
