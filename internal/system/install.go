package system

import (
	"go.uber.org/zap"

	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/core/phase"
	coresys "github.com/res-engine/res/internal/core/system"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/physics/bridge"
	"github.com/res-engine/res/internal/render"
)

// CameraEntity is the name scene cameras are looked up by.
const CameraEntity = "camera"

// Deps carries everything the frame systems share.
type Deps struct {
	World    *ecs.World
	Bus      *event.Bus
	Runner   *coresys.Runner
	Phases   phase.Phases
	Bridge   *bridge.Bridge
	Backend  render.Backend
	Keys     input.Source
	Hooks    Hooks
	Gameplay config.GameplayConfig
	Log      *zap.Logger
}

// Installed holds systems callers may want to inspect after installation.
type Installed struct {
	Gameplay *GameplaySystem
	Overlay  *DebugOverlaySystem
}

// InstallAll binds every module in dependency order: core, input,
// gameplay, physics, transform, render, UI, debug. The overlay draws last.
func InstallAll(d Deps) Installed {
	var out Installed
	InstallCore(d)
	InstallInput(d)
	out.Gameplay = InstallGameplay(d)
	InstallPhysics(d)
	InstallTransform(d)
	InstallRender(d)
	InstallUI(d)
	out.Overlay = InstallDebug(d)
	return out
}

func InstallCore(d Deps) {
	d.Runner.Register(d.Phases.Begin, NewEventDispatchSystem(d.Bus))
	d.Runner.Register(d.Phases.Begin, NewCameraFromMatrixSystem(d.World))
}

func InstallInput(d Deps) {
	d.Runner.Register(d.Phases.Tick, NewPlayerInputSystem(d.World, d.Keys))
}

func InstallGameplay(d Deps) *GameplaySystem {
	g := NewGameplaySystem(d.World, d.Bridge, d.Bus, d.Keys, d.Hooks, d.Gameplay, d.Log.Named("gameplay"))
	d.Runner.Register(d.Phases.Tick, g)
	return g
}

func InstallPhysics(d Deps) {
	log := d.Log.Named("physics")
	d.Runner.Register(d.Phases.Tick, NewGravitySystem(d.World, d.Bridge, log))
	d.Runner.Register(d.Phases.Tick, NewCharacterMovementSystem(d.World, d.Bridge, d.Gameplay.MovementSpeed))
	d.Runner.Register(d.Phases.Tick, NewPhysicsStepSystem(d.Bridge, log))
	d.Runner.Register(d.Phases.Tick, NewPoseFeedbackSystem(d.World, d.Bridge, log))
}

func InstallTransform(d Deps) {
	d.Runner.Register(d.Phases.PostTick, NewTransformFromMatrixSystem(d.World))
	d.Runner.Register(d.Phases.PostTick, NewLifetimeSystem(d.World, d.Bus, d.Log))
	d.Runner.Register(d.Phases.PostTick, NewBounceDetectSystem(d.World, d.Bridge, d.Bus))
}

func InstallRender(d Deps) {
	d.Runner.Register(d.Phases.PreRender, NewBeginRenderSystem(d.Backend, render.Black))
	d.Runner.Register(d.Phases.PreRender3D, NewBeginRender3DSystem(d.World, d.Backend, CameraEntity, d.Log.Named("render")))
	d.Runner.Register(d.Phases.Render3D, NewDrawModelsSystem(d.World, d.Backend))
	d.Runner.Register(d.Phases.Render3D, NewDrawSpheresSystem(d.World, d.Backend))
	d.Runner.Register(d.Phases.Render3D, NewDrawCapsulesSystem(d.World, d.Backend))
	d.Runner.Register(d.Phases.Render3D, NewDrawGridSystem(d.World, d.Backend))
	d.Runner.Register(d.Phases.PostRender3D, NewEndRender3DSystem(d.Backend))
	d.Runner.Register(d.Phases.PostRender, NewEndRenderSystem(d.Backend))
}

// InstallDebug binds the debug camera and the overlay.
func InstallDebug(d Deps) *DebugOverlaySystem {
	d.Runner.Register(d.Phases.PreRender, NewDebugCameraMovementSystem(d.World, d.Keys))
	o := NewDebugOverlaySystem(d.World, d.Bridge, d.Backend, d.Keys)
	d.Runner.Register(d.Phases.Render2D, o)
	return o
}

func InstallUI(d Deps) {
	d.Runner.Register(d.Phases.Render2D, NewDrawFPSSystem(d.Backend))
	d.Runner.Register(d.Phases.Render2D, NewDrawUITextSystem(d.World, d.Backend))
}
