// Package app assembles the world, the physics bridge and the frame
// systems, and drives them at a fixed rate.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/res-engine/res/internal/audio"
	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/config"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
	"github.com/res-engine/res/internal/core/phase"
	coresys "github.com/res-engine/res/internal/core/system"
	"github.com/res-engine/res/internal/data"
	"github.com/res-engine/res/internal/geometry"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/physics/bridge"
	"github.com/res-engine/res/internal/render"
	"github.com/res-engine/res/internal/scripting"
	"github.com/res-engine/res/internal/system"
)

// Deps are the outer surfaces the app drives. Backend and Keys are
// required; Audio defaults to a silent player and Hooks to the Lua engine
// loaded from the gameplay script directory.
type Deps struct {
	Backend render.Backend
	Keys    input.Source
	Audio   audio.Player
	Hooks   system.Hooks
}

type App struct {
	cfg    config.Config
	log    *zap.Logger
	phases phase.Phases
	bus    *event.Bus
	world  *ecs.World
	runner *coresys.Runner
	bridge *bridge.Bridge
	cache  *geometry.ShapeCache
	keys   input.Source
	audio  audio.Player
	engine *scripting.Engine // nil when hooks were injected
	sys    system.Installed
	closed bool
}

// New builds the app, brings physics up and spawns the configured scene.
func New(cfg config.Config, deps Deps, log *zap.Logger) (*App, error) {
	if deps.Backend == nil || deps.Keys == nil {
		return nil, errors.New("app: backend and input source are required")
	}
	graph, phases := phase.Standard()
	a := &App{
		cfg:    cfg,
		log:    log,
		phases: phases,
		bus:    event.NewBus(),
		world:  ecs.NewWorld(),
		runner: coresys.NewRunner(graph, log.Named("runner")),
		bridge: bridge.New(cfg.Physics, log.Named("physics")),
		cache:  geometry.NewShapeCache(log.Named("geometry")),
		keys:   deps.Keys,
		audio:  deps.Audio,
	}
	if a.audio == nil {
		a.audio = audio.Nop{}
	}
	hooks := deps.Hooks
	if hooks == nil {
		engine, err := scripting.NewEngine(cfg.Gameplay.ScriptDir, log.Named("lua"))
		if err != nil {
			return nil, fmt.Errorf("scripting: %w", err)
		}
		a.engine = engine
		hooks = engine
	}

	system.RegisterPhysicsObservers(a.world, a.bridge, a.bus, a.cache, cfg.Gameplay, log.Named("observer"))
	system.SubscribeAudio(a.bus, a.audio)
	a.sys = system.InstallAll(system.Deps{
		World:    a.world,
		Bus:      a.bus,
		Runner:   a.runner,
		Phases:   phases,
		Bridge:   a.bridge,
		Backend:  deps.Backend,
		Keys:     deps.Keys,
		Hooks:    hooks,
		Gameplay: cfg.Gameplay,
		Log:      log,
	})

	ecs.SetSingleton(a.world, component.PhysicsHandle{})

	if cfg.Scene.Path != "" {
		scene, err := data.LoadScene(cfg.Scene.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("scene: %w", err)
		}
		n := a.Spawn(scene)
		log.Info("scene loaded",
			zap.String("scene", scene.Name),
			zap.Int("entities", n),
			zap.Int("bodies", a.bridge.BodyCount()),
		)
	}
	return a, nil
}

// Step runs exactly one frame.
func (a *App) Step(dt time.Duration) {
	a.runner.Tick(dt)
}

// Run ticks at the configured rate until ctx is done or the input source
// asks to close. Close requests are checked between frames.
func (a *App) Run(ctx context.Context) error {
	rate := a.cfg.Window.TickRate()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	a.log.Info("frame loop started", zap.Duration("tick", rate))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("frame loop stopped", zap.Uint64("frames", a.runner.Frame()))
			return nil
		case now := <-ticker.C:
			// Physics always advances by the fixed rate; a late tick is not
			// caught up.
			if lag := now.Sub(last); lag > 4*rate {
				a.log.Debug("frame late", zap.Duration("lag", lag))
			}
			last = now
			a.Step(rate)
			if a.keys.CloseRequested() {
				a.log.Info("close requested", zap.Uint64("frames", a.runner.Frame()))
				return nil
			}
		}
	}
}

// Close destroys every entity, which releases their bodies, and shuts
// physics down last. Safe to call twice.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.world.Clear()
	a.audio.Close()
	if a.engine != nil {
		a.engine.Close()
	}
	a.log.Info("app closed", zap.Stringer("physics", a.bridge.State()))
}

func (a *App) World() *ecs.World                { return a.world }
func (a *App) Bridge() *bridge.Bridge           { return a.bridge }
func (a *App) Runner() *coresys.Runner          { return a.runner }
func (a *App) Phases() phase.Phases             { return a.phases }
func (a *App) Bus() *event.Bus                  { return a.bus }
func (a *App) Gameplay() *system.GameplaySystem { return a.sys.Gameplay }
func (a *App) Overlay() *system.DebugOverlaySystem {
	return a.sys.Overlay
}
