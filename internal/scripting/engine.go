package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for gameplay hooks.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	warned map[string]bool
	files  int
}

// NewEngine creates a Lua engine and loads the scripts under scriptsDir.
// Missing directories are skipped; a script that fails to load is an error.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, warned: make(map[string]bool)}

	for _, sub := range []string{"core", "gameplay"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	log.Info("lua scripts loaded", zap.String("dir", scriptsDir), zap.Int("files", e.files))
	return e, nil
}

// LoadString runs a chunk of Lua source, e.g. to override a hook.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua string: %w", err)
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.files++
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// TickContext is what gameplay_tick sees each frame.
type TickContext struct {
	Frame     uint64
	Balls     int
	MaxBalls  int
	SpaceHeld bool
	Player    mgl32.Vec3
	Grounded  bool
}

// TickResult is what gameplay_tick asks the frame to do.
type TickResult struct {
	SpawnBall     bool
	DespawnOldest bool
}

// lookup returns the global function name, logging once when it is absent.
func (e *Engine) lookup(name string) (lua.LValue, bool) {
	fn := e.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		if !e.warned[name] {
			e.warned[name] = true
			e.log.Warn("lua function not found", zap.String("func", name))
		}
		return nil, false
	}
	return fn, true
}

// Tick calls gameplay_tick(ctx). Errors yield the zero result.
func (e *Engine) Tick(ctx TickContext) TickResult {
	fn, ok := e.lookup("gameplay_tick")
	if !ok {
		return TickResult{}
	}

	t := e.vm.NewTable()
	t.RawSetString("frame", lua.LNumber(ctx.Frame))
	t.RawSetString("balls", lua.LNumber(ctx.Balls))
	t.RawSetString("max_balls", lua.LNumber(ctx.MaxBalls))
	t.RawSetString("space_held", lua.LBool(ctx.SpaceHeld))
	t.RawSetString("grounded", lua.LBool(ctx.Grounded))
	t.RawSetString("player_x", lua.LNumber(ctx.Player.X()))
	t.RawSetString("player_y", lua.LNumber(ctx.Player.Y()))
	t.RawSetString("player_z", lua.LNumber(ctx.Player.Z()))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua gameplay_tick error", zap.Error(err))
		return TickResult{}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		if result != lua.LNil {
			e.log.Error("lua gameplay_tick returned non-table", zap.String("type", result.Type().String()))
		}
		return TickResult{}
	}
	return TickResult{
		SpawnBall:     lua.LVAsBool(rt.RawGetString("spawn_ball")),
		DespawnOldest: lua.LVAsBool(rt.RawGetString("despawn_oldest")),
	}
}

// SpawnPosition asks spawn_position(index) where the index-th ball should
// appear. ok is false when the hook is missing or fails.
func (e *Engine) SpawnPosition(index int, fallback mgl32.Vec3) (mgl32.Vec3, bool) {
	fn, ok := e.lookup("spawn_position")
	if !ok {
		return fallback, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(index)); err != nil {
		e.log.Error("lua spawn_position error", zap.Error(err))
		return fallback, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return fallback, false
	}
	return mgl32.Vec3{
		lNum(rt, "x", fallback.X()),
		lNum(rt, "y", fallback.Y()),
		lNum(rt, "z", fallback.Z()),
	}, true
}

// lNum reads a numeric field, falling back when it is absent.
func lNum(t *lua.LTable, key string, def float32) float32 {
	v := t.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float32(n)
	}
	return def
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
