package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/worldgrid/internal/world"
)

// Engine wraps a single gopher-lua VM and exposes region transitions to
// scripts. Transitions fire from several goroutines, so every VM call is
// serialised by mu.
//
// Scripts may define:
//
//	function on_region_activated(region, members) end
//	function on_region_deactivated(region, members) end
//
// region is {rx=, ry=}; members is an array of
// {id=, x=, y=, z=, controllable=, autonomous=, attackable=}.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// core helpers first, then region handlers
	for _, sub := range []string{"core", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
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
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) OnRegionActivated(r *world.Region, members []world.Object) {
	e.callRegionHook("on_region_activated", r, members)
}

func (e *Engine) OnRegionDeactivated(r *world.Region, members []world.Object) {
	e.callRegionHook("on_region_deactivated", r, members)
}

func (e *Engine) callRegionHook(name string, r *world.Region, members []world.Object) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}

	region := e.vm.NewTable()
	region.RawSetString("rx", lua.LNumber(r.RX()))
	region.RawSetString("ry", lua.LNumber(r.RY()))

	list := e.vm.CreateTable(len(members), 0)
	for _, o := range members {
		loc := o.Location()
		tr := o.Traits()
		m := e.vm.NewTable()
		m.RawSetString("id", lua.LNumber(o.ObjectID()))
		m.RawSetString("x", lua.LNumber(loc.X))
		m.RawSetString("y", lua.LNumber(loc.Y))
		m.RawSetString("z", lua.LNumber(loc.Z))
		m.RawSetString("controllable", lua.LBool(tr.Controllable()))
		m.RawSetString("autonomous", lua.LBool(tr.Autonomous()))
		m.RawSetString("attackable", lua.LBool(tr.Attackable()))
		list.Append(m)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, region, list); err != nil {
		e.log.Error("lua region hook error", zap.String("hook", name), zap.Stringer("region", r), zap.Error(err))
	}
}

// GlobalNumber reads a numeric global, 0 if unset or not a number.
func (e *Engine) GlobalNumber(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n, ok := e.vm.GetGlobal(name).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
