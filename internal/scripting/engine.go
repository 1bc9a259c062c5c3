// Package scripting hosts the Lua VM that supplies custom easing curves.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"github.com/zencore/toolkit/internal/tween"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Engine wraps a single gopher-lua VM.
// Single-goroutine access only (game loop).
type Engine struct {
	vm   *lua.LState
	log  *zap.Logger
	warn *rate.Limiter
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: core/ first, then easing/, then the directory itself. Missing
// directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if scriptsDir == "" {
		return e, nil
	}
	for _, dir := range []string{
		filepath.Join(scriptsDir, "core"),
		filepath.Join(scriptsDir, "easing"),
		scriptsDir,
	} {
		if err := e.loadDir(dir); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("easing", vm.NewTable())
	return &Engine{
		vm:   vm,
		log:  log,
		warn: rate.NewLimiter(rate.Limit(1), 1),
	}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
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

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

func (e *Engine) Close() { e.vm.Close() }

// Curves lists the names defined in the global easing table.
func (e *Engine) Curves() []string {
	t, ok := e.vm.GetGlobal("easing").(*lua.LTable)
	if !ok {
		return nil
	}
	var names []string
	t.ForEach(func(k, v lua.LValue) {
		if _, fn := v.(*lua.LFunction); fn {
			names = append(names, k.String())
		}
	})
	return names
}

// Ease resolves name against the script-defined easing table first, then the
// built-in curves. A script curve that errors or returns a non-number falls
// back to linear progress for that call.
func (e *Engine) Ease(name string) (tween.Ease, bool) {
	if t, ok := e.vm.GetGlobal("easing").(*lua.LTable); ok {
		if fn, ok := t.RawGetString(name).(*lua.LFunction); ok {
			return e.luaEase(name, fn), true
		}
	}
	return tween.Builtin(name)
}

func (e *Engine) luaEase(name string, fn *lua.LFunction) tween.Ease {
	return func(p float64) float64 {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, lua.LNumber(p)); err != nil {
			e.warnf("lua easing error", name, err)
			return p
		}
		ret := e.vm.Get(-1)
		e.vm.Pop(1)
		n, ok := ret.(lua.LNumber)
		if !ok {
			e.warnf("lua easing returned non-number", name, nil)
			return p
		}
		return float64(n)
	}
}

func (e *Engine) warnf(msg, curve string, err error) {
	if !e.warn.Allow() {
		return
	}
	if err != nil {
		e.log.Error(msg, zap.String("curve", curve), zap.Error(err))
		return
	}
	e.log.Error(msg, zap.String("curve", curve))
}
