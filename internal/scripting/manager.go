package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const globalScope = "__global__"

// vm is one sandboxed LState and the budget each hook call receives.
// An LState is single-threaded; mu serializes every use of L.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same scope are
// serialized; different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadDir creates a sandboxed VM for scope, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
// Loading a scope twice replaces the earlier VM.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope VM is registered, or an error is returned and no
// state changes.
func (m *Manager) LoadDir(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must be non-empty")
	}
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM that CallHook falls back to from any scope.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: the global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		cancel := SetBudget(L, instLimit)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripts loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// HasHook reports whether hook is defined as a function in scope's VM or the
// global fallback.
func (m *Manager) HasHook(scope, hook string) bool {
	v := m.lookup(scope)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, the global VM is tried as a fallback. Returns (LNil, nil) if the hook
// is not defined or no VM exists. Every call runs under a fresh instruction
// budget. Lua runtime errors, including an exhausted budget, are logged at
// Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	v := m.lookup(scope)
	if v == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	cancel := SetBudget(v.L, v.limit)
	defer cancel()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// NewTable creates an empty table owned by scope's VM, for building hook
// arguments. Returns nil when no VM serves scope.
func (m *Manager) NewTable(scope string) *lua.LTable {
	v := m.lookup(scope)
	if v == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.L.NewTable()
}

// Close releases every VM. CallHook after Close behaves as if nothing was
// loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}

func (m *Manager) lookup(scope string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[scope]; ok {
		return v
	}
	return m.vms[globalScope]
}
