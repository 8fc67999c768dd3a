// Package scripting provides a sandboxed GopherLua environment for content
// hooks such as per-floor opponent scaling. It has no dependency on game
// domain packages beyond dice; callers marshal their own values.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget for one script load or one
// hook call when no override is configured.
const DefaultInstructionLimit = 100_000

// blockedGlobals are removed from every sandboxed state: they reach the
// filesystem, compile arbitrary chunks, or steer the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// budget is a context that cancels itself once Done has been polled more
// than its opcode allowance. GopherLua polls Done once per instruction.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// SetBudget installs a fresh allowance of limit opcodes on L, replacing any
// spent one, and returns its cancel function. A limit <= 0 uses
// DefaultInstructionLimit.
//
// Postcondition: L may run limit more opcodes before raising a Lua error.
func SetBudget(L *lua.LState, limit int) context.CancelFunc {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)
	return cancel
}

// NewSandboxedState creates a GopherLua state with only the base, table,
// string and math libraries, none of blockedGlobals, and an initial budget
// of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: the caller owns the LState and must call L.Close().
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	SetBudget(L, instLimit)
	return L
}
