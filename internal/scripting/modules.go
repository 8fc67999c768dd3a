package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.{debug,info,warn,error}(msg)
//	engine.dice.roll(expr) -> {total, dice, modifier}
//	engine.clamp(v, lo, hi) -> number
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "clamp", L.NewFunction(luaClamp))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logFn := range levels {
		logFn := logFn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		sum := 0
		for _, d := range res.Dice {
			sum += d
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.SetField(t, "dice", lua.LNumber(sum))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.Push(t)
		return 1
	}))
	return mod
}

func luaClamp(L *lua.LState) int {
	v := L.CheckNumber(1)
	lo := L.CheckNumber(2)
	hi := L.CheckNumber(3)
	L.Push(lua.LNumber(min(max(v, lo), hi)))
	return 1
}
