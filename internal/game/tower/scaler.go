package tower

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/scripting"
)

// ScaleHook is the Lua global called to rewrite a floor's opponent:
//
//	function scale_opponent(opponent, floor_number) return opponent end
//
// The opponent table carries name, max_health, aggression, patience and
// adaptation_rate. Missing or non-numeric fields keep their YAML values.
const ScaleHook = "scale_opponent"

// ScriptScope is the scripting scope tower hooks are loaded into.
const ScriptScope = "tower"

// LoadScripts loads dir into the tower scope and globalDir into mgr's shared
// fallback VM, then returns a Scaler over the tower scope. Either directory
// may be empty. With only globalDir set, hooks resolve from the shared VM.
//
// Precondition: mgr is non-nil.
// Postcondition: returns a Scaler, or an error naming the directory that failed.
func LoadScripts(mgr *scripting.Manager, dir, globalDir string, instLimit int, logger *zap.Logger) (*Scaler, error) {
	if globalDir != "" {
		if err := mgr.LoadGlobal(globalDir, instLimit); err != nil {
			return nil, fmt.Errorf("loading shared scripts from %q: %w", globalDir, err)
		}
	}
	if dir != "" {
		if err := mgr.LoadDir(ScriptScope, dir, instLimit); err != nil {
			return nil, fmt.Errorf("loading tower scripts from %q: %w", dir, err)
		}
	}
	return NewScaler(mgr, ScriptScope, logger), nil
}

// Scaler applies the scale_opponent hook from one script scope.
// A nil *Scaler, or one without a manager, returns definitions unchanged.
type Scaler struct {
	mgr    *scripting.Manager
	scope  string
	logger *zap.Logger
}

// NewScaler creates a Scaler over scope in mgr. mgr may be nil.
func NewScaler(mgr *scripting.Manager, scope string, logger *zap.Logger) *Scaler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scaler{mgr: mgr, scope: scope, logger: logger}
}

// Opponent returns the floor's opponent after scripting.
//
// Postcondition: traits are clamped to 1-10 and max health is >= 1.
func (s *Scaler) Opponent(f Floor) OpponentDef {
	def := f.Opponent
	if s == nil || s.mgr == nil || !s.mgr.HasHook(s.scope, ScaleHook) {
		return def
	}
	tbl := s.mgr.NewTable(s.scope)
	if tbl == nil {
		return def
	}
	tbl.RawSetString("name", lua.LString(def.Name))
	tbl.RawSetString("max_health", lua.LNumber(def.MaxHealth))
	tbl.RawSetString("aggression", lua.LNumber(def.Traits.Aggression))
	tbl.RawSetString("patience", lua.LNumber(def.Traits.Patience))
	tbl.RawSetString("adaptation_rate", lua.LNumber(def.Traits.AdaptationRate))

	ret, err := s.mgr.CallHook(s.scope, ScaleHook, tbl, lua.LNumber(f.Number))
	if err != nil {
		s.logger.Warn("opponent scaling failed", zap.Int("floor", f.Number), zap.Error(err))
		return def
	}
	out, ok := ret.(*lua.LTable)
	if !ok {
		return def
	}

	scaled := def
	if name, ok := out.RawGetString("name").(lua.LString); ok && name != "" {
		scaled.Name = string(name)
	}
	scaled.MaxHealth = max(1, intField(out, "max_health", def.MaxHealth))
	scaled.Traits.Aggression = intField(out, "aggression", def.Traits.Aggression)
	scaled.Traits.Patience = intField(out, "patience", def.Traits.Patience)
	scaled.Traits.AdaptationRate = intField(out, "adaptation_rate", def.Traits.AdaptationRate)
	scaled.Traits = scaled.Traits.Clamp()

	if scaled != def {
		s.logger.Info("opponent scaled",
			zap.Int("floor", f.Number),
			zap.String("opponent", scaled.Name),
			zap.Int("max_health", scaled.MaxHealth),
			zap.Int("aggression", scaled.Traits.Aggression),
			zap.Int("patience", scaled.Traits.Patience),
			zap.Int("adaptation_rate", scaled.Traits.AdaptationRate),
		)
	}
	return scaled
}

func intField(t *lua.LTable, key string, fallback int) int {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return fallback
}
