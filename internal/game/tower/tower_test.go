package tower_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/tower"
	"github.com/cory-johannsen/outplay/internal/scripting"
)

const twoFloors = `
name: Test Spire
floors:
  - name: Gate
    opponent:
      name: Shadow
      max_health: 50
      traits: {aggression: 5, patience: 5, adaptation_rate: 2}
  - number: 2
    name: Hall
    opponent:
      name: Warden
      max_health: 80
      traits: {aggression: 7, patience: 3, adaptation_rate: 4}
`

func TestLoadFromBytes_Valid(t *testing.T) {
	tw, err := tower.LoadFromBytes([]byte(twoFloors))
	require.NoError(t, err)
	assert.Equal(t, "Test Spire", tw.Name)
	require.Equal(t, 2, tw.Len())
	assert.Equal(t, 1, tw.Floor(0).Number)
	assert.Equal(t, 2, tw.Floor(1).Number)
	assert.Equal(t, combatant.Traits{Aggression: 7, Patience: 3, AdaptationRate: 4}, tw.Floor(1).Opponent.Traits)

	opp := tw.Floor(1).Opponent.Spawn()
	assert.Equal(t, "Warden", opp.Name)
	assert.Equal(t, combatant.Pool{Current: 80, Max: 80}, opp.Health)
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	tests := map[string]string{
		"no floors":    `name: empty`,
		"bad yaml":     `floors: [`,
		"trait range":  "floors:\n  - opponent: {name: X, max_health: 5, traits: {aggression: 11, patience: 5, adaptation_rate: 2}}\n",
		"no name":      "floors:\n  - opponent: {max_health: 5, traits: {aggression: 1, patience: 5, adaptation_rate: 2}}\n",
		"zero health":  "floors:\n  - opponent: {name: X, traits: {aggression: 1, patience: 5, adaptation_rate: 2}}\n",
		"out of order": "floors:\n  - number: 3\n    opponent: {name: X, max_health: 5, traits: {aggression: 1, patience: 5, adaptation_rate: 2}}\n",
	}
	for name, src := range tests {
		_, err := tower.LoadFromBytes([]byte(src))
		assert.Error(t, err, name)
	}
}

func TestLoadFromBytes_Scars(t *testing.T) {
	tw, err := tower.LoadFromBytes([]byte(twoFloors + `
scars:
  physical_trauma: {label: Cracked Skull, stat: Health, amount: 15}
  DEFEAT: {label: Bruised, stat: focus, amount: 1}
`))
	require.NoError(t, err)

	d, stat, ok := tw.Scar(combat.ResultPhysicalTrauma)
	require.True(t, ok, "keys are rekeyed to the canonical result name")
	assert.Equal(t, "Cracked Skull", d.Label)
	assert.Equal(t, combatant.StatHealth, stat)
	assert.Equal(t, 15, d.Amount)

	_, stat, ok = tw.Scar(combat.ResultDefeat)
	require.True(t, ok)
	assert.Equal(t, combatant.StatFocus, stat)

	_, _, ok = tw.Scar(combat.ResultMentalCollapse)
	assert.False(t, ok)
}

func TestLoadFromBytes_InvalidScars(t *testing.T) {
	tests := map[string]string{
		"unknown stat": "scars:\n  DEFEAT: {label: X, stat: luck, amount: 1}\n",
		"risk stat":    "scars:\n  DEFEAT: {label: X, stat: risk, amount: 1}\n",
		"zero amount":  "scars:\n  DEFEAT: {label: X, stat: hp, amount: 0}\n",
		"no label":     "scars:\n  DEFEAT: {stat: hp, amount: 1}\n",
		"victory key":  "scars:\n  VICTORY: {label: X, stat: hp, amount: 1}\n",
		"unknown key":  "scars:\n  STUMBLED: {label: X, stat: hp, amount: 1}\n",
	}
	for name, src := range tests {
		_, err := tower.LoadFromBytes([]byte(twoFloors + src))
		assert.Error(t, err, name)
	}

	_, err := tower.LoadFromBytes([]byte(twoFloors + tests["unknown stat"]))
	var unknown *combatant.UnknownStatError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "luck", unknown.Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tower.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoFloors), 0644))
	tw, err := tower.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tw.Len())

	_, err = tower.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	tw := tower.Default()
	require.NoError(t, tw.Validate())
	assert.Equal(t, 1, tw.Len())
	assert.Equal(t, "Shadow", tw.Floor(0).Opponent.Name)
}

func newScaler(t *testing.T, script string) (*tower.Scaler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(3), logger), logger)
	t.Cleanup(mgr.Close)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scale.lua"), []byte(script), 0644))
	require.NoError(t, mgr.LoadDir("tower", dir, 0))
	return tower.NewScaler(mgr, "tower", logger), logs
}

func TestScaler_NilAndNoHookReturnUnchanged(t *testing.T) {
	f := tower.Default().Floor(0)
	var s *tower.Scaler
	assert.Equal(t, f.Opponent, s.Opponent(f))
	assert.Equal(t, f.Opponent, tower.NewScaler(nil, "tower", nil).Opponent(f))

	noHook, _ := newScaler(t, `-- nothing`)
	assert.Equal(t, f.Opponent, noHook.Opponent(f))
}

func TestScaler_AppliesHookAndClamps(t *testing.T) {
	s, logs := newScaler(t, `
		function scale_opponent(o, floor)
			o.max_health = o.max_health + 10 * floor
			o.aggression = o.aggression + 20
			o.patience = 0
			o.name = o.name .. " +" .. floor
			return o
		end
	`)
	f := tower.Floor{Number: 3, Opponent: tower.Default().Floor(0).Opponent}
	got := s.Opponent(f)
	assert.Equal(t, "Shadow +3", got.Name)
	assert.Equal(t, 80, got.MaxHealth)
	assert.Equal(t, combatant.Traits{Aggression: 10, Patience: 1, AdaptationRate: 2}, got.Traits)
	assert.Equal(t, 1, logs.FilterMessage("opponent scaled").Len())
}

func TestScaler_NonTableReturnKeepsDefinition(t *testing.T) {
	s, _ := newScaler(t, `function scale_opponent(o, floor) return 7 end`)
	f := tower.Default().Floor(0)
	assert.Equal(t, f.Opponent, s.Opponent(f))
}

func TestScaler_ErroringHookKeepsDefinition(t *testing.T) {
	s, _ := newScaler(t, `function scale_opponent(o, floor) error("boom") end`)
	f := tower.Default().Floor(0)
	assert.Equal(t, f.Opponent, s.Opponent(f))
}

func TestProperty_ScaledOpponentAlwaysValid(t *testing.T) {
	s, _ := newScaler(t, `
		function scale_opponent(o, floor)
			o.max_health = o.max_health - 40 * floor
			o.aggression = o.aggression * floor - 30
			o.adaptation_rate = o.adaptation_rate * floor
			return o
		end
	`)
	rapid.Check(t, func(rt *rapid.T) {
		f := tower.Floor{
			Number: rapid.IntRange(1, 20).Draw(rt, "floor"),
			Opponent: tower.OpponentDef{
				Name:      "Shadow",
				MaxHealth: rapid.IntRange(1, 200).Draw(rt, "hp"),
				Traits: combatant.Traits{
					Aggression:     rapid.IntRange(1, 10).Draw(rt, "agg"),
					Patience:       rapid.IntRange(1, 10).Draw(rt, "pat"),
					AdaptationRate: rapid.IntRange(1, 10).Draw(rt, "rate"),
				},
			},
		}
		assert.NoError(rt, s.Opponent(f).Validate())
	})
}

func writeScript(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scale.lua"), []byte(script), 0644))
	return dir
}

func TestLoadScripts_SharedDirAlone(t *testing.T) {
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), nil), zap.NewNop())
	t.Cleanup(mgr.Close)
	shared := writeScript(t, `function scale_opponent(o, floor) o.max_health = 7 return o end`)

	s, err := tower.LoadScripts(mgr, "", shared, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Opponent(tower.Default().Floor(0)).MaxHealth)
}

func TestLoadScripts_TowerDirWinsOverShared(t *testing.T) {
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), nil), zap.NewNop())
	t.Cleanup(mgr.Close)
	shared := writeScript(t, `function scale_opponent(o, floor) o.max_health = 7 return o end`)
	own := writeScript(t, `function scale_opponent(o, floor) o.max_health = 99 return o end`)

	s, err := tower.LoadScripts(mgr, own, shared, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 99, s.Opponent(tower.Default().Floor(0)).MaxHealth)
}

func TestLoadScripts_BadDirectory(t *testing.T) {
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), nil), zap.NewNop())
	t.Cleanup(mgr.Close)
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := tower.LoadScripts(mgr, "", missing, 0, nil)
	assert.ErrorContains(t, err, "shared scripts")
	_, err = tower.LoadScripts(mgr, missing, "", 0, nil)
	assert.ErrorContains(t, err, "tower scripts")
}

func TestShippedContent(t *testing.T) {
	tw, err := tower.LoadFile(filepath.Join("..", "..", "..", "content", "tower.yaml"))
	require.NoError(t, err)
	require.Equal(t, 5, tw.Len())
	assert.Equal(t, "Shadow", tw.Floor(0).Opponent.Name)
	d, stat, ok := tw.Scar(combat.ResultPhysicalTrauma)
	require.True(t, ok)
	assert.Equal(t, "Shattered Ribs", d.Label)
	assert.Equal(t, combatant.StatHealth, stat)
	assert.Len(t, tw.Scars, 4)

	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), nil), zap.NewNop())
	t.Cleanup(mgr.Close)
	s, err := tower.LoadScripts(mgr, filepath.Join("..", "..", "..", "content", "scripts"), "", 0, nil)
	require.NoError(t, err)

	assert.Equal(t, tw.Floor(0).Opponent, s.Opponent(tw.Floor(0)), "first floor is unscaled")

	// Summit: floor 5, +20 hp, adaptation 9 + 2 clamped to 10.
	top := s.Opponent(tw.Floor(4))
	assert.Equal(t, 110, top.MaxHealth)
	assert.Equal(t, 10, top.Traits.AdaptationRate)
	assert.Equal(t, 7, top.Traits.Aggression)
}
