package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/session"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
	"github.com/cory-johannsen/outplay/internal/game/tower"
)

// fixedSrc returns 0 for every draw: the opponent always attacks and every
// die shows 1.
type fixedSrc struct{}

func (fixedSrc) Intn(_ int) int { return 0 }

// sequence plays ts in order, then repeats fallback forever.
func sequence(fallback tactic.Tactic, ts ...tactic.Tactic) combat.ChooserFunc {
	i := 0
	return func(context.Context, combat.View) (tactic.Tactic, error) {
		if i < len(ts) {
			i++
			return ts[i-1], nil
		}
		return fallback, nil
	}
}

func weakTower(floors int) *tower.Tower {
	tw := &tower.Tower{Name: "Test"}
	for i := 0; i < floors; i++ {
		tw.Floors = append(tw.Floors, tower.Floor{
			Number: i + 1,
			Opponent: tower.OpponentDef{
				Name:      "Shade",
				MaxHealth: 10,
				Traits:    combatant.Traits{Aggression: 5, Patience: 5, AdaptationRate: 2},
			},
		})
	}
	return tw
}

type recorder struct {
	started []string
	ended   []combat.Result
	scars   []string
}

func (r *recorder) EncounterStarted(_ tower.Floor, opp combatant.OpponentSnapshot) {
	r.started = append(r.started, opp.Name)
}

func (r *recorder) EncounterEnded(_ tower.Floor, res combat.Result, scar string) {
	r.ended = append(r.ended, res)
	r.scars = append(r.scars, scar)
}

func newSession(t *testing.T, p *combatant.Player, tw *tower.Tower, chooser combat.Chooser, opts session.Options) *session.Session {
	t.Helper()
	s, err := session.New(p, tw, dice.NewLoggedRoller(fixedSrc{}, nil), &combat.Controller{Chooser: chooser}, opts)
	require.NoError(t, err)
	return s
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRun_ClearsTower(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, combatant.NewPlayer("Tester", 100, 10, 0), weakTower(2), sequence(tactic.Bait),
		session.Options{Reporter: rec, Now: func() time.Time { return fixedNow }})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, session.EndingTowerCleared, sum.EndingType)
	assert.Equal(t, 2, sum.Fights)
	assert.Equal(t, 2, sum.FloorsCleared)
	assert.Equal(t, "BAIT", sum.DominantDecision)
	assert.Equal(t, "100/100", sum.FinalHP)
	assert.Empty(t, sum.Scars)
	assert.Equal(t, "Tester", sum.PlayerName)
	assert.Equal(t, s.ID(), sum.SessionID)
	assert.Equal(t, fixedNow, sum.RecordedAt)

	assert.Equal(t, []string{"Shade", "Shade"}, rec.started)
	assert.Equal(t, []combat.Result{combat.ResultVictory, combat.ResultVictory}, rec.ended)
	assert.Equal(t, []combat.Result{combat.ResultVictory, combat.ResultVictory}, s.Results())
}

func TestRun_DefeatsScarAndStopAtLimit(t *testing.T) {
	rec := &recorder{}
	p := combatant.NewPlayer("Tester", 3, 10, 0)
	s := newSession(t, p, weakTower(1), sequence(tactic.Observe), session.Options{MaxDefeats: 2, Reporter: rec})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Fights)
	assert.Equal(t, "ESCAPED_COWARDLY", sum.EndingType)
	assert.Equal(t, 0, sum.FloorsCleared)
	assert.Equal(t, "0/3", sum.FinalHP)
	assert.Equal(t, []string{"Coward's Mark", "Coward's Mark"}, sum.Scars)
	assert.Equal(t, 8, p.Focus.Max)
	assert.Equal(t, "OBSERVE", sum.DominantDecision)
	assert.Equal(t, []string{"Coward's Mark", "Coward's Mark"}, rec.scars)
}

func TestRun_TowerScarTableOverridesBuiltIn(t *testing.T) {
	p := combatant.NewPlayer("Tester", 3, 10, 0)
	tw := weakTower(1)
	tw.Scars = map[string]tower.ScarDef{
		"ESCAPED_COWARDLY": {Label: "Broken Nerve", Stat: "hp", Amount: 1},
	}
	require.NoError(t, tw.Validate())
	s := newSession(t, p, tw, sequence(tactic.Observe), session.Options{MaxDefeats: 1})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ESCAPED_COWARDLY", sum.EndingType)
	assert.Equal(t, []string{"Broken Nerve"}, sum.Scars)
	assert.Equal(t, 2, p.Health.Max)
	assert.Equal(t, 10, p.Focus.Max, "the built-in focus scar is not applied")
}

func TestRun_DefeatThenRecoverAndWin(t *testing.T) {
	// Observe first (5 exposure damage kills a 5 hp player), then bait wins.
	p := combatant.NewPlayer("Tester", 5, 10, 0)
	s := newSession(t, p, weakTower(1), sequence(tactic.Bait, tactic.Observe), session.Options{})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []combat.Result{combat.ResultEscapedCowardly, combat.ResultVictory}, s.Results())
	assert.Equal(t, session.EndingTowerCleared, sum.EndingType)
	assert.Equal(t, "5/5", sum.FinalHP)
	assert.Equal(t, []string{"Coward's Mark"}, sum.Scars)
	assert.Equal(t, 5, p.Risk, "recovery reset risk before the second fight; bait nets +5")
}

func TestRun_ExitStopsImmediately(t *testing.T) {
	chooser := combat.ChooserFunc(func(context.Context, combat.View) (tactic.Tactic, error) {
		return tactic.Unknown, combat.ErrAbort
	})
	s := newSession(t, combatant.NewPlayer("Tester", 100, 10, 0), weakTower(3), chooser, session.Options{})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EXIT", sum.EndingType)
	assert.Equal(t, 1, sum.Fights)
	assert.Equal(t, "NONE", sum.DominantDecision)
	assert.Empty(t, sum.Scars)
}

func TestRun_CancelledContextExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newSession(t, combatant.NewPlayer("Tester", 100, 10, 0), weakTower(2), sequence(tactic.Bait), session.Options{})

	sum, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EXIT", sum.EndingType)
	assert.Equal(t, 0, sum.FloorsCleared)
}

func TestDominantDecision_TieGoesToFirstChosen(t *testing.T) {
	// Attack (8) leaves the 10 hp shade at 2, bait (15) finishes it.
	s := newSession(t, combatant.NewPlayer("Tester", 100, 10, 0), weakTower(1),
		sequence(tactic.Bait, tactic.Attack, tactic.Bait), session.Options{})

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []tactic.Tactic{tactic.Attack, tactic.Bait}, s.History().Recent(s.History().Len()))
	assert.Equal(t, "ATTACK", s.DominantDecision())
}

func TestFight_LogsScar(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := combatant.NewPlayer("Tester", 1, 10, 0)
	s := newSession(t, p, weakTower(1), sequence(tactic.Observe), session.Options{Logger: zap.New(core)})

	res, err := s.Fight(context.Background(), weakTower(1).Floor(0))
	require.NoError(t, err)
	assert.Equal(t, combat.ResultEscapedCowardly, res)
	assert.Equal(t, 1, s.Fights())
	entries := logs.FilterMessage("scar inflicted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Coward's Mark", entries[0].ContextMap()["scar"])
}

func TestNew_Validation(t *testing.T) {
	ctrl := &combat.Controller{Chooser: sequence(tactic.Bait)}
	roller := dice.NewLoggedRoller(fixedSrc{}, nil)
	_, err := session.New(nil, weakTower(1), roller, ctrl, session.Options{})
	assert.Error(t, err)
	_, err = session.New(combatant.NewPlayer("T", 1, 1, 0), &tower.Tower{}, roller, ctrl, session.Options{})
	assert.Error(t, err)
}

func TestScarFor(t *testing.T) {
	tests := []struct {
		res    combat.Result
		label  string
		stat   combatant.Stat
		amount int
	}{
		{combat.ResultPhysicalTrauma, "Shattered Ribs", combatant.StatHealth, 10},
		{combat.ResultMentalCollapse, "Fractured Mind", combatant.StatFocus, 2},
		{combat.ResultEscapedCowardly, "Coward's Mark", combatant.StatFocus, 1},
		{combat.ResultDefeat, "Battered", combatant.StatHealth, 5},
	}
	for _, tc := range tests {
		scar, ok := session.ScarFor(tc.res)
		require.True(t, ok, tc.res.String())
		assert.Equal(t, session.Scar{Label: tc.label, Stat: tc.stat, Amount: tc.amount}, scar)
	}
	for _, r := range []combat.Result{combat.ResultNone, combat.ResultVictory, combat.ResultExit} {
		_, ok := session.ScarFor(r)
		assert.False(t, ok, r.String())
	}
}

func TestProperty_ScarsNeverDropMaxBelowOne(t *testing.T) {
	defeats := []combat.Result{
		combat.ResultPhysicalTrauma, combat.ResultMentalCollapse,
		combat.ResultEscapedCowardly, combat.ResultDefeat,
	}
	rapid.Check(t, func(rt *rapid.T) {
		p := combatant.NewPlayer("T", rapid.IntRange(1, 100).Draw(rt, "hp"), rapid.IntRange(1, 10).Draw(rt, "focus"), 0)
		n := rapid.IntRange(1, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			scar, _ := session.ScarFor(rapid.SampledFrom(defeats).Draw(rt, "result"))
			require.NoError(rt, scar.Apply(p))
			assert.GreaterOrEqual(rt, p.Health.Max, 1)
			assert.GreaterOrEqual(rt, p.Focus.Max, 1)
			assert.LessOrEqual(rt, p.Health.Current, p.Health.Max)
			assert.LessOrEqual(rt, p.Focus.Current, p.Focus.Max)
		}
		assert.Len(rt, p.Scars, n)
	})
}
