package combat

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/memory"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

// pressureDamage is the uniform [3,7] roll behind a PRESSURE round.
var pressureDamage = dice.Uniform(3, 7)

// State is the resolver's position in the round state machine.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateOver:
		return "over"
	default:
		return "unknown"
	}
}

// Responder is the opponent's decision surface.
type Responder interface {
	ChooseResponse(history *tactic.History) tactic.Action
	AdaptationPenalty(t tactic.Tactic, history *tactic.History) float64
}

// Options tunes an Encounter. The zero value is usable.
type Options struct {
	// ID identifies the encounter in logs; a UUID is generated when empty.
	ID string
	// MemoryCapacity is the decision window size; 0 means memory.DefaultCapacity.
	MemoryCapacity int
	Logger         *zap.Logger
}

// Encounter resolves rounds between one player and one opponent.
// The player record and history are borrowed from the session; the decision
// memory is owned here and discarded with the encounter.
//
// Encounter is not safe for concurrent use: exactly one round resolves at a time.
type Encounter struct {
	id       string
	player   *combatant.Player
	opponent *combatant.Opponent
	history  *tactic.History
	memory   *memory.DecisionMemory
	policy   Responder
	roller   *dice.Roller
	logger   *zap.Logger

	state  State
	round  int
	result Result
}

// NewEncounter creates an Encounter in StateIdle.
//
// Precondition: player, opponent, history, policy and roller are non-nil and
// both combatants have health > 0. The roller should draw from the same
// Source as policy.
// Postcondition: returns a ready Encounter or an error.
func NewEncounter(
	player *combatant.Player,
	opponent *combatant.Opponent,
	history *tactic.History,
	policy Responder,
	roller *dice.Roller,
	opts Options,
) (*Encounter, error) {
	if player == nil || opponent == nil || history == nil || policy == nil || roller == nil {
		return nil, errors.New("combat: encounter requires player, opponent, history, policy and roller")
	}
	capacity := opts.MemoryCapacity
	if capacity == 0 {
		capacity = memory.DefaultCapacity
	}
	mem, err := memory.New(capacity)
	if err != nil {
		return nil, err
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Encounter{
		id:       id,
		player:   player,
		opponent: opponent,
		history:  history,
		memory:   mem,
		policy:   policy,
		roller:   roller,
		logger:   logger.With(zap.String("encounter_id", id)),
	}
	if !player.Alive() || !opponent.Alive() {
		e.state = StateOver
		e.result = e.checkTermination(tactic.Unknown)
	}
	return e, nil
}

// ID returns the encounter identifier.
func (e *Encounter) ID() string { return e.id }

// State returns the current state.
func (e *Encounter) State() State { return e.state }

// Result returns the encounter result, ResultNone while active.
func (e *Encounter) Result() Result { return e.result }

// Round returns the number of rounds resolved so far.
func (e *Encounter) Round() int { return e.round }

// MemoryWindow returns a copy of the decision window, oldest first.
// The window itself stays private to the encounter.
func (e *Encounter) MemoryWindow() []tactic.Tactic { return e.memory.Snapshot() }

// MemoryCapacity returns the decision window size.
func (e *Encounter) MemoryCapacity() int { return e.memory.Capacity() }

// Active reports whether another tactic may be submitted.
func (e *Encounter) Active() bool {
	return e.state != StateOver && e.player.Alive() && e.opponent.Alive()
}

// View is what a Chooser needs to present the next decision.
type View struct {
	EncounterID string
	Round       int
	Player      combatant.PlayerSnapshot
	Opponent    combatant.OpponentSnapshot
	Recent      string
}

// View snapshots the encounter for the next decision.
func (e *Encounter) View() View {
	return View{
		EncounterID: e.id,
		Round:       e.round + 1,
		Player:      e.player.Snapshot(),
		Opponent:    e.opponent.Snapshot(),
		Recent:      e.memory.HistorySummary(),
	}
}

// Abort ends the encounter with ResultExit unless it already has a result.
func (e *Encounter) Abort() Result {
	if e.result == ResultNone {
		e.result = ResultExit
	}
	e.state = StateOver
	return e.result
}

// Submit resolves one full round for tactic t.
//
// Postcondition: on success the returned outcome reflects all stat changes,
// health and focus are within bounds, and State() is StateIdle or StateOver.
func (e *Encounter) Submit(t tactic.Tactic) (RoundOutcome, error) {
	if !t.Valid() {
		return RoundOutcome{}, ErrInvalidTactic
	}
	if e.state == StateOver {
		return RoundOutcome{}, ErrEncounterOver
	}

	e.state = StateResolving
	e.round++
	out := e.resolve(t)

	if e.result = e.checkTermination(t); e.result != ResultNone {
		e.state = StateOver
	} else {
		e.state = StateIdle
	}
	out.Result = e.result
	out.Player = e.player.Snapshot()
	out.Opponent = e.opponent.Snapshot()
	out.Recent = e.memory.HistorySummary()

	e.logger.Debug("round resolved",
		zap.Int("round", out.Round),
		zap.Stringer("tactic", t),
		zap.Stringer("opponent_action", out.OpponentAction),
		zap.String("resolution", string(out.Resolution)),
		zap.Float64("combined_modifier", out.CombinedModifier),
		zap.Int("damage_dealt", out.DamageDealt),
		zap.Int("damage_taken", out.DamageTaken),
		zap.String("player_hp", out.Player.Health.String()),
		zap.String("opponent_hp", out.Opponent.Health.String()),
		zap.Stringer("result", out.Result),
	)
	return out, nil
}

func (e *Encounter) resolve(t tactic.Tactic) RoundOutcome {
	memMod := e.memory.EffectivenessModifier(t)
	enemyMod := e.policy.AdaptationPenalty(t, e.history)
	combined := min(memMod, enemyMod)

	out := RoundOutcome{
		EncounterID:        e.id,
		Round:              e.round,
		Tactic:             t,
		MemoryModifier:     memMod,
		AdaptationModifier: enemyMod,
		CombinedModifier:   combined,
	}

	out.Fatigue = e.apply(e.memory.FatigueTriggers(t)...)
	e.memory.Record(t)
	e.history.Append(t)

	action := e.policy.ChooseResponse(e.history)
	out.OpponentAction = action

	switch t {
	case tactic.Observe:
		gain := scale(2, combined)
		out.InsightGained = gain
		out.Changes = e.apply(
			combatant.Effect{Stat: combatant.StatInsight, Delta: gain},
			combatant.Effect{Stat: combatant.StatRisk, Delta: -5},
		)
		out.Resolution = ResolutionStudied
		if action == tactic.ActionAttack {
			// Exposure grows with risk: 5 * (1 + risk/100), floored.
			dmg := 5 * (100 + e.player.Risk) / 100
			out.DamageTaken = dmg
			out.InsightGained++
			out.Changes = append(out.Changes, e.apply(
				combatant.Effect{Stat: combatant.StatHealth, Delta: -dmg},
				combatant.Effect{Stat: combatant.StatInsight, Delta: 1},
			)...)
			out.Resolution = ResolutionExposurePenalty
		}

	case tactic.Pressure:
		roll := e.roller.Roll(pressureDamage)
		out.PressureRoll = &roll
		out.DamageDealt = scale(roll.Total(), combined)
		e.opponent.ApplyDamage(out.DamageDealt)
		out.Changes = e.apply(
			combatant.Effect{Stat: combatant.StatRisk, Delta: 2},
			combatant.Effect{Stat: combatant.StatFocus, Delta: -1},
		)
		out.Resolution = ResolutionPressured
		if action == tactic.ActionDefend {
			out.Resolution = ResolutionForcedGuard
		}

	case tactic.Bait:
		out.Changes = e.apply(combatant.Effect{Stat: combatant.StatRisk, Delta: 15})
		out.Resolution = ResolutionBaitWhiffed
		if action == tactic.ActionAttack {
			out.DamageDealt = scale(15+e.player.Insight/2, combined)
			e.opponent.ApplyDamage(out.DamageDealt)
			out.Changes = append(out.Changes, e.apply(
				combatant.Effect{Stat: combatant.StatRisk, Delta: -10},
				combatant.Effect{Stat: combatant.StatFocus, Delta: 2},
			)...)
			out.Resolution = ResolutionPerfectCounter
		}

	case tactic.Attack:
		if e.player.Focus.Current < 2 {
			out.Changes = e.apply(combatant.Effect{Stat: combatant.StatFocus, Delta: 1})
			out.Resolution = ResolutionTooExhausted
			break
		}
		dmg := scale(8+e.player.Insight/3, combined)
		out.Resolution = ResolutionStrike
		if action == tactic.ActionDefend {
			dmg /= 2
			out.Resolution = ResolutionBlocked
		}
		out.DamageDealt = dmg
		e.opponent.ApplyDamage(dmg)
		out.Changes = e.apply(
			combatant.Effect{Stat: combatant.StatFocus, Delta: -2},
			combatant.Effect{Stat: combatant.StatRisk, Delta: 5},
		)
	}
	return out
}

// checkTermination decides the result after a round. Opponent defeat wins
// over a simultaneous player defeat.
func (e *Encounter) checkTermination(last tactic.Tactic) Result {
	switch {
	case !e.opponent.Alive():
		return ResultVictory
	case !e.player.Alive():
		return ClassifyDefeat(e.player, last)
	default:
		return ResultNone
	}
}

// apply routes effects through the player's clamped applier. Unknown stats
// are skipped and logged, never fatal.
func (e *Encounter) apply(effects ...combatant.Effect) []combatant.StatChange {
	if len(effects) == 0 {
		return nil
	}
	changes, err := e.player.ApplyEffects(effects...)
	if err != nil {
		e.logger.Warn("skipped stat effect", zap.Error(err))
	}
	return changes
}

// scale multiplies base by mod and floors. The epsilon keeps exact products
// such as 0.7*10 from landing just below the integer.
func scale(base int, mod float64) int {
	return int(math.Floor(float64(base)*mod + 1e-9))
}
