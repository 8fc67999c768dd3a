package combat

import (
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

// Resolution tags which branch of the round resolved and how.
type Resolution string

const (
	ResolutionStudied         Resolution = "studied"
	ResolutionExposurePenalty Resolution = "exposure_penalty"
	ResolutionPressured       Resolution = "pressured"
	ResolutionForcedGuard     Resolution = "forced_guard"
	ResolutionPerfectCounter  Resolution = "perfect_counter"
	ResolutionBaitWhiffed     Resolution = "bait_whiffed"
	ResolutionStrike          Resolution = "strike"
	ResolutionBlocked         Resolution = "blocked"
	ResolutionTooExhausted    Resolution = "too_exhausted"
)

// RoundOutcome is the structured log of one resolved round.
type RoundOutcome struct {
	EncounterID string
	Round       int
	Tactic      tactic.Tactic

	// MemoryModifier and AdaptationModifier are both computed before the
	// tactic is recorded; CombinedModifier is their minimum.
	MemoryModifier     float64
	AdaptationModifier float64
	CombinedModifier   float64

	// Fatigue holds the overuse penalties applied before resolution.
	Fatigue []combatant.StatChange

	OpponentAction tactic.Action
	Resolution     Resolution

	// DamageDealt is the damage computed against the opponent this round.
	DamageDealt int
	// DamageTaken is the damage computed against the player this round.
	DamageTaken int
	// InsightGained counts all insight earned this round.
	InsightGained int
	// PressureRoll is set only for PRESSURE rounds.
	PressureRoll *dice.RollResult

	// Changes holds every player stat change from the resolution step.
	Changes []combatant.StatChange

	Player   combatant.PlayerSnapshot
	Opponent combatant.OpponentSnapshot
	// Recent renders the decision memory after this round, oldest first.
	Recent string
	// Result is ResultNone while the encounter continues.
	Result Result
}

// Predictable reports whether the decision memory penalized this round.
func (o RoundOutcome) Predictable() bool { return o.MemoryModifier < 1.0 }

// Anticipated reports whether the opponent's adaptation penalized this round.
func (o RoundOutcome) Anticipated() bool { return o.AdaptationModifier < 1.0 }
