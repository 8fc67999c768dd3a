// Package opponent implements the adaptive opponent: a weighted-random
// response selector that shifts its weights toward countering the player's
// most frequent recent tactic.
package opponent

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

// Window is how many of the newest history entries the opponent studies.
const Window = 5

// MinAdaptationModifier is the floor of AdaptationPenalty.
const MinAdaptationModifier = 0.4

// Weights holds the sampling weight of each response in tenths, indexed by
// tactic.Action. Tenths keep the fractional adaptation shifts exact.
type Weights [4]int

// Total returns the sum of all weights.
func (w Weights) Total() int {
	return w[tactic.ActionAttack] + w[tactic.ActionDefend] + w[tactic.ActionWait] + w[tactic.ActionCounter]
}

// Policy selects opponent responses. Traits are fixed for its lifetime.
type Policy struct {
	traits combatant.Traits
	src    dice.Source
	logger *zap.Logger
}

// NewPolicy creates a Policy drawing randomness from src.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewPolicy(traits combatant.Traits, src dice.Source, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{traits: traits, src: src, logger: logger}
}

// Traits returns the policy's traits.
func (p *Policy) Traits() combatant.Traits { return p.traits }

// Weights computes the response weights for the given history.
//
// Base weights are ATTACK=aggression, DEFEND=patience,
// WAIT=max(1, 10-aggression), COUNTER=0. The most frequent tactic among the
// newest Window entries then shifts them by adaptation rate.
//
// Postcondition: every weight is >= 0 and Total() > 0.
func (p *Policy) Weights(history *tactic.History) Weights {
	rate := p.traits.AdaptationRate
	var w Weights
	w[tactic.ActionAttack] = p.traits.Aggression * 10
	w[tactic.ActionDefend] = p.traits.Patience * 10
	w[tactic.ActionWait] = max(1, 10-p.traits.Aggression) * 10

	if history != nil {
		if dominant, freq, ok := tactic.MostFrequent(history.Recent(Window)); ok {
			switch dominant {
			case tactic.Attack:
				w[tactic.ActionDefend] += rate * freq * 10
				w[tactic.ActionCounter] += rate * (freq - 1) * 10
			case tactic.Pressure:
				w[tactic.ActionAttack] += rate * 15
			case tactic.Bait:
				w[tactic.ActionWait] += rate * 20
				w[tactic.ActionDefend] += rate * 10
			case tactic.Observe:
				w[tactic.ActionAttack] += rate * 12
			}
		}
	}

	for i := range w {
		w[i] = max(0, w[i])
	}
	return w
}

// ChooseResponse samples one response proportionally to Weights(history).
func (p *Policy) ChooseResponse(history *tactic.History) tactic.Action {
	w := p.Weights(history)
	roll := p.src.Intn(w.Total())
	chosen := tactic.ActionWait
	for _, a := range tactic.Actions {
		if roll < w[a] {
			chosen = a
			break
		}
		roll -= w[a]
	}
	p.logger.Debug("opponent response",
		zap.Ints("weights", w[:]),
		zap.Stringer("action", chosen),
	)
	return chosen
}

// AdaptationPenalty returns how well the opponent has learned to read t:
// max(0.4, 1 - occurrences*rate/20) over the newest Window history entries.
//
// Postcondition: result is in [MinAdaptationModifier, 1.0].
func (p *Policy) AdaptationPenalty(t tactic.Tactic, history *tactic.History) float64 {
	if history == nil {
		return 1.0
	}
	occurrences := tactic.Count(history.Recent(Window), t)
	penalty := float64(occurrences*p.traits.AdaptationRate) / 20.0
	mod := max(MinAdaptationModifier, 1.0-penalty)
	if mod < 1.0 {
		p.logger.Debug("opponent anticipates tactic",
			zap.Stringer("tactic", t),
			zap.Int("occurrences", occurrences),
			zap.Float64("modifier", mod),
		)
	}
	return mod
}
