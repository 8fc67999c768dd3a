// Package memory implements the short-term decision window that penalizes
// repetitive play and produces fatigue effects.
package memory

import (
	"errors"
	"strings"

	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

// DefaultCapacity is the window size used when none is configured.
const DefaultCapacity = 5

// MinModifier is the lowest value EffectivenessModifier can return.
const MinModifier = 0.3

// ErrInvalidCapacity is returned by New when capacity < 1.
var ErrInvalidCapacity = errors.New("memory: capacity must be >= 1")

// DecisionMemory is a fixed-capacity FIFO of the player's most recent tactics.
// It belongs to a single encounter.
//
// Invariant: Len() <= Capacity() at all times.
type DecisionMemory struct {
	buf   []tactic.Tactic
	start int
	size  int
}

// New creates an empty DecisionMemory.
//
// Precondition: capacity >= 1.
// Postcondition: returns a memory with Len() == 0, or ErrInvalidCapacity.
func New(capacity int) (*DecisionMemory, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &DecisionMemory{buf: make([]tactic.Tactic, capacity)}, nil
}

// Capacity returns the window size.
func (m *DecisionMemory) Capacity() int { return len(m.buf) }

// Len returns the number of tactics currently held.
func (m *DecisionMemory) Len() int { return m.size }

// Record appends t, evicting the oldest entry when the window is full.
func (m *DecisionMemory) Record(t tactic.Tactic) {
	if m.size < len(m.buf) {
		m.buf[(m.start+m.size)%len(m.buf)] = t
		m.size++
		return
	}
	m.buf[m.start] = t
	m.start = (m.start + 1) % len(m.buf)
}

// Snapshot returns the window contents, oldest first.
func (m *DecisionMemory) Snapshot() []tactic.Tactic {
	out := make([]tactic.Tactic, m.size)
	for i := range out {
		out[i] = m.buf[(m.start+i)%len(m.buf)]
	}
	return out
}

// Count returns how many times t appears in the window.
func (m *DecisionMemory) Count(t tactic.Tactic) int {
	n := 0
	for i := 0; i < m.size; i++ {
		if m.buf[(m.start+i)%len(m.buf)] == t {
			n++
		}
	}
	return n
}

// EffectivenessModifier returns the predictability multiplier for t.
//
// Postcondition: result is in [MinModifier, 1.0] and is 1.0 when t appears
// at most once in the window.
func (m *DecisionMemory) EffectivenessModifier(t tactic.Tactic) float64 {
	var penalty float64
	switch n := m.Count(t); {
	case n >= 4:
		penalty = 0.5
	case n == 3:
		penalty = 0.3
	case n == 2:
		penalty = 0.1
	}
	return max(MinModifier, 1.0-penalty)
}

// FatigueTriggers returns the stat penalties for overusing t. Only OBSERVE
// (focus) and ATTACK (risk) fatigue, and only once t appears twice.
// The caller decides whether to apply them.
func (m *DecisionMemory) FatigueTriggers(t tactic.Tactic) []combatant.Effect {
	n := m.Count(t)
	if n < 2 {
		return nil
	}
	switch t {
	case tactic.Observe:
		return []combatant.Effect{{Stat: combatant.StatFocus, Delta: -n}}
	case tactic.Attack:
		return []combatant.Effect{{Stat: combatant.StatRisk, Delta: n * 5}}
	}
	return nil
}

// HistorySummary renders the window oldest to newest, e.g.
// "OBSERVE -> ATTACK -> BAIT".
func (m *DecisionMemory) HistorySummary() string {
	parts := make([]string, 0, m.size)
	for _, t := range m.Snapshot() {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " -> ")
}
