// Package tactic defines the player's tactic vocabulary, the opponent's
// response vocabulary, and the session-wide player history.
package tactic

import (
	"fmt"
	"strings"
)

// Tactic is one of the player's four combat choices.
// The zero value (Unknown) is intentionally invalid.
type Tactic int

const (
	Unknown Tactic = iota // zero value; intentionally invalid
	Observe
	Pressure
	Bait
	Attack
)

// All lists the valid tactics in menu order.
var All = []Tactic{Observe, Pressure, Bait, Attack}

// String returns the upper-case tag for t.
// Postcondition: returns "OBSERVE", "PRESSURE", "BAIT", "ATTACK", or "UNKNOWN".
func (t Tactic) String() string {
	switch t {
	case Observe:
		return "OBSERVE"
	case Pressure:
		return "PRESSURE"
	case Bait:
		return "BAIT"
	case Attack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the four playable tactics.
func (t Tactic) Valid() bool {
	return t >= Observe && t <= Attack
}

// ParseError is returned by Parse when the input names no tactic.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid tactic %q", e.Input)
}

// Parse maps a menu number ("1".."4") or a tactic name (case-insensitive)
// to a Tactic.
//
// Postcondition: returns a valid Tactic, or a *ParseError.
func Parse(s string) (Tactic, error) {
	in := strings.ToUpper(strings.TrimSpace(s))
	switch in {
	case "1", "OBSERVE":
		return Observe, nil
	case "2", "PRESSURE":
		return Pressure, nil
	case "3", "BAIT":
		return Bait, nil
	case "4", "ATTACK":
		return Attack, nil
	}
	return Unknown, &ParseError{Input: s}
}

// Action is one of the opponent's four responses.
type Action int

const (
	ActionAttack Action = iota
	ActionDefend
	ActionWait
	ActionCounter
)

// Actions lists the opponent responses in sampling order.
var Actions = []Action{ActionAttack, ActionDefend, ActionWait, ActionCounter}

func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "ATTACK"
	case ActionDefend:
		return "DEFEND"
	case ActionWait:
		return "WAIT"
	case ActionCounter:
		return "COUNTER"
	default:
		return "UNKNOWN"
	}
}

// MostFrequent returns the tactic occurring most often in ts and its count.
// Ties go to the tactic whose first occurrence in ts is earliest.
//
// Postcondition: ok is false iff ts is empty.
func MostFrequent(ts []Tactic) (best Tactic, count int, ok bool) {
	counts := make(map[Tactic]int, len(All))
	for _, t := range ts {
		counts[t]++
	}
	for _, t := range ts {
		if c := counts[t]; c > count {
			best, count, ok = t, c, true
		}
	}
	return best, count, ok
}

// Count returns the number of occurrences of t in ts.
func Count(ts []Tactic, t Tactic) int {
	n := 0
	for _, x := range ts {
		if x == t {
			n++
		}
	}
	return n
}
