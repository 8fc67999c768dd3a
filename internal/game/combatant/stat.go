package combatant

import (
	"fmt"
	"strings"
)

// Stat identifies a mutable player statistic.
// The zero value (StatUnknown) is intentionally invalid.
type Stat int

const (
	StatUnknown Stat = iota // zero value; intentionally invalid
	StatHealth
	StatFocus
	StatInsight
	StatRisk
)

// String returns the lower-case stat name used in effect maps and messages.
func (s Stat) String() string {
	switch s {
	case StatHealth:
		return "hp"
	case StatFocus:
		return "focus"
	case StatInsight:
		return "insight"
	case StatRisk:
		return "risk"
	default:
		return "unknown"
	}
}

// Valid reports whether s names a real stat.
func (s Stat) Valid() bool {
	return s >= StatHealth && s <= StatRisk
}

// UnknownStatError reports an effect naming a stat the player does not have.
type UnknownStatError struct {
	Name string
}

func (e *UnknownStatError) Error() string {
	return fmt.Sprintf("unknown stat %q", e.Name)
}

// ParseStat maps an externally supplied stat name to a Stat.
//
// Postcondition: returns a valid Stat, or a *UnknownStatError.
func ParseStat(name string) (Stat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hp", "health":
		return StatHealth, nil
	case "focus":
		return StatFocus, nil
	case "insight":
		return StatInsight, nil
	case "risk":
		return StatRisk, nil
	}
	return StatUnknown, &UnknownStatError{Name: name}
}

// Effect is a signed change to one stat.
type Effect struct {
	Stat  Stat
	Delta int
}

// StatChange records the result of applying one Effect.
//
// Invariant: Applied is the delta actually applied after clamping; Value is
// the stat's value afterwards.
type StatChange struct {
	Stat    Stat
	Delta   int
	Applied int
	Value   int
}

// String renders the requested delta, e.g. "FOCUS: -2".
func (c StatChange) String() string {
	return fmt.Sprintf("%s: %+d", strings.ToUpper(c.Stat.String()), c.Delta)
}
