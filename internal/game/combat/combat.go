// Package combat implements the round resolver and encounter controller:
// one player tactic in, one fully resolved round out.
package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

// ErrInvalidTactic is returned by Submit for a tactic outside the playable four.
var ErrInvalidTactic = errors.New("combat: invalid tactic")

// ErrEncounterOver is returned by Submit once the encounter has a result.
var ErrEncounterOver = errors.New("combat: encounter is over")

// ErrAbort is returned by a Chooser to end the encounter with ResultExit.
var ErrAbort = errors.New("combat: encounter aborted")

// Result is how an encounter ended. The zero value (ResultNone) means the
// encounter is still running.
type Result int

const (
	ResultNone Result = iota
	ResultVictory
	ResultPhysicalTrauma
	ResultMentalCollapse
	ResultEscapedCowardly
	ResultDefeat
	ResultExit
)

// String returns the upper-case result tag.
func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "VICTORY"
	case ResultPhysicalTrauma:
		return "PHYSICAL_TRAUMA"
	case ResultMentalCollapse:
		return "MENTAL_COLLAPSE"
	case ResultEscapedCowardly:
		return "ESCAPED_COWARDLY"
	case ResultDefeat:
		return "DEFEAT"
	case ResultExit:
		return "EXIT"
	default:
		return "NONE"
	}
}

// ParseResult maps a result name, as String prints it, back to a Result.
// Matching ignores case and surrounding space.
func ParseResult(name string) (Result, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for r := ResultVictory; r <= ResultExit; r++ {
		if r.String() == want {
			return r, nil
		}
	}
	return ResultNone, fmt.Errorf("combat: unknown result %q", name)
}

// IsDefeat reports whether r is one of the four defeat classifications.
func (r Result) IsDefeat() bool {
	switch r {
	case ResultPhysicalTrauma, ResultMentalCollapse, ResultEscapedCowardly, ResultDefeat:
		return true
	}
	return false
}

// ClassifyDefeat names how the player lost. Checked in priority order:
// risk > 50, then focus <= 2, then a final OBSERVE, else a plain defeat.
//
// Precondition: the player's health has just reached zero.
func ClassifyDefeat(p *combatant.Player, last tactic.Tactic) Result {
	switch {
	case p.Risk > 50:
		return ResultPhysicalTrauma
	case p.Focus.Current <= 2:
		return ResultMentalCollapse
	case last == tactic.Observe:
		return ResultEscapedCowardly
	default:
		return ResultDefeat
	}
}
