package session

import (
	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
)

// Scar is a permanent max-stat penalty earned by losing an encounter.
type Scar struct {
	Label  string
	Stat   combatant.Stat
	Amount int
}

var scars = map[combat.Result]Scar{
	combat.ResultPhysicalTrauma:  {Label: "Shattered Ribs", Stat: combatant.StatHealth, Amount: 10},
	combat.ResultMentalCollapse:  {Label: "Fractured Mind", Stat: combatant.StatFocus, Amount: 2},
	combat.ResultEscapedCowardly: {Label: "Coward's Mark", Stat: combatant.StatFocus, Amount: 1},
	combat.ResultDefeat:          {Label: "Battered", Stat: combatant.StatHealth, Amount: 5},
}

// ScarFor returns the built-in scar a result inflicts. Only defeats scar.
func ScarFor(r combat.Result) (Scar, bool) {
	s, ok := scars[r]
	return s, ok
}

// Apply lowers the scarred maximum on p and appends the label.
//
// Postcondition: the affected maximum is >= 1.
func (s Scar) Apply(p *combatant.Player) error {
	return p.AddScar(s.Label, s.Stat, s.Amount)
}

// scarFor prefers the tower's scar table over the built-in one.
func (s *Session) scarFor(res combat.Result) (Scar, bool) {
	if d, stat, ok := s.tower.Scar(res); ok {
		return Scar{Label: d.Label, Stat: stat, Amount: d.Amount}, true
	}
	return ScarFor(res)
}
