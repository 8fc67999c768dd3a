// Package combatant holds the mutable stat records for the player and the
// opponent of an encounter.
package combatant

import (
	"errors"
	"fmt"
)

// Pool is a bounded resource such as health or focus.
//
// Invariant: 0 <= Current <= Max after every mutation made through Add.
type Pool struct {
	Current int
	Max     int
}

// Full returns a Pool at capacity.
func Full(max int) Pool {
	return Pool{Current: max, Max: max}
}

// Add applies delta and clamps Current into [0, Max].
// Postcondition: returns the delta actually applied.
func (p *Pool) Add(delta int) int {
	before := p.Current
	p.Current = clamp(p.Current+delta, 0, p.Max)
	return p.Current - before
}

// String renders the pool as "cur/max".
func (p Pool) String() string {
	return fmt.Sprintf("%d/%d", p.Current, p.Max)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Player is the player character's stat record. Scars survive across
// encounters within a session; everything else may be restored between them.
type Player struct {
	Name    string
	Health  Pool
	Focus   Pool
	Insight int
	Risk    int
	// Scars lists permanent penalties in the order they were suffered.
	Scars []string
}

// NewPlayer creates a Player at full health and focus with zero risk.
//
// Precondition: maxHealth >= 1; maxFocus >= 1; insight >= 0.
func NewPlayer(name string, maxHealth, maxFocus, insight int) *Player {
	return &Player{
		Name:    name,
		Health:  Full(maxHealth),
		Focus:   Full(maxFocus),
		Insight: insight,
	}
}

// Alive reports whether the player has health remaining.
func (p *Player) Alive() bool { return p.Health.Current > 0 }

// Apply applies a single effect. Unknown stats are not applied.
//
// Postcondition: health and focus are within bounds; risk and insight >= 0.
func (p *Player) Apply(e Effect) (StatChange, error) {
	var applied, value int
	switch e.Stat {
	case StatHealth:
		applied = p.Health.Add(e.Delta)
		value = p.Health.Current
	case StatFocus:
		applied = p.Focus.Add(e.Delta)
		value = p.Focus.Current
	case StatInsight:
		before := p.Insight
		p.Insight = max(0, p.Insight+e.Delta)
		applied, value = p.Insight-before, p.Insight
	case StatRisk:
		before := p.Risk
		p.Risk = max(0, p.Risk+e.Delta)
		applied, value = p.Risk-before, p.Risk
	default:
		return StatChange{}, &UnknownStatError{Name: e.Stat.String()}
	}
	return StatChange{Stat: e.Stat, Delta: e.Delta, Applied: applied, Value: value}, nil
}

// ApplyEffects applies effects in order. Entries naming an unknown stat are
// skipped; the remaining entries are still applied.
//
// Postcondition: returns one StatChange per applied effect and, if any entry
// was skipped, the joined *UnknownStatError values.
func (p *Player) ApplyEffects(effects ...Effect) ([]StatChange, error) {
	changes := make([]StatChange, 0, len(effects))
	var errs []error
	for _, e := range effects {
		c, err := p.Apply(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		changes = append(changes, c)
	}
	return changes, errors.Join(errs...)
}

// AddScar permanently lowers the max of health or focus by amount, never
// below 1, and records label.
//
// Precondition: amount >= 0.
// Postcondition: Current is clamped to the new Max; label is appended to Scars.
func (p *Player) AddScar(label string, stat Stat, amount int) error {
	var pool *Pool
	switch stat {
	case StatHealth:
		pool = &p.Health
	case StatFocus:
		pool = &p.Focus
	default:
		return fmt.Errorf("scar %q: stat %s has no maximum", label, stat)
	}
	pool.Max = max(1, pool.Max-amount)
	pool.Current = clamp(pool.Current, 0, pool.Max)
	p.Scars = append(p.Scars, label)
	return nil
}

// Recover restores health and focus to their maxima and clears risk.
// Insight and scars carry over.
func (p *Player) Recover() {
	p.Health.Current = p.Health.Max
	p.Focus.Current = p.Focus.Max
	p.Risk = 0
}

// PlayerSnapshot is an immutable copy of a Player's stats.
type PlayerSnapshot struct {
	Name    string
	Health  Pool
	Focus   Pool
	Insight int
	Risk    int
	Scars   []string
}

// Snapshot copies the player's current stats.
func (p *Player) Snapshot() PlayerSnapshot {
	scars := make([]string, len(p.Scars))
	copy(scars, p.Scars)
	return PlayerSnapshot{
		Name:    p.Name,
		Health:  p.Health,
		Focus:   p.Focus,
		Insight: p.Insight,
		Risk:    p.Risk,
		Scars:   scars,
	}
}

// Traits are the opponent's fixed behavioral dials, each on a 1–10 scale.
type Traits struct {
	Aggression     int `yaml:"aggression"`
	Patience       int `yaml:"patience"`
	AdaptationRate int `yaml:"adaptation_rate"`
}

// Clamp returns t with every trait forced into [1, 10].
func (t Traits) Clamp() Traits {
	return Traits{
		Aggression:     clamp(t.Aggression, 1, 10),
		Patience:       clamp(t.Patience, 1, 10),
		AdaptationRate: clamp(t.AdaptationRate, 1, 10),
	}
}

// Validate reports traits outside [1, 10].
func (t Traits) Validate() error {
	if t.Aggression < 1 || t.Aggression > 10 {
		return fmt.Errorf("aggression must be 1-10, got %d", t.Aggression)
	}
	if t.Patience < 1 || t.Patience > 10 {
		return fmt.Errorf("patience must be 1-10, got %d", t.Patience)
	}
	if t.AdaptationRate < 1 || t.AdaptationRate > 10 {
		return fmt.Errorf("adaptation_rate must be 1-10, got %d", t.AdaptationRate)
	}
	return nil
}

// Opponent is the adaptive enemy's stat record. It has no focus resource and
// its traits never change during an encounter.
type Opponent struct {
	Name   string
	Health Pool
	Traits Traits
}

// NewOpponent creates an Opponent at full health.
//
// Precondition: maxHealth >= 1.
func NewOpponent(name string, maxHealth int, traits Traits) *Opponent {
	return &Opponent{Name: name, Health: Full(maxHealth), Traits: traits}
}

// Alive reports whether the opponent has health remaining.
func (o *Opponent) Alive() bool { return o.Health.Current > 0 }

// ApplyDamage reduces health by amount, flooring at zero.
// Precondition: amount >= 0.
// Postcondition: returns the damage actually dealt.
func (o *Opponent) ApplyDamage(amount int) int {
	return -o.Health.Add(-amount)
}

// OpponentSnapshot is an immutable copy of an Opponent's stats.
type OpponentSnapshot struct {
	Name   string
	Health Pool
	Traits Traits
}

// Snapshot copies the opponent's current stats.
func (o *Opponent) Snapshot() OpponentSnapshot {
	return OpponentSnapshot{Name: o.Name, Health: o.Health, Traits: o.Traits}
}
