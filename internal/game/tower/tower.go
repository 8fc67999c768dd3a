// Package tower loads the floor ladder a session climbs: one opponent per
// floor, read from YAML and optionally rescaled by a Lua hook.
package tower

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
)

// OpponentDef describes the opponent guarding a floor.
type OpponentDef struct {
	Name      string           `yaml:"name"`
	MaxHealth int              `yaml:"max_health"`
	Traits    combatant.Traits `yaml:"traits"`
}

// Validate checks that the definition can build an opponent.
func (d OpponentDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("opponent name must not be empty")
	}
	if d.MaxHealth < 1 {
		return fmt.Errorf("opponent %q: max_health must be >= 1", d.Name)
	}
	if err := d.Traits.Validate(); err != nil {
		return fmt.Errorf("opponent %q: %w", d.Name, err)
	}
	return nil
}

// Spawn builds a fresh opponent at full health.
func (d OpponentDef) Spawn() *combatant.Opponent {
	return combatant.NewOpponent(d.Name, d.MaxHealth, d.Traits)
}

// Floor is one rung of the tower.
type Floor struct {
	// Number is 1-based; zero in YAML means "position in the list".
	Number   int         `yaml:"number"`
	Name     string      `yaml:"name"`
	Opponent OpponentDef `yaml:"opponent"`
}

// ScarDef is the scar one defeat class inflicts. Stat is a name accepted
// by combatant.ParseStat.
type ScarDef struct {
	Label  string `yaml:"label"`
	Stat   string `yaml:"stat"`
	Amount int    `yaml:"amount"`
}

// Validate checks the definition and returns its parsed stat.
func (d ScarDef) Validate() (combatant.Stat, error) {
	if d.Label == "" {
		return combatant.StatUnknown, fmt.Errorf("scar label must not be empty")
	}
	if d.Amount < 1 {
		return combatant.StatUnknown, fmt.Errorf("scar %q: amount must be >= 1", d.Label)
	}
	stat, err := combatant.ParseStat(d.Stat)
	if err != nil {
		return combatant.StatUnknown, fmt.Errorf("scar %q: %w", d.Label, err)
	}
	if stat != combatant.StatHealth && stat != combatant.StatFocus {
		return combatant.StatUnknown, fmt.Errorf("scar %q: only hp or focus can be scarred, got %s", d.Label, stat)
	}
	return stat, nil
}

// Tower is the ordered floor list. Scars, keyed by defeat result name,
// overrides the built-in scar for that defeat.
type Tower struct {
	Name   string             `yaml:"name"`
	Floors []Floor            `yaml:"floors"`
	Scars  map[string]ScarDef `yaml:"scars"`
}

// Len returns the number of floors.
func (t *Tower) Len() int { return len(t.Floors) }

// Floor returns the floor at 0-based index i.
//
// Precondition: 0 <= i < Len().
func (t *Tower) Floor(i int) Floor { return t.Floors[i] }

// Validate checks every floor and scar, fills in missing floor numbers and
// rekeys Scars by canonical result name.
//
// Postcondition: on nil error every Floor.Number equals its position + 1.
func (t *Tower) Validate() error {
	if len(t.Floors) == 0 {
		return fmt.Errorf("tower %q: at least one floor is required", t.Name)
	}
	for i := range t.Floors {
		f := &t.Floors[i]
		if f.Number == 0 {
			f.Number = i + 1
		}
		if f.Number != i+1 {
			return fmt.Errorf("tower %q: floor at position %d is numbered %d", t.Name, i+1, f.Number)
		}
		if err := f.Opponent.Validate(); err != nil {
			return fmt.Errorf("tower %q floor %d: %w", t.Name, f.Number, err)
		}
	}
	if len(t.Scars) == 0 {
		return nil
	}
	scars := make(map[string]ScarDef, len(t.Scars))
	for key, d := range t.Scars {
		res, err := combat.ParseResult(key)
		if err != nil || !res.IsDefeat() {
			return fmt.Errorf("tower %q: scars key %q is not a defeat result", t.Name, key)
		}
		if _, err := d.Validate(); err != nil {
			return fmt.Errorf("tower %q: %w", t.Name, err)
		}
		scars[res.String()] = d
	}
	t.Scars = scars
	return nil
}

// Scar returns the scar definition for res and its parsed stat, if the
// tower overrides it.
func (t *Tower) Scar(res combat.Result) (ScarDef, combatant.Stat, bool) {
	d, ok := t.Scars[res.String()]
	if !ok {
		return ScarDef{}, combatant.StatUnknown, false
	}
	stat, err := d.Validate()
	if err != nil {
		return ScarDef{}, combatant.StatUnknown, false
	}
	return d, stat, true
}

// LoadFromBytes parses and validates a tower from raw YAML.
//
// Postcondition: Returns a validated *Tower or an error.
func LoadFromBytes(data []byte) (*Tower, error) {
	var t Tower
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tower YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads a tower definition from path.
//
// Precondition: path must be a readable YAML file.
func LoadFile(path string) (*Tower, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tower file %q: %w", path, err)
	}
	t, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return t, nil
}

// Default returns the single-floor tower used when no floors file is
// configured: one Shadow with balanced traits.
func Default() *Tower {
	return &Tower{
		Name: "Training Hall",
		Floors: []Floor{{
			Number: 1,
			Name:   "Sparring Ring",
			Opponent: OpponentDef{
				Name:      "Shadow",
				MaxHealth: 50,
				Traits:    combatant.Traits{Aggression: 5, Patience: 5, AdaptationRate: 2},
			},
		}},
	}
}
