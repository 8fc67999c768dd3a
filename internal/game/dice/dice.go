// Package dice provides the randomness abstraction shared by the opponent
// policy and the round resolver, plus roll expressions for damage ranges.
package dice

import "fmt"

// RollResult records one evaluated expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // e.g. "1d5+2"
	Dice       []int  // individual die results before modifier
	Modifier   int
}

// Total returns the sum of the dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d5+2 → [3] +2 = 5".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the single pseudo-random provider for a session. Every random
// decision (opponent sampling, damage rolls) draws from one Source so a
// seeded Source reproduces a whole run.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
