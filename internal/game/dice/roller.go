package dice

import "fmt"

// Uniform returns the single-die expression whose total is uniform over
// [lo, hi], e.g. Uniform(3, 7) is "1d5+2".
//
// Precondition: hi > lo.
func Uniform(lo, hi int) Expression {
	if hi <= lo {
		panic(fmt.Sprintf("dice: Uniform(%d, %d) precondition violated: hi must exceed lo", lo, hi))
	}
	e := Expression{Count: 1, Sides: hi - lo + 1, Modifier: lo - 1}
	switch {
	case e.Modifier > 0:
		e.Raw = fmt.Sprintf("1d%d+%d", e.Sides, e.Modifier)
	case e.Modifier < 0:
		e.Raw = fmt.Sprintf("1d%d%d", e.Sides, e.Modifier)
	default:
		e.Raw = fmt.Sprintf("1d%d", e.Sides)
	}
	return e
}

// Roll evaluates expr with src. Each die is one Intn draw, in order.
//
// Precondition: expr came from Parse or Uniform; src is non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// expr.Min() <= result.Total() <= expr.Max().
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}
