package dice

import "go.uber.org/zap"

// Roller pairs a Source with a logger. Every roll is logged at debug level
// with its expression, dice, modifier and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller over src. A nil logger disables logging.
//
// Precondition: src must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying Source so other consumers share one stream.
func (r *Roller) Source() Source { return r.src }

// Intn draws from the underlying Source, letting a Roller stand in wherever
// a Source is expected.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result. Scripts reach the
// dice through this.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}
