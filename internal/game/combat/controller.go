package combat

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

// Chooser is the UI collaborator that supplies the player's next tactic.
// It blocks until a choice is made, returning ErrAbort (or any error) to end
// the encounter with ResultExit.
type Chooser interface {
	ChooseTactic(ctx context.Context, view View) (tactic.Tactic, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, view View) (tactic.Tactic, error)

// ChooseTactic calls f.
func (f ChooserFunc) ChooseTactic(ctx context.Context, view View) (tactic.Tactic, error) {
	return f(ctx, view)
}

// Controller drives an Encounter's round loop.
type Controller struct {
	Chooser Chooser
	// Observer, if set, receives every resolved round.
	Observer func(RoundOutcome)
	// ChoiceTimeout bounds each wait on the Chooser; 0 waits forever.
	ChoiceTimeout time.Duration
	Logger        *zap.Logger
}

// Run loops while both combatants live, asking the Chooser for a tactic and
// resolving it.
//
// Precondition: c.Chooser and enc are non-nil.
// Postcondition: returns ResultVictory, one of the defeat results, or
// ResultExit when the chooser aborts, fails, or ctx is done.
func (c *Controller) Run(ctx context.Context, enc *Encounter) Result {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("encounter_id", enc.ID()))
	start := time.Now()
	logger.Info("encounter started",
		zap.String("opponent", enc.opponent.Name),
		zap.String("opponent_hp", enc.opponent.Health.String()),
	)

	for enc.Active() {
		if ctx.Err() != nil {
			enc.Abort()
			break
		}
		t, err := c.choose(ctx, enc.View())
		if err != nil {
			if !errors.Is(err, ErrAbort) {
				logger.Warn("tactic choice failed; leaving encounter", zap.Error(err))
			}
			enc.Abort()
			break
		}
		out, err := enc.Submit(t)
		if err != nil {
			logger.Warn("tactic rejected", zap.Stringer("tactic", t), zap.Error(err))
			continue
		}
		if c.Observer != nil {
			c.Observer(out)
		}
	}

	logger.Info("encounter ended",
		zap.Stringer("result", enc.Result()),
		zap.Int("rounds", enc.Round()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return enc.Result()
}

func (c *Controller) choose(ctx context.Context, view View) (tactic.Tactic, error) {
	if c.ChoiceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.ChoiceTimeout)
		defer cancel()
	}
	return c.Chooser.ChooseTactic(ctx, view)
}
