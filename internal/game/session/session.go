// Package session runs one player through the tower: it owns the player
// record and the full tactic history across encounters, applies scars and
// recovery between fights, and produces the end-of-run Summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/opponent"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
	"github.com/cory-johannsen/outplay/internal/game/tower"
)

// DefaultMaxDefeats is used when Options.MaxDefeats is not positive.
const DefaultMaxDefeats = 3

// Reporter receives encounter boundaries. All methods are optional hooks
// for the UI; a nil Reporter is allowed.
type Reporter interface {
	EncounterStarted(floor tower.Floor, opp combatant.OpponentSnapshot)
	EncounterEnded(floor tower.Floor, res combat.Result, scar string)
}

// Options tunes a Session.
type Options struct {
	MemoryCapacity int
	MaxDefeats     int
	Scaler         *tower.Scaler
	Reporter       Reporter
	Logger         *zap.Logger
	// Now stamps the summary; nil uses time.Now.
	Now func() time.Time
}

// Session is one run up the tower. Not safe for concurrent use.
type Session struct {
	id      string
	player  *combatant.Player
	history *tactic.History
	tower   *tower.Tower
	roller  *dice.Roller
	ctrl    *combat.Controller
	opts    Options
	logger  *zap.Logger

	fights        int
	defeats       int
	floorsCleared int
	results       []combat.Result
}

// New creates a Session.
//
// Precondition: player, tw, roller and ctrl are non-nil; tw has at least one floor.
// Postcondition: returns a Session with an empty history, or an error.
func New(player *combatant.Player, tw *tower.Tower, roller *dice.Roller, ctrl *combat.Controller, opts Options) (*Session, error) {
	if player == nil || tw == nil || roller == nil || ctrl == nil {
		return nil, errors.New("session: player, tower, roller and controller are required")
	}
	if tw.Len() == 0 {
		return nil, errors.New("session: tower has no floors")
	}
	if opts.MaxDefeats <= 0 {
		opts.MaxDefeats = DefaultMaxDefeats
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		player:  player,
		history: tactic.NewHistory(),
		tower:   tw,
		roller:  roller,
		ctrl:    ctrl,
		opts:    opts,
		logger:  logger.With(zap.String("session_id", id)),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Player returns the session's player record.
func (s *Session) Player() *combatant.Player { return s.player }

// History returns the full tactic history.
func (s *Session) History() *tactic.History { return s.history }

// Fights returns the number of encounters fought.
func (s *Session) Fights() int { return s.fights }

// Results returns a copy of every encounter result in order.
func (s *Session) Results() []combat.Result {
	out := make([]combat.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Fight runs one encounter against floor's opponent and settles its
// aftermath: a defeat adds the matching scar.
//
// Postcondition: Fights() is incremented and the result is appended to Results().
func (s *Session) Fight(ctx context.Context, floor tower.Floor) (combat.Result, error) {
	def := s.opts.Scaler.Opponent(floor)
	opp := def.Spawn()
	policy := opponent.NewPolicy(def.Traits, s.roller.Source(), s.logger)
	enc, err := combat.NewEncounter(s.player, opp, s.history, policy, s.roller, combat.Options{
		MemoryCapacity: s.opts.MemoryCapacity,
		Logger:         s.logger,
	})
	if err != nil {
		return combat.ResultNone, fmt.Errorf("session: starting floor %d: %w", floor.Number, err)
	}
	if s.opts.Reporter != nil {
		s.opts.Reporter.EncounterStarted(floor, opp.Snapshot())
	}

	res := s.ctrl.Run(ctx, enc)
	s.fights++
	s.results = append(s.results, res)

	var label string
	if scar, ok := s.scarFor(res); ok {
		if err := scar.Apply(s.player); err != nil {
			s.logger.Warn("scar not applied", zap.String("scar", scar.Label), zap.Error(err))
		} else {
			label = scar.Label
			s.logger.Info("scar inflicted",
				zap.String("scar", scar.Label),
				zap.Stringer("stat", scar.Stat),
				zap.Int("amount", scar.Amount),
			)
		}
	}
	if s.opts.Reporter != nil {
		s.opts.Reporter.EncounterEnded(floor, res, label)
	}
	return res, nil
}

// Run climbs the tower from the first floor. Victory advances, a defeat
// retries the same floor until MaxDefeats defeats, and EXIT stops at once.
// The player recovers before every encounter after the first.
//
// Postcondition: the returned Summary describes the run, even on error.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	ending := combat.ResultNone
	for s.floorsCleared < s.tower.Len() {
		floor := s.tower.Floor(s.floorsCleared)
		if s.fights > 0 {
			s.player.Recover()
		}
		res, err := s.Fight(ctx, floor)
		if err != nil {
			return s.Summary(ending.String()), err
		}
		ending = res
		if res == combat.ResultVictory {
			s.floorsCleared++
			continue
		}
		if res == combat.ResultExit {
			break
		}
		s.defeats++
		if s.defeats >= s.opts.MaxDefeats {
			s.logger.Info("defeat limit reached", zap.Int("defeats", s.defeats))
			break
		}
	}

	endingType := ending.String()
	if s.floorsCleared == s.tower.Len() {
		endingType = EndingTowerCleared
	}
	sum := s.Summary(endingType)
	s.logger.Info("session finished",
		zap.Int("fights", sum.Fights),
		zap.Int("floors_cleared", sum.FloorsCleared),
		zap.String("ending", sum.EndingType),
		zap.String("dominant_decision", sum.DominantDecision),
	)
	return sum, nil
}

// DominantDecision names the tactic chosen most often over the whole
// session, ties going to the one chosen first. "NONE" when nothing was chosen.
func (s *Session) DominantDecision() string {
	t, _, ok := s.history.Dominant()
	if !ok {
		return "NONE"
	}
	return t.String()
}

// Summary snapshots the session with the given ending type.
func (s *Session) Summary(endingType string) Summary {
	scarList := make([]string, len(s.player.Scars))
	copy(scarList, s.player.Scars)
	return Summary{
		SessionID:        s.id,
		PlayerName:       s.player.Name,
		Fights:           s.fights,
		DominantDecision: s.DominantDecision(),
		FinalHP:          s.player.Health.String(),
		Scars:            scarList,
		EndingType:       endingType,
		FloorsCleared:    s.floorsCleared,
		RecordedAt:       s.opts.Now().UTC(),
	}
}
