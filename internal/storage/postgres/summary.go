package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/outplay/internal/game/session"
)

// SummaryRepository persists session summaries.
type SummaryRepository struct {
	db *pgxpool.Pool
}

// NewSummaryRepository creates a SummaryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool and the
// session_summaries migration must be applied.
func NewSummaryRepository(db *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Append inserts sum.
//
// Postcondition: the row is stored, or an error is returned (including on a
// duplicate session ID).
func (r *SummaryRepository) Append(ctx context.Context, sum session.Summary) error {
	scars := sum.Scars
	if scars == nil {
		scars = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO session_summaries
		   (session_id, player_name, fights, dominant_decision, final_hp,
		    scars, ending_type, floors_cleared, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sum.SessionID, sum.PlayerName, sum.Fights, sum.DominantDecision, sum.FinalHP,
		scars, sum.EndingType, sum.FloorsCleared, sum.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session summary %q: %w", sum.SessionID, err)
	}
	return nil
}

// ListByPlayer returns a player's summaries, newest first, at most limit rows.
//
// Precondition: limit > 0.
func (r *SummaryRepository) ListByPlayer(ctx context.Context, playerName string, limit int) ([]session.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT session_id, player_name, fights, dominant_decision, final_hp,
		        scars, ending_type, floors_cleared, recorded_at
		 FROM session_summaries
		 WHERE player_name = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT $2`,
		playerName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing summaries for %q: %w", playerName, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (session.Summary, error) {
		var s session.Summary
		err := row.Scan(&s.SessionID, &s.PlayerName, &s.Fights, &s.DominantDecision, &s.FinalHP,
			&s.Scars, &s.EndingType, &s.FloorsCleared, &s.RecordedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning summaries for %q: %w", playerName, err)
	}
	return out, nil
}
