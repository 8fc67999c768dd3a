// Package sqlite stores session summaries in a local SQLite database using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/outplay/internal/game/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_summaries (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id        TEXT    NOT NULL UNIQUE,
    player_name       TEXT    NOT NULL,
    fights            INTEGER NOT NULL,
    dominant_decision TEXT    NOT NULL,
    final_hp          TEXT    NOT NULL,
    scars             TEXT    NOT NULL,
    ending_type       TEXT    NOT NULL,
    floors_cleared    INTEGER NOT NULL,
    recorded_at_ms    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_summaries_player ON session_summaries (player_name);
`

// Store is a SQLite-backed summary store. Use ":memory:" for a throwaway database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a ready Store or an error; the caller must Close it.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: creating %q: %w", parent, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ensuring schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts sum.
//
// Postcondition: List() ends with sum, or an error is returned.
func (s *Store) Append(ctx context.Context, sum session.Summary) error {
	scars, err := json.Marshal(nonNil(sum.Scars))
	if err != nil {
		return fmt.Errorf("sqlite: encoding scars: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO session_summaries (
    session_id, player_name, fights, dominant_decision, final_hp,
    scars, ending_type, floors_cleared, recorded_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.SessionID, sum.PlayerName, sum.Fights, sum.DominantDecision, sum.FinalHP,
		string(scars), sum.EndingType, sum.FloorsCleared, sum.RecordedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting summary %q: %w", sum.SessionID, err)
	}
	return nil
}

// List returns every stored summary in insertion order.
func (s *Store) List(ctx context.Context) ([]session.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, player_name, fights, dominant_decision, final_hp,
       scars, ending_type, floors_cleared, recorded_at_ms
FROM session_summaries
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing summaries: %w", err)
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		var (
			sum   session.Summary
			scars string
			ms    int64
		)
		if err := rows.Scan(&sum.SessionID, &sum.PlayerName, &sum.Fights, &sum.DominantDecision,
			&sum.FinalHP, &scars, &sum.EndingType, &sum.FloorsCleared, &ms); err != nil {
			return nil, fmt.Errorf("sqlite: scanning summary: %w", err)
		}
		if err := json.Unmarshal([]byte(scars), &sum.Scars); err != nil {
			return nil, fmt.Errorf("sqlite: decoding scars for %q: %w", sum.SessionID, err)
		}
		sum.RecordedAt = time.UnixMilli(ms).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
