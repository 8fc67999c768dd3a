package session

import (
	"context"
	"time"
)

// EndingTowerCleared is the ending type when every floor was won.
const EndingTowerCleared = "TOWER_CLEARED"

// Summary is the persisted record of one finished session.
type Summary struct {
	SessionID        string    `json:"session_id"`
	PlayerName       string    `json:"player_name"`
	Fights           int       `json:"fights"`
	DominantDecision string    `json:"dominant_decision"`
	FinalHP          string    `json:"final_hp"`
	Scars            []string  `json:"scars"`
	EndingType       string    `json:"ending_type"`
	FloorsCleared    int       `json:"floors_cleared"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// Store appends finished session summaries.
type Store interface {
	Append(ctx context.Context, s Summary) error
}
