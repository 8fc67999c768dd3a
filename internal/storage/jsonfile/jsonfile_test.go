package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/outplay/internal/game/session"
	"github.com/cory-johannsen/outplay/internal/storage/jsonfile"
)

func summary(name string) session.Summary {
	return session.Summary{
		SessionID:        "s-" + name,
		PlayerName:       name,
		Fights:           3,
		DominantDecision: "BAIT",
		FinalHP:          "42/90",
		Scars:            []string{"Battered"},
		EndingType:       session.EndingTowerCleared,
		FloorsCleared:    2,
		RecordedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAppend_CreatesAndExtendsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.json")
	store, err := jsonfile.New(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, summary("Ash")))
	require.NoError(t, store.Append(ctx, summary("Birch")))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, summary("Ash"), got[0])
	assert.Equal(t, "Birch", got[1].PlayerName)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var generic []map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	for _, key := range []string{"player_name", "fights", "dominant_decision", "final_hp", "scars", "ending_type"} {
		assert.Contains(t, generic[0], key)
	}
	assert.Equal(t, "42/90", generic[0]["final_hp"])
}

func TestAppend_EmptyFileIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	require.NoError(t, store.Append(context.Background(), summary("Ash")))
	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAppend_CorruptFileIsLeftAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	assert.Error(t, store.Append(context.Background(), summary("Ash")))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"not": "an array"}`, string(raw))
}

func TestList_MissingFile(t *testing.T) {
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := jsonfile.New("")
	assert.Error(t, err)
}

func TestAppend_CancelledContext(t *testing.T) {
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Append(ctx, summary("Ash")), context.Canceled)
}
