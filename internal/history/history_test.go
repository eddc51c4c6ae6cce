package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	ledger, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer ledger.Close()

	runs, err := ledger.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecordAndRecent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	ledger, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer ledger.Close()

	started := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Second)

	require.NoError(t, ledger.Record(context.Background(), Run{
		Command:         "push",
		StartedAt:       started,
		FinishedAt:      finished,
		Outcome:         "ok",
		ActionableCount: 3,
		ConflictCount:   0,
		Detail:          "",
	}))

	require.NoError(t, ledger.Record(context.Background(), Run{
		Command:         "pull",
		StartedAt:       finished,
		FinishedAt:      finished.Add(time.Second),
		Outcome:         "conflicts",
		ActionableCount: 0,
		ConflictCount:   2,
		Detail:          "a.txt, b.txt",
	}))

	runs, err := ledger.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "pull", runs[0].Command)
	assert.Equal(t, "conflicts", runs[0].Outcome)
	assert.Equal(t, 2, runs[0].ConflictCount)
	assert.Equal(t, "push", runs[1].Command)
	assert.True(t, runs[1].StartedAt.Equal(started))
}

func TestRecent_RespectsLimit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	ledger, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer ledger.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.Record(context.Background(), Run{
			Command:    "status",
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
			Outcome:    "ok",
		}))
	}

	runs, err := ledger.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
