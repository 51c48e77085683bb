package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-backtester/internal/database"
	"github.com/yourusername/odds-backtester/internal/models"
)

func newSQLiteRepo(t *testing.T) *SQLiteVerdictRepository {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	repo := NewSQLiteVerdictRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteVerdictRepository_RoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	rec := newRecord("E0", time.Date(2024, 5, 20, 12, 30, 15, 123456789, time.UTC), false)
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "E0", got.Domain)
	assert.True(t, rec.RunAt.Equal(got.RunAt))
	assert.Equal(t, rec.Passed, got.Passed)
	assert.Equal(t, rec.ROI, got.ROI)
	assert.Equal(t, rec.TotalBets, got.TotalBets)
	assert.Equal(t, rec.Reasons, got.Reasons)
	assert.JSONEq(t, string(rec.Ledger), string(got.Ledger))
}

func TestSQLiteVerdictRepository_GetLatestAndList(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	first := newRecord("E0", base, false)
	second := newRecord("E0", base.Add(time.Hour), true)
	other := newRecord("SP1", base.Add(2*time.Hour), true)
	for _, rec := range []*models.VerdictRecord{first, second, other} {
		require.NoError(t, repo.Save(ctx, rec))
	}

	latest, err := repo.GetLatest(ctx, "E0")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	e0, err := repo.List(ctx, "E0", 10)
	require.NoError(t, err)
	require.Len(t, e0, 2)
	assert.Equal(t, second.ID, e0[0].ID)

	all, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)

	limited, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteVerdictRepository_NotFound(t *testing.T) {
	repo := newSQLiteRepo(t)

	_, err := repo.GetLatest(context.Background(), "E0")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSQLiteVerdictRepository_NilReasonsAndLedger(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	rec := newRecord("E0", time.Now().UTC(), true)
	rec.Reasons = nil
	rec.Ledger = nil
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Reasons)
	assert.Nil(t, got.Ledger)
}
