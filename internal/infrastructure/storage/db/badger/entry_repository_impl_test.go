package dbbadger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	dbbadger "github.com/tdex-network/tronkit/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tronkit/pkg/tracker"
)

func newTestRepository(t *testing.T, dbDir string) (tracker.Repository, func()) {
	db, err := dbbadger.NewDbManager(dbDir, nil)
	require.NoError(t, err)
	return dbbadger.NewEntryRepositoryImpl(db), func() {
		require.NoError(t, db.Close())
	}
}

func TestEntryRepository(t *testing.T) {
	repo, closeDb := newTestRepository(t, "")
	defer closeDb()
	ctx := context.Background()

	entries := []tracker.Entry{
		{TxID: "aa", State: tracker.Submitting, UpdatedAt: 1},
		{TxID: "bb", State: tracker.Pending, UpdatedAt: 2},
		{TxID: "aa", State: tracker.Confirmed, BlockNumber: 100, Fee: 345000, UpdatedAt: 3},
		{TxID: "cc", State: tracker.Failed, Message: "REVERT", UpdatedAt: 2},
	}
	for _, e := range entries {
		require.NoError(t, repo.SaveEntry(ctx, e))
	}

	entry, err := repo.GetEntry(ctx, "aa")
	require.NoError(t, err)
	require.Equal(t, tracker.Confirmed, entry.State)
	require.Equal(t, int64(100), entry.BlockNumber)
	require.Equal(t, int64(345000), entry.Fee)

	_, err = repo.GetEntry(ctx, "dd")
	require.ErrorIs(t, err, dbbadger.ErrEntryNotFound)
	_, err = repo.GetEntry(ctx, "")
	require.ErrorIs(t, err, dbbadger.ErrEntryInvalidRequest)
	require.ErrorIs(
		t, repo.SaveEntry(ctx, tracker.Entry{}), dbbadger.ErrEntryInvalidRequest,
	)

	all, err := repo.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "aa", all[0].TxID)
	require.Equal(t, "bb", all[1].TxID)
	require.Equal(t, "cc", all[2].TxID)

	byState, ok := repo.(interface {
		ListEntriesByState(context.Context, tracker.State) ([]tracker.Entry, error)
	})
	require.True(t, ok)
	failed, err := byState.ListEntriesByState(ctx, tracker.Failed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, "REVERT", failed[0].Message)
}

func TestEntryRepositoryOnDisk(t *testing.T) {
	dbDir := t.TempDir()
	ctx := context.Background()

	repo, closeDb := newTestRepository(t, dbDir)
	require.NoError(t, repo.SaveEntry(ctx, tracker.Entry{
		TxID: "aa", State: tracker.Pending, UpdatedAt: 1,
	}))
	closeDb()

	repo, closeDb = newTestRepository(t, dbDir)
	defer closeDb()

	entry, err := repo.GetEntry(ctx, "aa")
	require.NoError(t, err)
	require.Equal(t, tracker.Pending, entry.State)
}
