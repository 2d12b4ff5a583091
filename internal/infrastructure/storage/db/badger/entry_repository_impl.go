package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/tronkit/pkg/tracker"
	"github.com/timshannon/badgerhold/v4"
)

type entryRepositoryImpl struct {
	store *badgerhold.Store
}

// NewEntryRepositoryImpl initialize a badger implementation of the
// tracker.Repository
func NewEntryRepositoryImpl(db *DbManager) tracker.Repository {
	return entryRepositoryImpl{db.Store}
}

// SaveEntry replaces the stored entry of the same transaction, if any.
func (r entryRepositoryImpl) SaveEntry(
	_ context.Context, entry tracker.Entry,
) error {
	if len(entry.TxID) <= 0 {
		return ErrEntryInvalidRequest
	}
	return r.store.Upsert(entry.TxID, &entry)
}

func (r entryRepositoryImpl) GetEntry(
	_ context.Context, txID string,
) (*tracker.Entry, error) {
	if len(txID) <= 0 {
		return nil, ErrEntryInvalidRequest
	}

	var entry tracker.Entry
	if err := r.store.Get(txID, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns all entries, most recently updated first.
func (r entryRepositoryImpl) ListEntries(
	ctx context.Context,
) ([]tracker.Entry, error) {
	return r.findEntries(ctx, nil)
}

// ListEntriesByState returns the entries in the given state, most recently
// updated first.
func (r entryRepositoryImpl) ListEntriesByState(
	ctx context.Context, state tracker.State,
) ([]tracker.Entry, error) {
	return r.findEntries(ctx, badgerhold.Where("State").Eq(state))
}

func (r entryRepositoryImpl) findEntries(
	_ context.Context, query *badgerhold.Query,
) ([]tracker.Entry, error) {
	entries := make([]tracker.Entry, 0)
	if err := r.store.Find(&entries, query); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].UpdatedAt == entries[j].UpdatedAt {
			return entries[i].TxID < entries[j].TxID
		}
		return entries[i].UpdatedAt > entries[j].UpdatedAt
	})
	return entries, nil
}
