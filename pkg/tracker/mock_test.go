package tracker_test

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/explorer"
	"github.com/tdex-network/tronkit/pkg/tracker"
	"github.com/tdex-network/tronkit/pkg/transaction"
)

// Explorer
type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) GetBalance(
	ctx context.Context, addr address.Address,
) (int64, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockExplorer) GetTransaction(
	ctx context.Context, txid string,
) (*transaction.Record, error) {
	args := m.Called(ctx, txid)

	var res *transaction.Record
	if a := args.Get(0); a != nil {
		res = a.(*transaction.Record)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetTransactionInfo(
	ctx context.Context, txid string,
) (*explorer.TransactionInfo, error) {
	args := m.Called(ctx, txid)

	var res *explorer.TransactionInfo
	if a := args.Get(0); a != nil {
		res = a.(*explorer.TransactionInfo)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) BroadcastTransaction(
	ctx context.Context, tx *transaction.Record,
) (*explorer.BroadcastResult, error) {
	args := m.Called(ctx, tx)

	var res *explorer.BroadcastResult
	if a := args.Get(0); a != nil {
		res = a.(*explorer.BroadcastResult)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetBlockByNumber(
	ctx context.Context, number int64,
) (*explorer.Block, error) {
	args := m.Called(ctx, number)

	var res *explorer.Block
	if a := args.Get(0); a != nil {
		res = a.(*explorer.Block)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetBlockRange(
	ctx context.Context, start, end int64,
) ([]*explorer.Block, error) {
	args := m.Called(ctx, start, end)

	var res []*explorer.Block
	if a := args.Get(0); a != nil {
		res = a.([]*explorer.Block)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetBlockHeight(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Repository
type inMemoryRepository struct {
	lock    sync.Mutex
	entries map[string]tracker.Entry
	history []tracker.Entry
	failing bool
}

func newInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{entries: map[string]tracker.Entry{}}
}

func (r *inMemoryRepository) SaveEntry(_ context.Context, entry tracker.Entry) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.failing {
		return errors.New("disk full")
	}
	r.entries[entry.TxID] = entry
	r.history = append(r.history, entry)
	return nil
}

func (r *inMemoryRepository) GetEntry(
	_ context.Context, txID string,
) (*tracker.Entry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	entry, ok := r.entries[txID]
	if !ok {
		return nil, errors.New("entry not found")
	}
	return &entry, nil
}

func (r *inMemoryRepository) ListEntries(_ context.Context) ([]tracker.Entry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	entries := make([]tracker.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *inMemoryRepository) states(txID string) []tracker.State {
	r.lock.Lock()
	defer r.lock.Unlock()

	states := make([]tracker.State, 0)
	for _, e := range r.history {
		if e.TxID == txID {
			states = append(states, e.State)
		}
	}
	return states
}
