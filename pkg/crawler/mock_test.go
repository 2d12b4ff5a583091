package crawler_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/explorer"
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
