package trongrid_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/explorer"
	"github.com/tdex-network/tronkit/pkg/explorer/trongrid"
	"github.com/tdex-network/tronkit/pkg/retry"
	"github.com/tdex-network/tronkit/pkg/transaction"
)

const (
	testAPIKey            = "00000000-0000-0000-0000-000000000000"
	testOwner             = "TNxg4zPNzQRnVt6JFHRwc6Wf1LepSkhB3H"
	testOwnerHex          = "4131b43ffc5e49b4202f3b6e7640af9e719af71bc0"
	testReceiver          = "41e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbd"
	testTxID              = "4ff9d9813ca0167659246e7061c7fd7cf552a76f73890e5a8a8bb505b8bf310a"
	testTriggerTxID       = "23d73cf03fd7b434c4a8b19947c8b06e42d18683041c4aab6df8dd9dcecbe2e3"
	testTriggerRawDataHex = "0a025a4c2208f3e5b1f0c1a2b3c440e8a4c9f0f8305a6f081f126b0a31747970652e676f6f676c65617069732e636f6d2f70726f746f636f6c2e54726967676572536d617274436f6e747261637412360a154131b43ffc5e49b4202f3b6e7640af9e719af71bc0121541e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbd2206a9059cbb00ff70a0d3c5f0f830900180ade204"
	testRawDataHex        = "0a025a4c2208f3e5b1f0c1a2b3c440e8a4c9f0f8305a67080112630a2d747970652e676f6f676c65617069732e636f6d2f70726f746f636f6c2e5472616e73666572436f6e747261637412320a154131b43ffc5e49b4202f3b6e7640af9e719af71bc0121541e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbd18c0843d70a0d3c5f0f830"
	testAssetTxID         = "5a61a3064cb4b540d932ce083c609a3b381a7cd2841c0c50dad895b1e974cb4a"
	testAssetRawDataHex   = "0a025a4c2208f3e5b1f0c1a2b3c440e8a4c9f0f8305a74080212700a32747970652e676f6f676c65617069732e636f6d2f70726f746f636f6c2e5472616e736665724173736574436f6e7472616374123a0a073130303230303012154131b43ffc5e49b4202f3b6e7640af9e719af71bc01a1541e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbd20e80770a0d3c5f0f830"
)

var (
	testTransaction = fmt.Sprintf(
		`{"visible":false,"txID":"%s","raw_data_hex":"%s"}`, testTxID, testRawDataHex,
	)
	testTriggerTransaction = fmt.Sprintf(
		`{"visible":false,"txID":"%s","raw_data_hex":"%s"}`,
		testTriggerTxID, testTriggerRawDataHex,
	)
	testAssetTransaction = fmt.Sprintf(
		`{"visible":false,"txID":"%s","raw_data_hex":"%s"}`,
		testAssetTxID, testAssetRawDataHex,
	)
)

type handlerFunc func(body map[string]interface{}) (int, string)

type fakeNode struct {
	*httptest.Server
	t        *testing.T
	lock     sync.Mutex
	handlers map[string]handlerFunc
	calls    map[string]int
	apiKeys  []string
}

func newFakeNode(t *testing.T, handlers map[string]handlerFunc) *fakeNode {
	n := &fakeNode{t: t, handlers: handlers, calls: map[string]int{}}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	n.lock.Lock()
	n.calls[r.URL.Path]++
	n.apiKeys = append(n.apiKeys, r.Header.Get("TRON-PRO-API-KEY"))
	handler, ok := n.handlers[r.URL.Path]
	n.lock.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body := map[string]interface{}{}
	buf, _ := io.ReadAll(r.Body)
	if len(buf) > 0 {
		require.NoError(n.t, json.Unmarshal(buf, &body))
	}
	status, res := handler(body)
	w.WriteHeader(status)
	w.Write([]byte(res))
}

func (n *fakeNode) numOfCalls(path string) int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.calls[path]
}

func newTestService(t *testing.T, node *fakeNode) trongrid.Service {
	svc, err := trongrid.NewService(trongrid.Opts{
		FullNodeURL: node.URL,
		APIKey:      testAPIKey,
	})
	require.NoError(t, err)
	return svc
}

func ok(res string) handlerFunc {
	return func(map[string]interface{}) (int, string) {
		return http.StatusOK, res
	}
}

func TestNewService(t *testing.T) {
	_, err := trongrid.NewService(trongrid.Opts{FullNodeURL: "localhost:8090"})
	require.ErrorIs(t, err, trongrid.ErrInvalidEndpoint)

	svc, err := trongrid.NewService(trongrid.Opts{})
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestGetBalance(t *testing.T) {
	owner, err := address.FromBase58(testOwner)
	require.NoError(t, err)

	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/getaccount": func(body map[string]interface{}) (int, string) {
			if body["address"] == testOwner {
				return http.StatusOK, fmt.Sprintf(
					`{"address":"%s","balance":1500000}`, testOwner,
				)
			}
			return http.StatusOK, "{}"
		},
	})
	svc := newTestService(t, node)

	balance, err := svc.GetBalance(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, int64(1500000), balance)

	other, err := address.FromHex(testReceiver)
	require.NoError(t, err)
	balance, err = svc.GetBalance(context.Background(), other)
	require.NoError(t, err)
	require.Zero(t, balance)

	for _, key := range node.apiKeys {
		require.Equal(t, testAPIKey, key)
	}
}

func TestGetTransaction(t *testing.T) {
	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/gettransactionbyid": func(body map[string]interface{}) (int, string) {
			if body["value"] == testTxID {
				return http.StatusOK, testTransaction
			}
			return http.StatusOK, "{}"
		},
	})
	svc := newTestService(t, node)

	tx, err := svc.GetTransaction(context.Background(), testTxID)
	require.NoError(t, err)
	require.Equal(t, testTxID, tx.ID)
	require.Equal(t, testRawDataHex, tx.RawDataHex)

	_, err = svc.GetTransaction(context.Background(), "00")
	require.ErrorIs(t, err, explorer.ErrTransactionNotFound)
}

func TestGetTransactionInfo(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, info *explorer.TransactionInfo, err error)
	}{
		{
			name:     "not found",
			response: "{}",
			check: func(t *testing.T, _ *explorer.TransactionInfo, err error) {
				require.ErrorIs(t, err, explorer.ErrTransactionNotFound)
			},
		},
		{
			name:     "malformed",
			response: `{"id": 12`,
			check: func(t *testing.T, _ *explorer.TransactionInfo, err error) {
				var malformed *explorer.MalformedResponseError
				require.True(t, errors.As(err, &malformed))
			},
		},
		{
			name: "confirmed",
			response: fmt.Sprintf(
				`{"id":"%s","blockNumber":100,"receipt":{"result":"SUCCESS"}}`, testTxID,
			),
			check: func(t *testing.T, info *explorer.TransactionInfo, err error) {
				require.NoError(t, err)
				require.Equal(t, testTxID, info.ID)
				require.True(t, info.Succeeded())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solidity := newFakeNode(t, map[string]handlerFunc{
				"/walletsolidity/gettransactioninfobyid": ok(tt.response),
			})
			full := newFakeNode(t, nil)

			svc, err := trongrid.NewService(trongrid.Opts{
				FullNodeURL:     full.URL,
				SolidityNodeURL: solidity.URL,
			})
			require.NoError(t, err)

			info, err := svc.GetTransactionInfo(context.Background(), testTxID)
			tt.check(t, info, err)
			require.Equal(t, 1, solidity.numOfCalls("/walletsolidity/gettransactioninfobyid"))
			require.Zero(t, full.numOfCalls("/walletsolidity/gettransactioninfobyid"))
		})
	}
}

func TestBroadcastTransaction(t *testing.T) {
	tx, err := transaction.NewRecord(testRawDataHex)
	require.NoError(t, err)

	t.Run("accepted", func(t *testing.T) {
		node := newFakeNode(t, map[string]handlerFunc{
			"/wallet/broadcasttransaction": func(body map[string]interface{}) (int, string) {
				require.Equal(t, testTxID, body["txID"])
				return http.StatusOK, fmt.Sprintf(`{"result":true,"txid":"%s"}`, testTxID)
			},
		})
		svc := newTestService(t, node)

		res, err := svc.BroadcastTransaction(context.Background(), tx)
		require.NoError(t, err)
		require.True(t, res.Result)
		require.Equal(t, testTxID, res.TxID)
	})

	t.Run("rejected", func(t *testing.T) {
		node := newFakeNode(t, map[string]handlerFunc{
			"/wallet/broadcasttransaction": ok(
				`{"code":"SIGERROR","message":"76616c6964617465207369676e6174757265206572726f72"}`,
			),
		})
		svc := newTestService(t, node)

		res, err := svc.BroadcastTransaction(context.Background(), tx)
		require.NoError(t, err)
		require.False(t, res.Result)
		require.Equal(t, "SIGERROR", res.Code)
		require.Equal(t, "validate signature error", res.DecodedMessage())
		require.Equal(t, testTxID, res.TxID)
	})

	t.Run("unavailable", func(t *testing.T) {
		node := newFakeNode(t, map[string]handlerFunc{
			"/wallet/broadcasttransaction": func(map[string]interface{}) (int, string) {
				return http.StatusServiceUnavailable, "service unavailable"
			},
		})
		svc := newTestService(t, node)

		_, err := svc.BroadcastTransaction(context.Background(), tx)
		require.Error(t, err)
		require.Contains(t, err.Error(), "503")

		var statusErr *explorer.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode())
		require.True(t, retry.DefaultClassifier()(err))
	})

	t.Run("bad request", func(t *testing.T) {
		body := `{"Error":"sig error for tx 7c2d5039e1f0a4503eof, timeout"}`
		node := newFakeNode(t, map[string]handlerFunc{
			"/wallet/broadcasttransaction": func(map[string]interface{}) (int, string) {
				return http.StatusBadRequest, body
			},
		})
		svc := newTestService(t, node)

		_, err := svc.BroadcastTransaction(context.Background(), tx)
		var statusErr *explorer.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusBadRequest, statusErr.Code)
		require.Equal(t, body, statusErr.Body)
		require.NotContains(t, err.Error(), "7c2d5039e1f0a4")
		require.False(t, retry.DefaultClassifier()(err))
	})
}

func TestGetBlocks(t *testing.T) {
	block := func(n int64) string {
		return fmt.Sprintf(
			`{"blockID":"%064x","block_header":{"raw_data":{"number":%d,"timestamp":%d}}}`,
			n, n, 1700000000000+n*3000,
		)
	}

	var requests int32
	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/getnowblock": ok(block(1234)),
		"/wallet/getblockbynum": func(body map[string]interface{}) (int, string) {
			n := int64(body["num"].(float64))
			if n > 1234 {
				return http.StatusOK, "{}"
			}
			return http.StatusOK, block(n)
		},
		"/wallet/getblockbylimitnext": func(body map[string]interface{}) (int, string) {
			atomic.AddInt32(&requests, 1)
			start := int64(body["startNum"].(float64))
			end := int64(body["endNum"].(float64))
			if end-start > 100 {
				return http.StatusOK, `{"Error":"the difference between startNum and endNum cannot be greater than 100"}`
			}
			res := `{"block":[`
			for i := start; i < end; i++ {
				if i > start {
					res += ","
				}
				res += block(i)
			}
			return http.StatusOK, res + "]}"
		},
	})
	svc := newTestService(t, node)
	ctx := context.Background()

	height, err := svc.GetBlockHeight(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1234), height)

	b, err := svc.GetBlockByNumber(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), b.Number())

	_, err = svc.GetBlockByNumber(ctx, 2000)
	require.ErrorIs(t, err, explorer.ErrBlockNotFound)

	blocks, err := svc.GetBlockRange(ctx, 5, 255)
	require.NoError(t, err)
	require.Len(t, blocks, 250)
	for i, b := range blocks {
		require.Equal(t, int64(5+i), b.Number())
	}
	require.Equal(t, int32(3), atomic.LoadInt32(&requests))

	blocks, err = svc.GetBlockRange(ctx, 5, 5)
	require.NoError(t, err)
	require.Empty(t, blocks)

	_, err = svc.GetBlockRange(ctx, 6, 5)
	require.ErrorIs(t, err, explorer.ErrInvalidBlockRange)
}

func TestCreateTransfer(t *testing.T) {
	owner, err := address.FromBase58(testOwner)
	require.NoError(t, err)
	receiver, err := address.FromHex(testReceiver)
	require.NoError(t, err)

	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/createtransaction": func(body map[string]interface{}) (int, string) {
			require.Equal(t, testOwnerHex, body["owner_address"])
			require.Equal(t, testReceiver, body["to_address"])
			if body["amount"].(float64) > 1000000 {
				return http.StatusOK, `{"Error":"class org.tron.core.exception.ContractValidateException : balance is not sufficient."}`
			}
			return http.StatusOK, testTransaction
		},
	})
	svc := newTestService(t, node)
	ctx := context.Background()

	tx, err := svc.CreateTransfer(ctx, explorer.TransferOpts{
		From: owner, To: receiver, Amount: 1000000,
	})
	require.NoError(t, err)
	require.Equal(t, testTxID, tx.ID)
	require.False(t, tx.IsSigned())

	_, err = svc.CreateTransfer(ctx, explorer.TransferOpts{
		From: owner, To: receiver, Amount: 999999,
	})
	require.ErrorIs(t, err, explorer.ErrUnexpectedTransaction)

	_, err = svc.CreateTransfer(ctx, explorer.TransferOpts{
		From: owner, To: receiver, Amount: 2000000,
	})
	var nodeErr *explorer.NodeError
	require.True(t, errors.As(err, &nodeErr))
	require.Contains(t, nodeErr.Message, "balance is not sufficient")

	_, err = svc.CreateTransfer(ctx, explorer.TransferOpts{From: owner, To: receiver})
	require.ErrorIs(t, err, explorer.ErrInvalidAmount)
}

func TestCreateAssetTransfer(t *testing.T) {
	owner, err := address.FromBase58(testOwner)
	require.NoError(t, err)
	receiver, err := address.FromHex(testReceiver)
	require.NoError(t, err)

	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/transferasset": func(body map[string]interface{}) (int, string) {
			require.Equal(t, testOwnerHex, body["owner_address"])
			require.Equal(t, testReceiver, body["to_address"])
			switch body["asset_name"] {
			case "31303032303030":
				return http.StatusOK, testAssetTransaction
			case "31303032303031":
				// a TRX transfer in place of the requested token transfer
				return http.StatusOK, testTransaction
			}
			return http.StatusOK, `{"Error":"class org.tron.core.exception.ContractValidateException : No asset!"}`
		},
	})
	svc := newTestService(t, node)
	ctx := context.Background()

	tx, err := svc.CreateAssetTransfer(ctx, explorer.AssetTransferOpts{
		From: owner, To: receiver, AssetID: "1002000", Amount: 1000,
	})
	require.NoError(t, err)
	require.Equal(t, testAssetTxID, tx.ID)
	require.False(t, tx.IsSigned())

	_, err = svc.CreateAssetTransfer(ctx, explorer.AssetTransferOpts{
		From: owner, To: receiver, AssetID: "1002000", Amount: 999,
	})
	require.ErrorIs(t, err, explorer.ErrUnexpectedTransaction)

	_, err = svc.CreateAssetTransfer(ctx, explorer.AssetTransferOpts{
		From: owner, To: receiver, AssetID: "1002001", Amount: 1000,
	})
	require.ErrorIs(t, err, explorer.ErrUnexpectedTransaction)

	_, err = svc.CreateAssetTransfer(ctx, explorer.AssetTransferOpts{
		From: owner, To: receiver, AssetID: "1000001", Amount: 1000,
	})
	var nodeErr *explorer.NodeError
	require.True(t, errors.As(err, &nodeErr))
	require.Contains(t, nodeErr.Message, "No asset")

	_, err = svc.CreateAssetTransfer(ctx, explorer.AssetTransferOpts{
		From: owner, To: receiver, AssetID: "USDT", Amount: 1000,
	})
	require.ErrorIs(t, err, explorer.ErrInvalidAssetID)
	require.Equal(t, 4, node.numOfCalls("/wallet/transferasset"))
}

func TestTriggerContract(t *testing.T) {
	owner, err := address.FromBase58(testOwner)
	require.NoError(t, err)
	contract, err := address.FromHex(testReceiver)
	require.NoError(t, err)

	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/triggersmartcontract": func(body map[string]interface{}) (int, string) {
			require.Equal(t, "transfer(address,uint256)", body["function_selector"])
			require.Equal(t, float64(10000000), body["fee_limit"])
			tx := testTriggerTransaction
			if body["parameter"] != "00ff" {
				tx = testTransaction
			}
			return http.StatusOK, fmt.Sprintf(
				`{"result":{"result":true},"transaction":%s}`, tx,
			)
		},
		"/wallet/triggerconstantcontract": func(body map[string]interface{}) (int, string) {
			if body["function_selector"] == "balanceOf(address)" {
				return http.StatusOK, `{"result":{"result":true},"constant_result":["00000000000000000000000000000000000000000000000000000000000003e8"]}`
			}
			return http.StatusOK, `{"result":{"code":"CONTRACT_VALIDATE_ERROR","message":"636f6e747261637420646f6573206e6f74206578697374"}}`
		},
	})
	svc := newTestService(t, node)
	ctx := context.Background()

	tx, err := svc.TriggerSmartContract(ctx, explorer.TriggerOpts{
		Owner:     owner,
		Contract:  contract,
		Method:    "transfer(address,uint256)",
		Parameter: []byte{0x00, 0xff},
		FeeLimit:  10000000,
	})
	require.NoError(t, err)
	require.Equal(t, testTriggerTxID, tx.ID)

	_, err = svc.TriggerSmartContract(ctx, explorer.TriggerOpts{
		Owner:     owner,
		Contract:  contract,
		Method:    "transfer(address,uint256)",
		Parameter: []byte{0x00, 0xfe},
		FeeLimit:  10000000,
	})
	require.ErrorIs(t, err, explorer.ErrUnexpectedTransaction)

	res, err := svc.TriggerConstantContract(ctx, explorer.TriggerOpts{
		Owner:    owner,
		Contract: contract,
		Method:   "balanceOf(address)",
	})
	require.NoError(t, err)
	require.Len(t, res, 32)
	require.Equal(t, byte(0xe8), res[31])

	_, err = svc.TriggerConstantContract(ctx, explorer.TriggerOpts{
		Owner:    owner,
		Contract: contract,
		Method:   "name()",
	})
	var nodeErr *explorer.NodeError
	require.True(t, errors.As(err, &nodeErr))
	require.Equal(t, "CONTRACT_VALIDATE_ERROR contract does not exist", nodeErr.Message)

	_, err = svc.TriggerSmartContract(ctx, explorer.TriggerOpts{
		Owner: owner, Contract: contract,
	})
	require.ErrorIs(t, err, explorer.ErrNullMethod)
}

type requestRecorder struct {
	lock     sync.Mutex
	requests map[string]int
	failures int
}

func (r *requestRecorder) ObserveRequest(
	endpoint string, _ time.Duration, err error,
) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.requests[endpoint]++
	if err != nil {
		r.failures++
	}
}

func TestRequestObserver(t *testing.T) {
	node := newFakeNode(t, map[string]handlerFunc{
		"/wallet/getnowblock": ok(`{"block_header":{"raw_data":{"number":42}}}`),
	})
	observer := &requestRecorder{requests: map[string]int{}}
	svc, err := trongrid.NewService(trongrid.Opts{
		FullNodeURL: node.URL,
		Observer:    observer,
	})
	require.NoError(t, err)

	height, err := svc.GetBlockHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), height)

	_, err = svc.GetTransaction(context.Background(), testTxID)
	require.Error(t, err)

	require.Equal(t, 1, observer.requests["/wallet/getnowblock"])
	require.Equal(t, 1, observer.requests["/wallet/gettransactionbyid"])
	require.Equal(t, 1, observer.failures)
}
