package trongrid

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/tdex-network/tronkit/pkg/explorer"
	"github.com/tdex-network/tronkit/pkg/transaction"
)

const (
	getTransactionEndpoint       = "/wallet/gettransactionbyid"
	getTransactionInfoEndpoint   = "/walletsolidity/gettransactioninfobyid"
	broadcastTransactionEndpoint = "/wallet/broadcasttransaction"
	createTransactionEndpoint    = "/wallet/createtransaction"
	transferAssetEndpoint        = "/wallet/transferasset"
	triggerSmartContractEndpoint = "/wallet/triggersmartcontract"
	triggerConstantEndpoint      = "/wallet/triggerconstantcontract"
)

func (s *service) GetTransaction(
	ctx context.Context, txid string,
) (*transaction.Record, error) {
	body, err := s.post(ctx, s.fullNode, getTransactionEndpoint, map[string]string{
		"value": txid,
	})
	if err != nil {
		return nil, err
	}

	tx := &transaction.Record{}
	found, err := decode(getTransactionEndpoint, body, tx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, explorer.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *service) GetTransactionInfo(
	ctx context.Context, txid string,
) (*explorer.TransactionInfo, error) {
	body, err := s.post(
		ctx, s.solidityNode, getTransactionInfoEndpoint, map[string]string{
			"value": txid,
		},
	)
	if err != nil {
		return nil, err
	}
	return explorer.ParseTransactionInfo(getTransactionInfoEndpoint, body)
}

func (s *service) BroadcastTransaction(
	ctx context.Context, tx *transaction.Record,
) (*explorer.BroadcastResult, error) {
	body, err := s.post(ctx, s.fullNode, broadcastTransactionEndpoint, tx)
	if err != nil {
		return nil, err
	}

	res := &explorer.BroadcastResult{}
	found, err := decode(broadcastTransactionEndpoint, body, res)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &explorer.MalformedResponseError{
			Endpoint: broadcastTransactionEndpoint,
			Body:     string(body),
			Err:      errEmptyResponse,
		}
	}
	if len(res.TxID) <= 0 {
		res.TxID = tx.ID
	}
	return res, nil
}

func (s *service) CreateTransfer(
	ctx context.Context, opts explorer.TransferOpts,
) (*transaction.Record, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	body, err := s.post(ctx, s.fullNode, createTransactionEndpoint, map[string]interface{}{
		"owner_address": opts.From.Hex(),
		"to_address":    opts.To.Hex(),
		"amount":        opts.Amount,
	})
	if err != nil {
		return nil, err
	}
	tx, err := decodeTransaction(createTransactionEndpoint, body)
	if err != nil {
		return nil, err
	}
	if err := opts.Check(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *service) CreateAssetTransfer(
	ctx context.Context, opts explorer.AssetTransferOpts,
) (*transaction.Record, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	body, err := s.post(ctx, s.fullNode, transferAssetEndpoint, map[string]interface{}{
		"owner_address": opts.From.Hex(),
		"to_address":    opts.To.Hex(),
		"asset_name":    opts.AssetName(),
		"amount":        opts.Amount,
	})
	if err != nil {
		return nil, err
	}
	tx, err := decodeTransaction(transferAssetEndpoint, body)
	if err != nil {
		return nil, err
	}
	if err := opts.Check(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

type triggerResponse struct {
	Result struct {
		Result  bool   `json:"result"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"result"`
	ConstantResult []string            `json:"constant_result"`
	Transaction    *transaction.Record `json:"transaction"`
}

func (s *service) TriggerSmartContract(
	ctx context.Context, opts explorer.TriggerOpts,
) (*transaction.Record, error) {
	res, err := s.trigger(ctx, triggerSmartContractEndpoint, opts)
	if err != nil {
		return nil, err
	}
	if res.Transaction == nil {
		return nil, &explorer.MalformedResponseError{
			Endpoint: triggerSmartContractEndpoint, Err: errMissingTransaction,
		}
	}
	if err := res.Transaction.Verify(); err != nil {
		return nil, err
	}
	if err := opts.Check(res.Transaction); err != nil {
		return nil, err
	}
	return res.Transaction, nil
}

func (s *service) TriggerConstantContract(
	ctx context.Context, opts explorer.TriggerOpts,
) ([]byte, error) {
	res, err := s.trigger(ctx, triggerConstantEndpoint, opts)
	if err != nil {
		return nil, err
	}
	if len(res.ConstantResult) <= 0 {
		return []byte{}, nil
	}
	out, err := hex.DecodeString(res.ConstantResult[0])
	if err != nil {
		return nil, &explorer.MalformedResponseError{
			Endpoint: triggerConstantEndpoint, Err: err,
		}
	}
	return out, nil
}

func (s *service) trigger(
	ctx context.Context, endpoint string, opts explorer.TriggerOpts,
) (*triggerResponse, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"owner_address":     opts.Owner.Hex(),
		"contract_address":  opts.Contract.Hex(),
		"function_selector": opts.Method,
		"parameter":         hex.EncodeToString(opts.Parameter),
	}
	if opts.FeeLimit > 0 {
		req["fee_limit"] = opts.FeeLimit
	}
	if opts.CallValue > 0 {
		req["call_value"] = opts.CallValue
	}

	body, err := s.post(ctx, s.fullNode, endpoint, req)
	if err != nil {
		return nil, err
	}

	res := &triggerResponse{}
	found, err := decode(endpoint, body, res)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &explorer.MalformedResponseError{
			Endpoint: endpoint, Body: string(body), Err: errEmptyResponse,
		}
	}
	if !res.Result.Result {
		return nil, &explorer.NodeError{
			Endpoint: endpoint,
			Message: strings.TrimSpace(
				res.Result.Code + " " + explorer.DecodeMessage(res.Result.Message),
			),
		}
	}
	return res, nil
}

func decodeTransaction(endpoint string, body []byte) (*transaction.Record, error) {
	tx := &transaction.Record{}
	found, err := decode(endpoint, body, tx)
	if err != nil {
		return nil, err
	}
	if !found || len(tx.RawDataHex) <= 0 {
		return nil, &explorer.MalformedResponseError{
			Endpoint: endpoint, Body: string(body), Err: errMissingTransaction,
		}
	}
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	return tx, nil
}
