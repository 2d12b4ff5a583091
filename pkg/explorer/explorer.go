package explorer

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/transaction"
)

const selectorSize = 4

var (
	// ErrTransactionNotFound is returned when the node has no record of the
	// requested transaction, or of its execution info. It's not a failure,
	// the transaction might be still pending.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrBlockNotFound ...
	ErrBlockNotFound = errors.New("block not found")
	// ErrInvalidBlockRange ...
	ErrInvalidBlockRange = errors.New("block range start must not be greater than end")
	// ErrNullAddress ...
	ErrNullAddress = errors.New("address must not be null")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrNullMethod ...
	ErrNullMethod = errors.New("method must not be null")
	// ErrInvalidAssetID ...
	ErrInvalidAssetID = errors.New("TRC10 token id must be a number")
	// ErrUnexpectedTransaction is returned when the body of a transaction
	// built by the node doesn't encode what was requested.
	ErrUnexpectedTransaction = errors.New(
		"transaction built by node does not match the request",
	)
)

// MalformedResponseError is returned when a node response can't be decoded.
type MalformedResponseError struct {
	Endpoint string
	Body     string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NodeError is returned when the node answers with an explicit error.
type NodeError struct {
	Endpoint string
	Message  string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// HTTPStatusError is returned for unsuccessful HTTP responses. The body is
// kept apart from the message.
type HTTPStatusError struct {
	Endpoint string
	Code     int
	Status   string
	Body     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Status)
}

// StatusCode returns the status code of the response.
func (e *HTTPStatusError) StatusCode() int {
	return e.Code
}

// Service is the representation of a TRON node that allows to fetch data
// from the blockchain and to broadcast transactions. Implementations must be
// safe for concurrent use.
type Service interface {
	// GetBalance returns the TRX balance in SUN of the given account.
	// Accounts not yet activated have zero balance.
	GetBalance(ctx context.Context, addr address.Address) (int64, error)
	// GetTransaction returns the transaction identified by its id, or
	// ErrTransactionNotFound.
	GetTransaction(ctx context.Context, txid string) (*transaction.Record, error)
	// GetTransactionInfo returns the execution info of a confirmed transaction
	// from a solidity node. It returns ErrTransactionNotFound when the info
	// is not available yet, and a *MalformedResponseError when the response
	// can't be decoded.
	GetTransactionInfo(ctx context.Context, txid string) (*TransactionInfo, error)
	// BroadcastTransaction submits the signed transaction. A rejection by the
	// node is not an error, it's reported by the result.
	BroadcastTransaction(
		ctx context.Context, tx *transaction.Record,
	) (*BroadcastResult, error)
	// GetBlockByNumber returns the block at the given height.
	GetBlockByNumber(ctx context.Context, number int64) (*Block, error)
	// GetBlockRange returns the blocks in the range [start, end).
	GetBlockRange(ctx context.Context, start, end int64) ([]*Block, error)
	// GetBlockHeight returns the number of the latest block.
	GetBlockHeight(ctx context.Context) (int64, error)
}

// Builder creates unsigned transactions. TRON nodes build the protobuf body
// of transactions, the caller is in charge of verifying and signing them.
type Builder interface {
	// CreateTransfer returns a TRX transfer transaction.
	CreateTransfer(ctx context.Context, opts TransferOpts) (*transaction.Record, error)
	// CreateAssetTransfer returns a TRC10 token transfer transaction.
	CreateAssetTransfer(
		ctx context.Context, opts AssetTransferOpts,
	) (*transaction.Record, error)
	// TriggerSmartContract returns a smart contract call transaction.
	TriggerSmartContract(
		ctx context.Context, opts TriggerOpts,
	) (*transaction.Record, error)
	// TriggerConstantContract runs a read-only call and returns its result.
	TriggerConstantContract(ctx context.Context, opts TriggerOpts) ([]byte, error)
}

// TransferOpts is the struct given to CreateTransfer method
type TransferOpts struct {
	From   address.Address
	To     address.Address
	Amount int64
}

// Validate ...
func (o TransferOpts) Validate() error {
	if o.From.IsZero() || o.To.IsZero() {
		return ErrNullAddress
	}
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Check makes sure the transaction body encodes this transfer.
func (o TransferOpts) Check(tx *transaction.Record) error {
	rawData, err := tx.DecodeRaw()
	if err != nil {
		return err
	}
	v, ok := rawData.Transfer()
	if !ok || len(rawData.Contract) != 1 ||
		!strings.EqualFold(v.OwnerAddress, o.From.Hex()) ||
		!strings.EqualFold(v.ToAddress, o.To.Hex()) ||
		v.Amount != o.Amount {
		return ErrUnexpectedTransaction
	}
	return nil
}

// AssetTransferOpts is the struct given to CreateAssetTransfer method.
// AssetID is the id of the TRC10 token, like "1002000", and Amount is
// expressed in its smallest unit.
type AssetTransferOpts struct {
	From    address.Address
	To      address.Address
	AssetID string
	Amount  int64
}

// Validate ...
func (o AssetTransferOpts) Validate() error {
	if o.From.IsZero() || o.To.IsZero() {
		return ErrNullAddress
	}
	if len(o.AssetID) <= 0 || strings.Trim(o.AssetID, "0123456789") != "" {
		return ErrInvalidAssetID
	}
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// AssetName returns the hex encoded token id, as expected by nodes.
func (o AssetTransferOpts) AssetName() string {
	return hex.EncodeToString([]byte(o.AssetID))
}

// Check makes sure the transaction body encodes this token transfer.
func (o AssetTransferOpts) Check(tx *transaction.Record) error {
	rawData, err := tx.DecodeRaw()
	if err != nil {
		return err
	}
	v, ok := rawData.AssetTransfer()
	if !ok || len(rawData.Contract) != 1 ||
		!strings.EqualFold(v.AssetName, o.AssetName()) ||
		!strings.EqualFold(v.OwnerAddress, o.From.Hex()) ||
		!strings.EqualFold(v.ToAddress, o.To.Hex()) ||
		v.Amount != o.Amount {
		return ErrUnexpectedTransaction
	}
	return nil
}

// TriggerOpts is the struct given to TriggerSmartContract and
// TriggerConstantContract methods. Method is the canonical signature of the
// called function and Parameter its ABI encoded arguments.
type TriggerOpts struct {
	Owner     address.Address
	Contract  address.Address
	Method    string
	Parameter []byte
	FeeLimit  int64
	CallValue int64
}

// Validate ...
func (o TriggerOpts) Validate() error {
	if o.Owner.IsZero() || o.Contract.IsZero() {
		return ErrNullAddress
	}
	if len(o.Method) <= 0 {
		return ErrNullMethod
	}
	if o.FeeLimit < 0 || o.CallValue < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Check makes sure the transaction body encodes this call. The selector
// prepended by the node to the parameter is not checked.
func (o TriggerOpts) Check(tx *transaction.Record) error {
	rawData, err := tx.DecodeRaw()
	if err != nil {
		return err
	}
	v, ok := rawData.Trigger()
	if !ok || len(rawData.Contract) != 1 ||
		!strings.EqualFold(v.OwnerAddress, o.Owner.Hex()) ||
		!strings.EqualFold(v.ContractAddress, o.Contract.Hex()) ||
		v.CallValue != o.CallValue {
		return ErrUnexpectedTransaction
	}
	data, err := hex.DecodeString(v.Data)
	if err != nil || len(data) != selectorSize+len(o.Parameter) ||
		!bytes.Equal(data[selectorSize:], o.Parameter) {
		return ErrUnexpectedTransaction
	}
	if o.FeeLimit > 0 && rawData.FeeLimit != o.FeeLimit {
		return ErrUnexpectedTransaction
	}
	return nil
}
