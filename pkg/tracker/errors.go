package tracker

import (
	"errors"
	"fmt"

	"github.com/tdex-network/tronkit/pkg/explorer"
)

var (
	// ErrNullExplorer ...
	ErrNullExplorer = errors.New("explorer service must not be null")
	// ErrNullTransaction ...
	ErrNullTransaction = errors.New("transaction must not be null")
	// ErrUnsignedTransaction ...
	ErrUnsignedTransaction = errors.New("transaction must be signed")
	// ErrNullTxID ...
	ErrNullTxID = errors.New("transaction id must not be null")
	// ErrNullRepository ...
	ErrNullRepository = errors.New("tracker has no repository")
)

// SubmissionError is returned when the transaction could not be delivered to
// the node. Attempts is greater than 1 if the failure was transient and was
// retried.
type SubmissionError struct {
	TxID     string
	Attempts int
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf(
		"failed to submit tx %s after %d attempt(s): %s", e.TxID, e.Attempts, e.Err,
	)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// SubmissionRejected is returned when the node refuses the transaction. Code
// is the ledger return code, like SIGERROR or DUP_TRANSACTION_ERROR.
type SubmissionRejected struct {
	TxID    string
	Code    string
	Message string
}

func (e *SubmissionRejected) Error() string {
	if len(e.Message) <= 0 {
		return fmt.Sprintf("tx %s rejected: %s", e.TxID, e.Code)
	}
	return fmt.Sprintf("tx %s rejected: %s: %s", e.TxID, e.Code, e.Message)
}

// ExecutionFailedError is returned when the transaction is confirmed but its
// execution failed, like for a reverted contract call.
type ExecutionFailedError struct {
	TxID    string
	Result  string
	Message string
	Info    *explorer.TransactionInfo
}

func (e *ExecutionFailedError) Error() string {
	msg := fmt.Sprintf("tx %s failed", e.TxID)
	if len(e.Result) > 0 {
		msg += " with " + e.Result
	}
	if len(e.Message) > 0 {
		msg += ": " + e.Message
	}
	return msg
}
