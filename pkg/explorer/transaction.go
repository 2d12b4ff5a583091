package explorer

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/tdex-network/tronkit/pkg/abi"
)

const (
	resultFailed   = "FAILED"
	receiptSuccess = "SUCCESS"
	receiptDefault = "DEFAULT"
)

// Receipt holds the resources consumed by a transaction and its result code.
type Receipt struct {
	EnergyUsage      int64  `json:"energy_usage,omitempty"`
	EnergyFee        int64  `json:"energy_fee,omitempty"`
	EnergyUsageTotal int64  `json:"energy_usage_total,omitempty"`
	OriginEnergy     int64  `json:"origin_energy_usage,omitempty"`
	NetUsage         int64  `json:"net_usage,omitempty"`
	NetFee           int64  `json:"net_fee,omitempty"`
	Result           string `json:"result,omitempty"`
}

// Log is an event emitted by a smart contract.
type Log struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// TransactionInfo is the execution info of a confirmed transaction.
type TransactionInfo struct {
	ID              string   `json:"id"`
	Fee             int64    `json:"fee,omitempty"`
	BlockNumber     int64    `json:"blockNumber"`
	BlockTimestamp  int64    `json:"blockTimeStamp"`
	ContractResult  []string `json:"contractResult,omitempty"`
	ContractAddress string   `json:"contract_address,omitempty"`
	Receipt         Receipt  `json:"receipt"`
	Logs            []Log    `json:"log,omitempty"`
	Result          string   `json:"result,omitempty"`
	ResMessage      string   `json:"resMessage,omitempty"`
}

// ParseTransactionInfo decodes a transaction info response keeping three
// outcomes apart: an empty object means the info is not available yet
// (ErrTransactionNotFound), an undecodable body or one with no id is
// malformed, everything else is the info itself.
func ParseTransactionInfo(endpoint string, body []byte) (*TransactionInfo, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) <= 0 {
		return nil, &MalformedResponseError{
			Endpoint: endpoint, Err: fmt.Errorf("empty body"),
		}
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, &MalformedResponseError{
			Endpoint: endpoint, Body: string(trimmed), Err: err,
		}
	}
	if len(fields) == 0 {
		return nil, ErrTransactionNotFound
	}
	if msg, ok := nodeErrorMessage(fields); ok {
		return nil, &NodeError{Endpoint: endpoint, Message: msg}
	}

	info := &TransactionInfo{}
	if err := json.Unmarshal(trimmed, info); err != nil {
		return nil, &MalformedResponseError{
			Endpoint: endpoint, Body: string(trimmed), Err: err,
		}
	}
	if len(info.ID) <= 0 {
		return nil, &MalformedResponseError{
			Endpoint: endpoint, Body: string(trimmed), Err: fmt.Errorf("missing id"),
		}
	}
	return info, nil
}

// Succeeded returns whether the transaction has been executed successfully.
func (i *TransactionInfo) Succeeded() bool {
	if i.Result == resultFailed {
		return false
	}
	switch i.Receipt.Result {
	case "", receiptSuccess, receiptDefault:
		return true
	}
	return false
}

// FailureMessage returns a human readable reason of the failure: the decoded
// resMessage, or the reason of a revert("...") or the receipt result code.
func (i *TransactionInfo) FailureMessage() string {
	if msg := DecodeMessage(i.ResMessage); len(msg) > 0 {
		return msg
	}
	for _, result := range i.ContractResult {
		data, err := hex.DecodeString(result)
		if err != nil {
			continue
		}
		if reason, ok := abi.DecodeRevertReason(data); ok {
			return reason
		}
	}
	if len(i.Receipt.Result) > 0 {
		return i.Receipt.Result
	}
	return i.Result
}

// BroadcastResult is the response of the node to a broadcast request.
// Message is hex encoded.
type BroadcastResult struct {
	Result  bool   `json:"result"`
	TxID    string `json:"txid,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodedMessage returns the UTF-8 text of the message.
func (r *BroadcastResult) DecodedMessage() string {
	return DecodeMessage(r.Message)
}

// DecodeMessage decodes the hex encoded messages returned by the node. Text
// that isn't hex, or doesn't decode to valid UTF-8, is returned as is.
func DecodeMessage(msg string) string {
	buf, err := hex.DecodeString(msg)
	if err != nil || !utf8.Valid(buf) {
		return msg
	}
	return string(buf)
}

func nodeErrorMessage(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["Error"]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return string(raw), true
	}
	return msg, true
}
