package tracker

import (
	"fmt"
	"time"

	"github.com/tdex-network/tronkit/pkg/explorer"
)

const (
	// Submitting is the state of a transaction being broadcast.
	Submitting State = iota
	// Pending is the state of a transaction accepted by the node and not yet
	// confirmed.
	Pending
	// Confirmed is the state of a transaction included in a solidified block
	// and executed successfully.
	Confirmed
	// Failed is the state of a transaction rejected by the node or executed
	// with failure.
	Failed
	// NotFound is returned by lookups when the node has no info about the
	// transaction yet. It never advances the lifecycle.
	NotFound
	// Cancelled is returned when waiting is interrupted by the caller.
	Cancelled
)

// State is a step of the lifecycle of a tracked transaction.
type State int

func (s State) String() string {
	switch s {
	case Submitting:
		return "Submitting"
	case Pending:
		return "Pending"
	case Confirmed:
		return "Confirmed"
	case Failed:
		return "Failed"
	case NotFound:
		return "NotFound"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := Submitting; st <= Cancelled; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// IsFinal returns whether no further transition is possible from s.
func (s State) IsFinal() bool {
	return s == Confirmed || s == Failed
}

// Outcome is the result of an operation of the tracker.
type Outcome struct {
	TxID  string `json:"txid"`
	State State  `json:"state"`
	// Info is set only for Confirmed and Failed states.
	Info *explorer.TransactionInfo `json:"info,omitempty"`
}

// Entry is the record of the last known state of a tracked transaction.
type Entry struct {
	TxID        string `json:"txid"`
	State       State  `json:"state"`
	BlockNumber int64  `json:"blockNumber,omitempty"`
	Fee         int64  `json:"fee,omitempty"`
	Message     string `json:"message,omitempty"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func newEntry(out *Outcome, msg string) Entry {
	entry := Entry{
		TxID:      out.TxID,
		State:     out.State,
		Message:   msg,
		UpdatedAt: time.Now().Unix(),
	}
	if out.Info != nil {
		entry.BlockNumber = out.Info.BlockNumber
		entry.Fee = out.Info.Fee
	}
	return entry
}
