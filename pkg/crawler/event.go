package crawler

const (
	QuitSignal EventType = iota
	TransactionPending
	TransactionConfirmed
	TransactionFailed
	AccountBalance
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case TransactionPending:
		return "TransactionPending"
	case TransactionConfirmed:
		return "TransactionConfirmed"
	case TransactionFailed:
		return "TransactionFailed"
	case AccountBalance:
		return "AccountBalance"
	default:
		return "Unknown"
	}
}

func (et EventType) MarshalText() ([]byte, error) {
	return []byte(et.String()), nil
}

// IsFinal returns whether the observable that emitted the event is done.
func (et EventType) IsFinal() bool {
	return et == TransactionConfirmed || et == TransactionFailed
}

type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

type TransactionEvent struct {
	TxID        string    `json:"txid"`
	EventType   EventType `json:"event"`
	BlockNumber int64     `json:"blockNumber,omitempty"`
	BlockTime   int64     `json:"blockTime,omitempty"`
	Fee         int64     `json:"fee,omitempty"`
	// Message is the failure reason of TransactionFailed events.
	Message string `json:"message,omitempty"`
}

func (t TransactionEvent) Type() EventType {
	return t.EventType
}

type AccountEvent struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

func (a AccountEvent) Type() EventType {
	return AccountBalance
}
