package explorer

import "github.com/tdex-network/tronkit/pkg/transaction"

// BlockHeader ...
type BlockHeader struct {
	RawData struct {
		Number         int64  `json:"number"`
		Timestamp      int64  `json:"timestamp"`
		ParentHash     string `json:"parentHash"`
		TxTrieRoot     string `json:"txTrieRoot,omitempty"`
		WitnessAddress string `json:"witness_address"`
		Version        int    `json:"version,omitempty"`
	} `json:"raw_data"`
	WitnessSignature string `json:"witness_signature,omitempty"`
}

// Block is a block of the TRON blockchain.
type Block struct {
	ID           string                `json:"blockID"`
	Header       BlockHeader           `json:"block_header"`
	Transactions []*transaction.Record `json:"transactions,omitempty"`
}

// Number returns the height of the block.
func (b *Block) Number() int64 {
	return b.Header.RawData.Number
}

// Timestamp returns the time of the block in milliseconds.
func (b *Block) Timestamp() int64 {
	return b.Header.RawData.Timestamp
}

// HasTransaction returns whether the block includes the given transaction.
func (b *Block) HasTransaction(txid string) bool {
	for _, tx := range b.Transactions {
		if tx.ID == txid {
			return true
		}
	}
	return false
}
