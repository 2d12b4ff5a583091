package transaction

import "encoding/json"

// RawData is the decoded body of a transaction.
type RawData struct {
	RefBlockBytes string     `json:"ref_block_bytes"`
	RefBlockHash  string     `json:"ref_block_hash"`
	Expiration    int64      `json:"expiration"`
	Timestamp     int64      `json:"timestamp"`
	FeeLimit      int64      `json:"fee_limit,omitempty"`
	Data          string     `json:"data,omitempty"`
	Contract      []Contract `json:"contract"`
}

// Contract is an operation of a transaction, like a TransferContract or a
// TriggerSmartContract.
type Contract struct {
	Type      string            `json:"type"`
	Parameter ContractParameter `json:"parameter"`
}

// ContractParameter holds the type-specific fields of a contract.
type ContractParameter struct {
	TypeURL string          `json:"type_url"`
	Value   json.RawMessage `json:"value"`
}

// TransferValue is the value of a TransferContract.
type TransferValue struct {
	OwnerAddress string `json:"owner_address"`
	ToAddress    string `json:"to_address"`
	Amount       int64  `json:"amount"`
}

// AssetTransferValue is the value of a TransferAssetContract, that moves a
// TRC10 token. AssetName is the hex encoded id of the token.
type AssetTransferValue struct {
	AssetName    string `json:"asset_name"`
	OwnerAddress string `json:"owner_address"`
	ToAddress    string `json:"to_address"`
	Amount       int64  `json:"amount"`
}

// TriggerValue is the value of a TriggerSmartContract.
type TriggerValue struct {
	OwnerAddress    string `json:"owner_address"`
	ContractAddress string `json:"contract_address"`
	Data            string `json:"data"`
	CallValue       int64  `json:"call_value,omitempty"`
}

// Transfer returns the value of the first contract if it is a transfer.
func (d *RawData) Transfer() (*TransferValue, bool) {
	v := &TransferValue{}
	if !d.unmarshalFirst("TransferContract", v) {
		return nil, false
	}
	return v, true
}

// AssetTransfer returns the value of the first contract if it is a TRC10
// token transfer.
func (d *RawData) AssetTransfer() (*AssetTransferValue, bool) {
	v := &AssetTransferValue{}
	if !d.unmarshalFirst("TransferAssetContract", v) {
		return nil, false
	}
	return v, true
}

// Trigger returns the value of the first contract if it is a smart contract
// call.
func (d *RawData) Trigger() (*TriggerValue, bool) {
	v := &TriggerValue{}
	if !d.unmarshalFirst("TriggerSmartContract", v) {
		return nil, false
	}
	return v, true
}

func (d *RawData) unmarshalFirst(contractType string, v interface{}) bool {
	if len(d.Contract) <= 0 || d.Contract[0].Type != contractType {
		return false
	}
	return json.Unmarshal(d.Contract[0].Parameter.Value, v) == nil
}
