package transaction

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedRawData is returned when the body isn't a valid protobuf
// encoded transaction.
var ErrMalformedRawData = errors.New("transaction raw data is malformed")

// field numbers of protocol.Transaction.raw
const (
	rawRefBlockBytes protowire.Number = 1
	rawRefBlockHash  protowire.Number = 4
	rawExpiration    protowire.Number = 8
	rawData          protowire.Number = 10
	rawContract      protowire.Number = 11
	rawTimestamp     protowire.Number = 14
	rawFeeLimit      protowire.Number = 18
)

// contract types, as enumerated by protocol.Transaction.Contract.ContractType.
var contractTypes = map[uint64]string{
	0:  "AccountCreateContract",
	1:  "TransferContract",
	2:  "TransferAssetContract",
	4:  "VoteWitnessContract",
	30: "CreateSmartContract",
	31: "TriggerSmartContract",
	54: "FreezeBalanceV2Contract",
	55: "UnfreezeBalanceV2Contract",
	57: "DelegateResourceContract",
	58: "UnDelegateResourceContract",
}

// DecodeRawBytes decodes the protobuf encoded body of a transaction. The
// value of TRX and TRC10 transfers and smart contract calls is decoded too,
// addresses in hex format, while for other contract types it's left empty.
func DecodeRawBytes(raw []byte) (*RawData, error) {
	d := &RawData{}
	err := consumeFields(raw, func(num protowire.Number, v field) error {
		switch num {
		case rawRefBlockBytes:
			d.RefBlockBytes = hex.EncodeToString(v.bytes)
		case rawRefBlockHash:
			d.RefBlockHash = hex.EncodeToString(v.bytes)
		case rawExpiration:
			d.Expiration = int64(v.varint)
		case rawData:
			d.Data = hex.EncodeToString(v.bytes)
		case rawTimestamp:
			d.Timestamp = int64(v.varint)
		case rawFeeLimit:
			d.FeeLimit = int64(v.varint)
		case rawContract:
			c, err := decodeContract(v.bytes)
			if err != nil {
				return err
			}
			d.Contract = append(d.Contract, *c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeRaw returns the decoded view of the body, decoded from the hex
// encoded bytes rather than taken from the node.
func (r *Record) DecodeRaw() (*RawData, error) {
	raw, err := r.RawBytes()
	if err != nil {
		return nil, err
	}
	return DecodeRawBytes(raw)
}

func decodeContract(buf []byte) (*Contract, error) {
	c := &Contract{}
	var value []byte
	var contractType uint64
	err := consumeFields(buf, func(num protowire.Number, v field) error {
		switch num {
		case 1:
			contractType = v.varint
		case 2:
			return consumeFields(v.bytes, func(num protowire.Number, v field) error {
				switch num {
				case 1:
					c.Parameter.TypeURL = string(v.bytes)
				case 2:
					value = v.bytes
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	name, ok := contractTypes[contractType]
	if !ok {
		name = fmt.Sprintf("Contract(%d)", contractType)
	}
	c.Type = name

	var decoded interface{}
	switch contractType {
	case 1:
		decoded, err = decodeTransferValue(value)
	case 2:
		decoded, err = decodeAssetTransferValue(value)
	case 31:
		decoded, err = decodeTriggerValue(value)
	}
	if err != nil {
		return nil, err
	}
	if decoded != nil {
		c.Parameter.Value, _ = json.Marshal(decoded)
	}
	return c, nil
}

func decodeTransferValue(buf []byte) (*TransferValue, error) {
	v := &TransferValue{}
	err := consumeFields(buf, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			v.OwnerAddress = hex.EncodeToString(f.bytes)
		case 2:
			v.ToAddress = hex.EncodeToString(f.bytes)
		case 3:
			v.Amount = int64(f.varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeAssetTransferValue(buf []byte) (*AssetTransferValue, error) {
	v := &AssetTransferValue{}
	err := consumeFields(buf, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			v.AssetName = hex.EncodeToString(f.bytes)
		case 2:
			v.OwnerAddress = hex.EncodeToString(f.bytes)
		case 3:
			v.ToAddress = hex.EncodeToString(f.bytes)
		case 4:
			v.Amount = int64(f.varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeTriggerValue(buf []byte) (*TriggerValue, error) {
	v := &TriggerValue{}
	err := consumeFields(buf, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			v.OwnerAddress = hex.EncodeToString(f.bytes)
		case 2:
			v.ContractAddress = hex.EncodeToString(f.bytes)
		case 3:
			v.CallValue = int64(f.varint)
		case 4:
			v.Data = hex.EncodeToString(f.bytes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// field holds either the varint or the bytes of a field, depending on its
// wire type. Fixed size fields are skipped.
type field struct {
	varint uint64
	bytes  []byte
}

func consumeFields(
	buf []byte, fn func(num protowire.Number, v field) error,
) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("%w: %s", ErrMalformedRawData, protowire.ParseError(n))
		}
		buf = buf[n:]

		var v field
		switch typ {
		case protowire.VarintType:
			v.varint, n = protowire.ConsumeVarint(buf)
		case protowire.BytesType:
			v.bytes, n = protowire.ConsumeBytes(buf)
		default:
			n = protowire.ConsumeFieldValue(num, typ, buf)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s", ErrMalformedRawData, protowire.ParseError(n))
		}
		buf = buf[n:]

		if err := fn(num, v); err != nil {
			return err
		}
	}
	return nil
}
