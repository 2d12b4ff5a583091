package abi

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Encode encodes the given values as the ABI tuple of the given types.
//
// Static values are written in place in the head, while dynamic ones are
// appended to the tail and referenced from the head with their offset
// relative to the start of the tuple.
func Encode(types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, &TypeMismatchError{
			Type:   fmt.Sprintf("(%d types)", len(types)),
			Value:  fmt.Sprintf("(%d values)", len(values)),
			Reason: "argument count mismatch",
		}
	}
	return encodeTuple(types, values)
}

// EncodeStrings is like Encode for types given by name.
func EncodeStrings(types []string, values []Value) ([]byte, error) {
	t, err := ParseTypes(types)
	if err != nil {
		return nil, err
	}
	return Encode(t, values)
}

func encodeTuple(types []Type, values []Value) ([]byte, error) {
	headSize := 0
	for _, t := range types {
		size, ok := t.headSize()
		if !ok || size > maxSize-headSize {
			return nil, &TypeUnsupportedError{Type: t.String()}
		}
		headSize += size
	}

	head := make([]byte, 0, headSize)
	var tail []byte
	for i, t := range types {
		enc, err := encodeValue(t, values[i])
		if err != nil {
			return nil, err
		}
		if t.IsDynamic() {
			head = append(head, packNum(headSize+len(tail))...)
			tail = append(tail, enc...)
			continue
		}
		head = append(head, enc...)
	}
	return append(head, tail...), nil
}

func encodeValue(t Type, v Value) ([]byte, error) {
	switch t.Kind {
	case IntKind, UintKind:
		n, err := toInteger(t, v)
		if err != nil {
			return nil, err
		}
		// two's complement for negative numbers
		return math.U256Bytes(n), nil

	case AddressKind:
		buf, err := toAddressBytes(t, v)
		if err != nil {
			return nil, err
		}
		return common.LeftPadBytes(buf, wordSize), nil

	case BoolKind:
		b, err := toBool(t, v)
		if err != nil {
			return nil, err
		}
		if b {
			return packNum(1), nil
		}
		return packNum(0), nil

	case FixedBytesKind:
		buf, err := toBytes(t, v)
		if err != nil {
			return nil, err
		}
		return common.RightPadBytes(buf, wordSize), nil

	case BytesKind, StringKind:
		buf, err := toBytes(t, v)
		if err != nil {
			return nil, err
		}
		return append(packNum(len(buf)), padToWord(buf)...), nil

	case SliceKind:
		elems, err := toElems(t, v)
		if err != nil {
			return nil, err
		}
		enc, err := encodeTuple(repeat(*t.Elem, len(elems)), elems)
		if err != nil {
			return nil, err
		}
		return append(packNum(len(elems)), enc...), nil

	case ArrayKind:
		elems, err := toElems(t, v)
		if err != nil {
			return nil, err
		}
		return encodeTuple(repeat(*t.Elem, len(elems)), elems)
	}

	return nil, &TypeUnsupportedError{Type: t.String()}
}

func packNum(n int) []byte {
	return math.U256Bytes(big.NewInt(int64(n)))
}

func padToWord(buf []byte) []byte {
	if len(buf)%wordSize == 0 {
		return buf
	}
	size := (len(buf)/wordSize + 1) * wordSize
	return common.RightPadBytes(buf, size)
}
