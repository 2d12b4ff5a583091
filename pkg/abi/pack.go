package abi

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tdex-network/tronkit/pkg/address"
	"golang.org/x/crypto/ripemd160"
)

// SolidityPack returns the non-standard packed encoding of the given values,
// as abi.encodePacked does: no padding for static values, no length prefix
// for dynamic ones, array elements padded to 32 bytes.
func SolidityPack(types []string, values []Value) ([]byte, error) {
	t, err := ParseTypes(types)
	if err != nil {
		return nil, err
	}
	if len(t) != len(values) {
		return nil, &TypeMismatchError{
			Type:   fmt.Sprintf("(%d types)", len(t)),
			Value:  fmt.Sprintf("(%d values)", len(values)),
			Reason: "argument count mismatch",
		}
	}

	var out []byte
	for i := range t {
		enc, err := packValue(t[i], values[i], false)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// SoliditySHA3 returns the Keccak-256 hash of the packed encoding of the
// given values.
func SoliditySHA3(types []string, values []Value) ([]byte, error) {
	packed, err := SolidityPack(types, values)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(packed), nil
}

// SoliditySHA256 is like SoliditySHA3 with SHA-256.
func SoliditySHA256(types []string, values []Value) ([]byte, error) {
	packed, err := SolidityPack(types, values)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(packed)
	return hash[:], nil
}

// SolidityRIPEMD160 returns the 20-byte RIPEMD-160 hash of the packed
// encoding of the given values.
func SolidityRIPEMD160(types []string, values []Value) ([]byte, error) {
	packed, err := SolidityPack(types, values)
	if err != nil {
		return nil, err
	}
	h := ripemd160.New()
	h.Write(packed)
	return h.Sum(nil), nil
}

func packValue(t Type, v Value, inArray bool) ([]byte, error) {
	switch t.Kind {
	case IntKind, UintKind:
		n, err := toInteger(t, v)
		if err != nil {
			return nil, err
		}
		word := math.U256Bytes(n)
		if inArray {
			return word, nil
		}
		return word[wordSize-t.Size/8:], nil

	case AddressKind:
		buf, err := toAddressBytes(t, v)
		if err != nil {
			return nil, err
		}
		if len(buf) == address.Length {
			buf = buf[1:]
		}
		if inArray {
			return common.LeftPadBytes(buf, wordSize), nil
		}
		return buf, nil

	case BoolKind:
		b, err := toBool(t, v)
		if err != nil {
			return nil, err
		}
		flag := []byte{0}
		if b {
			flag[0] = 1
		}
		if inArray {
			return common.LeftPadBytes(flag, wordSize), nil
		}
		return flag, nil

	case FixedBytesKind:
		buf, err := toBytes(t, v)
		if err != nil {
			return nil, err
		}
		if inArray {
			return common.RightPadBytes(buf, wordSize), nil
		}
		return common.RightPadBytes(buf, t.Size), nil

	case BytesKind, StringKind:
		if inArray {
			return nil, &TypeUnsupportedError{Type: t.String() + " in packed array"}
		}
		return toBytes(t, v)

	case SliceKind, ArrayKind:
		elems, err := toElems(t, v)
		if err != nil {
			return nil, err
		}
		var out []byte
		for _, e := range elems {
			enc, err := packValue(*t.Elem, e, true)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	}

	return nil, &TypeUnsupportedError{Type: t.String()}
}
