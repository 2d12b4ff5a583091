package abi

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/tdex-network/tronkit/pkg/address"
)

// toInteger converts v to an integer in the range of t.
func toInteger(t Type, v Value) (*big.Int, error) {
	var n *big.Int
	switch v.kind {
	case IntValue:
		n = v.BigInt()
	case StringValue:
		parsed, ok := parseInteger(v.text)
		if !ok {
			return nil, mismatch(t, v, "not a number")
		}
		n = parsed
	default:
		return nil, mismatch(t, v, "expected integer, got %s", v.kind)
	}

	var min, max *big.Int
	if t.Kind == UintKind {
		min = new(big.Int)
		max = new(big.Int).Lsh(big.NewInt(1), uint(t.Size))
	} else {
		max = new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		min = new(big.Int).Neg(max)
	}
	// max is exclusive
	if n.Cmp(min) < 0 || n.Cmp(max) >= 0 {
		return nil, mismatch(t, v, "out of range")
	}
	return n, nil
}

// parseInteger parses a decimal or a 0x prefixed hex integer, optionally
// negative. Leading zeros never switch to octal.
func parseInteger(str string) (*big.Int, bool) {
	s := strings.TrimSpace(str)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	if len(s) <= 0 || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		n.Neg(n)
	}
	return n, true
}

// toAddressBytes returns either the 20-byte payload of the address or its
// 21-byte raw form when the value is given that way.
func toAddressBytes(t Type, v Value) ([]byte, error) {
	switch v.kind {
	case AddressValue:
		return v.addr.Payload(), nil
	case StringValue:
		s := strings.TrimSpace(v.text)
		if addr, err := address.Parse(s); err == nil {
			return addr.Payload(), nil
		}
		buf, err := decodeHex(s)
		if err == nil && len(buf) == address.PayloadLength {
			return buf, nil
		}
		return nil, mismatch(t, v, "not an address")
	case BytesValue:
		switch len(v.data) {
		case address.PayloadLength:
			return v.Bytes(), nil
		case address.Length:
			if v.data[0] == address.MainnetPrefix {
				return v.Bytes(), nil
			}
		}
		return nil, mismatch(t, v, "not an address")
	}
	return nil, mismatch(t, v, "expected address, got %s", v.kind)
}

func toBool(t Type, v Value) (bool, error) {
	switch v.kind {
	case BoolValue:
		return v.boolean, nil
	case StringValue:
		switch strings.TrimSpace(v.text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, mismatch(t, v, "not a boolean")
	}
	return false, mismatch(t, v, "expected bool, got %s", v.kind)
}

// toBytes converts v to a byte array. Strings are decoded from hex for byte
// types and taken as UTF-8 for the string type.
func toBytes(t Type, v Value) ([]byte, error) {
	var buf []byte
	switch v.kind {
	case BytesValue:
		buf = v.Bytes()
	case StringValue:
		if t.Kind == StringKind {
			buf = []byte(v.text)
			break
		}
		b, err := decodeHex(v.text)
		if err != nil {
			return nil, mismatch(t, v, "not a hex string")
		}
		buf = b
	default:
		return nil, mismatch(t, v, "expected %s, got %s", t.String(), v.kind)
	}

	if t.Kind == FixedBytesKind && len(buf) > t.Size {
		return nil, mismatch(t, v, "too long, max %d bytes", t.Size)
	}
	return buf, nil
}

func toElems(t Type, v Value) ([]Value, error) {
	if v.kind != ArrayValue {
		return nil, mismatch(t, v, "expected array, got %s", v.kind)
	}
	if t.Kind == ArrayKind && len(v.elems) != t.Size {
		return nil, mismatch(
			t, v, "expected %d elements, got %d", t.Size, len(v.elems),
		)
	}
	return v.elems, nil
}

func decodeHex(str string) ([]byte, error) {
	s := strings.TrimSpace(str)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
