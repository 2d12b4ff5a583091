package abi

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/tdex-network/tronkit/pkg/address"
)

// ValueKind enumerates the variants of Value.
type ValueKind int

const (
	// IntValue holds an arbitrary precision integer.
	IntValue ValueKind = iota
	// StringValue holds a text, which can be coerced to numbers, addresses,
	// booleans and hex encoded byte arrays when encoding.
	StringValue
	// BytesValue ...
	BytesValue
	// BoolValue ...
	BoolValue
	// AddressValue ...
	AddressValue
	// ArrayValue holds a list of values.
	ArrayValue
)

func (k ValueKind) String() string {
	switch k {
	case IntValue:
		return "int"
	case StringValue:
		return "string"
	case BytesValue:
		return "bytes"
	case BoolValue:
		return "bool"
	case AddressValue:
		return "address"
	case ArrayValue:
		return "array"
	}
	return "unknown"
}

// Value is an argument of a contract call. The zero value is the integer 0.
type Value struct {
	kind    ValueKind
	integer *big.Int
	text    string
	data    []byte
	boolean bool
	addr    address.Address
	elems   []Value
}

// NewInt returns an integer value. The given number is copied.
func NewInt(n *big.Int) Value {
	if n == nil {
		return Value{kind: IntValue, integer: new(big.Int)}
	}
	return Value{kind: IntValue, integer: new(big.Int).Set(n)}
}

// NewInt64 ...
func NewInt64(n int64) Value {
	return Value{kind: IntValue, integer: big.NewInt(n)}
}

// NewUint64 ...
func NewUint64(n uint64) Value {
	return Value{kind: IntValue, integer: new(big.Int).SetUint64(n)}
}

// NewString ...
func NewString(s string) Value {
	return Value{kind: StringValue, text: s}
}

// NewBytes returns a byte array value. The given buffer is copied.
func NewBytes(b []byte) Value {
	return Value{kind: BytesValue, data: append([]byte{}, b...)}
}

// NewBool ...
func NewBool(b bool) Value {
	return Value{kind: BoolValue, boolean: b}
}

// NewAddress ...
func NewAddress(a address.Address) Value {
	return Value{kind: AddressValue, addr: a}
}

// NewArray ...
func NewArray(elems ...Value) Value {
	return Value{kind: ArrayValue, elems: append([]Value{}, elems...)}
}

// Kind ...
func (v Value) Kind() ValueKind {
	return v.kind
}

// BigInt returns a copy of the integer held by an IntValue, nil otherwise.
func (v Value) BigInt() *big.Int {
	if v.kind != IntValue {
		return nil
	}
	if v.integer == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.integer)
}

// Text returns the text held by a StringValue.
func (v Value) Text() string {
	return v.text
}

// Bytes returns a copy of the buffer held by a BytesValue.
func (v Value) Bytes() []byte {
	if v.kind != BytesValue {
		return nil
	}
	return append([]byte{}, v.data...)
}

// Bool returns the flag held by a BoolValue.
func (v Value) Bool() bool {
	return v.boolean
}

// Address returns the address held by an AddressValue.
func (v Value) Address() address.Address {
	return v.addr
}

// Elems returns the elements of an ArrayValue.
func (v Value) Elems() []Value {
	if v.kind != ArrayValue {
		return nil
	}
	return append([]Value{}, v.elems...)
}

// Equal returns whether the two values have same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case IntValue:
		return v.BigInt().Cmp(other.BigInt()) == 0
	case StringValue:
		return v.text == other.text
	case BytesValue:
		return bytes.Equal(v.data, other.data)
	case BoolValue:
		return v.boolean == other.boolean
	case AddressValue:
		return v.addr == other.addr
	case ArrayValue:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns a human readable representation: decimal integers, quoted
// strings, 0x prefixed hex bytes and base58 addresses.
func (v Value) String() string {
	switch v.kind {
	case IntValue:
		return v.BigInt().String()
	case StringValue:
		return fmt.Sprintf("%q", v.text)
	case BytesValue:
		return "0x" + hex.EncodeToString(v.data)
	case BoolValue:
		return fmt.Sprintf("%t", v.boolean)
	case AddressValue:
		return v.addr.String()
	case ArrayValue:
		elems := make([]string, 0, len(v.elems))
		for _, e := range v.elems {
			elems = append(elems, e.String())
		}
		return "[" + strings.Join(elems, ", ") + "]"
	}
	return ""
}

// MarshalJSON encodes integers as decimal strings so that no precision is
// lost, bytes as 0x prefixed hex strings and addresses in base58.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case IntValue:
		return json.Marshal(v.BigInt().String())
	case StringValue:
		return json.Marshal(v.text)
	case BytesValue:
		return json.Marshal("0x" + hex.EncodeToString(v.data))
	case BoolValue:
		return json.Marshal(v.boolean)
	case AddressValue:
		return json.Marshal(v.addr.String())
	case ArrayValue:
		if v.elems == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.elems)
	}
	return nil, fmt.Errorf("abi: unknown value kind %d", v.kind)
}

// ParseJSONValues parses a JSON array into a list of values. Numbers become
// IntValue, strings StringValue, booleans BoolValue and arrays ArrayValue.
// Strings are coerced to the declared types when encoding.
func ParseJSONValues(data []byte) ([]Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("abi: values must be a JSON array: %w", err)
	}
	return valuesFromJSON(raw)
}

func valuesFromJSON(raw []interface{}) ([]Value, error) {
	values := make([]Value, 0, len(raw))
	for _, r := range raw {
		v, err := valueFromJSON(r)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func valueFromJSON(raw interface{}) (Value, error) {
	switch r := raw.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(r.String(), 10)
		if !ok {
			return Value{}, fmt.Errorf("abi: %s is not an integer", r)
		}
		return NewInt(n), nil
	case string:
		return NewString(r), nil
	case bool:
		return NewBool(r), nil
	case []interface{}:
		elems, err := valuesFromJSON(r)
		if err != nil {
			return Value{}, err
		}
		return NewArray(elems...), nil
	}
	return Value{}, fmt.Errorf("abi: unsupported JSON value %v", raw)
}
