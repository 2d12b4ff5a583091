package abi

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tdex-network/tronkit/pkg/address"
)

const selectorSize = 4

var (
	selectorRegexp = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{8}$`)

	// selector of Error(string), used by revert("reason").
	revertSelector = []byte{0x08, 0xc3, 0x79, 0xa0}
	revertTypes    = []Type{{Kind: StringKind}}
)

// Call is a decoded contract call.
type Call struct {
	Selector string  `json:"selector"`
	Values   []Value `json:"values"`
}

// Signature returns the canonical signature "name(type1,type2,...)".
func Signature(name string, types []Type) string {
	return fmt.Sprintf("%s(%s)", name, strings.Join(typeNames(types), ","))
}

// MethodID returns the 4-byte selector of the given method, that is the
// leading bytes of the Keccak-256 hash of its canonical signature.
func MethodID(name string, types []Type) []byte {
	return crypto.Keccak256([]byte(Signature(name, types)))[:selectorSize]
}

// EventID returns the topic identifying the given event in transaction logs.
func EventID(name string, types []Type) []byte {
	return crypto.Keccak256([]byte(Signature(name, types)))
}

// ParseSignature splits a signature like "transfer(address,uint256)" into the
// method name and its argument types.
func ParseSignature(sig string) (string, []Type, error) {
	s := strings.TrimSpace(sig)
	open := strings.Index(s, "(")
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, ErrInvalidSignature
	}
	name := strings.TrimSpace(s[:open])
	args := strings.TrimSpace(s[open+1 : len(s)-1])
	if args == "" {
		return name, []Type{}, nil
	}
	types, err := ParseTypes(strings.Split(args, ","))
	if err != nil {
		return "", nil, err
	}
	return name, types, nil
}

// EncodeCall returns the selector of method followed by the encoded
// arguments. Method can be a bare name, a full signature, in which case
// types can be omitted and must match the signature otherwise, or a 4-byte
// hex selector.
//
// Address arguments given as base58 text are encoded in their raw 21-byte
// form, network prefix included.
func EncodeCall(method string, types []string, values []Value) ([]byte, error) {
	method = strings.TrimSpace(method)
	if len(method) <= 0 {
		return nil, ErrNullMethod
	}

	argTypes, err := ParseTypes(types)
	if err != nil {
		return nil, err
	}

	var selector []byte
	switch {
	case strings.Contains(method, "("):
		name, sigTypes, err := ParseSignature(method)
		if err != nil {
			return nil, err
		}
		if len(argTypes) <= 0 {
			argTypes = sigTypes
		}
		if !sameTypes(argTypes, sigTypes) {
			return nil, &TypeMismatchError{
				Type:   Signature(name, sigTypes),
				Value:  fmt.Sprintf("(%s)", strings.Join(typeNames(argTypes), ",")),
				Reason: "argument types differ from the signature",
			}
		}
		selector = MethodID(name, sigTypes)
	case selectorRegexp.MatchString(method):
		selector, _ = decodeHex(method)
	default:
		selector = MethodID(method, argTypes)
	}

	if len(argTypes) != len(values) {
		return nil, &TypeMismatchError{
			Type:   fmt.Sprintf("(%s)", strings.Join(typeNames(argTypes), ",")),
			Value:  fmt.Sprintf("(%d values)", len(values)),
			Reason: "argument count mismatch",
		}
	}

	args := make([]Value, 0, len(values))
	for i, v := range values {
		args = append(args, rawAddresses(argTypes[i], v))
	}

	enc, err := Encode(argTypes, args)
	if err != nil {
		return nil, err
	}
	return append(selector, enc...), nil
}

// DecodeCall splits the selector from the arguments and decodes them.
func DecodeCall(types []string, data []byte) (*Call, error) {
	if len(data) < selectorSize {
		return nil, &TruncatedDataError{Length: selectorSize, Size: len(data)}
	}
	values, err := DecodeStrings(types, data[selectorSize:])
	if err != nil {
		return nil, err
	}
	return &Call{
		Selector: hex.EncodeToString(data[:selectorSize]),
		Values:   values,
	}, nil
}

// DecodeRevertReason extracts the message of an Error(string) revert payload.
func DecodeRevertReason(data []byte) (string, bool) {
	if len(data) < selectorSize || !bytes.Equal(data[:selectorSize], revertSelector) {
		return "", false
	}
	values, err := Decode(revertTypes, data[selectorSize:])
	if err != nil {
		return "", false
	}
	return values[0].Text(), true
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}

// rawAddresses replaces base58 addresses of address typed values with their
// 21-byte raw form.
func rawAddresses(t Type, v Value) Value {
	switch t.Kind {
	case AddressKind:
		if v.kind != StringValue {
			return v
		}
		addr, err := address.FromBase58(strings.TrimSpace(v.text))
		if err != nil {
			return v
		}
		return NewBytes(addr.Bytes())
	case SliceKind, ArrayKind:
		if v.kind != ArrayValue {
			return v
		}
		elems := make([]Value, 0, len(v.elems))
		for _, e := range v.elems {
			elems = append(elems, rawAddresses(*t.Elem, e))
		}
		return NewArray(elems...)
	}
	return v
}
