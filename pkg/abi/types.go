// Package abi implements the Solidity contract ABI used by TRON smart
// contracts: head/tail encoding of typed argument tuples, call selectors and
// the non-standard packed mode.
package abi

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the supported type families.
type Kind int

const (
	// IntKind is a signed integer, intN.
	IntKind Kind = iota
	// UintKind is an unsigned integer, uintN.
	UintKind
	// AddressKind ...
	AddressKind
	// BoolKind ...
	BoolKind
	// FixedBytesKind is a static byte array, bytesN.
	FixedBytesKind
	// BytesKind is a dynamic byte array.
	BytesKind
	// StringKind ...
	StringKind
	// SliceKind is a dynamic-length array, T[].
	SliceKind
	// ArrayKind is a fixed-length array, T[N].
	ArrayKind
)

const (
	wordSize = 32
	maxSize  = int(^uint(0) >> 1)
)

// Type describes a single ABI type.
type Type struct {
	Kind Kind
	// Size is the number of bits of integers, the number of bytes of bytesN
	// and the number of elements of fixed-length arrays.
	Size int
	// Elem is the element type of arrays.
	Elem *Type

	alias string
}

// ParseType parses a type name like "uint256", "bytes32" or "address[2][]".
// "int" and "uint" stand for their 256-bit versions, "trcToken" is encoded
// as an uint256.
func ParseType(str string) (Type, error) {
	s := strings.TrimSpace(str)
	if len(s) <= 0 {
		return Type{}, &TypeUnsupportedError{Type: str}
	}

	if strings.HasSuffix(s, "]") {
		i := strings.LastIndex(s, "[")
		if i <= 0 {
			return Type{}, &TypeUnsupportedError{Type: str}
		}
		elem, err := ParseType(s[:i])
		if err != nil {
			return Type{}, &TypeUnsupportedError{Type: str}
		}

		size := s[i+1 : len(s)-1]
		if size == "" {
			return Type{Kind: SliceKind, Elem: &elem}, nil
		}
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return Type{}, &TypeUnsupportedError{Type: str}
		}
		t := Type{Kind: ArrayKind, Size: n, Elem: &elem}
		// the encoded size of the array must be addressable
		if _, ok := t.headSize(); !ok {
			return Type{}, &TypeUnsupportedError{Type: str}
		}
		return t, nil
	}

	switch s {
	case "address":
		return Type{Kind: AddressKind}, nil
	case "bool":
		return Type{Kind: BoolKind}, nil
	case "string":
		return Type{Kind: StringKind}, nil
	case "bytes":
		return Type{Kind: BytesKind}, nil
	case "int":
		return Type{Kind: IntKind, Size: 256}, nil
	case "uint":
		return Type{Kind: UintKind, Size: 256}, nil
	case "trcToken":
		return Type{Kind: UintKind, Size: 256, alias: s}, nil
	}

	switch {
	case strings.HasPrefix(s, "bytes"):
		n, err := strconv.Atoi(s[len("bytes"):])
		if err != nil || n < 1 || n > wordSize {
			return Type{}, &TypeUnsupportedError{Type: str}
		}
		return Type{Kind: FixedBytesKind, Size: n}, nil
	case strings.HasPrefix(s, "uint"):
		n, ok := parseIntSize(s[len("uint"):])
		if !ok {
			return Type{}, &TypeUnsupportedError{Type: str}
		}
		return Type{Kind: UintKind, Size: n}, nil
	case strings.HasPrefix(s, "int"):
		n, ok := parseIntSize(s[len("int"):])
		if !ok {
			return Type{}, &TypeUnsupportedError{Type: str}
		}
		return Type{Kind: IntKind, Size: n}, nil
	}

	return Type{}, &TypeUnsupportedError{Type: str}
}

// ParseTypes parses a list of type names.
func ParseTypes(strs []string) ([]Type, error) {
	types := make([]Type, 0, len(strs))
	for _, s := range strs {
		t, err := ParseType(s)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// MustParseTypes is like ParseTypes but panics on error.
func MustParseTypes(strs ...string) []Type {
	types, err := ParseTypes(strs)
	if err != nil {
		panic(err)
	}
	return types
}

// String returns the canonical name of the type, the one used in method
// signatures.
func (t Type) String() string {
	if t.alias != "" {
		return t.alias
	}
	switch t.Kind {
	case IntKind:
		return fmt.Sprintf("int%d", t.Size)
	case UintKind:
		return fmt.Sprintf("uint%d", t.Size)
	case AddressKind:
		return "address"
	case BoolKind:
		return "bool"
	case FixedBytesKind:
		return fmt.Sprintf("bytes%d", t.Size)
	case BytesKind:
		return "bytes"
	case StringKind:
		return "string"
	case SliceKind:
		return t.Elem.String() + "[]"
	case ArrayKind:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Size)
	}
	return "unknown"
}

// IsDynamic returns whether the encoded size of the type depends on the
// value. Dynamic types are referenced from the head by an offset.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case BytesKind, StringKind, SliceKind:
		return true
	case ArrayKind:
		return t.Elem.IsDynamic()
	}
	return false
}

// headSize is the number of bytes the type occupies in the head of the
// enclosing tuple. It returns false if the size overflows an int.
func (t Type) headSize() (int, bool) {
	if t.Kind == ArrayKind && !t.IsDynamic() {
		elemSize, ok := t.Elem.headSize()
		if !ok {
			return 0, false
		}
		return mulSize(t.Size, elemSize)
	}
	return wordSize, true
}

// mulSize returns a*b, or false if the product overflows an int.
func mulSize(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > maxSize/a {
		return 0, false
	}
	return a * b, true
}

func parseIntSize(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 8 || n > 256 || n%8 != 0 {
		return 0, false
	}
	// no leading zeros or signs, "uint08" isn't a type
	if strconv.Itoa(n) != s {
		return 0, false
	}
	return n, true
}

func typeNames(types []Type) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	return names
}

func repeat(t Type, n int) []Type {
	types := make([]Type, n)
	for i := range types {
		types[i] = t
	}
	return types
}
