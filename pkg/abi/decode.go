package abi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/tdex-network/tronkit/pkg/address"
)

// Decode decodes the ABI tuple of the given types. Integers are returned as
// IntValue, addresses as AddressValue, bytes and bytesN as BytesValue.
func Decode(types []Type, data []byte) ([]Value, error) {
	return decodeTuple(types, data)
}

// DecodeStrings is like Decode for types given by name.
func DecodeStrings(types []string, data []byte) ([]Value, error) {
	t, err := ParseTypes(types)
	if err != nil {
		return nil, err
	}
	return Decode(t, data)
}

func decodeTuple(types []Type, data []byte) ([]Value, error) {
	values := make([]Value, 0, len(types))
	pos := 0
	for _, t := range types {
		v, size, err := decodeHead(t, data, pos)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		pos += size
	}
	return values, nil
}

// decodeElems decodes count elements of the given type, after making sure
// their heads fit in data.
func decodeElems(elem Type, count int, data []byte) ([]Value, error) {
	elemSize, ok := elem.headSize()
	if !ok {
		return nil, &TypeUnsupportedError{Type: elem.String()}
	}
	size, ok := mulSize(count, elemSize)
	if !ok {
		size = maxSize
	}
	if _, err := read(data, 0, size); err != nil {
		return nil, err
	}

	values := make([]Value, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		v, _, err := decodeHead(elem, data, pos)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		pos += elemSize
	}
	return values, nil
}

// decodeHead decodes the value whose head is at pos, following the offset
// of dynamic types. It returns the size of the head.
func decodeHead(t Type, data []byte, pos int) (Value, int, error) {
	size, ok := t.headSize()
	if !ok {
		return Value{}, 0, &TypeUnsupportedError{Type: t.String()}
	}

	at := pos
	if t.IsDynamic() {
		offset, err := readLength(data, pos)
		if err != nil {
			return Value{}, 0, err
		}
		at = offset
	}

	v, err := decodeValue(t, data, at)
	if err != nil {
		return Value{}, 0, err
	}
	return v, size, nil
}

func decodeValue(t Type, data []byte, at int) (Value, error) {
	switch t.Kind {
	case IntKind, UintKind:
		word, err := readWord(data, at)
		if err != nil {
			return Value{}, err
		}
		n := new(big.Int).SetBytes(word)
		if t.Kind == IntKind {
			n = math.S256(n)
		}
		return NewInt(n), nil

	case AddressKind:
		word, err := readWord(data, at)
		if err != nil {
			return Value{}, err
		}
		addr, _ := address.FromPayload(word[wordSize-address.PayloadLength:])
		return NewAddress(addr), nil

	case BoolKind:
		word, err := readWord(data, at)
		if err != nil {
			return Value{}, err
		}
		n := new(big.Int).SetBytes(word)
		if n.Cmp(big.NewInt(1)) > 0 {
			v := NewBytes(word)
			return Value{}, mismatch(t, v, "improperly encoded boolean")
		}
		return NewBool(n.Sign() > 0), nil

	case FixedBytesKind:
		word, err := readWord(data, at)
		if err != nil {
			return Value{}, err
		}
		return NewBytes(word[:t.Size]), nil

	case BytesKind, StringKind:
		length, err := readLength(data, at)
		if err != nil {
			return Value{}, err
		}
		buf, err := read(data, at+wordSize, length)
		if err != nil {
			return Value{}, err
		}
		if t.Kind == StringKind {
			return NewString(string(buf)), nil
		}
		return NewBytes(buf), nil

	case SliceKind:
		count, err := readLength(data, at)
		if err != nil {
			return Value{}, err
		}
		start := at + wordSize
		elems, err := decodeElems(*t.Elem, count, data[start:])
		if err != nil {
			return Value{}, shift(err, start)
		}
		return NewArray(elems...), nil

	case ArrayKind:
		if _, err := read(data, at, 0); err != nil {
			return Value{}, err
		}
		elems, err := decodeElems(*t.Elem, t.Size, data[at:])
		if err != nil {
			return Value{}, shift(err, at)
		}
		return NewArray(elems...), nil
	}

	return Value{}, &TypeUnsupportedError{Type: t.String()}
}

func read(data []byte, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > len(data) || length > len(data)-offset {
		return nil, &TruncatedDataError{Offset: offset, Length: length, Size: len(data)}
	}
	return data[offset : offset+length], nil
}

// shift makes the offset of a TruncatedDataError returned for a slice of
// data relative to the whole data again.
func shift(err error, offset int) error {
	if e, ok := err.(*TruncatedDataError); ok {
		return &TruncatedDataError{
			Offset: e.Offset + offset, Length: e.Length, Size: e.Size + offset,
		}
	}
	return err
}

func readWord(data []byte, offset int) ([]byte, error) {
	return read(data, offset, wordSize)
}

// readLength reads a word holding an offset or a length, which can't be
// larger than the data itself.
func readLength(data []byte, offset int) (int, error) {
	word, err := readWord(data, offset)
	if err != nil {
		return 0, err
	}
	n := new(big.Int).SetBytes(word)
	if !n.IsInt64() || n.Int64() > int64(len(data)) {
		return 0, &TruncatedDataError{
			Offset: offset, Length: int(^uint(0) >> 1), Size: len(data),
		}
	}
	return int(n.Int64()), nil
}
