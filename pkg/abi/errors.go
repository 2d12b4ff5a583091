package abi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature ...
	ErrInvalidSignature = errors.New(
		"method signature must be in the form \"name(type1,type2,...)\"",
	)
	// ErrNullMethod ...
	ErrNullMethod = errors.New("method name must not be null")
)

// TypeUnsupportedError is returned for type names outside of the supported
// vocabulary.
type TypeUnsupportedError struct {
	Type string
}

func (e *TypeUnsupportedError) Error() string {
	return fmt.Sprintf("abi: unsupported type %q", e.Type)
}

// TypeMismatchError is returned when a value can't be converted to the type
// it is declared with.
type TypeMismatchError struct {
	Type   string
	Value  string
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"abi: cannot use %s as type %s: %s", e.Value, e.Type, e.Reason,
	)
}

// TruncatedDataError is returned when decoding would read past the end of the
// given data.
type TruncatedDataError struct {
	Offset int
	Length int
	Size   int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf(
		"abi: cannot read %d bytes at offset %d from data of length %d",
		e.Length, e.Offset, e.Size,
	)
}

func mismatch(t Type, v Value, reason string, args ...interface{}) error {
	return &TypeMismatchError{
		Type:   t.String(),
		Value:  v.String(),
		Reason: fmt.Sprintf(reason, args...),
	}
}
