package address

import (
	"errors"
	"fmt"
)

// FormatError is returned for text or binary input that can't be an address:
// invalid alphabet, wrong length or unknown network prefix.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Input, e.Reason)
}

// ChecksumError is returned when the trailing 4 bytes of a Base58Check
// address don't match the double-SHA256 of its payload.
type ChecksumError struct {
	Input string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("invalid address %q: checksum mismatch", e.Input)
}

// IsChecksumError ...
func IsChecksumError(err error) bool {
	var e *ChecksumError
	return errors.As(err, &e)
}

// IsFormatError ...
func IsFormatError(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}
