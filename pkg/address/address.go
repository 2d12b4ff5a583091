package address

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// MainnetPrefix is the leading byte of every TRON mainnet address.
	MainnetPrefix byte = 0x41
	// Length is the size in bytes of an address, prefix included.
	Length = 21
	// PayloadLength is the size of the public key hash carried by an address.
	PayloadLength = 20
	// HexLength is the number of hex chars of the raw representation.
	HexLength = 2 * Length
	// Base58Length is the number of chars of the checksummed representation.
	Base58Length = 34
)

// Address is the 21-byte binary form of a TRON account: the network prefix
// followed by the last 20 bytes of the Keccak-256 hash of the public key.
type Address [Length]byte

// FromPublicKey returns the address of the given uncompressed public key,
// either in its 64-byte form or 65-byte form with the leading 0x04.
func FromPublicKey(pubkey []byte) (Address, error) {
	switch len(pubkey) {
	case 65:
		if pubkey[0] != 0x04 {
			return Address{}, &FormatError{
				Input:  hex.EncodeToString(pubkey),
				Reason: "uncompressed public key must start with 0x04",
			}
		}
		pubkey = pubkey[1:]
	case 64:
	default:
		return Address{}, &FormatError{
			Input:  hex.EncodeToString(pubkey),
			Reason: "public key must be 64 bytes long",
		}
	}

	hash := crypto.Keccak256(pubkey)

	var addr Address
	addr[0] = MainnetPrefix
	copy(addr[1:], hash[len(hash)-PayloadLength:])
	return addr, nil
}

// FromECDSAPublicKey returns the address of the given secp256k1 public key.
func FromECDSAPublicKey(pubkey *btcec.PublicKey) Address {
	// 65 bytes with the right format byte can't fail.
	addr, _ := FromPublicKey(pubkey.SerializeUncompressed())
	return addr
}

// FromPayload builds a mainnet address out of a 20-byte public key hash.
func FromPayload(payload []byte) (Address, error) {
	if len(payload) != PayloadLength {
		return Address{}, &FormatError{
			Input:  hex.EncodeToString(payload),
			Reason: "payload must be 20 bytes long",
		}
	}
	var addr Address
	addr[0] = MainnetPrefix
	copy(addr[1:], payload)
	return addr, nil
}

// FromBytes builds an address out of its 21-byte binary form.
func FromBytes(b []byte) (Address, error) {
	if len(b) != Length {
		return Address{}, &FormatError{
			Input:  hex.EncodeToString(b),
			Reason: "address must be 21 bytes long",
		}
	}
	var addr Address
	copy(addr[:], b)
	return addr, nil
}

// FromBase58 parses the checksummed text form of an address (ie. T...).
func FromBase58(text string) (Address, error) {
	payload, version, err := base58.CheckDecode(text)
	if err != nil {
		if err == base58.ErrChecksum {
			return Address{}, &ChecksumError{Input: text}
		}
		return Address{}, &FormatError{Input: text, Reason: err.Error()}
	}
	if len(payload) != PayloadLength {
		return Address{}, &FormatError{
			Input:  text,
			Reason: "decoded payload must be 20 bytes long",
		}
	}
	if version != MainnetPrefix {
		return Address{}, &FormatError{
			Input:  text,
			Reason: "unknown network prefix",
		}
	}

	var addr Address
	addr[0] = version
	copy(addr[1:], payload)
	return addr, nil
}

// FromHex parses the raw hex form of an address. No checksum is involved, any
// well formed 42-char hex string round trips exactly.
func FromHex(text string) (Address, error) {
	str := trimHexPrefix(text)
	if len(str) != HexLength {
		return Address{}, &FormatError{
			Input:  text,
			Reason: "hex address must be 42 chars long",
		}
	}
	b, err := hex.DecodeString(str)
	if err != nil {
		return Address{}, &FormatError{Input: text, Reason: "invalid hex string"}
	}
	var addr Address
	copy(addr[:], b)
	return addr, nil
}

// Parse accepts either the checksummed or the raw hex form of an address.
func Parse(text string) (Address, error) {
	text = strings.TrimSpace(text)
	if len(trimHexPrefix(text)) == HexLength {
		return FromHex(text)
	}
	return FromBase58(text)
}

// IsValid returns whether the given text is a well formed checksummed address.
func IsValid(text string) bool {
	_, err := FromBase58(text)
	return err == nil
}

// String returns the Base58Check form of the address.
func (a Address) String() string {
	return base58.CheckEncode(a[1:], a[0])
}

// Hex returns the lowercase raw hex form of the address, prefix included.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns a copy of the 21 bytes of the address.
func (a Address) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, a[:])
	return b
}

// Payload returns a copy of the 20-byte public key hash.
func (a Address) Payload() []byte {
	b := make([]byte, PayloadLength)
	copy(b, a[1:])
	return b
}

// Prefix returns the network prefix byte.
func (a Address) Prefix() byte {
	return a[0]
}

// IsZero returns whether the address has never been set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Equal ...
func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting both forms.
func (a *Address) UnmarshalText(text []byte) error {
	addr, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func trimHexPrefix(str string) string {
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		return str[2:]
	}
	return str
}
