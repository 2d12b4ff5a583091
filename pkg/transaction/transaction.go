// Package transaction models TRON transactions as returned by the node
// builder endpoints and signs them locally.
package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tdex-network/tronkit/pkg/address"
)

const (
	// SignatureLength is the size of a r||s||v signature.
	SignatureLength = 65

	recoveryIDOffset = 27
)

var (
	// ErrNullRawData ...
	ErrNullRawData = errors.New("transaction raw data must not be null")
	// ErrInvalidRawData ...
	ErrInvalidRawData = errors.New("transaction raw data must be a valid hex string")
	// ErrIDMismatch ...
	ErrIDMismatch = errors.New("transaction id does not match the hash of raw data")
	// ErrNullPrivateKey ...
	ErrNullPrivateKey = errors.New("private key must not be null")
	// ErrInvalidSignature ...
	ErrInvalidSignature = errors.New("signature must be a 65-byte hex string")
)

// Result is the execution status attached to a transaction by the node.
type Result struct {
	ContractRet string `json:"contractRet,omitempty"`
}

// Record is a TRON transaction in the JSON form used by the HTTP API: the
// protobuf encoded body in hex, its decoded view, the id and the signatures.
type Record struct {
	ID         string          `json:"txID"`
	RawData    json.RawMessage `json:"raw_data,omitempty"`
	RawDataHex string          `json:"raw_data_hex"`
	Signature  []string        `json:"signature,omitempty"`
	Visible    bool            `json:"visible"`
	Ret        []Result        `json:"ret,omitempty"`
}

// NewRecord returns a record for the given hex encoded body. The id is the
// SHA-256 hash of the body.
func NewRecord(rawDataHex string) (*Record, error) {
	rawDataHex = strings.TrimSpace(rawDataHex)
	if len(rawDataHex) <= 0 {
		return nil, ErrNullRawData
	}
	raw, err := hex.DecodeString(rawDataHex)
	if err != nil {
		return nil, ErrInvalidRawData
	}
	hash := sha256.Sum256(raw)
	return &Record{
		ID:         hex.EncodeToString(hash[:]),
		RawDataHex: rawDataHex,
	}, nil
}

// RawBytes returns the protobuf encoded body of the transaction.
func (r *Record) RawBytes() ([]byte, error) {
	if len(r.RawDataHex) <= 0 {
		return nil, ErrNullRawData
	}
	raw, err := hex.DecodeString(r.RawDataHex)
	if err != nil {
		return nil, ErrInvalidRawData
	}
	return raw, nil
}

// Hash returns the SHA-256 hash of the body, that is the binary id of the
// transaction.
func (r *Record) Hash() ([]byte, error) {
	raw, err := r.RawBytes()
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(raw)
	return hash[:], nil
}

// Verify makes sure the id of the record is the hash of its body.
func (r *Record) Verify() error {
	hash, err := r.Hash()
	if err != nil {
		return err
	}
	if !strings.EqualFold(r.ID, hex.EncodeToString(hash)) {
		return ErrIDMismatch
	}
	return nil
}

// Sign adds the signature of the given key over the transaction id.
func (r *Record) Sign(key *btcec.PrivateKey) error {
	if key == nil {
		return ErrNullPrivateKey
	}
	if err := r.Verify(); err != nil {
		return err
	}
	hash, _ := r.Hash()

	ecdsaKey, err := crypto.ToECDSA(key.Serialize())
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	sig, err := crypto.Sign(hash, ecdsaKey)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	sig[SignatureLength-1] += recoveryIDOffset

	r.Signature = append(r.Signature, hex.EncodeToString(sig))
	return nil
}

// Signers returns the addresses recovered from the signatures of the record.
func (r *Record) Signers() ([]address.Address, error) {
	hash, err := r.Hash()
	if err != nil {
		return nil, err
	}

	signers := make([]address.Address, 0, len(r.Signature))
	for _, s := range r.Signature {
		sig, err := hex.DecodeString(s)
		if err != nil || len(sig) != SignatureLength {
			return nil, ErrInvalidSignature
		}
		if sig[SignatureLength-1] >= recoveryIDOffset {
			sig[SignatureLength-1] -= recoveryIDOffset
		}

		pubkey, err := crypto.SigToPub(hash, sig)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
		}
		signer, err := address.FromPublicKey(crypto.FromECDSAPub(pubkey))
		if err != nil {
			return nil, err
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// IsSigned ...
func (r *Record) IsSigned() bool {
	return len(r.Signature) > 0
}

// ContractRet returns the execution status reported by the node, if any.
func (r *Record) ContractRet() string {
	if len(r.Ret) <= 0 {
		return ""
	}
	return r.Ret[0].ContractRet
}

// Decode returns the decoded view of the body, as provided by the node.
func (r *Record) Decode() (*RawData, error) {
	if len(r.RawData) <= 0 {
		return nil, ErrNullRawData
	}
	rawData := &RawData{}
	if err := json.Unmarshal(r.RawData, rawData); err != nil {
		return nil, fmt.Errorf("unmarshal raw data: %w", err)
	}
	return rawData, nil
}
