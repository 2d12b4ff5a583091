package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/tronkit/pkg/address"
)

// ExtendedKey is a node of a BIP32 key tree. It holds the private key unless
// it has been neutered.
type ExtendedKey struct {
	key *hdkeychain.ExtendedKey
}

// NewMasterKey returns the root node of the key tree generated from the given
// seed, that is HMAC-SHA512 keyed with "Bitcoin seed".
func NewMasterKey(seed []byte) (*ExtendedKey, error) {
	if len(seed) <= 0 {
		return nil, ErrNullSeed
	}
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	return &ExtendedKey{key}, nil
}

// ParseExtendedKey parses a base58 encoded extended private or public key.
func ParseExtendedKey(str string) (*ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(str)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExtendedKey, err)
	}
	return &ExtendedKey{key}, nil
}

// Child derives the child node at the given index. A hardened child can be
// derived only from a private node.
func (k *ExtendedKey) Child(index uint32, hardened bool) (*ExtendedKey, error) {
	if hardened {
		if index >= hdkeychain.HardenedKeyStart {
			return nil, &DerivationError{
				Depth: k.Depth(), Index: index, Err: ErrInvalidDerivationPathElem,
			}
		}
		index += hdkeychain.HardenedKeyStart
	}
	return k.derive(index)
}

// DerivePath derives the node at the given path starting from k.
func (k *ExtendedKey) DerivePath(path DerivationPath) (*ExtendedKey, error) {
	node := k
	for _, step := range path {
		next, err := node.derive(step)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// DerivePathString parses the given path and derives the related node.
func (k *ExtendedKey) DerivePathString(path string) (*ExtendedKey, error) {
	p, err := ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	return k.DerivePath(p)
}

func (k *ExtendedKey) derive(index uint32) (*ExtendedKey, error) {
	child, err := k.key.Derive(index)
	if err != nil {
		return nil, &DerivationError{Depth: k.Depth(), Index: index, Err: err}
	}
	return &ExtendedKey{child}, nil
}

// Neuter returns the public version of the node. A public node is returned
// unchanged.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	// Neuter only fails for unknown network versions, which can't be the case
	// for keys created or parsed by hdkeychain.
	pub, err := k.key.Neuter()
	if err != nil {
		return k
	}
	return &ExtendedKey{pub}
}

// String returns the base58 serialization of the node, xprv or xpub.
func (k *ExtendedKey) String() string {
	return k.key.String()
}

// IsPrivate ...
func (k *ExtendedKey) IsPrivate() bool {
	return k.key.IsPrivate()
}

// Depth ...
func (k *ExtendedKey) Depth() uint8 {
	return k.key.Depth()
}

// ParentFingerprint ...
func (k *ExtendedKey) ParentFingerprint() uint32 {
	return k.key.ParentFingerprint()
}

// ChildIndex ...
func (k *ExtendedKey) ChildIndex() uint32 {
	return k.key.ChildIndex()
}

// ChainCode ...
func (k *ExtendedKey) ChainCode() []byte {
	return k.key.ChainCode()
}

// PrivateKey returns the secp256k1 private key of a private node.
func (k *ExtendedKey) PrivateKey() (*btcec.PrivateKey, error) {
	if !k.IsPrivate() {
		return nil, ErrPublicOnlyKey
	}
	return k.key.ECPrivKey()
}

// PublicKey returns the secp256k1 public key of the node.
func (k *ExtendedKey) PublicKey() (*btcec.PublicKey, error) {
	return k.key.ECPubKey()
}

// PrivateKeyHex returns the 32-byte private key in hex format.
func (k *ExtendedKey) PrivateKeyHex() (string, error) {
	priv, err := k.PrivateKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(priv.Serialize()), nil
}

// PublicKeyBytes returns the 64-byte uncompressed public key, without the
// leading format byte.
func (k *ExtendedKey) PublicKeyBytes() ([]byte, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed()[1:], nil
}

// Address returns the TRON address of the node.
func (k *ExtendedKey) Address() (address.Address, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return address.Address{}, err
	}
	return address.FromECDSAPublicKey(pub), nil
}

// Account returns the full set of keys and the address of a private node.
func (k *ExtendedKey) Account() (*DerivedAccount, error) {
	priv, err := k.PrivateKey()
	if err != nil {
		return nil, err
	}
	account := accountFromPrivateKey(priv)
	account.Xpriv = k.String()
	account.Xpub = k.Neuter().String()
	return account, nil
}
