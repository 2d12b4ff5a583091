package wallet

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tdex-network/tronkit/pkg/address"
)

// DerivedAccount holds every representation of a derived key pair. Keys are
// hex encoded, the public key is uncompressed and keeps the 0x04 prefix.
type DerivedAccount struct {
	DerivationPath string `json:"derivationPath,omitempty"`
	Xpriv          string `json:"xpriv,omitempty"`
	Xpub           string `json:"xpub,omitempty"`
	PrivateKey     string `json:"privateKey"`
	PublicKey      string `json:"publicKey"`
	Address        string `json:"address"`
}

// DeriveAllOpts is the struct given to DeriveAll method
type DeriveAllOpts struct {
	Xpriv          string
	DerivationPath string
}

func (o DeriveAllOpts) validate() error {
	if len(o.Xpriv) <= 0 {
		return ErrInvalidExtendedKey
	}
	if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
		return err
	}
	return nil
}

// DeriveAll derives the node at the given path from the provided extended
// private key and returns all its keys and its address.
func DeriveAll(opts DeriveAllOpts) (*DerivedAccount, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	root, err := ParseExtendedKey(opts.Xpriv)
	if err != nil {
		return nil, err
	}
	if !root.IsPrivate() {
		return nil, ErrPublicOnlyKey
	}

	path, _ := ParseDerivationPath(opts.DerivationPath)
	node, err := root.DerivePath(path)
	if err != nil {
		return nil, err
	}
	account, err := node.Account()
	if err != nil {
		return nil, err
	}
	account.DerivationPath = path.String()
	return account, nil
}

// AccountFromPrivateKey returns the public key and the address of the given
// hex encoded private key.
func AccountFromPrivateKey(privateKey string) (*DerivedAccount, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return accountFromPrivateKey(priv), nil
}

// PrivateKeyFromHex parses a hex encoded 32-byte secp256k1 private key.
func PrivateKeyFromHex(privateKey string) (*btcec.PrivateKey, error) {
	return parsePrivateKey(privateKey)
}

func accountFromPrivateKey(priv *btcec.PrivateKey) *DerivedAccount {
	pub := priv.PubKey()
	return &DerivedAccount{
		PrivateKey: hex.EncodeToString(priv.Serialize()),
		PublicKey:  hex.EncodeToString(pub.SerializeUncompressed()),
		Address:    address.FromECDSAPublicKey(pub).String(),
	}
}
