package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

var (
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic is null")
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed is null")
	// ErrNullMasterKey ...
	ErrNullMasterKey = errors.New("master key is null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullPrivateKey ...
	ErrNullPrivateKey = errors.New("private key must not be null")

	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"derivation path must be in the form \"m/purpose'/coin'/account'/change/index\"",
	)
	// ErrInvalidDerivationPathElem ...
	ErrInvalidDerivationPathElem = errors.New("invalid derivation path elem")
	// ErrInvalidExtendedKey ...
	ErrInvalidExtendedKey = errors.New("invalid extended key")
	// ErrInvalidPrivateKey ...
	ErrInvalidPrivateKey = errors.New(
		"private key must be a 32 byte hex string in the range [1, N-1]",
	)
	// ErrOutOfRangeDerivationPathAccount ...
	ErrOutOfRangeDerivationPathAccount = fmt.Errorf(
		"account index must be in range [0, %d]", MaxHardenedValue,
	)
	// ErrPublicOnlyKey ...
	ErrPublicOnlyKey = errors.New("extended key does not hold a private key")
)

// PathParseError is returned for derivation paths that are not syntactically
// valid. Elem is the offending component, if any.
type PathParseError struct {
	Path string
	Elem string
	Err  error
}

func newPathParseError(path, elem string, err error) *PathParseError {
	return &PathParseError{Path: path, Elem: elem, Err: err}
}

func (e *PathParseError) Error() string {
	if e.Elem != "" {
		return fmt.Sprintf(
			"invalid derivation path %q: elem '%s': %v",
			e.Path, strings.TrimSpace(e.Elem), e.Err,
		)
	}
	return fmt.Sprintf("invalid derivation path %q: %v", e.Path, e.Err)
}

func (e *PathParseError) Unwrap() error {
	return e.Err
}

// DerivationError is returned when a child key can't be computed, for example
// when deriving a hardened child from a public-only extended key.
type DerivationError struct {
	Depth uint8
	Index uint32
	Err   error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf(
		"failed to derive child %s at depth %d: %v",
		formatIndex(e.Index), e.Depth, e.Err,
	)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

// IsHardenedFromPublic returns whether err is caused by an attempt to derive a
// hardened child without private key.
func IsHardenedFromPublic(err error) bool {
	return errors.Is(err, hdkeychain.ErrDeriveHardFromPublic)
}

// Wallet is a TRON hierarchical deterministic wallet restored from, or
// generated with, a mnemonic phrase.
type Wallet struct {
	mnemonic  string
	seed      []byte
	masterKey *ExtendedKey
}

// NewWalletOpts is the struct given to NewWallet method
type NewWalletOpts struct {
	EntropySize int
	Passphrase  string
}

// NewWallet generates a new random mnemonic and returns the related wallet.
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	mnemonic, err := NewMnemonic(NewMnemonicOpts{EntropySize: opts.EntropySize})
	if err != nil {
		return nil, err
	}
	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic:   strings.Join(mnemonic, " "),
		Passphrase: opts.Passphrase,
	})
}

// NewWalletFromMnemonicOpts is the struct given to NewWalletFromMnemonic method
type NewWalletFromMnemonicOpts struct {
	Mnemonic   string
	Passphrase string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(strings.TrimSpace(o.Mnemonic)) <= 0 {
		return ErrNullMnemonic
	}
	return nil
}

// NewWalletFromMnemonic restores a wallet from the given mnemonic. The phrase
// is not checked against the BIP39 wordlist, see SeedFromMnemonic.
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := SeedFromMnemonic(opts.Mnemonic, opts.Passphrase)
	masterKey, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		mnemonic:  opts.Mnemonic,
		seed:      seed,
		masterKey: masterKey,
	}, nil
}

// Mnemonic returns the mnemonic phrase of the wallet.
func (w *Wallet) Mnemonic() string {
	return w.mnemonic
}

// Seed returns a copy of the 64-byte BIP39 seed of the wallet.
func (w *Wallet) Seed() []byte {
	return append([]byte{}, w.seed...)
}

// MasterKey returns the root node of the wallet.
func (w *Wallet) MasterKey() *ExtendedKey {
	return w.masterKey
}

// ExtendedKeyOpts is the struct given to ExtendedPrivateKey and
// ExtendedPublicKey methods
type ExtendedKeyOpts struct {
	Account uint32
}

func (o ExtendedKeyOpts) validate() error {
	if o.Account > MaxHardenedValue {
		return ErrOutOfRangeDerivationPathAccount
	}
	return nil
}

// ExtendedPrivateKey returns the extended private key in base58 format of the
// account node m/44'/195'/account'.
func (w *Wallet) ExtendedPrivateKey(opts ExtendedKeyOpts) (string, error) {
	account, err := w.accountKey(opts)
	if err != nil {
		return "", err
	}
	return account.String(), nil
}

// ExtendedPublicKey returns the extended public key in base58 format of the
// account node m/44'/195'/account'.
func (w *Wallet) ExtendedPublicKey(opts ExtendedKeyOpts) (string, error) {
	account, err := w.accountKey(opts)
	if err != nil {
		return "", err
	}
	return account.Neuter().String(), nil
}

// DeriveAccountOpts is the struct given to DeriveAccount method
type DeriveAccountOpts struct {
	DerivationPath string
}

func (o DeriveAccountOpts) validate() error {
	_, err := ParseDerivationPath(o.DerivationPath)
	return err
}

// DeriveAccount derives the key pair and the address at the given path,
// relative paths are resolved against the root of the wallet.
func (w *Wallet) DeriveAccount(opts DeriveAccountOpts) (*DerivedAccount, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	path, _ := ParseDerivationPath(opts.DerivationPath)
	node, err := w.masterKey.DerivePath(path)
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

func (w *Wallet) accountKey(opts ExtendedKeyOpts) (*ExtendedKey, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	path := DefaultBaseDerivationPath.Append(hdkeychain.HardenedKeyStart + opts.Account)
	return w.masterKey.DerivePath(path)
}

func (w *Wallet) validate() error {
	if len(w.seed) <= 0 {
		return ErrNullSeed
	}
	if w.masterKey == nil {
		return ErrNullMasterKey
	}
	return nil
}
