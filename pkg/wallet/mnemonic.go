package wallet

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// NewMnemonicOpts is the struct given to NewMnemonic method
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	return generateMnemonic(opts.EntropySize)
}

// IsMnemonicValid checks the phrase against the english BIP39 wordlist and
// its checksum. It is never applied implicitly when deriving seeds.
func IsMnemonicValid(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic returns the 64-byte BIP39 seed of the given phrase:
// PBKDF2-HMAC-SHA512 with 2048 iterations and "mnemonic"+passphrase as salt.
//
// The phrase is treated as opaque password material and is not validated
// against any wordlist, so that any string gives a stable seed.
func SeedFromMnemonic(mnemonic, passphrase string) []byte {
	return bip39.NewSeed(mnemonic, passphrase)
}

// MasterKeyFromMnemonic is a shortcut for NewMasterKey(SeedFromMnemonic(...)).
func MasterKeyFromMnemonic(mnemonic, passphrase string) (*ExtendedKey, error) {
	if len(strings.TrimSpace(mnemonic)) <= 0 {
		return nil, ErrNullMnemonic
	}
	return NewMasterKey(SeedFromMnemonic(mnemonic, passphrase))
}
