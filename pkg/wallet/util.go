package wallet

import (
	"encoding/hex"
	"math"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/tyler-smith/go-bip39"
)

const (
	// MaxHardenedValue is the max value for hardened indexes of BIP32
	// derivation paths
	MaxHardenedValue = math.MaxUint32 - hdkeychain.HardenedKeyStart
)

func generateMnemonic(entropySize int) ([]string, error) {
	entropy, err := bip39.NewEntropy(entropySize)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

func parsePrivateKey(str string) (*btcec.PrivateKey, error) {
	str = strings.TrimPrefix(strings.TrimSpace(str), "0x")
	if len(str) <= 0 {
		return nil, ErrNullPrivateKey
	}
	buf, err := hex.DecodeString(str)
	if err != nil || len(buf) != 32 {
		return nil, ErrInvalidPrivateKey
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(buf); overflow || scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(buf)
	return priv, nil
}
