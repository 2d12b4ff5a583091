package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	tests := []struct {
		opts     NewWalletOpts
		numWords int
	}{
		{NewWalletOpts{}, 12},
		{NewWalletOpts{EntropySize: 256}, 24},
		{NewWalletOpts{EntropySize: 160, Passphrase: "secret"}, 15},
	}
	for _, tt := range tests {
		wallet, err := NewWallet(tt.opts)
		require.NoError(t, err)

		mnemonic := wallet.Mnemonic()
		assert.Len(t, strings.Split(mnemonic, " "), tt.numWords)
		assert.True(t, IsMnemonicValid(mnemonic))
		assert.Equal(t, SeedFromMnemonic(mnemonic, tt.opts.Passphrase), wallet.Seed())
	}
}

func TestFailingNewMnemonic(t *testing.T) {
	tests := []int{-1, 127, 257, 130}
	for _, tt := range tests {
		opts := NewMnemonicOpts{
			EntropySize: tt,
		}
		_, err := NewMnemonic(opts)
		assert.Equal(t, ErrInvalidEntropySize, err)
	}
}

func TestNewWalletFromMnemonic(t *testing.T) {
	wallet, err := newTestWallet()
	require.NoError(t, err)
	require.Equal(t, testMasterXprv, wallet.MasterKey().String())

	otherWallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: wallet.Mnemonic(),
	})
	require.NoError(t, err)
	assert.Equal(t, wallet.Seed(), otherWallet.Seed())
	assert.Equal(t, wallet.MasterKey().String(), otherWallet.MasterKey().String())
}

func TestFailingNewWalletFromMnemonic(t *testing.T) {
	tests := []struct {
		opts NewWalletFromMnemonicOpts
		err  error
	}{
		{
			opts: NewWalletFromMnemonicOpts{},
			err:  ErrNullMnemonic,
		},
		{
			opts: NewWalletFromMnemonicOpts{Mnemonic: " \t "},
			err:  ErrNullMnemonic,
		},
	}
	for _, tt := range tests {
		_, err := NewWalletFromMnemonic(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestExtendedKey(t *testing.T) {
	wallet, err := newTestWallet()
	require.NoError(t, err)
	opts := ExtendedKeyOpts{
		Account: 0,
	}

	xprv, err := wallet.ExtendedPrivateKey(opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xprv, "xprv"))

	xpub, err := wallet.ExtendedPublicKey(opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xpub, "xpub"))

	account, err := DeriveAll(DeriveAllOpts{Xpriv: xprv, DerivationPath: "0/1234"})
	require.NoError(t, err)
	assert.Equal(t, testAddress, account.Address)
	assert.Equal(t, xpub, mustNeuter(t, xprv))
}

func TestFailingExtendedKey(t *testing.T) {
	wallet, err := newTestWallet()
	require.NoError(t, err)

	tests := []struct {
		opts ExtendedKeyOpts
		err  error
	}{
		{
			opts: ExtendedKeyOpts{
				Account: MaxHardenedValue + 1,
			},
			err: ErrOutOfRangeDerivationPathAccount,
		},
	}

	for _, tt := range tests {
		_, err := wallet.ExtendedPrivateKey(tt.opts)
		assert.Equal(t, tt.err, err)
		_, err = wallet.ExtendedPublicKey(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestDeriveAccount(t *testing.T) {
	wallet, err := newTestWallet()
	require.NoError(t, err)

	account, err := wallet.DeriveAccount(DeriveAccountOpts{
		DerivationPath: testPath,
	})
	require.NoError(t, err)
	assert.Equal(t, testPath, account.DerivationPath)
	assert.Equal(t, testAddress, account.Address)
	assert.Equal(t, testPrivateKey, account.PrivateKey)
	assert.Equal(t, testPublicKeyHex, account.PublicKey)
	assert.True(t, strings.HasPrefix(account.Xpriv, "xprv"))
	assert.True(t, strings.HasPrefix(account.Xpub, "xpub"))

	_, err = wallet.DeriveAccount(DeriveAccountOpts{DerivationPath: "m/44'/x"})
	assert.ErrorIs(t, err, ErrInvalidDerivationPathElem)
}

func TestDeriveAll(t *testing.T) {
	account, err := DeriveAll(DeriveAllOpts{
		Xpriv:          testMasterXprv,
		DerivationPath: testPath,
	})
	require.NoError(t, err)
	assert.Equal(t, testPath, account.DerivationPath)
	assert.Equal(t, testAddress, account.Address)
	assert.Equal(t, testPrivateKey, account.PrivateKey)
	assert.Equal(t, testPublicKeyHex, account.PublicKey)

	master, _ := ParseExtendedKey(testMasterXprv)
	tests := []struct {
		opts DeriveAllOpts
		err  error
	}{
		{DeriveAllOpts{DerivationPath: testPath}, ErrInvalidExtendedKey},
		{DeriveAllOpts{Xpriv: "xprv", DerivationPath: testPath}, ErrInvalidExtendedKey},
		{DeriveAllOpts{Xpriv: testMasterXprv}, ErrNullDerivationPath},
		{DeriveAllOpts{Xpriv: master.Neuter().String(), DerivationPath: "m/0"}, ErrPublicOnlyKey},
	}
	for _, tt := range tests {
		_, err := DeriveAll(tt.opts)
		assert.ErrorIs(t, err, tt.err)
	}
}

func TestAccountFromPrivateKey(t *testing.T) {
	for _, key := range []string{testPrivateKey, "0x" + testPrivateKey} {
		account, err := AccountFromPrivateKey(key)
		require.NoError(t, err)
		assert.Equal(t, testAddress, account.Address)
		assert.Equal(t, testPublicKeyHex, account.PublicKey)
		assert.Equal(t, testPrivateKey, account.PrivateKey)
	}

	tests := []struct {
		key string
		err error
	}{
		{"", ErrNullPrivateKey},
		{"zz", ErrInvalidPrivateKey},
		{testPrivateKey[:62], ErrInvalidPrivateKey},
		{strings.Repeat("0", 64), ErrInvalidPrivateKey},
		{"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", ErrInvalidPrivateKey},
	}
	for _, tt := range tests {
		_, err := AccountFromPrivateKey(tt.key)
		assert.Equal(t, tt.err, err)
	}
}

func newTestWallet() (*Wallet, error) {
	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: testMnemonic,
	})
}

func mustNeuter(t *testing.T, xprv string) string {
	key, err := ParseExtendedKey(xprv)
	require.NoError(t, err)
	return key.Neuter().String()
}
