package main

import (
	"fmt"
	"strings"

	"github.com/tdex-network/tronkit/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var (
	mnemonicFlag = cli.StringFlag{
		Name:  "mnemonic",
		Usage: "space separated mnemonic phrase",
	}
	passphraseFlag = cli.StringFlag{
		Name:  "passphrase",
		Usage: "optional passphrase of the mnemonic",
	}
	privateKeyFlag = cli.StringFlag{
		Name:  "private-key",
		Usage: "hex encoded private key",
	}
)

var seed = cli.Command{
	Name:   "seed",
	Usage:  "generate a new mnemonic seed",
	Action: seedAction,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "entropy-size",
			Usage: "entropy size in bits, in range [128, 256] multiple of 32",
			Value: 128,
		},
	},
}

var xprv = cli.Command{
	Name:   "xprv",
	Usage:  "get the extended keys of an account of the given mnemonic",
	Action: xprvAction,
	Flags: []cli.Flag{
		&mnemonicFlag,
		&passphraseFlag,
		&cli.UintFlag{
			Name:  "account",
			Usage: "index of the account m/44'/195'/<account>'",
		},
	},
}

var derive = cli.Command{
	Name:  "derive",
	Usage: "derive the key pair and the address at the given path",
	Description: "derive from either a mnemonic or an extended private key. " +
		"The path is relative to the given key",
	Action: deriveAction,
	Flags: []cli.Flag{
		&mnemonicFlag,
		&passphraseFlag,
		&cli.StringFlag{
			Name:  "xprv",
			Usage: "base58 extended private key",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "derivation path",
			Value: "m/44'/195'/0'/0/0",
		},
	},
}

var account = cli.Command{
	Name:   "account",
	Usage:  "get the public key and the address of a private key",
	Action: accountAction,
	Flags: []cli.Flag{
		&privateKeyFlag,
	},
}

func seedAction(ctx *cli.Context) error {
	mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{
		EntropySize: ctx.Int("entropy-size"),
	})
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(mnemonic, " "))
	return nil
}

func xprvAction(ctx *cli.Context) error {
	w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic:   ctx.String(mnemonicFlag.Name),
		Passphrase: ctx.String(passphraseFlag.Name),
	})
	if err != nil {
		return err
	}

	opts := wallet.ExtendedKeyOpts{Account: uint32(ctx.Uint("account"))}
	xprv, err := w.ExtendedPrivateKey(opts)
	if err != nil {
		return err
	}
	xpub, err := w.ExtendedPublicKey(opts)
	if err != nil {
		return err
	}

	printJSON(map[string]string{
		"xprv": xprv,
		"xpub": xpub,
	})
	return nil
}

func deriveAction(ctx *cli.Context) error {
	mnemonic := ctx.String(mnemonicFlag.Name)
	xprv := ctx.String("xprv")
	path := ctx.String("path")

	if (len(mnemonic) > 0) == (len(xprv) > 0) {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	var (
		acc *wallet.DerivedAccount
		err error
	)
	if len(xprv) > 0 {
		acc, err = wallet.DeriveAll(wallet.DeriveAllOpts{
			Xpriv:          xprv,
			DerivationPath: path,
		})
	} else {
		var w *wallet.Wallet
		w, err = wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
			Mnemonic:   mnemonic,
			Passphrase: ctx.String(passphraseFlag.Name),
		})
		if err != nil {
			return err
		}
		acc, err = w.DeriveAccount(wallet.DeriveAccountOpts{DerivationPath: path})
	}
	if err != nil {
		return err
	}

	printJSON(acc)
	return nil
}

func accountAction(ctx *cli.Context) error {
	acc, err := wallet.AccountFromPrivateKey(ctx.String(privateKeyFlag.Name))
	if err != nil {
		return err
	}

	printJSON(acc)
	return nil
}
