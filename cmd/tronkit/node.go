package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"

	"github.com/btcsuite/btcd/btcec/v2"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tronkit/pkg/abi"
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/explorer"
	"github.com/tdex-network/tronkit/pkg/mathutil"
	"github.com/tdex-network/tronkit/pkg/tracker"
	"github.com/tdex-network/tronkit/pkg/transaction"
	"github.com/tdex-network/tronkit/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var (
	waitFlag = cli.BoolFlag{
		Name:  "wait",
		Usage: "wait for the transaction to be confirmed",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "max time to wait for confirmation, 0 waits forever",
	}
)

var balance = cli.Command{
	Name:      "balance",
	Usage:     "get the TRX balance of an account",
	ArgsUsage: "<address>",
	Action:    balanceAction,
}

var transfer = cli.Command{
	Name:   "transfer",
	Usage:  "send TRX, or a TRC10 token, to an address",
	Action: transferAction,
	Flags: []cli.Flag{
		&privateKeyFlag,
		&cli.StringFlag{
			Name:  "to",
			Usage: "receiver address",
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "amount of TRX or tokens to send, ie. 1.5",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "id of the TRC10 token to send instead of TRX, ie. 1002000",
		},
		&cli.IntFlag{
			Name:  "precision",
			Usage: "number of decimals of the TRC10 token",
		},
		&waitFlag,
		&timeoutFlag,
	},
}

var call = cli.Command{
	Name:   "call",
	Usage:  "call a smart contract",
	Action: callAction,
	Flags: []cli.Flag{
		&privateKeyFlag,
		&cli.StringFlag{
			Name:  "owner",
			Usage: "caller address of constant calls made without private key",
		},
		&cli.StringFlag{
			Name:  "contract",
			Usage: "contract address",
		},
		&cli.StringFlag{
			Name:  "method",
			Usage: "function signature, ie. transfer(address,uint256)",
		},
		&valuesFlag,
		&cli.StringFlag{
			Name:  "call-value",
			Usage: "amount of TRX to send along with the call",
			Value: "0",
		},
		&cli.Int64Flag{
			Name:  "fee-limit",
			Usage: "max SUN to burn for energy, defaults to the configured one",
		},
		&cli.BoolFlag{
			Name:  "constant",
			Usage: "run a read-only call without broadcasting a transaction",
		},
		&cli.StringFlag{
			Name:  "result-types",
			Usage: "comma separated types to decode the result of constant calls",
		},
		&waitFlag,
		&timeoutFlag,
	},
}

var wait = cli.Command{
	Name:      "wait",
	Usage:     "wait for a transaction to be confirmed",
	ArgsUsage: "<txid>",
	Action:    waitAction,
	Flags: []cli.Flag{
		&timeoutFlag,
	},
}

var history = cli.Command{
	Name:   "history",
	Usage:  "list the transactions tracked so far",
	Action: historyAction,
}

func balanceAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	a, err := address.Parse(ctx.Args().First())
	if err != nil {
		return err
	}

	svc, _, err := getExplorer(ctx)
	if err != nil {
		return err
	}
	sun, err := svc.GetBalance(ctx.Context, a)
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"address": a.String(),
		"sun":     sun,
		"trx":     mathutil.FormatTrx(sun),
	})
	return nil
}

func transferAction(ctx *cli.Context) error {
	key, from, err := parseSigner(ctx)
	if err != nil {
		return err
	}
	to, err := address.Parse(ctx.String("to"))
	if err != nil {
		return err
	}

	svc, _, err := getExplorer(ctx)
	if err != nil {
		return err
	}

	var tx *transaction.Record
	if token := ctx.String("token"); len(token) > 0 {
		amount, err := parseTokenAmount(ctx.String("amount"), ctx.Int("precision"))
		if err != nil {
			return err
		}
		tx, err = svc.CreateAssetTransfer(ctx.Context, explorer.AssetTransferOpts{
			From:    from,
			To:      to,
			AssetID: token,
			Amount:  amount,
		})
		if err != nil {
			return err
		}
	} else {
		amount, err := mathutil.TrxToSun(ctx.String("amount"))
		if err != nil {
			return err
		}
		tx, err = svc.CreateTransfer(ctx.Context, explorer.TransferOpts{
			From:   from,
			To:     to,
			Amount: amount,
		})
		if err != nil {
			return err
		}
	}

	return signAndSubmit(ctx, key, tx)
}

// parseTokenAmount returns the amount of a TRC10 token in its smallest unit.
func parseTokenAmount(amount string, precision int) (int64, error) {
	units, err := mathutil.ToBaseUnits(amount, int32(precision))
	if err != nil {
		return 0, err
	}
	if !units.IsInt64() {
		return 0, mathutil.ErrAmountOverflow
	}
	return units.Int64(), nil
}

func callAction(ctx *cli.Context) error {
	contract, err := address.Parse(ctx.String("contract"))
	if err != nil {
		return err
	}
	values, err := abi.ParseJSONValues([]byte(ctx.String(valuesFlag.Name)))
	if err != nil {
		return err
	}
	data, err := abi.EncodeCall(ctx.String("method"), nil, values)
	if err != nil {
		return err
	}
	callValue, err := mathutil.TrxToSun(ctx.String("call-value"))
	if err != nil {
		return err
	}

	svc, cfg, err := getExplorer(ctx)
	if err != nil {
		return err
	}
	feeLimit := cfg.FeeLimit
	if ctx.IsSet("fee-limit") {
		feeLimit = ctx.Int64("fee-limit")
	}

	opts := explorer.TriggerOpts{
		Contract:  contract,
		Method:    ctx.String("method"),
		Parameter: data[4:],
		FeeLimit:  feeLimit,
		CallValue: callValue,
	}

	if ctx.Bool("constant") {
		owner, err := parseOwner(ctx)
		if err != nil {
			return err
		}
		opts.Owner = owner

		res, err := svc.TriggerConstantContract(ctx.Context, opts)
		if err != nil {
			return err
		}
		if reason, ok := abi.DecodeRevertReason(res); ok {
			return fmt.Errorf("call reverted: %s", reason)
		}

		resultTypes := splitTypes(ctx.String("result-types"))
		if len(resultTypes) <= 0 {
			fmt.Println(hex.EncodeToString(res))
			return nil
		}
		decoded, err := abi.DecodeStrings(resultTypes, res)
		if err != nil {
			return err
		}
		printJSON(decoded)
		return nil
	}

	key, owner, err := parseSigner(ctx)
	if err != nil {
		return err
	}
	opts.Owner = owner

	tx, err := svc.TriggerSmartContract(ctx.Context, opts)
	if err != nil {
		return err
	}
	return signAndSubmit(ctx, key, tx)
}

func waitAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	tr, cleanup, err := getTracker(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return waitForConfirmation(ctx, tr, ctx.Args().First())
}

func historyAction(ctx *cli.Context) error {
	tr, cleanup, err := getTracker(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := tr.History(ctx.Context)
	if err != nil {
		return err
	}
	printJSON(entries)
	return nil
}

func signAndSubmit(
	ctx *cli.Context, key *btcec.PrivateKey, tx *transaction.Record,
) error {
	if err := tx.Sign(key); err != nil {
		return err
	}

	tr, cleanup, err := getTracker(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := tr.Submit(ctx.Context, tx)
	if err != nil {
		return err
	}
	log.Infof("tx %s submitted", out.TxID)

	if !ctx.Bool(waitFlag.Name) {
		printJSON(out)
		return nil
	}
	return waitForConfirmation(ctx, tr, out.TxID)
}

// waitForConfirmation waits until the transaction is confirmed, the timeout
// expires or the process is interrupted.
func waitForConfirmation(
	ctx *cli.Context, tr *tracker.Tracker, txid string,
) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	waitCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()
	if timeout := ctx.Duration(timeoutFlag.Name); timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(waitCtx, timeout)
		defer cancel()
	}

	out, err := tr.WaitUntilConfirmed(waitCtx, txid, cfg.PollInterval)
	if out != nil {
		printJSON(out)
	}
	if err != nil {
		return err
	}
	if out.State == tracker.Cancelled {
		return fmt.Errorf("stopped waiting for tx %s", txid)
	}
	return nil
}

func parseSigner(ctx *cli.Context) (*btcec.PrivateKey, address.Address, error) {
	key, err := wallet.PrivateKeyFromHex(ctx.String(privateKeyFlag.Name))
	if err != nil {
		return nil, address.Address{}, err
	}
	return key, address.FromECDSAPublicKey(key.PubKey()), nil
}

func parseOwner(ctx *cli.Context) (address.Address, error) {
	if owner := ctx.String("owner"); len(owner) > 0 {
		return address.Parse(owner)
	}
	_, owner, err := parseSigner(ctx)
	return owner, err
}
