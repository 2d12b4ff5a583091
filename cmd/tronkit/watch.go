package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/crawler"
	"github.com/urfave/cli/v2"
)

var addressesFlag = cli.StringSliceFlag{
	Name:  "address",
	Usage: "account to watch the balance of, can be repeated",
}

var watch = cli.Command{
	Name:      "watch",
	Usage:     "stream the status of transactions and the balance of accounts",
	ArgsUsage: "[txid...]",
	Action:    watchAction,
	Flags: []cli.Flag{
		&addressesFlag,
		&timeoutFlag,
	},
}

func watchAction(ctx *cli.Context) error {
	txids := ctx.Args().Slice()
	addrs := ctx.StringSlice(addressesFlag.Name)
	if len(txids) <= 0 && len(addrs) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	observables := make([]crawler.Observable, 0, len(txids)+len(addrs))
	for _, txid := range txids {
		observables = append(observables, crawler.NewTransactionObservable(txid))
	}
	for _, a := range addrs {
		addr, err := address.Parse(a)
		if err != nil {
			return err
		}
		observables = append(observables, crawler.NewAccountObservable(addr))
	}

	svc, cfg, err := getExplorer(ctx)
	if err != nil {
		return err
	}
	watcher := crawler.NewService(crawler.Opts{
		ExplorerSvc:       svc,
		Interval:          cfg.PollInterval,
		RequestsPerSecond: cfg.RequestsPerSecond,
		ErrorHandler: func(err error) {
			log.WithError(err).Warn("failed to fetch watched data")
		},
	})
	for _, o := range observables {
		watcher.AddObservable(o)
	}
	go watcher.Start()

	watchCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()
	if timeout := ctx.Duration(timeoutFlag.Name); timeout > 0 {
		var cancel context.CancelFunc
		watchCtx, cancel = context.WithTimeout(watchCtx, timeout)
		defer cancel()
	}

	return streamEvents(watchCtx, watcher, txids, len(addrs) > 0, printJSON)
}

// streamEvents prints the events of the watcher until every transaction is
// either confirmed or failed. Accounts are watched until ctx is done.
func streamEvents(
	ctx context.Context, watcher crawler.Service, txids []string,
	watchAccounts bool, output func(interface{}),
) error {
	pending := make(map[string]struct{}, len(txids))
	for _, txid := range txids {
		pending[txid] = struct{}{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		watcher.Stop()
	}()

	for event := range watcher.GetEventChannel() {
		switch e := event.(type) {
		case crawler.QuitEvent:
			if len(pending) > 0 {
				return fmt.Errorf("stopped watching %d transactions", len(pending))
			}
			return nil
		case crawler.TransactionEvent:
			output(e)
			if !e.Type().IsFinal() {
				continue
			}
			delete(pending, e.TxID)
			if len(pending) <= 0 && !watchAccounts {
				cancel()
			}
		default:
			output(event)
		}
	}
	return nil
}
