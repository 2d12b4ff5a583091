package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tronkit/internal/config"
	"github.com/tdex-network/tronkit/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/tronkit/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tronkit/pkg/explorer/trongrid"
	"github.com/tdex-network/tronkit/pkg/stats"
	"github.com/tdex-network/tronkit/pkg/tracker"
	"github.com/urfave/cli/v2"
)

var (
	nodeFlag = cli.StringFlag{
		Name:  "node",
		Usage: "url of the TRON full node HTTP API",
	}
	solidityNodeFlag = cli.StringFlag{
		Name:  "solidity-node",
		Usage: "url of the TRON solidity node HTTP API, defaults to --node",
	}
	apiKeyFlag = cli.StringFlag{
		Name:  "api-key",
		Usage: "TronGrid api key",
	}
	datadirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory of the transaction history",
	}
	logLevelFlag = cli.IntFlag{
		Name:  "log-level",
		Usage: "logrus log level, from 0 (panic) to 6 (trace)",
	}
	noHistoryFlag = cli.BoolFlag{
		Name:  "no-history",
		Usage: "do not store tracked transactions in the local history",
	}
	statsFlag = cli.BoolFlag{
		Name:  "stats",
		Usage: "append node and transaction metrics to the stats file in the datadir",
	}

	metrics = stats.NewMetrics()

	// flag name -> config key
	configFlags = map[string]string{
		nodeFlag.Name:         config.FullNodeURLKey,
		solidityNodeFlag.Name: config.SolidityNodeURLKey,
		apiKeyFlag.Name:       config.APIKeyKey,
		datadirFlag.Name:      config.DatadirKey,
		logLevelFlag.Name:     config.LogLevelKey,
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "tronkit"
	app.Usage = "Command line interface for TRON HD wallets, ABI payloads and transactions"
	app.Flags = []cli.Flag{
		&nodeFlag,
		&solidityNodeFlag,
		&apiKeyFlag,
		&datadirFlag,
		&logLevelFlag,
		&noHistoryFlag,
		&statsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := getConfig(ctx)
		if err != nil {
			return err
		}
		log.SetLevel(cfg.LogLevel)
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		if !ctx.Bool(statsFlag.Name) {
			return nil
		}
		cfg, err := getConfig(ctx)
		if err != nil {
			return err
		}
		if err := cfg.InitDatadir(); err != nil {
			return err
		}
		return metrics.DumpToFile(cfg.StatsFile())
	}
	app.Commands = append(
		app.Commands,
		&seed,
		&xprv,
		&derive,
		&account,
		&addr,
		&abiCmd,
		&balance,
		&transfer,
		&call,
		&wait,
		&watch,
		&history,
		&webhook,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getConfig(ctx *cli.Context) (*config.Config, error) {
	overrides := map[string]interface{}{}
	for flag, key := range configFlags {
		if ctx.IsSet(flag) {
			overrides[key] = ctx.Value(flag)
		}
	}
	return config.Load(overrides)
}

func getExplorer(ctx *cli.Context) (trongrid.Service, *config.Config, error) {
	cfg, err := getConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := cfg.TrongridOpts()
	opts.Observer = metrics
	svc, err := trongrid.NewService(opts)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// getTracker returns a tracker storing the transaction history in the
// datadir, unless --no-history is set.
func getTracker(ctx *cli.Context) (*tracker.Tracker, func(), error) {
	svc, cfg, err := getExplorer(ctx)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	opts := tracker.Opts{
		Explorer:    svc,
		RetryPolicy: cfg.RetryPolicy(),
		Observer:    metrics,
	}
	if !ctx.Bool(noHistoryFlag.Name) {
		db, err := openDb(cfg)
		if err != nil {
			return nil, nil, err
		}
		opts.Repository = dbbadger.NewEntryRepositoryImpl(db)
		cleanup = func() { _ = db.Close() }

		webhooks, err := pubsub.NewService(
			dbbadger.NewSubscriptionRepositoryImpl(db), cfg.RequestTimeout,
		)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Observer = observers{metrics, webhooks}
	}

	tr, err := tracker.NewTracker(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return tr, cleanup, nil
}

// observers notifies every observer of a transition, in order.
type observers []tracker.Observer

func (o observers) ObserveTransition(
	ctx context.Context, txID string, state tracker.State,
) {
	for _, observer := range o {
		observer.ObserveTransition(ctx, txID, state)
	}
}

func openDb(cfg *config.Config) (*dbbadger.DbManager, error) {
	if err := cfg.InitDatadir(); err != nil {
		return nil, err
	}
	var logger *log.Logger
	if cfg.LogLevel >= log.DebugLevel {
		logger = log.StandardLogger()
	}
	if logger == nil {
		return dbbadger.NewDbManager(cfg.DbDir(), nil)
	}
	return dbbadger.NewDbManager(cfg.DbDir(), logger)
}

func printJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to encode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[tronkit] %v\n", err)
	}
	os.Exit(1)
}
