package main

import (
	"fmt"
	"strings"

	"github.com/tdex-network/tronkit/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/tronkit/internal/infrastructure/storage/db/badger"
	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"
)

const secretSize = 32

var topicFlag = cli.StringFlag{
	Name: "topic",
	Usage: fmt.Sprintf(
		"one of %s", strings.Join(pubsub.Topics(), ", "),
	),
}

var webhook = cli.Command{
	Name:  "webhook",
	Usage: "manage the endpoints notified of the state of tracked transactions",
	Subcommands: []*cli.Command{
		{
			Name:   "add",
			Usage:  "subscribe an endpoint to a topic",
			Action: webhookAddAction,
			Flags: []cli.Flag{
				&topicFlag,
				&cli.StringFlag{
					Name:  "endpoint",
					Usage: "http(s) url invoked with a POST request",
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "secret used to sign the Authorization bearer token",
				},
				&cli.BoolFlag{
					Name:  "gen-secret",
					Usage: "generate a random secret, printed once",
				},
			},
		},
		{
			Name:      "remove",
			Usage:     "unsubscribe an endpoint",
			ArgsUsage: "<id>",
			Action:    webhookRemoveAction,
		},
		{
			Name:   "list",
			Usage:  "list the subscribed endpoints, optionally filtered by topic",
			Action: webhookListAction,
			Flags:  []cli.Flag{&topicFlag},
		},
	},
}

func webhookAddAction(ctx *cli.Context) error {
	topic := ctx.String(topicFlag.Name)
	endpoint := ctx.String("endpoint")
	if len(topic) <= 0 || len(endpoint) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getPubSub(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	secret := ctx.String("secret")
	if len(secret) <= 0 && ctx.Bool("gen-secret") {
		secret = randstr.Hex(secretSize)
	}

	id, err := svc.Subscribe(ctx.Context, topic, endpoint, secret)
	if err != nil {
		return err
	}
	resp := map[string]string{"id": id}
	if ctx.Bool("gen-secret") {
		resp["secret"] = secret
	}
	printJSON(resp)
	return nil
}

func webhookRemoveAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getPubSub(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Unsubscribe(ctx.Context, ctx.Args().First()); err != nil {
		return err
	}
	fmt.Println("webhook removed")
	return nil
}

func webhookListAction(ctx *cli.Context) error {
	svc, cleanup, err := getPubSub(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	topic := strings.ToUpper(strings.TrimSpace(ctx.String(topicFlag.Name)))
	subs, err := svc.ListSubscriptionsForTopic(ctx.Context, topic)
	if err != nil {
		return err
	}
	for i := range subs {
		subs[i].Secret = ""
	}
	printJSON(subs)
	return nil
}

func getPubSub(ctx *cli.Context) (*pubsub.Service, func(), error) {
	cfg, err := getConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := openDb(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := pubsub.NewService(
		dbbadger.NewSubscriptionRepositoryImpl(db), cfg.RequestTimeout,
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return svc, func() { _ = db.Close() }, nil
}
