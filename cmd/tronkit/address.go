package main

import (
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/urfave/cli/v2"
)

var addr = cli.Command{
	Name:      "address",
	Usage:     "convert an address between its base58 and hex formats",
	ArgsUsage: "<address>",
	Action:    addressAction,
}

func addressAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, err := address.Parse(ctx.Args().First())
	if err != nil {
		return err
	}

	printJSON(map[string]string{
		"base58": a.String(),
		"hex":    a.Hex(),
	})
	return nil
}
