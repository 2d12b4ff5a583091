package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tdex-network/tronkit/pkg/abi"
	"github.com/urfave/cli/v2"
)

var (
	typesFlag = cli.StringFlag{
		Name:  "types",
		Usage: "comma separated list of argument types, ie. address,uint256",
	}
	valuesFlag = cli.StringFlag{
		Name:  "values",
		Usage: `JSON array of argument values, ie. ["TNxg4z...", 1000]`,
		Value: "[]",
	}
)

var abiCmd = cli.Command{
	Name:  "abi",
	Usage: "encode and decode smart contract call payloads",
	Subcommands: []*cli.Command{
		{
			Name:   "encode",
			Usage:  "encode a contract call",
			Action: abiEncodeAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "method",
					Usage: "method name, signature or hex selector, ie. transfer(address,uint256)",
				},
				&typesFlag,
				&valuesFlag,
				&cli.BoolFlag{
					Name:  "no-selector",
					Usage: "encode only the arguments",
				},
			},
		},
		{
			Name:   "decode",
			Usage:  "decode a contract call or its result",
			Action: abiDecodeAction,
			Flags: []cli.Flag{
				&typesFlag,
				&cli.StringFlag{
					Name:  "data",
					Usage: "hex encoded payload",
				},
				&cli.BoolFlag{
					Name:  "no-selector",
					Usage: "the payload has no leading selector, like call results",
				},
			},
		},
		{
			Name:      "selector",
			Usage:     "get the method id of a function signature",
			ArgsUsage: "<signature>",
			Action:    abiSelectorAction,
		},
	},
}

func abiEncodeAction(ctx *cli.Context) error {
	types := splitTypes(ctx.String(typesFlag.Name))
	values, err := abi.ParseJSONValues([]byte(ctx.String(valuesFlag.Name)))
	if err != nil {
		return err
	}

	var data []byte
	if ctx.Bool("no-selector") {
		data, err = abi.EncodeStrings(types, values)
	} else {
		data, err = abi.EncodeCall(ctx.String("method"), types, values)
	}
	if err != nil {
		return err
	}

	fmt.Println(hex.EncodeToString(data))
	return nil
}

func abiDecodeAction(ctx *cli.Context) error {
	types := splitTypes(ctx.String(typesFlag.Name))
	data, err := hex.DecodeString(
		strings.TrimPrefix(strings.TrimSpace(ctx.String("data")), "0x"),
	)
	if err != nil {
		return err
	}

	if ctx.Bool("no-selector") {
		values, err := abi.DecodeStrings(types, data)
		if err != nil {
			return err
		}
		printJSON(values)
		return nil
	}

	call, err := abi.DecodeCall(types, data)
	if err != nil {
		return err
	}
	printJSON(call)
	return nil
}

func abiSelectorAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	name, types, err := abi.ParseSignature(ctx.Args().First())
	if err != nil {
		return err
	}

	printJSON(map[string]string{
		"signature": abi.Signature(name, types),
		"methodId":  hex.EncodeToString(abi.MethodID(name, types)),
		"eventId":   hex.EncodeToString(abi.EventID(name, types)),
	})
	return nil
}

func splitTypes(str string) []string {
	types := make([]string, 0)
	for _, t := range strings.Split(str, ",") {
		if t = strings.TrimSpace(t); len(t) > 0 {
			types = append(types, t)
		}
	}
	return types
}
