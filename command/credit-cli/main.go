// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/grun-exchange/creditd/command/credit-cli/rpccalls"
)

type metadata struct {
	connect string
	caller  string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "credit-cli"
	app.Usage = "client for the creditd carbon credit service"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2130",
			Usage:  " creditd host/IP and port, `HOST:PORT`",
			EnvVar: "CREDIT_CLI_CONNECT",
		},
		cli.StringFlag{
			Name:   "caller, a",
			Value:  "",
			Usage:  " principal performing the operation `PRINCIPAL`",
			EnvVar: "CREDIT_CLI_CALLER",
		},
	}

	assetFlag := cli.Uint64Flag{
		Name:  "asset, i",
		Usage: "*credit batch `ID`",
	}
	quantityFlag := cli.Uint64Flag{
		Name:  "quantity, q",
		Usage: "*number of units `COUNT`",
	}
	principalFlag := cli.StringFlag{
		Name:  "principal, p",
		Value: "",
		Usage: "*target principal `PRINCIPAL`",
	}
	settlementFlag := cli.StringFlag{
		Name:  "settlement, s",
		Value: "",
		Usage: "*settlement `ID`",
	}

	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate a wallet key pair, not sent to any server",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runGenerate,
		},
		{
			Name:      "info",
			Usage:     "display creditd status",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runInfo,
		},
		{
			Name:      "mint",
			Usage:     "issue a new credit batch to the caller",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "project, n",
					Value: "",
					Usage: "*project name `STRING`",
				},
				cli.StringFlag{
					Name:  "verifier, r",
					Value: "",
					Usage: " verification standard `STRING`",
				},
				cli.StringFlag{
					Name:  "expiry, e",
					Value: "",
					Usage: "*expiry `YYYY-MM-DD`",
				},
				quantityFlag,
				cli.StringFlag{
					Name:  "price, P",
					Value: "0",
					Usage: " unit price `DECIMAL`",
				},
				cli.StringFlag{
					Name:  "metadata, m",
					Value: "",
					Usage: " metadata reference `URI`",
				},
			},
			Action: runMint,
		},
		{
			Name:      "transfer",
			Usage:     "move units between holders",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: " source holder, default is caller `PRINCIPAL`",
				},
				cli.StringFlag{
					Name:  "to, t",
					Value: "",
					Usage: "*receiving holder `PRINCIPAL`",
				},
				assetFlag,
				quantityFlag,
			},
			Action: runTransfer,
		},
		{
			Name:      "approve",
			Usage:     "allow an operator to transfer the caller's units",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				principalFlag,
				cli.BoolFlag{
					Name:  "revoke, r",
					Usage: " remove an existing approval",
				},
			},
			Action: runApprove,
		},
		{
			Name:      "retire",
			Usage:     "permanently retire units held by the caller",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag, quantityFlag},
			Action:    runRetire,
		},
		{
			Name:      "review",
			Usage:     "approve or reject a pending batch",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag,
				cli.StringFlag{
					Name:  "decision, d",
					Value: "",
					Usage: "*review result [approve|reject] `DECISION`",
				},
			},
			Action: runReview,
		},
		{
			Name:      "verify-seller",
			Usage:     "mark a seller as verified",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				principalFlag,
				cli.BoolFlag{
					Name:  "revoke, r",
					Usage: " remove verification",
				},
			},
			Action: runVerifySeller,
		},
		{
			Name:      "grant",
			Usage:     "grant a role to a principal",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				principalFlag,
				cli.StringFlag{
					Name:  "role, r",
					Value: "",
					Usage: "*[admin|minter|seller] `ROLE`",
				},
			},
			Action: runGrantRole,
		},
		{
			Name:      "revoke",
			Usage:     "revoke a role from a principal",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				principalFlag,
				cli.StringFlag{
					Name:  "role, r",
					Value: "",
					Usage: "*[admin|minter|seller] `ROLE`",
				},
			},
			Action: runRevokeRole,
		},
		{
			Name:      "price",
			Usage:     "change the unit price of a batch",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag,
				cli.StringFlag{
					Name:  "price, P",
					Value: "",
					Usage: "*unit price `DECIMAL`",
				},
			},
			Action: runPrice,
		},
		{
			Name:      "asset",
			Usage:     "show a credit batch and its supply",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag},
			Action:    runAsset,
		},
		{
			Name:      "list",
			Usage:     "list credit batches",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 1,
					Usage: " first batch `ID`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: 20,
					Usage: " maximum batches to return `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:      "balance",
			Usage:     "units of a batch held by a holder",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "holder, o",
					Value: "",
					Usage: " holder, default is caller `PRINCIPAL`",
				},
				assetFlag,
			},
			Action: runBalance,
		},
		{
			Name:      "holdings",
			Usage:     "all balances of a holder",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "holder, o",
					Value: "",
					Usage: " holder, default is caller `PRINCIPAL`",
				},
			},
			Action: runHoldings,
		},
		{
			Name:      "retirements",
			Usage:     "retirement events of a batch",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag},
			Action:    runRetirements,
		},
		{
			Name:      "roles",
			Usage:     "roles of a principal or members of a role",
			ArgsUsage: "\n   (+ = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "principal, p",
					Value: "",
					Usage: "+principal to query `PRINCIPAL`",
				},
				cli.StringFlag{
					Name:  "role, r",
					Value: "",
					Usage: "+role to list [admin|minter|seller] `ROLE`",
				},
			},
			Action: runRoles,
		},
		{
			Name:      "initiate",
			Usage:     "reserve units and start a settlement for the caller",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag, quantityFlag},
			Action:    runInitiate,
		},
		{
			Name:      "buy",
			Usage:     "run a complete purchase for the caller",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag, quantityFlag},
			Action:    runBuy,
		},
		{
			Name:      "authorise",
			Usage:     "authorise payment of a settlement",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{settlementFlag},
			Action:    runStep("Authorise"),
		},
		{
			Name:      "submit",
			Usage:     "submit an authorised settlement",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{settlementFlag},
			Action:    runStep("Submit"),
		},
		{
			Name:      "poll",
			Usage:     "check a submitted settlement for finality",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{settlementFlag},
			Action:    runStep("Poll"),
		},
		{
			Name:      "cancel",
			Usage:     "cancel a settlement before submission",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{settlementFlag},
			Action:    runStep("Cancel"),
		},
		{
			Name:      "settlement",
			Usage:     "show a settlement and its order",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{settlementFlag},
			Action:    runSettlement,
		},
		{
			Name:      "settlements",
			Usage:     "list settlements of a buyer",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "buyer, b",
					Value: "",
					Usage: " buyer, default is caller `PRINCIPAL`",
				},
			},
			Action: runSettlements,
		},
		{
			Name:      "availability",
			Usage:     "balance, reserved and available units of a batch",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag},
			Action:    runAvailability,
		},
		{
			Name:  "version",
			Usage: "display credit-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		connect, err := checkConnect(c.GlobalString("connect"))
		if nil != err {
			return err
		}

		if verbose {
			fmt.Fprintf(e, "connect: %q\n", connect)
		}

		c.App.Metadata["config"] = &metadata{
			connect: connect,
			caller:  c.GlobalString("caller"),
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	return app
}

// open a connection to the configured creditd
func connect(m *metadata) (*rpccalls.Client, error) {
	return rpccalls.NewClient(m.connect, m.verbose, m.e)
}
