// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/grun-exchange/creditd/command/credit-cli/rpccalls"
	"github.com/grun-exchange/creditd/rpc/purchase"
)

func runInitiate(c *cli.Context) error {
	return runStart(c, (*rpccalls.Client).Initiate)
}

func runBuy(c *cli.Context) error {
	return runStart(c, (*rpccalls.Client).Buy)
}

type startCall func(*rpccalls.Client, *rpccalls.StartData) (*purchase.RecordReply, error)

func runStart(c *cli.Context, call startCall) error {

	m := c.App.Metadata["config"].(*metadata)

	buyer, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	assetId, err := checkAssetId(c.Uint64("asset"))
	if nil != err {
		return err
	}

	quantity, err := checkQuantity(c.Uint64("quantity"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := call(client, &rpccalls.StartData{
		Buyer:    buyer,
		AssetId:  assetId,
		Quantity: quantity,
	})
	if nil != err {
		return err
	}

	return printRecord(m, response)
}

// create an action for one of the settlement steps
func runStep(step string) func(c *cli.Context) error {
	return func(c *cli.Context) error {

		m := c.App.Metadata["config"].(*metadata)

		id, err := checkSettlementId(c.String("settlement"))
		if nil != err {
			return err
		}

		client, err := connect(m)
		if nil != err {
			return err
		}
		defer client.Close()

		response, err := client.Step(step, id)
		if nil != err {
			return err
		}

		return printRecord(m, response)
	}
}

// a failed step still carries the record in its resulting phase
func printRecord(m *metadata, response *purchase.RecordReply) error {
	if err := printJson(m.w, response); nil != err {
		return err
	}
	if "" != response.Error {
		return fmt.Errorf("settlement: %s", response.Error)
	}
	return nil
}

func runSettlement(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := checkSettlementId(c.String("settlement"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.GetSettlement(id)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runSettlements(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	buyer, err := holderOrCaller(c.String("buyer"), m)
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.ListSettlements(buyer)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runAvailability(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	assetId, err := checkAssetId(c.Uint64("asset"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Availability(assetId)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
