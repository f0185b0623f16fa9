// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/urfave/cli"

	"github.com/grun-exchange/creditd/rpc/credits"
)

func runMint(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	project := strings.TrimSpace(c.String("project"))
	if "" == project {
		return ErrRequiredProject
	}

	expiry, err := checkExpiry(c.String("expiry"))
	if nil != err {
		return err
	}

	quantity, err := checkQuantity(c.Uint64("quantity"))
	if nil != err {
		return err
	}

	price, err := checkPrice(c.String("price"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Mint(&credits.MintArguments{
		Caller:      caller,
		ProjectName: project,
		Verifier:    c.String("verifier"),
		Expiry:      expiry,
		Quantity:    quantity,
		Price:       price,
		MetadataRef: c.String("metadata"),
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runTransfer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	from := caller
	if "" != c.String("from") {
		from, err = checkPrincipal(c.String("from"), ErrRequiredPrincipal)
		if nil != err {
			return err
		}
	}

	to, err := checkPrincipal(c.String("to"), ErrRequiredPrincipal)
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

	response, err := client.Transfer(&credits.TransferArguments{
		Caller:   caller,
		From:     from,
		To:       to,
		AssetId:  assetId,
		Quantity: quantity,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runApprove(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	holder, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	operator, err := checkPrincipal(c.String("principal"), ErrRequiredPrincipal)
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Approve(&credits.ApprovalArguments{
		Holder:   holder,
		Operator: operator,
		Approved: !c.Bool("revoke"),
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runRetire(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
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

	response, err := client.Retire(&credits.RetireArguments{
		Caller:   caller,
		AssetId:  assetId,
		Quantity: quantity,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runPrice(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	assetId, err := checkAssetId(c.Uint64("asset"))
	if nil != err {
		return err
	}

	price, err := checkPrice(c.String("price"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.UpdatePrice(&credits.PriceArguments{
		Caller:  caller,
		AssetId: assetId,
		Price:   price,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
