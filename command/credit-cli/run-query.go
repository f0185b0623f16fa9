// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/rpc/credits"
)

func runAsset(c *cli.Context) error {

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

	response, err := client.GetAsset(assetId)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	start := c.Uint64("start")
	count := c.Int("count")
	if count <= 0 || count > credits.MaximumAssetsCount {
		count = credits.MaximumAssetsCount
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.ListAssets(start, count)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

// use an explicit holder or fall back to the caller
func holderOrCaller(s string, m *metadata) (account.Principal, error) {
	if "" != s {
		return checkPrincipal(s, ErrRequiredPrincipal)
	}
	return checkPrincipal(m.caller, ErrRequiredCaller)
}

func runBalance(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	holder, err := holderOrCaller(c.String("holder"), m)
	if nil != err {
		return err
	}

	assetId, err := checkAssetId(c.Uint64("asset"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Balance(&credits.BalanceArguments{
		Holder:  holder,
		AssetId: assetId,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runHoldings(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	holder, err := holderOrCaller(c.String("holder"), m)
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Holdings(&credits.HolderArguments{
		Holder: holder,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runRetirements(c *cli.Context) error {

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

	response, err := client.Retirements(assetId)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
