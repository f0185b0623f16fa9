// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/urfave/cli"

	"github.com/grun-exchange/creditd/command/credit-cli/rpccalls"
	"github.com/grun-exchange/creditd/rpc/credits"
)

func runReview(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	assetId, err := checkAssetId(c.Uint64("asset"))
	if nil != err {
		return err
	}

	decision := strings.TrimSpace(c.String("decision"))
	if "" == decision {
		return ErrRequiredDecision
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Review(&credits.ReviewArguments{
		Caller:   caller,
		AssetId:  assetId,
		Decision: decision,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runVerifySeller(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	seller, err := checkPrincipal(c.String("principal"), ErrRequiredPrincipal)
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.VerifySeller(&credits.SellerArguments{
		Caller:   caller,
		Seller:   seller,
		Verified: !c.Bool("revoke"),
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runGrantRole(c *cli.Context) error {
	return runRole(c, (*rpccalls.Client).GrantRole)
}

func runRevokeRole(c *cli.Context) error {
	return runRole(c, (*rpccalls.Client).RevokeRole)
}

type roleCall func(*rpccalls.Client, *credits.RoleArguments) (*credits.ActionReply, error)

func runRole(c *cli.Context, call roleCall) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkPrincipal(m.caller, ErrRequiredCaller)
	if nil != err {
		return err
	}

	principal, err := checkPrincipal(c.String("principal"), ErrRequiredPrincipal)
	if nil != err {
		return err
	}

	role, err := checkRole(c.String("role"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := call(client, &credits.RoleArguments{
		Caller:    caller,
		Role:      role,
		Principal: principal,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runRoles(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	arguments := &credits.RolesArguments{}
	if s := strings.TrimSpace(c.String("role")); "" != s {
		role, err := checkRole(s)
		if nil != err {
			return err
		}
		arguments.Role = role.String()
	} else if s := strings.TrimSpace(c.String("principal")); "" != s {
		p, err := checkPrincipal(s, ErrRequiredPrincipal)
		if nil != err {
			return err
		}
		arguments.Principal = p
	} else {
		return ErrRequiredRoleOrHolder
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Roles(arguments)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
