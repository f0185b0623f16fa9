// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/grun-exchange/creditd/account"
)

type keyPairReply struct {
	Principal  account.Principal `json:"principal"`
	PublicKey  string            `json:"publicKey"`
	PrivateKey string            `json:"privateKey"`
}

func runGenerate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	principal, privateKey, err := account.NewKeyPair()
	if nil != err {
		return err
	}

	publicKey, err := principal.PublicKey()
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "principal: %s\n", principal)
	}

	return printJson(m.w, keyPairReply{
		Principal:  principal,
		PublicKey:  hex.EncodeToString(publicKey),
		PrivateKey: hex.EncodeToString(privateKey),
	})
}
