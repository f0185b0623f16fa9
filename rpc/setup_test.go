// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"crypto/tls"
	"net/rpc/jsonrpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/rpc"
	"github.com/grun-exchange/creditd/rpc/fixtures"
	"github.com/grun-exchange/creditd/rpc/listeners"
	"github.com/grun-exchange/creditd/rpc/node"
	"github.com/grun-exchange/creditd/rpc/server"
)

func TestInitialiseAndFinalise(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	cer, key := fixtures.CertificatePair()
	configuration := listeners.Configuration{
		MaximumConnections: 2,
		Listen:             []string{"127.0.0.1:0"},
		Certificate:        cer,
		PrivateKey:         key,
	}

	err := rpc.Initialise(&configuration, server.Handlers{}, "2.0")
	require.Nil(t, err, "wrong Initialise")

	err = rpc.Initialise(&configuration, server.Handlers{}, "2.0")
	assert.Equal(t, fault.AlreadyInitialised, err, "second Initialise")

	addresses := rpc.Addresses()
	require.Equal(t, 1, len(addresses), "wrong address count")

	conn, err := tls.Dial("tcp", addresses[0], &tls.Config{InsecureSkipVerify: true})
	require.Nil(t, err, "dial error")
	client := jsonrpc.NewClient(conn)

	var info node.InfoReply
	err = client.Call("Node.Info", &node.InfoArguments{}, &info)
	assert.Nil(t, err, "wrong Node.Info")
	assert.Equal(t, "2.0", info.Version, "wrong version")
	assert.Equal(t, uint64(1), info.RPCs, "wrong connection count")
	_ = client.Close()

	err = rpc.Finalise()
	assert.Nil(t, err, "wrong Finalise")

	err = rpc.Finalise()
	assert.Equal(t, fault.NotInitialised, err, "second Finalise")
}
