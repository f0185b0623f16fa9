// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"bytes"
	"net"
	"net/rpc/jsonrpc"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/counter"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/rpc/credits"
	"github.com/grun-exchange/creditd/rpc/fixtures"
	"github.com/grun-exchange/creditd/rpc/server"
	"github.com/grun-exchange/creditd/storage"
)

var (
	admin  = account.Principal("admin")
	seller = account.Principal("seller")
)

func newTestClient(t *testing.T, trace *bytes.Buffer) *Client {
	store, err := storage.OpenMemory()
	require.Nil(t, err, "open store")
	t.Cleanup(store.Close)

	registry, err := access.New(logger.New(fixtures.LogCategory), store.Roles)
	require.Nil(t, err, "registry")
	require.Nil(t, registry.Grant(access.Admin, admin), "grant admin")

	l := ledger.New(logger.New(fixtures.LogCategory), store, registry, ledger.Configuration{})

	count := counter.Counter(0)
	s, err := server.Create(logger.New(fixtures.LogCategory), "2.0", &count, server.Handlers{
		Ledger: l,
		Roles:  registry,
	})
	require.Nil(t, err, "server create")

	serverConn, clientConn := net.Pipe()
	go s.ServeCodec(jsonrpc.NewServerCodec(serverConn))

	client := newClient(clientConn, nil != trace, trace)
	t.Cleanup(client.Close)
	return client
}

func TestNodeInfo(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	trace := &bytes.Buffer{}
	client := newTestClient(t, trace)

	info, err := client.GetNodeInfo()
	require.Nil(t, err, "wrong GetNodeInfo")
	assert.Equal(t, "2.0", info.Version, "wrong version")
	assert.Contains(t, trace.String(), "Node.Info Request:", "missing request trace")
	assert.Contains(t, trace.String(), "Node.Info Reply:", "missing reply trace")
}

func TestMintAndQuery(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	client := newTestClient(t, nil)

	_, err := client.VerifySeller(&credits.SellerArguments{Caller: admin, Seller: seller, Verified: true})
	require.Nil(t, err, "wrong VerifySeller")

	minted, err := client.Mint(&credits.MintArguments{
		Caller:      seller,
		ProjectName: "Rimba Raya",
		Verifier:    "Verra",
		Expiry:      time.Now().AddDate(3, 0, 0),
		Quantity:    50,
		Price:       decimal.RequireFromString("12.5"),
	})
	require.Nil(t, err, "wrong Mint")

	_, err = client.Review(&credits.ReviewArguments{Caller: admin, AssetId: minted.AssetId, Decision: "approve"})
	require.Nil(t, err, "wrong Review")

	asset, err := client.GetAsset(minted.AssetId)
	require.Nil(t, err, "wrong GetAsset")
	assert.Equal(t, ledger.Verified, asset.Asset.Status, "wrong status")

	balance, err := client.Balance(&credits.BalanceArguments{Holder: seller, AssetId: minted.AssetId})
	require.Nil(t, err, "wrong Balance")
	assert.Equal(t, uint64(50), balance.Balance, "wrong balance")

	list, err := client.ListAssets(1, 10)
	require.Nil(t, err, "wrong ListAssets")
	assert.Equal(t, 1, len(list.Assets), "wrong asset count")

	roles, err := client.Roles(&credits.RolesArguments{Role: "seller"})
	require.Nil(t, err, "wrong Roles")
	assert.Equal(t, []account.Principal{seller}, roles.Members, "wrong members")
}

func TestRemoteError(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	client := newTestClient(t, nil)

	_, err := client.GetAsset(99)
	require.NotNil(t, err, "missing asset found")
	assert.Equal(t, fault.UnknownAsset.Error(), err.Error(), "wrong remote error")
}
