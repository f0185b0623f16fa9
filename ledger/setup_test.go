// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/storage"
)

const (
	testingDirName = "testing"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func TestMain(m *testing.M) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	if err := logger.Initialise(logging); nil != err {
		panic("logger initialise failed: " + err.Error())
	}

	rc := m.Run()

	logger.Finalise()
	removeFiles()
	os.Exit(rc)
}

var (
	admin    = account.Principal("admin")
	minter   = account.Principal("minter")
	seller   = account.Principal("seller")
	buyer    = account.Principal("buyer")
	operator = account.Principal("operator")
	nobody   = account.Principal("nobody")

	testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
)

type testLedger struct {
	*ledger.Ledger
	store    *storage.Store
	registry *access.Registry
}

func newTestLedger(t *testing.T, autoApprove bool) *testLedger {
	store, err := storage.OpenMemory()
	require.Nil(t, err, "open store")
	t.Cleanup(store.Close)

	registry, err := access.New(logger.New("access"), store.Roles)
	require.Nil(t, err, "registry")
	require.Nil(t, registry.Grant(access.Admin, admin), "grant admin")
	require.Nil(t, registry.Grant(access.Minter, minter), "grant minter")
	require.Nil(t, registry.Grant(access.VerifiedSeller, seller), "grant seller")

	l := ledger.New(logger.New("ledger"), store, registry, ledger.Configuration{
		AutoApprove:     autoApprove,
		MaximumQuantity: 1000000,
		Clock:           func() time.Time { return testNow },
	})
	return &testLedger{
		Ledger:   l,
		store:    store,
		registry: registry,
	}
}

func mintArguments(quantity uint64) ledger.MintArguments {
	return ledger.MintArguments{
		ProjectName: "Rimba Raya",
		Verifier:    "Verra",
		Expiry:      testNow.AddDate(5, 0, 0),
		Quantity:    quantity,
		Price:       decimal.RequireFromString("12.50"),
		MetadataRef: "ipfs://bafy",
	}
}

func (l *testLedger) mint(t *testing.T, owner account.Principal, quantity uint64) uint64 {
	id, err := l.Mint(owner, mintArguments(quantity))
	require.Nil(t, err, "mint")
	return id
}

func (l *testLedger) balanceOf(t *testing.T, holder account.Principal, id uint64) uint64 {
	n, err := l.BalanceOf(holder, id)
	require.Nil(t, err, "balance of")
	return n
}
