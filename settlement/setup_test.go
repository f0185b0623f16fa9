// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/reservoir"
	"github.com/grun-exchange/creditd/retry"
	"github.com/grun-exchange/creditd/settlement"
	"github.com/grun-exchange/creditd/settlement/mocks"
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

const (
	admin  = account.Principal("admin")
	seller = account.Principal("seller")
	buyer1 = account.Principal("buyer-one")
	buyer2 = account.Principal("buyer-two")
)

var (
	startTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	unitPrice = decimal.RequireFromString("12.50")

	fastPolicy = retry.Policy{
		Initial:  time.Millisecond,
		Maximum:  2 * time.Millisecond,
		Timeout:  time.Second,
		Attempts: 3,
	}
)

type clock struct {
	sync.Mutex
	t time.Time
}

func (c *clock) Now() time.Time {
	c.Lock()
	defer c.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.Lock()
	c.t = c.t.Add(d)
	c.Unlock()
}

type outbox struct {
	sync.Mutex
	items []reconcile.Notification
}

func (b *outbox) Enqueue(n reconcile.Notification) bool {
	b.Lock()
	defer b.Unlock()
	b.items = append(b.items, n)
	return true
}

func (b *outbox) list() []reconcile.Notification {
	b.Lock()
	defer b.Unlock()
	return append([]reconcile.Notification{}, b.items...)
}

type harness struct {
	o         *settlement.Orchestrator
	ledger    *ledger.Ledger
	registry  *access.Registry
	reservoir *reservoir.Reservoir
	store     *storage.Store
	signer    *mocks.MockSigner
	outbox    *outbox
	clock     *clock
	assetId   uint64
}

func newHarness(t *testing.T, ctl *gomock.Controller) *harness {
	store, err := storage.OpenMemory()
	require.Nil(t, err, "open store")
	t.Cleanup(store.Close)

	h := &harness{
		store:  store,
		signer: mocks.NewMockSigner(ctl),
		outbox: &outbox{},
		clock:  &clock{t: startTime},
	}

	registry, err := access.New(logger.New("access"), store.Roles)
	require.Nil(t, err, "registry")
	require.Nil(t, registry.Grant(access.Admin, admin), "grant admin")
	require.Nil(t, registry.Grant(access.VerifiedSeller, seller), "grant seller")

	h.registry = registry
	h.ledger = ledger.New(logger.New("ledger"), store, registry, ledger.Configuration{
		AutoApprove: true,
		Clock:       h.clock.Now,
	})
	h.assetId, err = h.ledger.Mint(seller, ledger.MintArguments{
		ProjectName: "Katingan Mentaya",
		Verifier:    "Verra",
		Expiry:      startTime.AddDate(1, 0, 0),
		Quantity:    100,
		Price:       unitPrice,
	})
	require.Nil(t, err, "mint")

	h.start(t)
	return h
}

// create an orchestrator over the harness store
func (h *harness) start(t *testing.T) {
	h.reservoir = reservoir.New(logger.New("reservoir"), h.ledger)
	h.o = settlement.New(logger.New("settlement"), h.store.Settlements, h.ledger, h.reservoir, h.signer, h.outbox, settlement.Configuration{
		ReservationWindow: 15 * time.Minute,
		PollInterval:      time.Hour,
		SweepInterval:     time.Hour,
		FeeRate:           settlement.DefaultFeeRate,
		Retry:             fastPolicy,
		Clock:             h.clock.Now,
	})
	require.Nil(t, h.o.Restore(), "restore")
	t.Cleanup(h.o.Stop)
}

func (h *harness) available(t *testing.T) uint64 {
	info, err := h.o.Availability(h.assetId)
	require.Nil(t, err, "availability")
	return info.Available
}
