// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package settlement - drive purchases from reservation to finality
//
// A settlement moves INITIATED -> AUTHORIZED -> SUBMITTED -> CONFIRMED,
// leaving for FAILED or EXPIRED on error or deadline.  Every change of
// phase is persisted under the orchestrator lock together with the
// matching reservation change, so a terminal record never holds
// inventory.  External calls run outside that lock, serialised per
// record.
package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/reservoir"
	"github.com/grun-exchange/creditd/retry"
	"github.com/grun-exchange/creditd/storage"
)

// defaults for unset configuration
const (
	DefaultReservationWindow = 15 * time.Minute
	DefaultPollInterval      = 2 * time.Second
	DefaultSweepInterval     = 5 * time.Second
)

// AssetSource - asset metadata, normally the ledger
type AssetSource interface {
	Asset(assetId uint64) (*ledger.Asset, error)
}

// Outbox - queue of outcomes for the reconciliation service
type Outbox interface {
	Enqueue(n reconcile.Notification) bool
}

// Configuration - orchestrator options
type Configuration struct {
	ReservationWindow time.Duration
	PollInterval      time.Duration
	SweepInterval     time.Duration
	FeeRate           decimal.Decimal
	Retry             retry.Policy
	Clock             func() time.Time
}

type entry struct {
	op         sync.Mutex
	record     Record
	cancelPoll context.CancelFunc
}

// Orchestrator - owner of all settlement records and reservations
type Orchestrator struct {
	sync.Mutex

	log       *logger.L
	pool      *storage.PoolHandle
	assets    AssetSource
	reservoir *reservoir.Reservoir
	signer    Signer
	outbox    Outbox

	conf Configuration
	now  func() time.Time

	entries map[string]*entry

	ctx     context.Context
	cancel  context.CancelFunc
	pollers sync.WaitGroup
}

// New - create an orchestrator, Restore must be called before use
func New(log *logger.L, pool *storage.PoolHandle, assets AssetSource, reservations *reservoir.Reservoir, signer Signer, outbox Outbox, conf Configuration) *Orchestrator {
	if conf.ReservationWindow <= 0 {
		conf.ReservationWindow = DefaultReservationWindow
	}
	if conf.PollInterval <= 0 {
		conf.PollInterval = DefaultPollInterval
	}
	if conf.SweepInterval <= 0 {
		conf.SweepInterval = DefaultSweepInterval
	}
	if nil == conf.Clock {
		conf.Clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		log:       log,
		pool:      pool,
		assets:    assets,
		reservoir: reservations,
		signer:    signer,
		outbox:    outbox,
		conf:      conf,
		now:       conf.Clock,
		entries:   make(map[string]*entry),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Restore - reload records, reinstating reservations and pollers
//
// terminal records whose outcome was never delivered are queued again
func (o *Orchestrator) Restore() error {
	records, err := loadRecords(o.pool)
	if nil != err {
		return err
	}

	o.Lock()
	defer o.Unlock()

	active := 0
	for _, r := range records {
		if _, ok := o.entries[r.Id]; ok {
			continue
		}
		e := &entry{record: *r}
		o.entries[r.Id] = e

		if r.Phase.IsTerminal() {
			if !r.Notified {
				o.outbox.Enqueue(r.notification())
			}
			continue
		}

		active += 1
		err := o.reservoir.Restore(reservoir.Reservation{
			Id:       r.Id,
			Holder:   r.Seller,
			AssetId:  r.AssetId,
			Quantity: r.Quantity,
			Deadline: r.Deadline,
		})
		if nil != err {
			o.log.Errorf("restore reservation: %s  error: %s", r.Id, err)
		}
		if Submitted == r.Phase {
			o.startPoller(e)
		}
	}

	o.log.Infof("restored %d settlements, %d active", len(records), active)
	return nil
}

// Stop - cancel all pollers and wait for them to finish
func (o *Orchestrator) Stop() {
	o.cancel()
	o.pollers.Wait()
}
