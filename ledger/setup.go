// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - authoritative role-gated balance and asset store
//
// Every mutating operation of one asset runs under that asset's
// exclusive lock and commits all of its writes as a single storage
// batch, so no observer sees a debit without the matching credit.
// Operations on different assets proceed in parallel.
package ledger

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/storage"
)

// DefaultMaximumQuantity - upper bound of a single mint
const DefaultMaximumQuantity = uint64(1) << 53

// Authority - role lookup and administration used by the ledger
type Authority interface {
	access.Checker
	Grant(role access.Role, principal account.Principal) error
	Revoke(role access.Role, principal account.Principal) error
}

// Configuration - ledger options
type Configuration struct {
	AutoApprove     bool
	MaximumQuantity uint64
	Clock           func() time.Time
}

// Ledger - balance store instance
type Ledger struct {
	log       *logger.L
	store     *storage.Store
	authority Authority

	autoApprove     bool
	maximumQuantity uint64
	now             func() time.Time

	sequenceLock sync.Mutex
	locks        lockTable
}

// New - create a ledger over an open store
func New(log *logger.L, store *storage.Store, authority Authority, conf Configuration) *Ledger {
	l := &Ledger{
		log:             log,
		store:           store,
		authority:       authority,
		autoApprove:     conf.AutoApprove,
		maximumQuantity: conf.MaximumQuantity,
		now:             conf.Clock,
		locks: lockTable{
			locks: make(map[uint64]*sync.Mutex),
		},
	}
	if 0 == l.maximumQuantity {
		l.maximumQuantity = DefaultMaximumQuantity
	}
	if nil == l.now {
		l.now = time.Now
	}
	return l
}

// one mutex per asset, created on demand
type lockTable struct {
	sync.Mutex
	locks map[uint64]*sync.Mutex
}

func (t *lockTable) get(id uint64) *sync.Mutex {
	t.Lock()
	defer t.Unlock()

	m, ok := t.locks[id]
	if !ok {
		m = &sync.Mutex{}
		t.locks[id] = m
	}
	return m
}

// lock an asset and return the unlock function
func (l *Ledger) lockAsset(id uint64) func() {
	m := l.locks.get(id)
	m.Lock()
	return m.Unlock
}
