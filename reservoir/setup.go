// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reservoir - temporary holds against a holder's balance
//
// Reservations belong to the settlement orchestrator and are never
// seen by the ledger.  The balance check and the insertion of a new
// reservation happen under one lock so two purchasers racing for the
// last units cannot both succeed.
package reservoir

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/account"
)

// BalanceSource - committed balances, normally the ledger
type BalanceSource interface {
	BalanceOf(holder account.Principal, assetId uint64) (uint64, error)
}

// Reservation - a hold of quantity units of an asset held by holder
type Reservation struct {
	Id       string            `json:"id"`
	Holder   account.Principal `json:"holder"`
	AssetId  uint64            `json:"assetId"`
	Quantity uint64            `json:"quantity"`
	Deadline time.Time         `json:"deadline"`
}

type spendKey struct {
	holder  account.Principal
	assetId uint64
}

// Reservoir - the set of active reservations
type Reservoir struct {
	sync.RWMutex

	log      *logger.L
	balances BalanceSource

	reservations map[string]*Reservation
	spend        map[spendKey]uint64
}

// New - create an empty reservoir
func New(log *logger.L, balances BalanceSource) *Reservoir {
	return &Reservoir{
		log:          log,
		balances:     balances,
		reservations: make(map[string]*Reservation),
		spend:        make(map[spendKey]uint64),
	}
}

// Count - number of active reservations
func (r *Reservoir) Count() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.reservations)
}
