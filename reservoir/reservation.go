// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"sort"
	"time"

	"github.com/grun-exchange/creditd/fault"
)

// Reserve - check availability and hold the quantity in one step
func (r *Reservoir) Reserve(res Reservation) error {
	if 0 == res.Quantity {
		return fault.InvalidQuantity
	}
	if "" == res.Id {
		return fault.MissingParameters
	}

	r.Lock()
	defer r.Unlock()

	if _, ok := r.reservations[res.Id]; ok {
		return fault.DuplicateSettlement
	}

	confirmed, err := r.balances.BalanceOf(res.Holder, res.AssetId)
	if nil != err {
		return err
	}

	key := spendKey{holder: res.Holder, assetId: res.AssetId}
	available := subtract(confirmed, r.spend[key])
	if res.Quantity > available {
		r.log.Debugf("reserve: %s  asset: %d  quantity: %d  available: %d  rejected", res.Id, res.AssetId, res.Quantity, available)
		return fault.InsufficientAvailability
	}

	r.insert(key, res)
	r.log.Debugf("reserve: %s  asset: %d  quantity: %d  deadline: %s", res.Id, res.AssetId, res.Quantity, res.Deadline)
	return nil
}

// Restore - reinstate a reservation accepted before a restart
//
// the balance is not checked, an over-commitment is only logged
func (r *Reservoir) Restore(res Reservation) error {
	if 0 == res.Quantity || "" == res.Id {
		return fault.MissingParameters
	}

	r.Lock()
	defer r.Unlock()

	if _, ok := r.reservations[res.Id]; ok {
		return fault.DuplicateSettlement
	}

	key := spendKey{holder: res.Holder, assetId: res.AssetId}
	r.insert(key, res)

	confirmed, err := r.balances.BalanceOf(res.Holder, res.AssetId)
	if nil == err && r.spend[key] > confirmed {
		r.log.Warnf("restore: %s  asset: %d  reserved: %d exceeds balance: %d", res.Id, res.AssetId, r.spend[key], confirmed)
	}
	return nil
}

// Release - drop a reservation returning its units to availability
func (r *Reservoir) Release(id string) bool {
	r.Lock()
	defer r.Unlock()

	ok := r.remove(id)
	if ok {
		r.log.Debugf("release: %s", id)
	}
	return ok
}

// Consume - drop a reservation whose transfer has been committed
//
// the ledger has already moved the units so nothing is credited back
func (r *Reservoir) Consume(id string) bool {
	r.Lock()
	defer r.Unlock()

	ok := r.remove(id)
	if ok {
		r.log.Debugf("consume: %s", id)
	}
	return ok
}

// Get - a copy of one reservation
func (r *Reservoir) Get(id string) (Reservation, bool) {
	r.RLock()
	defer r.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return Reservation{}, false
	}
	return *res, true
}

// Expired - reservations whose deadline is not after now, earliest first
func (r *Reservoir) Expired(now time.Time) []Reservation {
	r.RLock()
	expired := []Reservation{}
	for _, res := range r.reservations {
		if !res.Deadline.After(now) {
			expired = append(expired, *res)
		}
	}
	r.RUnlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].Deadline.Before(expired[j].Deadline)
	})
	return expired
}

// must hold the lock
func (r *Reservoir) insert(key spendKey, res Reservation) {
	r.reservations[res.Id] = &res
	r.spend[key] += res.Quantity
}

// must hold the lock
func (r *Reservoir) remove(id string) bool {
	res, ok := r.reservations[id]
	if !ok {
		return false
	}
	delete(r.reservations, id)

	key := spendKey{holder: res.Holder, assetId: res.AssetId}
	spend := subtract(r.spend[key], res.Quantity)
	if 0 == spend {
		delete(r.spend, key)
	} else {
		r.spend[key] = spend
	}
	return true
}

// saturating subtraction
func subtract(a uint64, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
