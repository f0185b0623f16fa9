// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/json"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
)

// Retire - permanently destroy units from the caller's balance
//
// there is no inverse operation
func (l *Ledger) Retire(caller account.Principal, assetId uint64, quantity uint64) (*Retirement, error) {
	if err := caller.Validate(); nil != err {
		return nil, err
	}
	if 0 == quantity {
		return nil, fault.InvalidQuantity
	}

	unlock := l.lockAsset(assetId)
	defer unlock()

	a, err := l.getAsset(assetId)
	if nil != err {
		return nil, err
	}
	if Rejected == a.Status {
		return nil, fault.AssetFrozen
	}

	held := l.balance(assetId, caller)
	if held < quantity {
		return nil, fault.InsufficientBalance
	}

	a.Retirements += 1
	a.Retired += quantity

	r := &Retirement{
		AssetId:   assetId,
		Sequence:  a.Retirements,
		Quantity:  quantity,
		Holder:    caller,
		Timestamp: l.now().UTC(),
	}
	data, err := json.Marshal(r)
	if nil != err {
		return nil, err
	}

	b := l.store.NewBatch()
	l.putBalance(b, assetId, caller, held-quantity)
	if err := putAsset(b, l.store.Assets, a); nil != err {
		return nil, err
	}
	b.Put(l.store.Retirements, retirementKey(assetId, r.Sequence), data)
	if err := b.Commit(); nil != err {
		return nil, err
	}

	l.log.Infof("retired asset: %d  quantity: %d  holder: %s  remaining supply: %d", assetId, quantity, caller, a.Circulating())
	return r, nil
}
