// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
)

// Transfer - move units of an asset between holders
//
// caller must be the sending holder or an operator it approved
func (l *Ledger) Transfer(caller account.Principal, from account.Principal, to account.Principal, assetId uint64, quantity uint64) error {
	for _, p := range []account.Principal{caller, from, to} {
		if err := p.Validate(); nil != err {
			return err
		}
	}
	if 0 == quantity {
		return fault.InvalidQuantity
	}

	unlock := l.lockAsset(assetId)
	defer unlock()

	a, err := l.getAsset(assetId)
	if nil != err {
		return err
	}

	if caller != from && !l.IsApproved(from, caller) {
		return fault.Unauthorised
	}
	if Rejected == a.Status {
		return fault.AssetFrozen
	}

	fromBalance := l.balance(assetId, from)
	if fromBalance < quantity {
		return fault.InsufficientBalance
	}
	if from == to {
		return nil
	}
	toBalance := l.balance(assetId, to)

	b := l.store.NewBatch()
	l.putBalance(b, assetId, from, fromBalance-quantity)
	l.putBalance(b, assetId, to, toBalance+quantity)
	if err := b.Commit(); nil != err {
		return err
	}

	l.log.Infof("transfer asset: %d  quantity: %d  from: %s  to: %s  by: %s", assetId, quantity, from, to, caller)
	return nil
}

// SetApproval - allow or disallow an operator to transfer all of the caller's holdings
func (l *Ledger) SetApproval(caller account.Principal, operator account.Principal, approved bool) error {
	if err := caller.Validate(); nil != err {
		return err
	}
	if err := operator.Validate(); nil != err {
		return err
	}
	if caller == operator {
		return fault.InvalidPrincipal
	}

	var err error
	key := approvalKey(caller, operator)
	if approved {
		err = l.store.Approvals.Put(key, present)
	} else {
		err = l.store.Approvals.Delete(key)
	}
	if nil != err {
		return err
	}

	l.log.Infof("approval holder: %s  operator: %s  approved: %t", caller, operator, approved)
	return nil
}

// IsApproved - check if operator may act for holder
func (l *Ledger) IsApproved(holder account.Principal, operator account.Principal) bool {
	return l.store.Approvals.Has(approvalKey(holder, operator))
}
