// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
)

// ReviewAsset - administrator verification of a pending asset
//
// a rejected asset stays in the store but its balances are frozen
func (l *Ledger) ReviewAsset(caller account.Principal, assetId uint64, decision Decision) error {
	if !l.authority.Has(access.Admin, caller) {
		return fault.Unauthorised
	}

	var status Status
	switch decision {
	case Verify:
		status = Verified
	case Reject:
		status = Rejected
	default:
		return fault.InvalidDecision
	}

	unlock := l.lockAsset(assetId)
	defer unlock()

	a, err := l.getAsset(assetId)
	if nil != err {
		return err
	}
	if Pending != a.Status {
		return fault.AssetNotPending
	}

	a.Status = status
	b := l.store.NewBatch()
	if err := putAsset(b, l.store.Assets, a); nil != err {
		return err
	}
	if err := b.Commit(); nil != err {
		return err
	}

	l.log.Infof("review asset: %d  decision: %s  by: %s", assetId, decision, caller)
	return nil
}

// SetSellerVerification - grant or revoke the verified seller role
//
// assets minted earlier are unaffected
func (l *Ledger) SetSellerVerification(caller account.Principal, seller account.Principal, verified bool) error {
	if verified {
		return l.GrantRole(caller, access.VerifiedSeller, seller)
	}
	return l.RevokeRole(caller, access.VerifiedSeller, seller)
}

// GrantRole - administrator adds a role
func (l *Ledger) GrantRole(caller account.Principal, role access.Role, principal account.Principal) error {
	if !l.authority.Has(access.Admin, caller) {
		return fault.Unauthorised
	}
	return l.authority.Grant(role, principal)
}

// RevokeRole - administrator removes a role
func (l *Ledger) RevokeRole(caller account.Principal, role access.Role, principal account.Principal) error {
	if !l.authority.Has(access.Admin, caller) {
		return fault.Unauthorised
	}
	if access.Admin == role && caller == principal {
		// an administrator cannot drop its own admin role
		return fault.InvalidPrincipal
	}
	return l.authority.Revoke(role, principal)
}

// UpdatePrice - owner changes the unit price while it still holds units
func (l *Ledger) UpdatePrice(caller account.Principal, assetId uint64, price decimal.Decimal) error {
	if !price.IsPositive() {
		return fault.InvalidPrice
	}

	unlock := l.lockAsset(assetId)
	defer unlock()

	a, err := l.getAsset(assetId)
	if nil != err {
		return err
	}
	if caller != a.Owner {
		return fault.Unauthorised
	}
	if 0 == l.balance(assetId, a.Owner) {
		return fault.SoldOut
	}

	a.Price = price
	b := l.store.NewBatch()
	if err := putAsset(b, l.store.Assets, a); nil != err {
		return err
	}
	if err := b.Commit(); nil != err {
		return err
	}

	l.log.Infof("price asset: %d  price: %s", assetId, price)
	return nil
}
