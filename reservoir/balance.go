// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"github.com/grun-exchange/creditd/account"
)

// BalanceInfo - committed, reserved and available units
type BalanceInfo struct {
	AssetId   uint64            `json:"assetId"`
	Holder    account.Principal `json:"holder"`
	Confirmed uint64            `json:"confirmed"`
	Reserved  uint64            `json:"reserved"`
	Available uint64            `json:"available"`
}

// Availability - balance less the sum of active reservations
//
// available is never negative, even if the committed balance fell
// below the reserved total out of band
func (r *Reservoir) Availability(holder account.Principal, assetId uint64) (*BalanceInfo, error) {
	r.RLock()
	defer r.RUnlock()

	confirmed, err := r.balances.BalanceOf(holder, assetId)
	if nil != err {
		return nil, err
	}
	reserved := r.spend[spendKey{holder: holder, assetId: assetId}]

	return &BalanceInfo{
		AssetId:   assetId,
		Holder:    holder,
		Confirmed: confirmed,
		Reserved:  reserved,
		Available: subtract(confirmed, reserved),
	}, nil
}
