// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/json"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/storage"
)

// Asset - fetch an asset record
func (l *Ledger) Asset(assetId uint64) (*Asset, error) {
	return l.getAsset(assetId)
}

// Assets - list assets in id order starting from start
func (l *Ledger) Assets(start uint64, count int) ([]*Asset, error) {
	if count <= 0 {
		return nil, fault.InvalidCount
	}

	assets := make([]*Asset, 0, count)
	var decodeErr error
	err := l.store.Assets.Fetch(nil, func(key []byte, value []byte) bool {
		if storage.KeyUint64(key) < start {
			return true
		}
		a := &Asset{}
		if decodeErr = json.Unmarshal(value, a); nil != decodeErr {
			return false
		}
		assets = append(assets, a)
		return len(assets) < count
	})
	if nil != err {
		return nil, err
	}
	if nil != decodeErr {
		return nil, fault.RecordCorrupt
	}
	return assets, nil
}

// BalanceOf - quantity of an asset held by holder
func (l *Ledger) BalanceOf(holder account.Principal, assetId uint64) (uint64, error) {
	if !l.store.Assets.Has(assetKey(assetId)) {
		return 0, fault.UnknownAsset
	}
	return l.balance(assetId, holder), nil
}

// Holdings - every non-zero balance of a holder
func (l *Ledger) Holdings(holder account.Principal) ([]Holding, error) {
	if err := holder.Validate(); nil != err {
		return nil, err
	}

	prefix := append(holder.Bytes(), nul...)
	ids := []uint64{}
	err := l.store.Holdings.Fetch(prefix, func(key []byte, value []byte) bool {
		ids = append(ids, storage.KeyUint64(key[len(prefix):]))
		return true
	})
	if nil != err {
		return nil, err
	}

	holdings := make([]Holding, 0, len(ids))
	for _, id := range ids {
		n := l.balance(id, holder)
		if 0 == n {
			continue
		}
		holdings = append(holdings, Holding{AssetId: id, Quantity: n})
	}
	return holdings, nil
}

// Supply - issued, retired and circulating units of an asset
func (l *Ledger) Supply(assetId uint64) (*Supply, error) {
	a, err := l.getAsset(assetId)
	if nil != err {
		return nil, err
	}
	return &Supply{
		Issued:      a.Total,
		Retired:     a.Retired,
		Circulating: a.Circulating(),
		Lifecycle:   a.Lifecycle(),
	}, nil
}

// Retirements - all retirement events of an asset in order
func (l *Ledger) Retirements(assetId uint64) ([]Retirement, error) {
	if !l.store.Assets.Has(assetKey(assetId)) {
		return nil, fault.UnknownAsset
	}

	retirements := []Retirement{}
	var decodeErr error
	err := l.store.Retirements.Fetch(storage.Uint64Key(assetId), func(key []byte, value []byte) bool {
		var r Retirement
		if decodeErr = json.Unmarshal(value, &r); nil != decodeErr {
			return false
		}
		retirements = append(retirements, r)
		return true
	})
	if nil != err {
		return nil, err
	}
	if nil != decodeErr {
		return nil, fault.RecordCorrupt
	}
	return retirements, nil
}
