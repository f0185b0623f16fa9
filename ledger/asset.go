// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/storage"
)

// Asset - one minted batch of credits
type Asset struct {
	Id          uint64            `json:"id"`
	Owner       account.Principal `json:"owner"`
	ProjectName string            `json:"projectName"`
	Verifier    string            `json:"verifier"`
	Issued      time.Time         `json:"issued"`
	Expiry      time.Time         `json:"expiry"`
	Total       uint64            `json:"total"`
	Retired     uint64            `json:"retired"`
	Price       decimal.Decimal   `json:"price"`
	Status      Status            `json:"status"`
	MetadataRef string            `json:"metadataRef"`

	// number of retirement events, used to key the next one
	Retirements uint64 `json:"retirements"`
}

// Circulating - units not yet retired
func (a *Asset) Circulating() uint64 {
	return a.Total - a.Retired
}

// Exhausted - every issued unit has been retired
func (a *Asset) Exhausted() bool {
	return 0 != a.Total && a.Retired == a.Total
}

// Lifecycle - the review status, or Exhausted once nothing circulates
//
// the stored status is never overwritten by retirement
func (a *Asset) Lifecycle() Status {
	if a.Exhausted() {
		return Exhausted
	}
	return a.Status
}

// Supply - issued/retired/circulating summary of an asset
type Supply struct {
	Issued      uint64 `json:"issued"`
	Retired     uint64 `json:"retired"`
	Circulating uint64 `json:"circulating"`
	Lifecycle   Status `json:"lifecycle"`
}

// Holding - one non-zero balance of a holder
type Holding struct {
	AssetId  uint64 `json:"assetId"`
	Quantity uint64 `json:"quantity"`
}

// Retirement - immutable record of destroyed units
type Retirement struct {
	AssetId   uint64            `json:"assetId"`
	Sequence  uint64            `json:"sequence"`
	Quantity  uint64            `json:"quantity"`
	Holder    account.Principal `json:"holder"`
	Timestamp time.Time         `json:"timestamp"`
}

var (
	nul     = []byte{0}
	present = []byte{1}
)

func assetKey(id uint64) []byte {
	return storage.Uint64Key(id)
}

func balanceKey(id uint64, holder account.Principal) []byte {
	return storage.Join(storage.Uint64Key(id), holder.Bytes())
}

func holdingKey(holder account.Principal, id uint64) []byte {
	return storage.Join(holder.Bytes(), nul, storage.Uint64Key(id))
}

func approvalKey(holder account.Principal, operator account.Principal) []byte {
	return storage.Join(holder.Bytes(), nul, operator.Bytes())
}

func retirementKey(id uint64, sequence uint64) []byte {
	return storage.Join(storage.Uint64Key(id), storage.Uint64Key(sequence))
}

// read an asset record
func (l *Ledger) getAsset(id uint64) (*Asset, error) {
	data := l.store.Assets.Get(assetKey(id))
	if nil == data {
		return nil, fault.UnknownAsset
	}
	a := &Asset{}
	if err := json.Unmarshal(data, a); nil != err {
		l.log.Errorf("asset: %d  decode error: %s", id, err)
		return nil, fault.RecordCorrupt
	}
	return a, nil
}

// queue an asset record on a batch
func putAsset(b *storage.Batch, pool *storage.PoolHandle, a *Asset) error {
	data, err := json.Marshal(a)
	if nil != err {
		return err
	}
	b.Put(pool, assetKey(a.Id), data)
	return nil
}

// current balance, zero if absent
func (l *Ledger) balance(id uint64, holder account.Principal) uint64 {
	n, _ := l.store.Balances.GetN(balanceKey(id, holder))
	return n
}

// queue a new balance and keep the holdings index in step
func (l *Ledger) putBalance(b *storage.Batch, id uint64, holder account.Principal, quantity uint64) {
	if 0 == quantity {
		b.Delete(l.store.Balances, balanceKey(id, holder))
		b.Delete(l.store.Holdings, holdingKey(holder, id))
		return
	}
	b.PutN(l.store.Balances, balanceKey(id, holder), quantity)
	b.Put(l.store.Holdings, holdingKey(holder, id), present)
}
