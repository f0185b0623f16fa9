// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/storage"
)

// Record - one purchase from intent to finality
type Record struct {
	Id        string            `json:"id"`
	AssetId   uint64            `json:"assetId"`
	Buyer     account.Principal `json:"buyer"`
	Seller    account.Principal `json:"seller"`
	Quantity  uint64            `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unitPrice"`
	Amount    decimal.Decimal   `json:"amount"`
	Fee       decimal.Decimal   `json:"fee"`
	Total     decimal.Decimal   `json:"total"`
	Phase     Phase             `json:"phase"`
	Token     string            `json:"token,omitempty"`
	TxRef     string            `json:"txRef,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Receipt   string            `json:"receipt,omitempty"`
	Created   time.Time         `json:"created"`
	Updated   time.Time         `json:"updated"`
	Deadline  time.Time         `json:"deadline"`
	Notified  bool              `json:"notified"`
}

// receipt number of a confirmed settlement
func receiptNumber(id string, confirmed time.Time) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return "RCP-" + confirmed.UTC().Format("20060102") + "-" + strings.ToUpper(short)
}

// outcome reported for a terminal phase
func outcomeOf(p Phase) reconcile.Outcome {
	switch p {
	case Confirmed:
		return reconcile.Success
	case Expired:
		return reconcile.Expired
	default:
		return reconcile.Failure
	}
}

func (r *Record) notification() reconcile.Notification {
	return reconcile.Notification{
		CorrelationId: r.Id,
		TxRef:         r.TxRef,
		Outcome:       outcomeOf(r.Phase),
		Reason:        r.Reason,
		AssetId:       r.AssetId,
		Buyer:         r.Buyer,
		Seller:        r.Seller,
		Quantity:      r.Quantity,
		Total:         r.Total,
		Receipt:       r.Receipt,
		Timestamp:     r.Updated,
	}
}

func putRecord(pool *storage.PoolHandle, r *Record) error {
	data, err := json.Marshal(r)
	if nil != err {
		return err
	}
	return pool.Put([]byte(r.Id), data)
}

func loadRecords(pool *storage.PoolHandle) ([]*Record, error) {
	records := []*Record{}
	var decodeErr error
	err := pool.Fetch(nil, func(key []byte, value []byte) bool {
		r := &Record{}
		if decodeErr = json.Unmarshal(value, r); nil != decodeErr {
			return false
		}
		records = append(records, r)
		return true
	})
	if nil != err {
		return nil, err
	}
	if nil != decodeErr {
		return nil, fault.RecordCorrupt
	}
	return records, nil
}
