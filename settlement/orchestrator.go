// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/reservoir"
	"github.com/grun-exchange/creditd/retry"
)

// Initiate - reserve inventory for a buyer and open a settlement
func (o *Orchestrator) Initiate(ctx context.Context, buyer account.Principal, assetId uint64, quantity uint64) (*Record, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	if err := buyer.Validate(); nil != err {
		return nil, err
	}
	if 0 == quantity {
		return nil, fault.InvalidQuantity
	}

	a, err := o.assets.Asset(assetId)
	if nil != err {
		return nil, err
	}
	if ledger.Verified != a.Status {
		return nil, fault.AssetNotForSale
	}
	if buyer == a.Owner {
		return nil, fault.SelfPurchase
	}

	quote, err := NewQuote(a.Price, quantity, o.conf.FeeRate)
	if nil != err {
		return nil, err
	}

	now := o.now().UTC()
	r := Record{
		Id:        uuid.New().String(),
		AssetId:   assetId,
		Buyer:     buyer,
		Seller:    a.Owner,
		Quantity:  quantity,
		UnitPrice: quote.UnitPrice,
		Amount:    quote.Amount,
		Fee:       quote.Fee,
		Total:     quote.Total,
		Phase:     Initiated,
		Created:   now,
		Updated:   now,
		Deadline:  now.Add(o.conf.ReservationWindow),
	}

	err = o.reservoir.Reserve(reservoir.Reservation{
		Id:       r.Id,
		Holder:   r.Seller,
		AssetId:  assetId,
		Quantity: quantity,
		Deadline: r.Deadline,
	})
	if nil != err {
		return nil, err
	}

	o.Lock()
	defer o.Unlock()

	if err := putRecord(o.pool, &r); nil != err {
		o.reservoir.Release(r.Id)
		return nil, err
	}
	o.entries[r.Id] = &entry{record: r}

	o.log.Infof("initiate: %s  asset: %d  quantity: %d  buyer: %s  total: %s", r.Id, assetId, quantity, buyer, r.Total)
	return &r, nil
}

// Authorise - obtain a transfer authorisation from the signer
func (o *Orchestrator) Authorise(ctx context.Context, id string) (*Record, error) {
	e, err := o.lookup(id)
	if nil != err {
		return nil, err
	}

	e.op.Lock()
	defer e.op.Unlock()

	r := o.snapshot(e)
	if r.Phase.IsTerminal() {
		return r, fault.AlreadyTerminal
	}
	if Initiated != r.Phase {
		return r, nil
	}

	request := TransferRequest{
		CorrelationId: r.Id,
		AssetId:       r.AssetId,
		Quantity:      r.Quantity,
		Holder:        r.Seller,
		Recipient:     r.Buyer,
	}
	token := ""
	err = retry.Do(ctx, o.conf.Retry, o.log, "authorise "+id, func(ctx context.Context) error {
		t, err := o.signer.RequestAuthorisation(ctx, request)
		if nil == err {
			token = t
		}
		return err
	})
	return o.complete(ctx, e, err, Authorised, func(r *Record) {
		r.Token = token
	})
}

// Submit - hand the authorised transfer to the signer and start polling
func (o *Orchestrator) Submit(ctx context.Context, id string) (*Record, error) {
	e, err := o.lookup(id)
	if nil != err {
		return nil, err
	}

	e.op.Lock()
	defer e.op.Unlock()

	r := o.snapshot(e)
	switch r.Phase {
	case Initiated:
		return r, fault.InvalidTransition
	case Authorised:
	case Submitted:
		return r, nil
	default:
		return r, fault.AlreadyTerminal
	}

	txRef := ""
	err = retry.Do(ctx, o.conf.Retry, o.log, "submit "+id, func(ctx context.Context) error {
		t, err := o.signer.SubmitTransfer(ctx, r.Token)
		if nil == err {
			txRef = t
		}
		return err
	})
	return o.complete(ctx, e, err, Submitted, func(r *Record) {
		r.TxRef = txRef
	})
}

// Cancel - abandon a settlement that has not been submitted
func (o *Orchestrator) Cancel(ctx context.Context, id string) (*Record, error) {
	e, err := o.lookup(id)
	if nil != err {
		return nil, err
	}

	e.op.Lock()
	defer e.op.Unlock()

	o.Lock()
	defer o.Unlock()

	switch phase := e.record.Phase; {
	case phase.IsTerminal():
		return e.record.copy(), fault.AlreadyTerminal
	case Submitted == phase:
		return e.record.copy(), fault.CannotCancelSubmitted
	}

	err = o.transition(e, Failed, func(r *Record) {
		r.Reason = "cancelled"
	})
	return e.record.copy(), err
}

// Purchase - initiate, authorise and submit, leaving confirmation to the poller
func (o *Orchestrator) Purchase(ctx context.Context, buyer account.Principal, assetId uint64, quantity uint64) (*Record, error) {
	r, err := o.Initiate(ctx, buyer, assetId, quantity)
	if nil != err {
		return nil, err
	}
	r, err = o.Authorise(ctx, r.Id)
	if nil != err {
		return r, err
	}
	return o.Submit(ctx, r.Id)
}

// Get - a copy of one settlement record
func (o *Orchestrator) Get(id string) (*Record, error) {
	e, err := o.lookup(id)
	if nil != err {
		return nil, err
	}
	return o.snapshot(e), nil
}

// List - settlements of a buyer, or all for an empty buyer, oldest first
func (o *Orchestrator) List(buyer account.Principal) []*Record {
	o.Lock()
	records := make([]*Record, 0, len(o.entries))
	for _, e := range o.entries {
		if "" == buyer || buyer == e.record.Buyer {
			records = append(records, e.record.copy())
		}
	}
	o.Unlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Created.Equal(records[j].Created) {
			return records[i].Id < records[j].Id
		}
		return records[i].Created.Before(records[j].Created)
	})
	return records
}

// Availability - confirmed, reserved and available units of an asset's owner
func (o *Orchestrator) Availability(assetId uint64) (*reservoir.BalanceInfo, error) {
	a, err := o.assets.Asset(assetId)
	if nil != err {
		return nil, err
	}
	return o.reservoir.Availability(a.Owner, assetId)
}

// MarkNotified - record that reconciliation accepted the outcome
func (o *Orchestrator) MarkNotified(id string) {
	o.Lock()
	defer o.Unlock()

	e, ok := o.entries[id]
	if !ok || e.record.Notified {
		return
	}
	r := e.record
	r.Notified = true
	if err := putRecord(o.pool, &r); nil != err {
		o.log.Errorf("mark notified: %s  error: %s", id, err)
		return
	}
	e.record = r
}

func (o *Orchestrator) lookup(id string) (*entry, error) {
	o.Lock()
	defer o.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return nil, fault.UnknownSettlement
	}
	return e, nil
}

func (o *Orchestrator) snapshot(e *entry) *Record {
	o.Lock()
	defer o.Unlock()

	return e.record.copy()
}

func (r Record) copy() *Record {
	return &r
}
