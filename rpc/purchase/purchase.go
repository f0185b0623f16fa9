// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package purchase

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/reservoir"
	"github.com/grun-exchange/creditd/rpc/ratelimit"
	"github.com/grun-exchange/creditd/settlement"
)

// Orchestrator - settlement operations offered over RPC
type Orchestrator interface {
	Initiate(ctx context.Context, buyer account.Principal, assetId uint64, quantity uint64) (*settlement.Record, error)
	Authorise(ctx context.Context, id string) (*settlement.Record, error)
	Submit(ctx context.Context, id string) (*settlement.Record, error)
	PollConfirmation(ctx context.Context, id string) (*settlement.Record, error)
	Cancel(ctx context.Context, id string) (*settlement.Record, error)
	Get(id string) (*settlement.Record, error)
	List(buyer account.Principal) []*settlement.Record
	Availability(assetId uint64) (*reservoir.BalanceInfo, error)
}

// Orders - the local order book, absent when outcomes go to kafka
type Orders interface {
	Open(o reconcile.Order) error
	Order(correlationId string) (*reconcile.Order, error)
}

const (
	requestTimeout    = 30 * time.Second
	rateLimitPurchase = 100
	rateBurstPurchase = 50
)

// Purchase - type for the RPC
type Purchase struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	Orchestrator Orchestrator
	Orders       Orders
}

// New - create the purchase RPC handler, orders may be nil
func New(log *logger.L, o Orchestrator, orders Orders) *Purchase {
	return &Purchase{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitPurchase, rateBurstPurchase),
		Orchestrator: o,
		Orders:       orders,
	}
}

// RecordReply - a settlement record
//
// once a record exists a failed step is reported in Error with the
// record in its resulting phase
type RecordReply struct {
	Settlement *settlement.Record `json:"settlement"`
	Error      string             `json:"error,omitempty"`
}

func (reply *RecordReply) set(r *settlement.Record, err error) error {
	if nil == r {
		return err
	}
	reply.Settlement = r
	if nil != err {
		reply.Error = err.Error()
	}
	return nil
}

// Start
// -----

// StartArguments - arguments for RPC
type StartArguments struct {
	Buyer    account.Principal `json:"buyer"`
	AssetId  uint64            `json:"assetId"`
	Quantity uint64            `json:"quantity"`
}

// Initiate - reserve inventory and create a settlement
func (p *Purchase) Initiate(arguments *StartArguments, reply *RecordReply) error {

	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}

	p.Log.Infof("Purchase.Initiate: %+v", arguments)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	r, err := p.Orchestrator.Initiate(ctx, arguments.Buyer, arguments.AssetId, arguments.Quantity)
	if nil != err {
		return err
	}
	p.openOrder(r)

	reply.Settlement = r
	return nil
}

// Buy - initiate, authorise and submit in one call
//
// confirmation is left to the background poller
func (p *Purchase) Buy(arguments *StartArguments, reply *RecordReply) error {

	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}

	p.Log.Infof("Purchase.Buy: %+v", arguments)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	r, err := p.Orchestrator.Initiate(ctx, arguments.Buyer, arguments.AssetId, arguments.Quantity)
	if nil != err {
		return err
	}
	p.openOrder(r)

	r, err = p.Orchestrator.Authorise(ctx, r.Id)
	if nil != err {
		return reply.set(r, err)
	}

	r, err = p.Orchestrator.Submit(ctx, r.Id)
	return reply.set(r, err)
}

// register the pending order before any outcome can be produced
func (p *Purchase) openOrder(r *settlement.Record) {
	if nil == p.Orders {
		return
	}
	err := p.Orders.Open(reconcile.Order{
		CorrelationId: r.Id,
		AssetId:       r.AssetId,
		Buyer:         r.Buyer,
		Seller:        r.Seller,
		Quantity:      r.Quantity,
		Total:         r.Total,
	})
	if nil != err {
		p.Log.Warnf("open order: %s  error: %s", r.Id, err)
	}
}

// Steps
// -----

// IdArguments - arguments for RPC
type IdArguments struct {
	Id string `json:"id"`
}

func (arguments *IdArguments) validate() error {
	if "" == arguments.Id {
		return fault.MissingParameters
	}
	return nil
}

type step func(ctx context.Context, id string) (*settlement.Record, error)

func (p *Purchase) run(name string, fn step, arguments *IdArguments, reply *RecordReply) error {

	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}
	if err := arguments.validate(); nil != err {
		return err
	}

	p.Log.Infof("Purchase.%s: %s", name, arguments.Id)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	r, err := fn(ctx, arguments.Id)
	return reply.set(r, err)
}

// Authorise - obtain the holder's authorisation
func (p *Purchase) Authorise(arguments *IdArguments, reply *RecordReply) error {
	return p.run("Authorise", p.Orchestrator.Authorise, arguments, reply)
}

// Submit - send the authorised transfer
func (p *Purchase) Submit(arguments *IdArguments, reply *RecordReply) error {
	return p.run("Submit", p.Orchestrator.Submit, arguments, reply)
}

// Poll - check finality of a submitted transfer
func (p *Purchase) Poll(arguments *IdArguments, reply *RecordReply) error {
	return p.run("Poll", p.Orchestrator.PollConfirmation, arguments, reply)
}

// Cancel - abandon a settlement that is not yet submitted
func (p *Purchase) Cancel(arguments *IdArguments, reply *RecordReply) error {
	return p.run("Cancel", p.Orchestrator.Cancel, arguments, reply)
}

// Queries
// -------

// GetReply - a settlement and its order
type GetReply struct {
	Settlement *settlement.Record `json:"settlement"`
	Order      *reconcile.Order   `json:"order,omitempty"`
}

// Get - fetch a settlement with its reconciliation order
func (p *Purchase) Get(arguments *IdArguments, reply *GetReply) error {

	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}
	if err := arguments.validate(); nil != err {
		return err
	}

	r, err := p.Orchestrator.Get(arguments.Id)
	if nil != err {
		return err
	}
	reply.Settlement = r

	if nil != p.Orders {
		o, err := p.Orders.Order(arguments.Id)
		if nil == err {
			reply.Order = o
		} else if !fault.IsErrNotFound(err) {
			return err
		}
	}
	return nil
}

// ListArguments - arguments for RPC, an empty buyer lists all
type ListArguments struct {
	Buyer account.Principal `json:"buyer"`
}

// ListReply - settlements oldest first
type ListReply struct {
	Settlements []*settlement.Record `json:"settlements"`
}

// List - settlements of a buyer
func (p *Purchase) List(arguments *ListArguments, reply *ListReply) error {

	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}

	reply.Settlements = p.Orchestrator.List(arguments.Buyer)
	return nil
}

// AvailabilityArguments - arguments for RPC
type AvailabilityArguments struct {
	AssetId uint64 `json:"assetId"`
}

// Availability - confirmed, reserved and available units of a listing
func (p *Purchase) Availability(arguments *AvailabilityArguments, reply *reservoir.BalanceInfo) error {

	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}

	info, err := p.Orchestrator.Availability(arguments.AssetId)
	if nil != err {
		return err
	}
	*reply = *info
	return nil
}
