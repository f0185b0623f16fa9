// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/storage"
)

// OrderStatus - state of an off-chain order record
type OrderStatus int

// possible order states
const (
	OrderPending   OrderStatus = iota
	OrderCompleted OrderStatus = iota
	OrderFailed    OrderStatus = iota
	OrderExpired   OrderStatus = iota
)

// String - convert the order status for printf
func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "PENDING"
	case OrderCompleted:
		return "COMPLETED"
	case OrderFailed:
		return "FAILED"
	case OrderExpired:
		return "EXPIRED"
	default:
		return "*Unknown*"
	}
}

// MarshalText - convert the order status for JSON
func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText - convert the order status from JSON to enumeration
func (s *OrderStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PENDING":
		*s = OrderPending
	case "COMPLETED":
		*s = OrderCompleted
	case "FAILED":
		*s = OrderFailed
	case "EXPIRED":
		*s = OrderExpired
	default:
		return fault.RecordCorrupt
	}
	return nil
}

// Order - off-chain record of one purchase
type Order struct {
	CorrelationId string            `json:"correlationId"`
	AssetId       uint64            `json:"assetId"`
	Buyer         account.Principal `json:"buyer"`
	Seller        account.Principal `json:"seller"`
	Quantity      uint64            `json:"quantity"`
	Total         decimal.Decimal   `json:"total"`
	Status        OrderStatus       `json:"status"`
	TxRef         string            `json:"txRef,omitempty"`
	Receipt       string            `json:"receipt,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Created       time.Time         `json:"created"`
	Updated       time.Time         `json:"updated"`
}

// OrderBook - local reconciliation service keeping orders in the store
type OrderBook struct {
	sync.Mutex

	log  *logger.L
	pool *storage.PoolHandle
	now  func() time.Time
}

// NewOrderBook - create an order book on a storage pool
func NewOrderBook(log *logger.L, pool *storage.PoolHandle) *OrderBook {
	return &OrderBook{
		log:  log,
		pool: pool,
		now:  time.Now,
	}
}

// check the fields an order must carry to be stored and read back
func (o *Order) validate() error {
	if "" == o.CorrelationId {
		return fault.MissingParameters
	}
	if err := o.Buyer.Validate(); nil != err {
		return err
	}
	return o.Seller.Validate()
}

// Open - record a new pending order
func (b *OrderBook) Open(o Order) error {
	if err := o.validate(); nil != err {
		return err
	}

	b.Lock()
	defer b.Unlock()

	if b.pool.Has([]byte(o.CorrelationId)) {
		return fault.DuplicateSettlement
	}

	now := b.now().UTC()
	o.Status = OrderPending
	o.Created = now
	o.Updated = now
	if err := b.put(&o); nil != err {
		return err
	}

	b.log.Infof("open order: %s  asset: %d  quantity: %d", o.CorrelationId, o.AssetId, o.Quantity)
	return nil
}

// NotifyOutcome - finalise the matching order
//
// repeated notifications are accepted without change, the first final
// outcome recorded for an order is kept
func (b *OrderBook) NotifyOutcome(ctx context.Context, n Notification) error {
	if "" == n.CorrelationId {
		return fault.MissingParameters
	}
	if err := ctx.Err(); nil != err {
		return err
	}

	b.Lock()
	defer b.Unlock()

	o, err := b.get(n.CorrelationId)
	if fault.UnknownSettlement == err {
		o = &Order{
			CorrelationId: n.CorrelationId,
			AssetId:       n.AssetId,
			Buyer:         n.Buyer,
			Seller:        n.Seller,
			Quantity:      n.Quantity,
			Total:         n.Total,
			Status:        OrderPending,
			Created:       b.now().UTC(),
		}
		if err := o.validate(); nil != err {
			b.log.Errorf("outcome for unopened order: %s  error: %s", n.CorrelationId, err)
			return err
		}
		b.log.Warnf("outcome for unopened order: %s", n.CorrelationId)
	} else if nil != err {
		return err
	}

	status := statusOf(n.Outcome)
	if OrderPending != o.Status {
		if o.Status != status {
			b.log.Warnf("order: %s  already: %s  ignoring: %s", o.CorrelationId, o.Status, n.Outcome)
		}
		return nil
	}

	o.Status = status
	o.TxRef = n.TxRef
	o.Receipt = n.Receipt
	o.Reason = n.Reason
	o.Updated = b.now().UTC()
	if err := b.put(o); nil != err {
		return err
	}

	b.log.Infof("order: %s  status: %s  tx: %s", o.CorrelationId, o.Status, o.TxRef)
	return nil
}

// Order - fetch one order
func (b *OrderBook) Order(correlationId string) (*Order, error) {
	b.Lock()
	defer b.Unlock()

	return b.get(correlationId)
}

// Orders - all orders of a buyer, or every order for an empty buyer
func (b *OrderBook) Orders(buyer account.Principal) ([]*Order, error) {
	orders := []*Order{}
	var decodeErr error
	err := b.pool.Fetch(nil, func(key []byte, value []byte) bool {
		o := &Order{}
		if decodeErr = json.Unmarshal(value, o); nil != decodeErr {
			return false
		}
		if "" == buyer || buyer == o.Buyer {
			orders = append(orders, o)
		}
		return true
	})
	if nil != err {
		return nil, err
	}
	if nil != decodeErr {
		return nil, fault.RecordCorrupt
	}
	return orders, nil
}

func (b *OrderBook) get(correlationId string) (*Order, error) {
	data := b.pool.Get([]byte(correlationId))
	if nil == data {
		return nil, fault.UnknownSettlement
	}
	o := &Order{}
	if err := json.Unmarshal(data, o); nil != err {
		return nil, fault.RecordCorrupt
	}
	return o, nil
}

func (b *OrderBook) put(o *Order) error {
	data, err := json.Marshal(o)
	if nil != err {
		return err
	}
	return b.pool.Put([]byte(o.CorrelationId), data)
}

func statusOf(outcome Outcome) OrderStatus {
	switch outcome {
	case Success:
		return OrderCompleted
	case Expired:
		return OrderExpired
	default:
		return OrderFailed
	}
}
