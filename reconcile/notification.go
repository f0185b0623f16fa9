// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reconcile - delivery of settlement outcomes to the order system of record
package reconcile

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
)

//go:generate mockgen -source=notification.go -destination=mocks/notifier.go -package=mocks

// Outcome - final result of a settlement
type Outcome int

// possible outcomes
const (
	Success Outcome = iota
	Failure Outcome = iota
	Expired Outcome = iota
)

// String - convert the outcome for printf
func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Expired:
		return "EXPIRED"
	default:
		return "*Unknown*"
	}
}

// MarshalText - convert the outcome for JSON
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText - convert the outcome from JSON to enumeration
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "SUCCESS":
		*o = Success
	case "FAILURE":
		*o = Failure
	case "EXPIRED":
		*o = Expired
	default:
		return fault.RecordCorrupt
	}
	return nil
}

// Notification - one settlement outcome
//
// CorrelationId, TxRef and Outcome are always present, the remaining
// fields let the order system fill in a record it never saw opened
type Notification struct {
	CorrelationId string            `json:"correlationId"`
	TxRef         string            `json:"txRef,omitempty"`
	Outcome       Outcome           `json:"outcome"`
	Reason        string            `json:"reason,omitempty"`
	AssetId       uint64            `json:"assetId"`
	Buyer         account.Principal `json:"buyer"`
	Seller        account.Principal `json:"seller"`
	Quantity      uint64            `json:"quantity"`
	Total         decimal.Decimal   `json:"total"`
	Receipt       string            `json:"receipt,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Notifier - the reconciliation service boundary
type Notifier interface {
	NotifyOutcome(ctx context.Context, n Notification) error
}
