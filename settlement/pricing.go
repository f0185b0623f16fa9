// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/fault"
)

// DefaultFeeRate - platform fee as a fraction of the amount
var DefaultFeeRate = decimal.RequireFromString("0.02")

const pricePlaces = 2

// Quote - monetary breakdown of a purchase
type Quote struct {
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Total     decimal.Decimal `json:"total"`
}

// NewQuote - amount, fee and total rounded to cents
func NewQuote(unitPrice decimal.Decimal, quantity uint64, feeRate decimal.Decimal) (Quote, error) {
	if !unitPrice.IsPositive() || feeRate.IsNegative() {
		return Quote{}, fault.InvalidPrice
	}
	if 0 == quantity {
		return Quote{}, fault.InvalidQuantity
	}

	n := decimal.NewFromBigInt(new(big.Int).SetUint64(quantity), 0)
	amount := unitPrice.Mul(n).Round(pricePlaces)
	fee := amount.Mul(feeRate).Round(pricePlaces)
	return Quote{
		UnitPrice: unitPrice,
		Amount:    amount,
		Fee:       fee,
		Total:     amount.Add(fee),
	}, nil
}
