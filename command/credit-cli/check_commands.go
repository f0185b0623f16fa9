// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
)

// errors for argument checking - keep in alphabetic order
const (
	ErrInvalidExpiry        = fault.InvalidError("expiry must be YYYY-MM-DD or RFC3339")
	ErrInvalidPrice         = fault.InvalidError("price must be a non-negative decimal")
	ErrRequiredAssetId      = fault.InvalidError("asset id is required")
	ErrRequiredCaller       = fault.InvalidError("caller is required")
	ErrRequiredConnect      = fault.InvalidError("connect is required")
	ErrRequiredDecision     = fault.InvalidError("decision is required")
	ErrRequiredPrincipal    = fault.InvalidError("principal is required")
	ErrRequiredProject      = fault.InvalidError("project name is required")
	ErrRequiredQuantity     = fault.InvalidError("quantity is required")
	ErrRequiredRoleOrHolder = fault.InvalidError("one of role or principal is required")
	ErrRequiredSettlementId = fault.InvalidError("settlement id is required")
)

// connect is required
func checkConnect(connect string) (string, error) {
	connect = strings.TrimSpace(connect)
	if "" == connect {
		return "", ErrRequiredConnect
	}
	return connect, nil
}

// a principal must be present and well formed
func checkPrincipal(s string, missing error) (account.Principal, error) {
	s = strings.TrimSpace(s)
	if "" == s {
		return "", missing
	}
	p := account.Principal(s)
	if err := p.Validate(); nil != err {
		return "", err
	}
	return p, nil
}

// asset ids start from one
func checkAssetId(id uint64) (uint64, error) {
	if 0 == id {
		return 0, ErrRequiredAssetId
	}
	return id, nil
}

func checkQuantity(quantity uint64) (uint64, error) {
	if 0 == quantity {
		return 0, ErrRequiredQuantity
	}
	return quantity, nil
}

func checkPrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if nil != err || price.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}

// accept a plain date (end of that day UTC) or a full timestamp
func checkExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); nil == err {
		return t.Add(24*time.Hour - time.Second).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if nil != err {
		return time.Time{}, ErrInvalidExpiry
	}
	return t.UTC(), nil
}

func checkRole(s string) (access.Role, error) {
	return access.ParseRole(strings.TrimSpace(s))
}

func checkSettlementId(id string) (string, error) {
	id = strings.TrimSpace(id)
	if "" == id {
		return "", ErrRequiredSettlementId
	}
	return id, nil
}
