// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
)

const (
	maxNameLength        = 256
	maxMetadataRefLength = 2048
)

var assetSequenceKey = []byte("asset")

// MintArguments - description of a new batch
type MintArguments struct {
	ProjectName string          `json:"projectName"`
	Verifier    string          `json:"verifier"`
	Expiry      time.Time       `json:"expiry"`
	Quantity    uint64          `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	MetadataRef string          `json:"metadataRef"`
}

// Mint - create a new asset owned and fully held by the caller
func (l *Ledger) Mint(caller account.Principal, arguments MintArguments) (uint64, error) {
	if err := caller.Validate(); nil != err {
		return 0, err
	}
	if !l.authority.Has(access.Minter, caller) && !l.authority.Has(access.VerifiedSeller, caller) {
		return 0, fault.Unauthorised
	}

	name := strings.TrimSpace(arguments.ProjectName)
	if "" == name || len(name) > maxNameLength || len(arguments.Verifier) > maxNameLength {
		return 0, fault.MissingParameters
	}
	if len(arguments.MetadataRef) > maxMetadataRefLength {
		return 0, fault.MissingParameters
	}
	if 0 == arguments.Quantity {
		return 0, fault.InvalidQuantity
	}
	if arguments.Quantity > l.maximumQuantity {
		return 0, fault.QuantityOverflow
	}
	if arguments.Price.IsNegative() {
		return 0, fault.InvalidPrice
	}

	now := l.now()
	if !arguments.Expiry.After(now) {
		return 0, fault.InvalidExpiry
	}

	status := Pending
	if l.autoApprove {
		status = Verified
	}

	l.sequenceLock.Lock()
	defer l.sequenceLock.Unlock()

	last, _ := l.store.Sequences.GetN(assetSequenceKey)
	id := last + 1

	a := &Asset{
		Id:          id,
		Owner:       caller,
		ProjectName: name,
		Verifier:    arguments.Verifier,
		Issued:      now.UTC(),
		Expiry:      arguments.Expiry.UTC(),
		Total:       arguments.Quantity,
		Price:       arguments.Price,
		Status:      status,
		MetadataRef: arguments.MetadataRef,
	}

	unlock := l.lockAsset(id)
	defer unlock()

	b := l.store.NewBatch()
	if err := putAsset(b, l.store.Assets, a); nil != err {
		return 0, err
	}
	l.putBalance(b, id, caller, arguments.Quantity)
	b.PutN(l.store.Sequences, assetSequenceKey, id)
	if err := b.Commit(); nil != err {
		return 0, err
	}

	l.log.Infof("minted: %d  project: %q  owner: %s  quantity: %d  status: %s", id, name, caller, arguments.Quantity, status)
	return id, nil
}
