// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"context"

	"github.com/grun-exchange/creditd/account"
)

//go:generate mockgen -source=signer.go -destination=mocks/signer.go -package=mocks

// Finality - state of a submitted transfer
type Finality int

// possible finality results
const (
	FinalityPending  Finality = iota
	FinalisedSuccess Finality = iota
	FinalisedFailure Finality = iota
)

// String - convert the finality for printf
func (f Finality) String() string {
	switch f {
	case FinalityPending:
		return "pending"
	case FinalisedSuccess:
		return "finalised-success"
	case FinalisedFailure:
		return "finalised-failure"
	default:
		return "*Unknown*"
	}
}

// TransferRequest - what the signer is asked to authorise
type TransferRequest struct {
	CorrelationId string            `json:"correlationId"`
	AssetId       uint64            `json:"assetId"`
	Quantity      uint64            `json:"quantity"`
	Holder        account.Principal `json:"holder"`
	Recipient     account.Principal `json:"recipient"`
}

// Signer - the signing/wallet collaborator
//
// SubmitTransfer must be idempotent per token, it may be retried after
// a timeout whose submission actually succeeded
type Signer interface {
	RequestAuthorisation(ctx context.Context, request TransferRequest) (string, error)
	SubmitTransfer(ctx context.Context, token string) (string, error)
	CheckFinality(ctx context.Context, txRef string) (Finality, error)
}
