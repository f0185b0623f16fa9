// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer - in-process signing collaborator backed by the ledger
//
// A transfer is authorised only if the holder approved the operator.
// Submission checks the transfer can succeed and returns a transaction
// reference; the ledger transfer itself is applied once the finality
// delay has passed, as a distributed ledger would on confirmation.
package signer

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/settlement"
)

// Ledger - the ledger operations used by the signer
type Ledger interface {
	Transfer(caller account.Principal, from account.Principal, to account.Principal, assetId uint64, quantity uint64) error
	BalanceOf(holder account.Principal, assetId uint64) (uint64, error)
	IsApproved(holder account.Principal, operator account.Principal) bool
}

type authorisation struct {
	request settlement.TransferRequest
	txRef   string
}

type submission struct {
	request   settlement.TransferRequest
	submitted time.Time
	finality  settlement.Finality
}

// Local - signer acting as the marketplace operator
type Local struct {
	sync.Mutex

	log      *logger.L
	ledger   Ledger
	operator account.Principal
	delay    time.Duration
	now      func() time.Time

	tokens         map[string]string
	authorisations map[string]*authorisation
	submissions    map[string]*submission
}

// New - create a local signer, clock may be nil
func New(log *logger.L, ledger Ledger, operator account.Principal, finalityDelay time.Duration, clock func() time.Time) (*Local, error) {
	if err := operator.Validate(); nil != err {
		return nil, err
	}
	if nil == clock {
		clock = time.Now
	}
	return &Local{
		log:            log,
		ledger:         ledger,
		operator:       operator,
		delay:          finalityDelay,
		now:            clock,
		tokens:         make(map[string]string),
		authorisations: make(map[string]*authorisation),
		submissions:    make(map[string]*submission),
	}, nil
}

// Operator - the principal that moves units on the holders' behalf
func (s *Local) Operator() account.Principal {
	return s.operator
}

// RequestAuthorisation - issue a token if the holder approved the operator
//
// a repeated request for the same correlation id returns the same token
func (s *Local) RequestAuthorisation(ctx context.Context, request settlement.TransferRequest) (string, error) {
	if err := ctx.Err(); nil != err {
		return "", err
	}
	if 0 == request.Quantity || "" == request.CorrelationId {
		return "", fault.MissingParameters
	}
	if !s.ledger.IsApproved(request.Holder, s.operator) {
		s.log.Infof("authorise: %s  holder: %s has not approved: %s", request.CorrelationId, request.Holder, s.operator)
		return "", fault.ExternalRejection
	}

	s.Lock()
	defer s.Unlock()

	if token, ok := s.tokens[request.CorrelationId]; ok {
		return token, nil
	}

	token := uuid.New().String()
	s.tokens[request.CorrelationId] = token
	s.authorisations[token] = &authorisation{request: request}

	s.log.Debugf("authorise: %s  token: %s", request.CorrelationId, token)
	return token, nil
}

// SubmitTransfer - accept an authorised transfer, idempotent per token
func (s *Local) SubmitTransfer(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); nil != err {
		return "", err
	}

	s.Lock()
	defer s.Unlock()

	a, ok := s.authorisations[token]
	if !ok {
		return "", fault.InvalidAuthorisation
	}
	if "" != a.txRef {
		return a.txRef, nil
	}

	r := a.request
	if !s.ledger.IsApproved(r.Holder, s.operator) {
		return "", fault.ExternalRejection
	}
	balance, err := s.ledger.BalanceOf(r.Holder, r.AssetId)
	if nil != err {
		return "", err
	}
	if balance < r.Quantity {
		return "", fault.InsufficientBalance
	}

	digest := sha3.Sum256([]byte(token))
	a.txRef = hex.EncodeToString(digest[:])
	s.submissions[a.txRef] = &submission{
		request:   r,
		submitted: s.now(),
		finality:  settlement.FinalityPending,
	}

	s.log.Infof("submit: %s  tx: %s", r.CorrelationId, a.txRef)
	return a.txRef, nil
}

// CheckFinality - apply the transfer once the delay has passed
func (s *Local) CheckFinality(ctx context.Context, txRef string) (settlement.Finality, error) {
	if err := ctx.Err(); nil != err {
		return settlement.FinalityPending, err
	}

	s.Lock()
	defer s.Unlock()

	sub, ok := s.submissions[txRef]
	if !ok {
		return settlement.FinalityPending, fault.UnknownTransaction
	}
	if settlement.FinalityPending != sub.finality {
		return sub.finality, nil
	}
	if s.now().Sub(sub.submitted) < s.delay {
		return settlement.FinalityPending, nil
	}

	r := sub.request
	err := s.ledger.Transfer(s.operator, r.Holder, r.Recipient, r.AssetId, r.Quantity)
	if nil != err {
		sub.finality = settlement.FinalisedFailure
		s.log.Warnf("tx: %s  transfer failed: %s", txRef, err)
	} else {
		sub.finality = settlement.FinalisedSuccess
		s.log.Infof("tx: %s  final", txRef)
	}
	return sub.finality, nil
}
