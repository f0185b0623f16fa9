// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type AuthorisationError GenericError
type BalanceError GenericError
type ExistsError GenericError
type ExternalError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type StateError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised           = ProcessError("already initialised")
	AlreadyTerminal              = StateError("settlement already terminal")
	AssetFrozen                  = StateError("asset is rejected and frozen")
	AssetNotForSale              = InvalidError("asset is not verified for sale")
	AssetNotPending              = StateError("asset is not pending review")
	CannotCancelSubmitted        = StateError("cannot cancel a submitted settlement")
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	ConfigurationNotTable        = InvalidError("configuration must return a table")
	DatabaseIsNotSet             = ProcessError("database is not set")
	DuplicateSettlement          = ExistsError("duplicate settlement")
	ExternalRejection            = ExternalError("external rejection")
	ExternalTimeout              = ExternalError("external timeout")
	InsufficientAvailability     = BalanceError("insufficient availability")
	InsufficientBalance          = BalanceError("insufficient balance")
	InvalidCount                 = InvalidError("invalid count")
	InvalidDecision              = InvalidError("invalid review decision")
	InvalidExpiry                = InvalidError("invalid expiry")
	InvalidIpAddress             = InvalidError("invalid IP address")
	InvalidPrice                 = InvalidError("invalid price")
	InvalidPrincipal             = InvalidError("invalid principal")
	InvalidQuantity              = InvalidError("invalid quantity")
	InvalidRole                  = InvalidError("invalid role")
	InvalidAuthorisation         = InvalidError("invalid authorisation token")
	InvalidTransition            = StateError("invalid settlement transition")
	KeyFileAlreadyExists         = ExistsError("key file already exists")
	MissingParameters            = InvalidError("missing parameters")
	NotInitialised               = ProcessError("not initialised")
	QuantityOverflow             = InvalidError("quantity overflow")
	RateLimiting                 = InvalidError("rate limiting")
	ReadOnlyDatabase             = ProcessError("database is read only")
	RecordCorrupt                = ProcessError("stored record is corrupt")
	SelfPurchase                 = InvalidError("buyer and seller are the same principal")
	SoldOut                      = StateError("asset is sold out")
	Unauthorised                 = AuthorisationError("unauthorised")
	UnknownAsset                 = NotFoundError("unknown asset")
	UnknownSettlement            = NotFoundError("unknown settlement")
	UnknownTransaction           = NotFoundError("unknown transaction reference")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthorisationError) Error() string { return string(e) }
func (e BalanceError) Error() string       { return string(e) }
func (e ExistsError) Error() string        { return string(e) }
func (e ExternalError) Error() string      { return string(e) }
func (e InvalidError) Error() string       { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }
func (e StateError) Error() string         { return string(e) }

// determine the class of an error
func IsErrAuthorisation(e error) bool { var x AuthorisationError; return errors.As(e, &x) }
func IsErrBalance(e error) bool       { var x BalanceError; return errors.As(e, &x) }
func IsErrExists(e error) bool        { var x ExistsError; return errors.As(e, &x) }
func IsErrExternal(e error) bool      { var x ExternalError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool       { var x InvalidError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool      { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool       { var x ProcessError; return errors.As(e, &x) }
func IsErrState(e error) bool         { var x StateError; return errors.As(e, &x) }

// IsRetryable - true if an automatic retry may succeed
//
// only a timeout or an unclassified (transport level) error is
// retried, everything else is a policy decision that must reach the
// caller unchanged
func IsRetryable(e error) bool {
	if nil == e {
		return false
	}
	if errors.Is(e, ExternalTimeout) {
		return true
	}
	return !isClassified(e)
}

func isClassified(e error) bool {
	return IsErrAuthorisation(e) ||
		IsErrBalance(e) ||
		IsErrExists(e) ||
		IsErrExternal(e) ||
		IsErrInvalid(e) ||
		IsErrNotFound(e) ||
		IsErrProcess(e) ||
		IsErrState(e)
}
