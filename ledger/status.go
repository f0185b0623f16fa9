// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"strings"

	"github.com/grun-exchange/creditd/fault"
)

// Status - review state of an asset
//
// Exhausted is never stored, it is derived from supply by Asset.Lifecycle
type Status int

// possible status values
const (
	Pending   Status = iota
	Verified  Status = iota
	Rejected  Status = iota
	Exhausted Status = iota
)

// String - convert the status for printf
func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Verified:
		return "VERIFIED"
	case Rejected:
		return "REJECTED"
	case Exhausted:
		return "RETIRED-EXHAUSTED"
	default:
		return "*Unknown*"
	}
}

// MarshalText - convert the status for JSON
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText - convert the status from JSON to enumeration
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PENDING":
		*s = Pending
	case "VERIFIED":
		*s = Verified
	case "REJECTED":
		*s = Rejected
	case "RETIRED-EXHAUSTED":
		*s = Exhausted
	default:
		return fault.RecordCorrupt
	}
	return nil
}

// Decision - outcome of an administrator review
type Decision int

// possible decisions
const (
	Verify Decision = iota
	Reject Decision = iota
)

// String - convert the decision for printf
func (d Decision) String() string {
	switch d {
	case Verify:
		return "VERIFY"
	case Reject:
		return "REJECT"
	default:
		return "*Unknown*"
	}
}

// ParseDecision - case insensitive decision name
func ParseDecision(s string) (Decision, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VERIFY", "APPROVE":
		return Verify, nil
	case "REJECT":
		return Reject, nil
	default:
		return Verify, fault.InvalidDecision
	}
}
