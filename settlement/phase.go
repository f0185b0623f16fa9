// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"github.com/grun-exchange/creditd/fault"
)

// Phase - position of a settlement in its state machine
type Phase int

// possible phases
const (
	Initiated  Phase = iota
	Authorised Phase = iota
	Submitted  Phase = iota
	Confirmed  Phase = iota
	Failed     Phase = iota
	Expired    Phase = iota
)

// String - convert the phase for printf
func (p Phase) String() string {
	switch p {
	case Initiated:
		return "INITIATED"
	case Authorised:
		return "AUTHORIZED"
	case Submitted:
		return "SUBMITTED"
	case Confirmed:
		return "CONFIRMED"
	case Failed:
		return "FAILED"
	case Expired:
		return "EXPIRED"
	default:
		return "*Unknown*"
	}
}

// MarshalText - convert the phase for JSON
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText - convert the phase from JSON to enumeration
func (p *Phase) UnmarshalText(text []byte) error {
	for q := Initiated; q <= Expired; q += 1 {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fault.RecordCorrupt
}

// IsTerminal - no transition leaves a terminal phase
func (p Phase) IsTerminal() bool {
	return Confirmed == p || Failed == p || Expired == p
}

// allowed transitions, every one moves forward
var transitions = map[Phase][]Phase{
	Initiated:  {Authorised, Failed, Expired},
	Authorised: {Submitted, Failed, Expired},
	Submitted:  {Confirmed, Failed, Expired},
}

// CanTransition - check a single step of the state machine
func (p Phase) CanTransition(to Phase) bool {
	for _, q := range transitions[p] {
		if q == to {
			return true
		}
	}
	return false
}
