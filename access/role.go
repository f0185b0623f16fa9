// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access

import (
	"strings"

	"github.com/grun-exchange/creditd/fault"
)

// Role - a capability that can be granted to a principal
type Role int

// possible roles
const (
	Admin          Role = iota
	Minter         Role = iota
	VerifiedSeller Role = iota
	roleLimit      Role = iota
)

// String - convert the role for printf
func (r Role) String() string {
	switch r {
	case Admin:
		return "ADMIN"
	case Minter:
		return "MINTER"
	case VerifiedSeller:
		return "VERIFIED_SELLER"
	default:
		return "*Unknown*"
	}
}

// Valid - true for a defined role
func (r Role) Valid() bool {
	return r >= Admin && r < roleLimit
}

// MarshalText - convert the role for JSON
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fault.InvalidRole
	}
	return []byte(r.String()), nil
}

// UnmarshalText - convert the role from JSON to enumeration
func (r *Role) UnmarshalText(s []byte) error {
	role, err := ParseRole(string(s))
	if nil != err {
		return err
	}
	*r = role
	return nil
}

// ParseRole - case insensitive role name
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return Admin, nil
	case "MINTER":
		return Minter, nil
	case "VERIFIED_SELLER", "SELLER":
		return VerifiedSeller, nil
	default:
		return roleLimit, fault.InvalidRole
	}
}

// RoleSet - bit set of roles held by one principal
type RoleSet uint64

// Has - test membership
func (s RoleSet) Has(r Role) bool {
	return r.Valid() && 0 != s&(1<<uint(r))
}

// With - add a role
func (s RoleSet) With(r Role) RoleSet {
	return s | 1<<uint(r)
}

// Without - remove a role
func (s RoleSet) Without(r Role) RoleSet {
	return s &^ (1 << uint(r))
}

// Roles - list the members of the set in role order
func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, int(roleLimit))
	for r := Admin; r < roleLimit; r += 1 {
		if s.Has(r) {
			roles = append(roles, r)
		}
	}
	return roles
}
