// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package access - role membership consulted by the ledger
//
// Reads are far more frequent than writes, so readers load an
// immutable snapshot without locking.  A writer copies the current
// snapshot, applies its change, persists it and then publishes the
// new snapshot with a higher version.
package access

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/storage"
)

// Checker - the capability check used by gated operations
type Checker interface {
	Has(role Role, principal account.Principal) bool
}

type snapshot struct {
	version uint64
	grants  map[account.Principal]RoleSet
}

// Registry - source of truth for role membership
type Registry struct {
	log       *logger.L
	pool      *storage.PoolHandle
	writeLock sync.Mutex
	current   atomic.Pointer[snapshot]
}

// New - create a registry, loading persisted grants if a pool is given
func New(log *logger.L, pool *storage.PoolHandle) (*Registry, error) {
	r := &Registry{
		log:  log,
		pool: pool,
	}

	grants := make(map[account.Principal]RoleSet)
	if nil != pool {
		err := pool.Fetch(nil, func(key []byte, value []byte) bool {
			if len(value) >= 8 {
				grants[account.Principal(key)] = RoleSet(storage.KeyUint64(value))
			}
			return true
		})
		if nil != err {
			return nil, err
		}
	}

	r.current.Store(&snapshot{grants: grants})
	log.Infof("loaded %d role grants", len(grants))
	return r, nil
}

// Has - check a single role at this instant
func (r *Registry) Has(role Role, principal account.Principal) bool {
	return r.current.Load().grants[principal].Has(role)
}

// HasAny - check if any one of the roles is held
func (r *Registry) HasAny(principal account.Principal, roles ...Role) bool {
	set := r.current.Load().grants[principal]
	for _, role := range roles {
		if set.Has(role) {
			return true
		}
	}
	return false
}

// Roles - all roles held by a principal
func (r *Registry) Roles(principal account.Principal) RoleSet {
	return r.current.Load().grants[principal]
}

// Members - sorted list of principals holding a role
func (r *Registry) Members(role Role) []account.Principal {
	members := []account.Principal{}
	for principal, set := range r.current.Load().grants {
		if set.Has(role) {
			members = append(members, principal)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members
}

// Version - incremented on every effective change
func (r *Registry) Version() uint64 {
	return r.current.Load().version
}

// Grant - add a role to a principal
func (r *Registry) Grant(role Role, principal account.Principal) error {
	return r.update(role, principal, true)
}

// Revoke - remove a role from a principal
func (r *Registry) Revoke(role Role, principal account.Principal) error {
	return r.update(role, principal, false)
}

func (r *Registry) update(role Role, principal account.Principal, grant bool) error {
	if !role.Valid() {
		return fault.InvalidRole
	}
	if err := principal.Validate(); nil != err {
		return err
	}

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	old := r.current.Load()
	set := old.grants[principal]
	updated := set.Without(role)
	if grant {
		updated = set.With(role)
	}
	if updated == set {
		return nil
	}

	if nil != r.pool {
		var err error
		if 0 == updated {
			err = r.pool.Delete(principal.Bytes())
		} else {
			err = r.pool.Put(principal.Bytes(), storage.Uint64Key(uint64(updated)))
		}
		if nil != err {
			return err
		}
	}

	grants := make(map[account.Principal]RoleSet, len(old.grants)+1)
	for k, v := range old.grants {
		grants[k] = v
	}
	if 0 == updated {
		delete(grants, principal)
	} else {
		grants[principal] = updated
	}

	r.current.Store(&snapshot{
		version: old.version + 1,
		grants:  grants,
	})

	if grant {
		r.log.Infof("grant: %s to: %s", role, principal)
	} else {
		r.log.Infof("revoke: %s from: %s", role, principal)
	}
	return nil
}
