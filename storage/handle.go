// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
	"github.com/grun-exchange/creditd/fault"
)

// PoolHandle - the pool handle
type PoolHandle struct {
	prefix byte
	limit  []byte
	store  *Store
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Get - read a value for a given key
//
// returns nil if the key does not exist
func (p *PoolHandle) Get(key []byte) []byte {
	p.store.RLock()
	defer p.store.RUnlock()

	if nil == p.store.db {
		logger.Panic("pool.Get nil database")
		return nil
	}

	prefixedKey := p.prefixKey(key)
	if value, found, deleted := p.store.cache.Get(string(prefixedKey)); found {
		if deleted {
			return nil
		}
		return copyBytes(value)
	}

	value, err := p.store.db.Get(prefixedKey, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("pool.GetN truncated record for: %x: %x", key, buffer)
	}
	n := binary.BigEndian.Uint64(buffer[:8])
	return n, true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	return nil != p.Get(key)
}

// Fetch - iterate all keys in this pool starting with prefix
//
// keys passed to the callback have only the pool prefix removed,
// iteration stops early if the callback returns false
func (p *PoolHandle) Fetch(prefix []byte, callback func(key []byte, value []byte) bool) error {
	p.store.RLock()
	defer p.store.RUnlock()

	if nil == p.store.db {
		return fault.DatabaseIsNotSet
	}

	searchRange := ldb_util.BytesPrefix(p.prefixKey(prefix))
	iter := p.store.db.NewIterator(searchRange, nil)
	defer iter.Release()

	for iter.Next() {
		key := copyBytes(iter.Key()[1:])
		value := copyBytes(iter.Value())
		if !callback(key, value) {
			break
		}
	}
	return iter.Error()
}

// Put - store a single key/value immediately
func (p *PoolHandle) Put(key []byte, value []byte) error {
	b := p.store.NewBatch()
	b.Put(p, key, value)
	return b.Commit()
}

// Delete - remove a single key immediately
func (p *PoolHandle) Delete(key []byte) error {
	b := p.store.NewBatch()
	b.Delete(p, key)
	return b.Commit()
}

func copyBytes(b []byte) []byte {
	if nil == b {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// Uint64Key - big endian key of a sequence number or asset id
func Uint64Key(n uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return buffer
}

// KeyUint64 - decode the first 8 bytes of a key
func KeyUint64(key []byte) uint64 {
	if len(key) < 8 {
		logger.Panicf("key too short for uint64: %x", key)
	}
	return binary.BigEndian.Uint64(key[:8])
}

// Join - concatenate key parts
func Join(parts ...[]byte) []byte {
	n := 0
	for _, part := range parts {
		n += len(part)
	}
	key := make([]byte, 0, n)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}
