// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/grun-exchange/creditd/fault"
)

// Batch - a set of writes that are committed atomically
//
// either every write in a batch becomes visible or none do, so a
// debit and its matching credit are never observed separately
type Batch struct {
	store   *Store
	batch   *leveldb.Batch
	pending []pendingWrite
}

type pendingWrite struct {
	op    dbOperation
	key   []byte
	value []byte
}

// NewBatch - start an empty batch
func (s *Store) NewBatch() *Batch {
	return &Batch{
		store: s,
		batch: new(leveldb.Batch),
	}
}

// Put - add a key/value to the batch
func (b *Batch) Put(p *PoolHandle, key []byte, value []byte) {
	prefixedKey := p.prefixKey(key)
	b.batch.Put(prefixedKey, value)
	b.pending = append(b.pending, pendingWrite{op: dbPut, key: prefixedKey, value: copyBytes(value)})
}

// PutN - add a key/big endian uint64 to the batch
func (b *Batch) PutN(p *PoolHandle, key []byte, n uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	b.Put(p, key, buffer)
}

// Delete - add a key removal to the batch
func (b *Batch) Delete(p *PoolHandle, key []byte) {
	prefixedKey := p.prefixKey(key)
	b.batch.Delete(prefixedKey)
	b.pending = append(b.pending, pendingWrite{op: dbDelete, key: prefixedKey})
}

// Len - number of writes in the batch
func (b *Batch) Len() int {
	return len(b.pending)
}

// Commit - write the whole batch
//
// the write lock covers both the database write and the cache update so
// concurrent commits to one key leave the cache in database order
func (b *Batch) Commit() error {
	if 0 == len(b.pending) {
		return nil
	}

	b.store.Lock()
	defer b.store.Unlock()

	if nil == b.store.db {
		return fault.DatabaseIsNotSet
	}
	if b.store.readOnly {
		return fault.ReadOnlyDatabase
	}

	if err := b.store.db.Write(b.batch, nil); nil != err {
		return err
	}

	for _, w := range b.pending {
		b.store.cache.Set(w.op, string(w.key), w.value)
	}
	b.batch.Reset()
	b.pending = nil
	return nil
}
