// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grun-exchange/creditd/counter"
)

func TestIncrementDecrement(t *testing.T) {
	var c counter.Counter
	assert.Equal(t, uint64(0), c.Uint64(), "not zero at start")

	for i := 0; i < 5; i += 1 {
		c.Increment()
	}
	assert.Equal(t, uint64(5), c.Uint64(), "after increments")
	assert.Equal(t, uint64(4), c.Decrement(), "after decrement")
}

func TestAcquireRelease(t *testing.T) {
	var c counter.Counter

	assert.True(t, c.Acquire(2), "first slot")
	assert.True(t, c.Acquire(2), "second slot")
	assert.False(t, c.Acquire(2), "over limit")
	assert.Equal(t, uint64(2), c.Uint64(), "refusal changed count")

	c.Release()
	assert.True(t, c.Acquire(2), "slot after release")

	c.Release()
	c.Release()
	c.Release()
	assert.Equal(t, uint64(0), c.Uint64(), "release below zero")
}

func TestConcurrentAcquire(t *testing.T) {
	const limit = 10

	var c counter.Counter
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < 50; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Acquire(limit) {
				mu.Lock()
				granted += 1
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, granted, "wrong number of slots granted")
	assert.Equal(t, uint64(limit), c.Uint64(), "wrong final count")
}
