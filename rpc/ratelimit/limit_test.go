// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ratelimit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/rpc/ratelimit"
)

func TestLimit(t *testing.T) {
	limiter := rate.NewLimiter(100, 10)
	for i := 0; i < 10; i += 1 {
		assert.Nil(t, ratelimit.Limit(limiter), "burst request %d", i)
	}
}

func TestLimitRefusesLongDelay(t *testing.T) {
	limiter := rate.NewLimiter(0.1, 1)
	assert.Nil(t, ratelimit.Limit(limiter), "first request")
	assert.Equal(t, fault.RateLimiting, ratelimit.Limit(limiter), "second request")
}

func TestLimitN(t *testing.T) {
	limiter := rate.NewLimiter(100, 50)
	assert.Nil(t, ratelimit.LimitN(limiter, 20, 50), "valid count")
	assert.Equal(t, fault.InvalidCount, ratelimit.LimitN(limiter, 0, 50), "zero count")
	assert.Equal(t, fault.InvalidCount, ratelimit.LimitN(limiter, 51, 50), "count above maximum")
}

func TestLimitNAboveBurst(t *testing.T) {
	limiter := rate.NewLimiter(10, 5)
	assert.Equal(t, fault.RateLimiting, ratelimit.LimitN(limiter, 6, 10), "count above burst")
}
