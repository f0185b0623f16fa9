// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/grun-exchange/creditd/counter"
	"github.com/grun-exchange/creditd/rpc/fixtures"
	"github.com/grun-exchange/creditd/rpc/node"
)

type fixed int

func (f fixed) Count() int   { return int(f) }
func (f fixed) Pending() int { return int(f) }

func TestNodeInfo(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	c := counter.Counter(5)
	n := node.New(
		logger.New(fixtures.LogCategory),
		time.Now().Add(-time.Minute),
		"100",
		&c,
		fixed(3),
		fixed(2),
	)

	var reply node.InfoReply
	err := n.Info(&node.InfoArguments{}, &reply)
	assert.Nil(t, err, "wrong Info")
	assert.Equal(t, "100", reply.Version, "wrong version")
	assert.Equal(t, c.Uint64(), reply.RPCs, "wrong connection count")
	assert.Equal(t, 3, reply.Reservations, "wrong reservation count")
	assert.Equal(t, 2, reply.Notifications, "wrong notification count")
	assert.NotEqual(t, "", reply.Uptime, "missing uptime")
}

func TestNodeInfoWithoutStatistics(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	c := counter.Counter(0)
	n := node.New(logger.New(fixtures.LogCategory), time.Now(), "zero", &c, nil, nil)

	var reply node.InfoReply
	err := n.Info(&node.InfoArguments{}, &reply)
	assert.Nil(t, err, "wrong Info")
	assert.Equal(t, 0, reply.Reservations, "wrong reservation count")
	assert.Equal(t, 0, reply.Notifications, "wrong notification count")
}
