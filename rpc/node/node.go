// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/grun-exchange/creditd/counter"
	"github.com/grun-exchange/creditd/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Reservations - active reservation count
type Reservations interface {
	Count() int
}

// Outbox - undelivered reconciliation notifications
type Outbox interface {
	Pending() int
}

// Node - type for RPC calls
type Node struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	Start        time.Time
	Version      string
	Reservations Reservations
	Outbox       Outbox
	counter      *counter.Counter
}

// New - create the node RPC handler
func New(log *logger.L, start time.Time, version string, counter *counter.Counter, reservations Reservations, outbox Outbox) *Node {
	return &Node{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:        start,
		Version:      version,
		Reservations: reservations,
		Outbox:       outbox,
		counter:      counter,
	}
}

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	RPCs          uint64 `json:"rpcs"`
	Reservations  int    `json:"reservations"`
	Notifications int    `json:"pendingNotifications"`
}

// Info - return some information about this node
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	reply.RPCs = node.counter.Uint64()
	if nil != node.Reservations {
		reply.Reservations = node.Reservations.Count()
	}
	if nil != node.Outbox {
		reply.Notifications = node.Outbox.Pending()
	}

	return nil
}
