// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/counter"
	"github.com/grun-exchange/creditd/rpc/credits"
	"github.com/grun-exchange/creditd/rpc/node"
	"github.com/grun-exchange/creditd/rpc/purchase"
)

// Handlers - the components served over RPC
type Handlers struct {
	Ledger       credits.Ledger
	Roles        credits.Roles
	Orchestrator purchase.Orchestrator
	Orders       purchase.Orders
	Reservations node.Reservations
	Outbox       node.Outbox
}

// Create - register all services on a new RPC server
func Create(log *logger.L, version string, rpcCount *counter.Counter, handlers Handlers) (*rpc.Server, error) {

	start := time.Now().UTC()

	server := rpc.NewServer()

	services := []interface{}{
		credits.New(log, handlers.Ledger, handlers.Roles),
		purchase.New(log, handlers.Orchestrator, handlers.Orders),
		node.New(log, start, version, rpcCount, handlers.Reservations, handlers.Outbox),
	}
	for _, s := range services {
		if err := server.Register(s); nil != err {
			return nil, err
		}
	}

	return server, nil
}
