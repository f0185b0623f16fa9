// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - JSON-RPC over TLS for clients of the credit daemon
package rpc

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/counter"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/rpc/certificate"
	"github.com/grun-exchange/creditd/rpc/listeners"
	"github.com/grun-exchange/creditd/rpc/server"
)

const (
	tlsName = "client_rpc"
)

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	listener *listeners.Listener

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// number of active client connections
var connectionCountRPC counter.Counter

// Initialise - start the RPC listener
func Initialise(configuration *listeners.Configuration, handlers server.Handlers, version string) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	tlsConfig, certificateFingerprint, err := certificate.Get(log, tlsName, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return err
	}

	rpcServer, err := server.Create(log, version, &connectionCountRPC, handlers)
	if nil != err {
		return err
	}

	rpcListener, err := listeners.New(
		configuration,
		log,
		&connectionCountRPC,
		rpcServer,
		tlsConfig,
		certificateFingerprint,
	)
	if nil != err {
		return err
	}
	err = rpcListener.Serve()
	if nil != err {
		return err
	}

	globalData.listener = rpcListener

	// all data initialised
	globalData.initialised = true

	return nil
}

// Addresses - the bound listen addresses
func Addresses() []string {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return nil
	}
	return globalData.listener.Addresses()
}

// Finalise - stop accepting connections
func Finalise() error {

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.listener.Close()
	globalData.listener = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
