// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/reservoir"
)

const (
	statsDelay = 60 * time.Second
	mega       = 1048576
)

// periodic log of memory use and settlement activity
type statistics struct {
	log          *logger.L
	reservations *reservoir.Reservoir
	outbox       *reconcile.Dispatcher
	registry     *access.Registry
}

func (s *statistics) Run(args interface{}, shutdown <-chan struct{}) {

	log := s.log
	log.Info("starting…")

	timer := time.NewTicker(statsDelay)
	defer timer.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-timer.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		a := m.Alloc / mega
		t := m.TotalAlloc / mega
		sys := m.Sys / mega
		log.Infof("allocated: %d M  cumulative: %d M  OS virtual: %d M", a, t, sys)
		log.Infof("reservations: %d  pending notifications: %d  roles version: %d", s.reservations.Count(), s.outbox.Pending(), s.registry.Version())
	}

	log.Info("stopped")
}
