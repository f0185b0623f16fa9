// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"context"
	"time"

	"github.com/grun-exchange/creditd/background"
)

// start the confirmation poller of a submitted record
//
// must hold the lock
func (o *Orchestrator) startPoller(e *entry) {
	if nil != e.cancelPoll {
		return
	}
	ctx, cancel := context.WithCancel(o.ctx)
	e.cancelPoll = cancel

	o.pollers.Add(1)
	go o.poll(ctx, e.record.Id)
}

// poll until the record is terminal or the context is cancelled
func (o *Orchestrator) poll(ctx context.Context, id string) {
	defer o.pollers.Done()

	ticker := time.NewTicker(o.conf.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r, err := o.PollConfirmation(ctx, id)
		if nil != err {
			o.log.Warnf("poll: %s  error: %s", id, err)
		}
		if nil == r || r.Phase.IsTerminal() {
			return
		}
	}
}

// Sweep - expire every settlement whose reservation deadline has passed
//
// submitted records get one last finality check first; a record with
// an authorise or submit call in flight is left for the next sweep
func (o *Orchestrator) Sweep(ctx context.Context) int {
	count := 0
	for _, res := range o.reservoir.Expired(o.now()) {
		e, err := o.lookup(res.Id)
		if nil != err {
			o.log.Warnf("sweep: orphan reservation: %s released", res.Id)
			o.reservoir.Release(res.Id)
			continue
		}

		if !e.op.TryLock() {
			o.log.Debugf("sweep: %s  step in progress", res.Id)
			continue
		}

		if Submitted == o.snapshot(e).Phase {
			e.op.Unlock()
			r, err := o.PollConfirmation(ctx, res.Id)
			if nil == err && Expired == r.Phase {
				count += 1
			}
			continue
		}

		o.Lock()
		if !e.record.Phase.IsTerminal() {
			err = o.transition(e, Expired, func(r *Record) {
				r.Reason = "reservation deadline passed"
			})
			if nil == err {
				count += 1
			}
		}
		o.Unlock()
		e.op.Unlock()
	}
	return count
}

type sweeper struct {
	o *Orchestrator
}

// Sweeper - background process running Sweep periodically
func (o *Orchestrator) Sweeper() background.Process {
	return &sweeper{o: o}
}

func (s *sweeper) Run(args interface{}, shutdown <-chan struct{}) {
	log := s.o.log
	log.Info("sweeper starting…")

	ticker := time.NewTicker(s.o.conf.SweepInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			if n := s.o.Sweep(s.o.ctx); n > 0 {
				log.Infof("expired %d settlements", n)
			}
		}
	}

	log.Info("sweeper stopped")
}
