// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/retry"
)

// DefaultPolicy - retry forever with a capped delay
var DefaultPolicy = retry.Policy{
	Initial:  500 * time.Millisecond,
	Maximum:  time.Minute,
	Timeout:  10 * time.Second,
	Attempts: 0,
}

type pending struct {
	n        Notification
	attempts int
	next     time.Time
}

// Dispatcher - background delivery of notifications
//
// a notification stays queued until the notifier accepts it, at most
// one copy per correlation id is queued at a time
type Dispatcher struct {
	sync.Mutex

	log         *logger.L
	notifier    Notifier
	policy      retry.Policy
	onDelivered func(Notification)

	queue map[string]*pending
	wake  chan struct{}
}

// NewDispatcher - create a dispatcher, onDelivered may be nil
func NewDispatcher(log *logger.L, notifier Notifier, policy retry.Policy, onDelivered func(Notification)) *Dispatcher {
	return &Dispatcher{
		log:         log,
		notifier:    notifier,
		policy:      policy,
		onDelivered: onDelivered,
		queue:       make(map[string]*pending),
		wake:        make(chan struct{}, 1),
	}
}

// Enqueue - schedule delivery, false if already queued
func (d *Dispatcher) Enqueue(n Notification) bool {
	d.Lock()
	_, ok := d.queue[n.CorrelationId]
	if !ok {
		d.queue[n.CorrelationId] = &pending{n: n}
	}
	d.Unlock()

	if ok {
		return false
	}

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending - number of undelivered notifications
func (d *Dispatcher) Pending() int {
	d.Lock()
	defer d.Unlock()

	return len(d.queue)
}

// Run - background delivery loop
func (d *Dispatcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := d.log
	log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-shutdown
		cancel()
	}()

loop:
	for {
		wait := d.deliverDue(ctx)

		timer := time.NewTimer(wait)
		select {
		case <-shutdown:
			timer.Stop()
			break loop
		case <-d.wake:
			timer.Stop()
		case <-timer.C:
		}
	}

	log.Infof("shutdown with %d undelivered", d.Pending())
}

// attempt everything whose time has come and return the pause until
// the next scheduled attempt
func (d *Dispatcher) deliverDue(ctx context.Context) time.Duration {
	now := time.Now()

	d.Lock()
	due := make([]*pending, 0, len(d.queue))
	for _, p := range d.queue {
		if !p.next.After(now) {
			due = append(due, p)
		}
	}
	d.Unlock()

	sort.Slice(due, func(i, j int) bool {
		return due[i].n.Timestamp.Before(due[j].n.Timestamp)
	})

	for _, p := range due {
		if nil != ctx.Err() {
			break
		}
		d.deliver(ctx, p)
	}

	d.Lock()
	defer d.Unlock()

	wait := d.policy.Maximum
	if wait <= 0 {
		wait = time.Minute
	}
	now = time.Now()
	for _, p := range d.queue {
		if w := p.next.Sub(now); w < wait {
			wait = w
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (d *Dispatcher) deliver(ctx context.Context, p *pending) {
	attemptCtx := ctx
	if d.policy.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, d.policy.Timeout)
		defer cancel()
	}

	err := d.notifier.NotifyOutcome(attemptCtx, p.n)

	d.Lock()
	if nil == err {
		delete(d.queue, p.n.CorrelationId)
		d.Unlock()

		d.log.Infof("delivered: %s  outcome: %s  tx: %s", p.n.CorrelationId, p.n.Outcome, p.n.TxRef)
		if nil != d.onDelivered {
			d.onDelivered(p.n)
		}
		return
	}

	p.attempts += 1
	delay := d.policy.Delay(p.attempts)
	p.next = time.Now().Add(delay)
	attempts := p.attempts
	d.Unlock()

	if d.policy.Attempts > 0 && attempts >= d.policy.Attempts {
		d.log.Errorf("notify: %s  failed %d times, still queued: %s", p.n.CorrelationId, attempts, err)
	} else {
		d.log.Warnf("notify: %s  attempt: %d  retry in: %s  error: %s", p.n.CorrelationId, attempts, delay, err)
	}
}
