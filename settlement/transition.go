// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"context"

	"github.com/grun-exchange/creditd/fault"
)

// move a record one step, persisting it and adjusting its reservation
//
// must hold the lock
func (o *Orchestrator) transition(e *entry, to Phase, update func(r *Record)) error {
	from := e.record.Phase
	if !from.CanTransition(to) {
		if from.IsTerminal() {
			return fault.AlreadyTerminal
		}
		return fault.InvalidTransition
	}

	r := e.record
	r.Phase = to
	r.Updated = o.now().UTC()
	if nil != update {
		update(&r)
	}
	if Confirmed == to {
		r.Receipt = receiptNumber(r.Id, r.Updated)
	}

	if err := putRecord(o.pool, &r); nil != err {
		o.log.Errorf("settlement: %s  store %s error: %s", r.Id, to, err)
		return err
	}
	e.record = r

	switch to {
	case Confirmed:
		o.reservoir.Consume(r.Id)
	case Failed, Expired:
		o.reservoir.Release(r.Id)
	}

	if to.IsTerminal() {
		if nil != e.cancelPoll {
			e.cancelPoll()
			e.cancelPoll = nil
		}
		o.outbox.Enqueue(r.notification())
		o.log.Infof("settlement: %s  %s -> %s  tx: %s  reason: %q", r.Id, from, to, r.TxRef, r.Reason)
	} else {
		o.log.Debugf("settlement: %s  %s -> %s", r.Id, from, to)
	}
	return nil
}

// apply the result of an external step taken outside the lock
func (o *Orchestrator) complete(ctx context.Context, e *entry, stepErr error, to Phase, update func(r *Record)) (*Record, error) {
	if nil != stepErr && nil != ctx.Err() {
		// the caller gave up, retry or the sweeper will finish the record
		return o.snapshot(e), stepErr
	}

	o.Lock()
	defer o.Unlock()

	if nil != stepErr {
		err := o.transition(e, Failed, func(r *Record) {
			r.Reason = stepErr.Error()
		})
		if nil != err && fault.AlreadyTerminal != err {
			o.log.Errorf("settlement: %s  fail error: %s", e.record.Id, err)
		}
		return e.record.copy(), stepErr
	}

	if err := o.transition(e, to, update); nil != err {
		if e.record.Phase.IsTerminal() {
			o.log.Warnf("settlement: %s  %s step completed after reaching: %s", e.record.Id, to, e.record.Phase)
		}
		return e.record.copy(), err
	}

	if Submitted == to {
		o.startPoller(e)
	}
	return e.record.copy(), nil
}

// PollConfirmation - check finality of a submitted transfer
//
// a terminal record is returned unchanged, without contacting the signer
func (o *Orchestrator) PollConfirmation(ctx context.Context, id string) (*Record, error) {
	e, err := o.lookup(id)
	if nil != err {
		return nil, err
	}

	r := o.snapshot(e)
	if r.Phase.IsTerminal() {
		return r, nil
	}

	finality := FinalityPending
	var checkErr error
	if Submitted == r.Phase {
		finality, checkErr = o.checkFinality(ctx, r.TxRef)
	}

	o.Lock()
	defer o.Unlock()

	if e.record.Phase.IsTerminal() {
		if nil == checkErr && FinalityPending != finality && Confirmed != e.record.Phase {
			o.log.Warnf("settlement: %s  finality: %s observed after: %s", id, finality, e.record.Phase)
		}
		return e.record.copy(), nil
	}

	switch {
	case nil != checkErr && !fault.IsRetryable(checkErr):
		err = o.transition(e, Failed, func(r *Record) {
			r.Reason = checkErr.Error()
		})
	case nil != checkErr:
		o.log.Debugf("settlement: %s  finality check error: %s", id, checkErr)
	case FinalisedSuccess == finality:
		err = o.transition(e, Confirmed, nil)
	case FinalisedFailure == finality:
		err = o.transition(e, Failed, func(r *Record) {
			r.Reason = "transfer failed at finality"
		})
	}
	if nil != err {
		return e.record.copy(), err
	}

	if !e.record.Phase.IsTerminal() && !o.now().Before(e.record.Deadline) {
		err = o.transition(e, Expired, func(r *Record) {
			r.Reason = "no finality before deadline"
		})
	}
	return e.record.copy(), err
}

// single finality check bounded by the attempt timeout
func (o *Orchestrator) checkFinality(ctx context.Context, txRef string) (Finality, error) {
	if o.conf.Retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.conf.Retry.Timeout)
		defer cancel()
	}
	return o.signer.CheckFinality(ctx, txRef)
}
