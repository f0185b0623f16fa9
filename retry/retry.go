// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package retry - bounded exponential backoff for calls to external systems
package retry

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/fault"
)

// Policy - backoff parameters
//
// Attempts of zero means retry until the context is done
type Policy struct {
	Initial  time.Duration `json:"initial"`
	Maximum  time.Duration `json:"maximum"`
	Timeout  time.Duration `json:"timeout"`
	Attempts int           `json:"attempts"`
}

// Default - policy used when none is configured
var Default = Policy{
	Initial:  200 * time.Millisecond,
	Maximum:  10 * time.Second,
	Timeout:  5 * time.Second,
	Attempts: 5,
}

// Delay - pause after the given failed attempt, counting from 1
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.Initial
	for i := 1; i < attempt; i += 1 {
		d *= 2
		if p.Maximum > 0 && d >= p.Maximum {
			return p.Maximum
		}
	}
	if p.Maximum > 0 && d > p.Maximum {
		return p.Maximum
	}
	return d
}

// Do - call fn until it succeeds or fails with a non-retryable error
//
// each attempt gets its own timeout, the last error is returned once
// the attempts are used up
func Do(ctx context.Context, p Policy, log *logger.L, what string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt += 1 {
		err := attemptOnce(ctx, p.Timeout, fn)
		if nil == err {
			return nil
		}
		if !fault.IsRetryable(err) {
			return err
		}
		if nil != ctx.Err() {
			return err
		}
		if p.Attempts > 0 && attempt >= p.Attempts {
			log.Warnf("%s: giving up after %d attempts: %s", what, attempt, err)
			return err
		}

		delay := p.Delay(attempt)
		log.Debugf("%s: attempt %d failed: %s  retry in: %s", what, attempt, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func attemptOnce(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
