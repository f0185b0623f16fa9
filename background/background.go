// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run a set of long lived processes that share
// a single shutdown signal
package background

import (
	"sync"
)

// Process - type signature for background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle type
type T struct {
	shutdown chan struct{}
	done     sync.WaitGroup
	stopOnce sync.Once
}

// Start - start up a set of background processes
func Start(processes Processes, args interface{}) *T {

	register := &T{
		shutdown: make(chan struct{}),
	}

	// start each background
	for _, p := range processes {
		register.done.Add(1)
		go func(p Process) {
			defer register.done.Done()
			p.Run(args, register.shutdown)
		}(p)
	}
	return register
}

// Stop - stop a set of background processes and wait for them to
// finish, calling more than once is harmless
func (t *T) Stop() {
	if nil == t {
		return
	}
	t.stopOnce.Do(func() {
		close(t.shutdown)
	})
	t.done.Wait()
}
