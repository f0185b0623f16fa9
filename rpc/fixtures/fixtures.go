// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared setup for the rpc package tests
package fixtures

import (
	"os"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/rpc/certificate"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - log to a scratch directory at critical level
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0o700)

	logging := logger.Configuration{
		Directory: dir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	_ = logger.Initialise(logging)
}

// TeardownTestLogger - close the logger and remove its files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(dir)
}

var (
	once           sync.Once
	certificatePEM string
	keyPEM         string
)

// CertificatePair - a self-signed PEM certificate and key for
// localhost, generated once per test binary
func CertificatePair() (string, string) {
	once.Do(func() {
		var err error
		certificatePEM, keyPEM, err = certificate.Generate("testing", []string{"localhost", "127.0.0.1"})
		if nil != err {
			panic(err)
		}
	})
	return certificatePEM, keyPEM
}
