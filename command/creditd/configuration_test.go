// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/retry"
	"github.com/grun-exchange/creditd/settlement"
)

func writeConfiguration(t *testing.T, text string) string {
	dir := t.TempDir()
	name := filepath.Join(dir, "creditd.conf")
	require.Nil(t, os.WriteFile(name, []byte(text), 0o600), "write configuration")
	return name
}

func TestGetConfiguration(t *testing.T) {
	name := writeConfiguration(t, `
local M = {}
M.data_directory = "."
M.pidfile = "creditd.pid"
M.ledger = {
    auto_approve = true,
    administrators = { "admin-one", "admin-two" },
}
M.settlement = {
    reservation_window = "10m",
    poll_interval = "1s",
    fee_rate = 0.03,
    operator = arg.operator,
    retry = { initial = "100ms", maximum = "1s", attempts = 4 },
}
M.signer = { finality_delay = "3s" }
M.client_rpc = {
    listen = { "127.0.0.1:2130" },
    maximum_connections = 20,
}
return M
`)
	dir := filepath.Dir(name)

	options, err := getConfiguration(name, map[string]string{"operator": "marketplace"})
	require.Nil(t, err, "configuration error")

	assert.Equal(t, filepath.Clean(dir), filepath.Clean(options.DataDirectory), "data directory")
	assert.Equal(t, filepath.Join(dir, "creditd.pid"), options.PidFile, "pid file")
	assert.Equal(t, filepath.Join(dir, "data", "credits.leveldb"), options.Database.Name, "database")
	assert.Equal(t, filepath.Join(dir, "rpc.crt"), options.ClientRPC.Certificate, "certificate")
	assert.Equal(t, uint64(20), options.ClientRPC.MaximumConnections, "connections")
	assert.Equal(t, sinkLocal, options.Reconcile.Sink, "sink")

	_, err = os.Stat(filepath.Join(dir, "log"))
	assert.Nil(t, err, "log directory not created")

	admins, err := options.administrators()
	assert.Nil(t, err, "administrators")
	assert.Equal(t, []account.Principal{"admin-one", "admin-two"}, admins, "administrators")

	conf, err := options.settlementConfiguration()
	assert.Nil(t, err, "settlement configuration")
	assert.Equal(t, 10*time.Minute, conf.ReservationWindow, "reservation window")
	assert.Equal(t, time.Second, conf.PollInterval, "poll interval")
	assert.Equal(t, settlement.DefaultSweepInterval, conf.SweepInterval, "sweep interval default")
	assert.True(t, decimal.RequireFromString("0.03").Equal(conf.FeeRate), "fee rate: %s", conf.FeeRate)
	assert.Equal(t, retry.Policy{
		Initial:  100 * time.Millisecond,
		Maximum:  time.Second,
		Timeout:  retry.Default.Timeout,
		Attempts: 4,
	}, conf.Retry, "retry policy")

	delay, err := options.finalityDelay()
	assert.Nil(t, err, "finality delay")
	assert.Equal(t, 3*time.Second, delay, "finality delay")
}

func TestGetConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"no data directory": `return { settlement = { operator = "market" } }`,
		"no operator":       `return { data_directory = "." }`,
		"bad duration":      `return { data_directory = ".", settlement = { operator = "market", poll_interval = "soon" } }`,
		"bad fee rate":      `return { data_directory = ".", settlement = { operator = "market", fee_rate = 1.5 } }`,
		"bad sink":          `return { data_directory = ".", settlement = { operator = "market" }, reconcile = { sink = "email" } }`,
		"kafka no brokers":  `return { data_directory = ".", settlement = { operator = "market" }, reconcile = { sink = "kafka" } }`,
		"bad administrator": `return { data_directory = ".", settlement = { operator = "market" }, ledger = { administrators = { "has space" } } }`,
		"database path":     `return { data_directory = ".", settlement = { operator = "market" }, database = { name = "a/b.leveldb" } }`,
	}
	for title, text := range cases {
		_, err := getConfiguration(writeConfiguration(t, text), nil)
		assert.NotNil(t, err, "%s: accepted", title)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	policy, err := retryPolicy(RetryType{}, reconcile.DefaultPolicy)
	assert.Nil(t, err, "empty retry")
	assert.Equal(t, reconcile.DefaultPolicy, policy, "defaults not kept")

	_, err = retryPolicy(RetryType{Initial: "5s", Maximum: "1s"}, retry.Default)
	assert.NotNil(t, err, "maximum below initial accepted")

	_, err = retryPolicy(RetryType{Attempts: -1}, retry.Default)
	assert.NotNil(t, err, "negative attempts accepted")
}

func TestScriptVariables(t *testing.T) {
	v := scriptVariables([]string{"start", "operator=market", "ignored", "empty="})
	assert.Equal(t, map[string]string{"operator": "market", "empty": ""}, v, "variables")
	assert.Equal(t, 0, len(scriptVariables(nil)), "no arguments")
}

func TestReadPEM(t *testing.T) {
	inline := "-----BEGIN CERTIFICATE-----\nabc\n-----END CERTIFICATE-----\n"
	s, err := readPEM(inline)
	assert.Nil(t, err, "inline")
	assert.Equal(t, inline, s, "inline changed")

	name := filepath.Join(t.TempDir(), "rpc.crt")
	require.Nil(t, os.WriteFile(name, []byte(inline), 0o600), "write")
	s, err = readPEM(name)
	assert.Nil(t, err, "file")
	assert.Equal(t, inline, s, "file contents")

	_, err = readPEM(name + ".missing")
	assert.NotNil(t, err, "missing file")
}
