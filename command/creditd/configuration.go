// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/shopspring/decimal"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/configuration"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/retry"
	"github.com/grun-exchange/creditd/rpc/listeners"
	"github.com/grun-exchange/creditd/settlement"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "credits.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "creditd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10

	defaultFinalityDelay = 5 * time.Second

	sinkLocal = "local"
	sinkKafka = "kafka"
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - leveldb location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// RetryType - backoff for calls to external services, durations as "2s"
type RetryType struct {
	Initial  string `gluamapper:"initial" json:"initial"`
	Maximum  string `gluamapper:"maximum" json:"maximum"`
	Timeout  string `gluamapper:"timeout" json:"timeout"`
	Attempts int    `gluamapper:"attempts" json:"attempts"`
}

// LedgerType - ledger options and the initial administrators
type LedgerType struct {
	AutoApprove     bool     `gluamapper:"auto_approve" json:"auto_approve"`
	MaximumQuantity uint64   `gluamapper:"maximum_quantity" json:"maximum_quantity"`
	Administrators  []string `gluamapper:"administrators" json:"administrators"`
}

// SettlementType - orchestrator options
type SettlementType struct {
	ReservationWindow string    `gluamapper:"reservation_window" json:"reservation_window"`
	PollInterval      string    `gluamapper:"poll_interval" json:"poll_interval"`
	SweepInterval     string    `gluamapper:"sweep_interval" json:"sweep_interval"`
	FeeRate           string    `gluamapper:"fee_rate" json:"fee_rate"`
	Operator          string    `gluamapper:"operator" json:"operator"`
	Retry             RetryType `gluamapper:"retry" json:"retry"`
}

// SignerType - local signing collaborator
type SignerType struct {
	FinalityDelay string `gluamapper:"finality_delay" json:"finality_delay"`
}

// ReconcileType - where settlement outcomes are delivered
type ReconcileType struct {
	Sink    string    `gluamapper:"sink" json:"sink"`
	Brokers []string  `gluamapper:"brokers" json:"brokers"`
	Topic   string    `gluamapper:"topic" json:"topic"`
	Retry   RetryType `gluamapper:"retry" json:"retry"`
}

// Configuration - the daemon configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType `gluamapper:"database" json:"database"`

	Ledger     LedgerType     `gluamapper:"ledger" json:"ledger"`
	Settlement SettlementType `gluamapper:"settlement" json:"settlement"`
	Signer     SignerType     `gluamapper:"signer" json:"signer"`
	Reconcile  ReconcileType  `gluamapper:"reconcile" json:"reconcile"`

	ClientRPC listeners.Configuration `gluamapper:"client_rpc" json:"client_rpc"`
	Logging   logger.Configuration    `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Settlement: SettlementType{
			ReservationWindow: settlement.DefaultReservationWindow.String(),
			PollInterval:      settlement.DefaultPollInterval.String(),
			SweepInterval:     settlement.DefaultSweepInterval.String(),
			FeeRate:           settlement.DefaultFeeRate.String(),
		},

		Signer: SignerType{
			FinalityDelay: defaultFinalityDelay.String(),
		},

		Reconcile: ReconcileType{
			Sink: sinkLocal,
		},

		ClientRPC: listeners.Configuration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// certificate and key may be given inline as PEM text
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range []*string{&options.ClientRPC.Certificate, &options.ClientRPC.PrivateKey} {
		if !isPEM(*f) {
			mustBeAbsolute = append(mustBeAbsolute, f)
		}
	}
	for _, f := range mustBeAbsolute {
		*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = configuration.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// fail if any of these are not simple file names
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = configuration.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("files: %q is not plain name", *f[0])
		}
	}

	if err := options.validate(); nil != err {
		return nil, err
	}

	// create directories if they do not already exist
	for _, d := range []string{
		options.Database.Directory,
		options.Logging.Directory,
	} {
		if err := os.MkdirAll(d, 0o700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// check everything that is converted later so startup cannot fail
// half way through
func (options *Configuration) validate() error {
	if _, err := options.settlementConfiguration(); nil != err {
		return err
	}
	if _, err := options.finalityDelay(); nil != err {
		return err
	}
	if _, err := options.administrators(); nil != err {
		return err
	}
	if _, err := retryPolicy(options.Reconcile.Retry, reconcile.DefaultPolicy); nil != err {
		return fmt.Errorf("reconcile retry: %w", err)
	}
	if err := account.Principal(options.Settlement.Operator).Validate(); nil != err {
		return fmt.Errorf("settlement operator: %q  error: %w", options.Settlement.Operator, err)
	}

	options.Reconcile.Sink = strings.ToLower(strings.TrimSpace(options.Reconcile.Sink))
	switch options.Reconcile.Sink {
	case sinkLocal:
	case sinkKafka:
		if 0 == len(options.Reconcile.Brokers) || "" == options.Reconcile.Topic {
			return fmt.Errorf("reconcile: kafka sink requires brokers and topic")
		}
	default:
		return fmt.Errorf("reconcile: sink: %q is not one of: %s, %s", options.Reconcile.Sink, sinkLocal, sinkKafka)
	}
	return nil
}

// the orchestrator options
func (options *Configuration) settlementConfiguration() (settlement.Configuration, error) {
	s := options.Settlement
	conf := settlement.Configuration{}

	durations := []struct {
		name  string
		text  string
		value *time.Duration
	}{
		{"reservation_window", s.ReservationWindow, &conf.ReservationWindow},
		{"poll_interval", s.PollInterval, &conf.PollInterval},
		{"sweep_interval", s.SweepInterval, &conf.SweepInterval},
	}
	for _, d := range durations {
		v, err := parseDuration(d.text)
		if nil != err {
			return conf, fmt.Errorf("settlement %s: %w", d.name, err)
		}
		*d.value = v
	}

	if "" != s.FeeRate {
		rate, err := decimal.NewFromString(s.FeeRate)
		if nil != err || rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return conf, fmt.Errorf("settlement fee_rate: %q is not in [0, 1)", s.FeeRate)
		}
		conf.FeeRate = rate
	} else {
		conf.FeeRate = settlement.DefaultFeeRate
	}

	policy, err := retryPolicy(s.Retry, retry.Default)
	if nil != err {
		return conf, fmt.Errorf("settlement retry: %w", err)
	}
	conf.Retry = policy

	return conf, nil
}

func (options *Configuration) finalityDelay() (time.Duration, error) {
	d, err := parseDuration(options.Signer.FinalityDelay)
	if nil != err {
		return 0, fmt.Errorf("signer finality_delay: %w", err)
	}
	return d, nil
}

func (options *Configuration) administrators() ([]account.Principal, error) {
	admins := make([]account.Principal, 0, len(options.Ledger.Administrators))
	for _, a := range options.Ledger.Administrators {
		p := account.Principal(strings.TrimSpace(a))
		if err := p.Validate(); nil != err {
			return nil, fmt.Errorf("ledger administrator: %q  error: %w", a, err)
		}
		admins = append(admins, p)
	}
	return admins, nil
}

// unset fields keep the default
func retryPolicy(r RetryType, def retry.Policy) (retry.Policy, error) {
	policy := def
	fields := []struct {
		text  string
		value *time.Duration
	}{
		{r.Initial, &policy.Initial},
		{r.Maximum, &policy.Maximum},
		{r.Timeout, &policy.Timeout},
	}
	for _, f := range fields {
		if "" == f.text {
			continue
		}
		d, err := parseDuration(f.text)
		if nil != err {
			return def, err
		}
		*f.value = d
	}
	if r.Attempts < 0 {
		return def, fmt.Errorf("attempts: %d is negative", r.Attempts)
	}
	if 0 != r.Attempts {
		policy.Attempts = r.Attempts
	}
	if policy.Maximum < policy.Initial {
		return def, fmt.Errorf("maximum: %s is less than initial: %s", policy.Maximum, policy.Initial)
	}
	return policy, nil
}

// empty is zero so the component default applies
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if "" == s {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if nil != err {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration: %q is negative", s)
	}
	return d, nil
}

func isPEM(s string) bool {
	return strings.Contains(s, "-----BEGIN ")
}

// return inline PEM text or the contents of the named file
func readPEM(s string) (string, error) {
	if isPEM(s) {
		return s, nil
	}
	b, err := os.ReadFile(s)
	if nil != err {
		return "", err
	}
	return string(b), nil
}
