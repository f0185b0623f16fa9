// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/background"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/reservoir"
	"github.com/grun-exchange/creditd/rpc"
	"github.com/grun-exchange/creditd/rpc/server"
	"github.com/grun-exchange/creditd/settlement"
	"github.com/grun-exchange/creditd/signer"
	"github.com/grun-exchange/creditd/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "stats", HasArg: getoptions.NO_ARGUMENT, Short: 's'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, scriptVariables(arguments))
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0o600)
		if nil != err {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("database: %q", theConfiguration.Database.Name)
	log.Infof("reconcile sink: %s", theConfiguration.Reconcile.Sink)
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC.Listen)

	// start the data storage
	log.Info("initialise storage")
	store, err := storage.Open(theConfiguration.Database.Name, false)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer store.Close()

	// role registry with the configured administrators
	log.Info("initialise access")
	registry, err := access.New(logger.New("access"), store.Roles)
	if nil != err {
		log.Criticalf("access initialise error: %s", err)
		exitwithstatus.Message("access initialise error: %s", err)
	}
	administrators, _ := theConfiguration.administrators()
	for _, admin := range administrators {
		if err := registry.Grant(access.Admin, admin); nil != err {
			log.Criticalf("grant administrator: %s  error: %s", admin, err)
			exitwithstatus.Message("grant administrator: %s  error: %s", admin, err)
		}
	}

	log.Info("initialise ledger")
	theLedger := ledger.New(logger.New("ledger"), store, registry, ledger.Configuration{
		AutoApprove:     theConfiguration.Ledger.AutoApprove,
		MaximumQuantity: theConfiguration.Ledger.MaximumQuantity,
	})

	reservations := reservoir.New(logger.New("reservoir"), theLedger)

	finalityDelay, _ := theConfiguration.finalityDelay()
	localSigner, err := signer.New(logger.New("signer"), theLedger, account.Principal(theConfiguration.Settlement.Operator), finalityDelay, nil)
	if nil != err {
		log.Criticalf("signer initialise error: %s", err)
		exitwithstatus.Message("signer initialise error: %s", err)
	}
	log.Infof("marketplace operator: %s", localSigner.Operator())

	// reconciliation outcome sink
	var notifier reconcile.Notifier
	var orders *reconcile.OrderBook
	switch theConfiguration.Reconcile.Sink {
	case sinkKafka:
		k, err := reconcile.NewKafkaNotifier(logger.New("kafka"), theConfiguration.Reconcile.Brokers, theConfiguration.Reconcile.Topic)
		if nil != err {
			log.Criticalf("kafka initialise error: %s", err)
			exitwithstatus.Message("kafka initialise error: %s", err)
		}
		defer k.Close()
		notifier = k
	default:
		orders = reconcile.NewOrderBook(logger.New("orders"), store.Orders)
		notifier = orders
	}

	// delivery acknowledgements go back to the orchestrator that is
	// created next
	var orchestrator *settlement.Orchestrator
	dispatchPolicy, _ := retryPolicy(theConfiguration.Reconcile.Retry, reconcile.DefaultPolicy)
	dispatcher := reconcile.NewDispatcher(logger.New("reconcile"), notifier, dispatchPolicy, func(n reconcile.Notification) {
		orchestrator.MarkNotified(n.CorrelationId)
	})

	log.Info("initialise settlement")
	settlementConfiguration, _ := theConfiguration.settlementConfiguration()
	orchestrator = settlement.New(logger.New("settlement"), store.Settlements, theLedger, reservations, localSigner, dispatcher, settlementConfiguration)
	if err := orchestrator.Restore(); nil != err {
		log.Criticalf("settlement restore error: %s", err)
		exitwithstatus.Message("settlement restore error: %s", err)
	}
	defer orchestrator.Stop()

	processes := background.Processes{
		dispatcher,
		orchestrator.Sweeper(),
	}
	if len(options["stats"]) > 0 {
		processes = append(processes, &statistics{
			log:          logger.New("stats"),
			reservations: reservations,
			outbox:       dispatcher,
			registry:     registry,
		})
	}
	backgroundProcesses := background.Start(processes, nil)
	defer backgroundProcesses.Stop()

	// start up the rpc background processes
	certificatePEM, err := readPEM(theConfiguration.ClientRPC.Certificate)
	if nil != err {
		log.Criticalf("rpc certificate error: %s", err)
		exitwithstatus.Message("rpc certificate error: %s", err)
	}
	keyPEM, err := readPEM(theConfiguration.ClientRPC.PrivateKey)
	if nil != err {
		log.Criticalf("rpc private key error: %s", err)
		exitwithstatus.Message("rpc private key error: %s", err)
	}
	rpcConfiguration := theConfiguration.ClientRPC
	rpcConfiguration.Certificate = certificatePEM
	rpcConfiguration.PrivateKey = keyPEM

	handlers := server.Handlers{
		Ledger:       theLedger,
		Roles:        registry,
		Orchestrator: orchestrator,
		Reservations: reservations,
		Outbox:       dispatcher,
	}
	if nil != orders {
		handlers.Orders = orders
	}

	err = rpc.Initialise(&rpcConfiguration, handlers, version)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}

// arguments after "start" are visible to the configuration script
// as arg.<name> for NAME=VALUE items
func scriptVariables(arguments []string) map[string]string {
	variables := make(map[string]string)
	if len(arguments) < 2 {
		return variables
	}
	for _, a := range arguments[1:] {
		for i := 0; i < len(a); i += 1 {
			if '=' == a[i] {
				variables[a[:i]] = a[i+1:]
				break
			}
		}
	}
	return variables
}
