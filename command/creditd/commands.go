// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/rpc/certificate"
)

const (
	rpcCertificateKeyFilename = "rpc.crt"
	rpcPrivateKeyFilename     = "rpc.key"
)

// one line of the help text
type commandHelp struct {
	name    string
	alias   string
	summary []string
}

var setupCommands = []commandHelp{
	{"help", "h", []string{"display this message"}},
	{"version", "v", []string{"display version string"}},
	{"gen-rpc-cert [DIR] [IPs...]", "rpc", []string{
		"create private key in:  DIR/" + rpcPrivateKeyFilename,
		"and the certificate in: DIR/" + rpcCertificateKeyFilename,
		"valid for any extra addresses given",
	}},
	{"gen-admin", "admin", []string{
		"create a wallet key pair for the",
		"ledger.administrators configuration list",
	}},
	{"start", "run", []string{
		"just run the program, same as no arguments",
		"for convenience when passing script arguments",
	}},
	{"config-test", "cfg", []string{"check and display the configuration file"}},
}

// setup command handler
//
// these commands run before the configuration file is read and
// cannot access the database
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-rpc-cert", "rpc":
		certificateFilename := getFilenameWithDirectory(arguments, rpcCertificateKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := certificate.MakeSelfSigned("creditd", certificateFilename, privateKeyFilename, addresses)
		if nil != err {
			exitwithstatus.Message("generate RPC key: %q and certificate: %q error: %s", privateKeyFilename, certificateFilename, err)
		}
		fmt.Printf("generated RPC key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)

	case "gen-admin", "admin":
		if err := generateAdministrator(os.Stdout); nil != err {
			exitwithstatus.Message("generate administrator error: %s", err)
		}

	case "start", "run", "config-test", "cfg":
		return false // continue processing

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		printHelp(os.Stdout, program)
		exitwithstatus.Exit(1)
	}

	// processing complete, perform normal exit from main
	return true
}

func printHelp(w io.Writer, program string) {
	fmt.Fprintf(w, "usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n\n", program)
	fmt.Fprintf(w, "supported commands:\n\n")
	for _, c := range setupCommands {
		for i, line := range c.summary {
			if 0 == i {
				fmt.Fprintf(w, "  %-28s %-8s - %s\n", c.name, "("+c.alias+")", line)
			} else {
				fmt.Fprintf(w, "  %-28s %-8s   %s\n", "", "", line)
			}
		}
		fmt.Fprintf(w, "\n")
	}
}

// print a new wallet principal and its private key
//
// only the principal goes into the configuration file
func generateAdministrator(w io.Writer) error {
	principal, privateKey, err := account.NewKeyPair()
	if nil != err {
		return err
	}
	fmt.Fprintf(w, "principal:   %s\n", principal)
	fmt.Fprintf(w, "private key: %s\n", hex.EncodeToString(privateKey))
	fmt.Fprintf(w, "\nadd to configuration:\n  ledger = { administrators = { %q } }\n", principal.String())
	return nil
}

// configuration file enquiry commands
//
// the configuration file has been read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.MarshalIndent(options, "", "  ")
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		fmt.Printf("%s\n", b)

	case "start", "run":
		return false // continue processing

	default:
		exitwithstatus.Message("error: no such command: %s", command)
	}

	return true
}

// file name in the directory given as the first argument,
// default is the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 && "" != arguments[0] {
		dir = arguments[0]
	}
	return filepath.Join(dir, name)
}
