// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command line client for the creditd RPC service
//
// e.g. to check a node and buy five units of batch 1
// (add -v flag to see JSON requests and responses):
//
//	credit-cli -c 127.0.0.1:2130 info
//	credit-cli -c 127.0.0.1:2130 -a <BUYER> buy -i 1 -q 5
package main
