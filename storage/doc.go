// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. asset id     = big endian uint64 (8 bytes)
// 4. principal    = printable bytes of the holder identity (never contains 0x00)
// 5. N            = big endian uint64 (8 bytes)
// 6. record       = JSON encoded structure
//
// Ledger:
//
//	A ++ asset id                  - asset metadata and supply
//	                                 data: record
//	B ++ asset id ++ principal     - balance of a holder
//	                                 data: N
//	H ++ principal ++ 0x00 ++ id   - holdings index for a holder
//	                                 data: N (same as balance)
//	P ++ holder ++ 0x00 ++ operator - operator approval
//	                                 data: 0x01
//	X ++ asset id ++ sequence      - retirement events (immutable)
//	                                 data: record
//
// Access control:
//
//	R ++ principal                 - role grant bit set
//	                                 data: N
//
// Settlement:
//
//	S ++ correlation id            - settlement record
//	                                 data: record
//	O ++ correlation id            - reconciliation order record
//	                                 data: record
//
// Sequences:
//
//	N ++ name                      - monotonic counters (asset id, retirement sequence)
//	                                 data: N
package storage
