// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - principals that hold credits, own assets and
// carry roles
//
// A principal is an opaque identifier.  Wallet backed principals
// use an address derived from an ed25519 public key, but any
// printable identifier is accepted so that custodial accounts can be
// represented too.
package account

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"unicode"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/grun-exchange/creditd/fault"
)

// miscellaneous constants
const (
	maximumPrincipalLength = 128
	checksumLength         = 4
	addressVersion         = 0x21 // ed25519 public key
)

// Principal - identity of a holder, seller, buyer or administrator
type Principal string

// Validate - check that the principal is usable as a key
func (p Principal) Validate() error {
	if 0 == len(p) || len(p) > maximumPrincipalLength {
		return fault.InvalidPrincipal
	}
	for _, c := range string(p) {
		if !unicode.IsPrint(c) || unicode.IsSpace(c) {
			return fault.InvalidPrincipal
		}
	}
	return nil
}

// String - for the fmt package
func (p Principal) String() string {
	return string(p)
}

// Bytes - the storage key form
func (p Principal) Bytes() []byte {
	return []byte(p)
}

// MarshalText - principal to JSON
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText - JSON to principal with validation
func (p *Principal) UnmarshalText(s []byte) error {
	candidate := Principal(s)
	if err := candidate.Validate(); nil != err {
		return err
	}
	*p = candidate
	return nil
}

// FromPublicKey - derive the wallet address of an ed25519 public key
func FromPublicKey(publicKey ed25519.PublicKey) Principal {
	buffer := make([]byte, 0, 1+len(publicKey)+checksumLength)
	buffer = append(buffer, addressVersion)
	buffer = append(buffer, publicKey...)
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return Principal(base58.Encode(buffer))
}

// PublicKey - recover the public key of a wallet address
func (p Principal) PublicKey() (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(string(p))
	if nil != err {
		return nil, fault.InvalidPrincipal
	}
	if len(decoded) != 1+ed25519.PublicKeySize+checksumLength || addressVersion != decoded[0] {
		return nil, fault.InvalidPrincipal
	}
	split := len(decoded) - checksumLength
	checksum := sha3.Sum256(decoded[:split])
	if !bytes.Equal(checksum[:checksumLength], decoded[split:]) {
		return nil, fault.InvalidPrincipal
	}
	return ed25519.PublicKey(decoded[1:split]), nil
}

// IsWallet - true if the principal is an ed25519 wallet address
func (p Principal) IsWallet() bool {
	_, err := p.PublicKey()
	return nil == err
}

// NewKeyPair - generate a new wallet address and its private key
func NewKeyPair() (Principal, ed25519.PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return "", nil, err
	}
	return FromPublicKey(publicKey), privateKey, nil
}
