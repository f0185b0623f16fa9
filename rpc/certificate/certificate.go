// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/tls"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/sha3"

	"github.com/grun-exchange/creditd/fault"
)

// lifetime of a generated certificate
const validity = 10 * 365 * 24 * time.Hour

// Get - verify a PEM certificate and key pair and return the TLS
// configuration with the certificate fingerprint
func Get(log *logger.L, name, certificate, key string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if nil != err {
		log.Errorf("%s failed to load keypair: %s", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
		MinVersion: tls.VersionTLS12,
	}

	fin = Fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Fingerprint - compute the fingerprint of a DER certificate
//
// openssl x509 -outform DER -in creditd-rpc.crt | sha3sum -a 256
func Fingerprint(certificate []byte) [32]byte {
	return sha3.Sum256(certificate)
}

// Generate - create a self-signed PEM certificate and key
func Generate(name string, extraHosts []string) (string, string, error) {
	org := "creditd self signed cert for: " + name
	validUntil := time.Now().Add(validity)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, false, extraHosts)
	if nil != err {
		return "", "", err
	}
	return string(cert), string(key), nil
}

// MakeSelfSigned - create a self-signed certificate and key file
//
// existing files are never overwritten
func MakeSelfSigned(name string, certificateFileName string, privateKeyFileName string, extraHosts []string) error {

	if fileExists(certificateFileName) {
		return fault.CertificateFileAlreadyExists
	}
	if fileExists(privateKeyFileName) {
		return fault.KeyFileAlreadyExists
	}

	cert, key, err := Generate(name, extraHosts)
	if nil != err {
		return err
	}

	if err = os.WriteFile(certificateFileName, []byte(cert), 0o666); nil != err {
		return err
	}

	if err = os.WriteFile(privateKeyFileName, []byte(key), 0o600); nil != err {
		_ = os.Remove(certificateFileName)
		return err
	}

	return nil
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}
