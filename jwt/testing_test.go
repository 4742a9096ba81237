// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"
)

var testKey *rsa.PrivateKey

func init() {
	// Generate the key once; RSA key generation can be slow.
	var err error
	testKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
}

func testPKCS1PEM(t *testing.T, key *rsa.PrivateKey) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemBlockTypeRSAPrivateKey,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

func testPKCS8PEM(t *testing.T, key interface{}) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemBlockTypePrivateKey,
		Bytes: der,
	})
}

func testEncryptedPKCS8PEM(t *testing.T, key *rsa.PrivateKey, passphrase []byte) []byte {
	t.Helper()
	der, err := pkcs8.MarshalPrivateKey(key, passphrase, nil)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemBlockTypeEncryptedPrivateKey,
		Bytes: der,
	})
}

func testECKeys(t *testing.T) (sec1PEM, pkcs8PEM []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	sec1PEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	return sec1PEM, testPKCS8PEM(t, key)
}
