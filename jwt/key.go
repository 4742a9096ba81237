// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/youmark/pkcs8"
)

const (
	pemBlockTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	pemBlockTypePrivateKey          = "PRIVATE KEY"
	pemBlockTypeRSAPrivateKey       = "RSA PRIVATE KEY"
)

// ParsePrivateKeyPEM parses an RSA private key from the first PEM block in
// data. PKCS#1 ("RSA PRIVATE KEY"), PKCS#8 ("PRIVATE KEY") and encrypted
// PKCS#8 ("ENCRYPTED PRIVATE KEY") blocks are supported. Every failure wraps
// ErrKeyParse.
//
// Supported options:
//   - WithPassphrase
//   - WithMinKeyBits
func ParsePrivateKeyPEM(data []byte, opt ...Option) (*rsa.PrivateKey, error) {
	const op = "ParsePrivateKeyPEM"
	opts := getConfigOpts(opt...)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w: empty PEM data", op, ErrKeyParse)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: %w: no PEM block found", op, ErrKeyParse)
	}

	var (
		rawKey interface{}
		err    error
	)
	switch block.Type {
	case pemBlockTypeRSAPrivateKey:
		rawKey, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case pemBlockTypePrivateKey:
		rawKey, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case pemBlockTypeEncryptedPrivateKey:
		if len(opts.withPassphrase) == 0 {
			return nil, fmt.Errorf("%s: %w: encrypted key requires a passphrase", op, ErrKeyParse)
		}
		rawKey, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, opts.withPassphrase)
	default:
		return nil, fmt.Errorf("%s: %w: %w %q", op, ErrKeyParse, ErrUnsupportedKeyType, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrKeyParse, err)
	}

	key, ok := rawKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %w %T, RS256 requires an RSA key", op, ErrKeyParse, ErrUnsupportedKeyType, rawKey)
	}
	if err := checkKeySize(key, opts.withMinKeyBits); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrKeyParse, err)
	}
	return key, nil
}

// ReadPrivateKeyFile reads the file at path and parses it with
// ParsePrivateKeyPEM. It supports the same options.
func ReadPrivateKeyFile(path string, opt ...Option) (*rsa.PrivateKey, error) {
	const op = "ReadPrivateKeyFile"
	if path == "" {
		return nil, fmt.Errorf("%s: missing key file path: %w", op, ErrInvalidParameter)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %q is a directory: %w", op, path, ErrInvalidParameter)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
	}
	key, err := ParsePrivateKeyPEM(data, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", op, path, err)
	}
	return key, nil
}

// NormalizePEM converts literal "\n" sequences into newlines. PEM content
// stored in single line environment variables or secrets usually arrives in
// that form.
func NormalizePEM(s string) []byte {
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	return []byte(strings.TrimSpace(s) + "\n")
}

func checkKeySize(key *rsa.PrivateKey, minBits int) error {
	if minBits <= 0 {
		return nil
	}
	if key.N == nil {
		return ErrNilPrivateKey
	}
	if bits := key.N.BitLen(); bits < minBits {
		return fmt.Errorf("%w: %d bits, need at least %d", ErrKeyTooSmall, bits, minBits)
	}
	return nil
}
