// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"crypto/rsa"
	"fmt"

	"github.com/go-jose/go-jose/v4"
)

// Alg represents a JWT signing algorithm.
type Alg string

// RS256 is RSASSA-PKCS-v1.5 using SHA-256, the only algorithm GitHub accepts
// for App authentication.
// See: https://tools.ietf.org/html/rfc7518#section-3.1
const RS256 Alg = "RS256"

var supportedAlgorithms = map[Alg]jose.SignatureAlgorithm{
	RS256: jose.RS256,
}

// SupportedSigningAlgorithm returns an error if any of the given Algs
// are not supported signing algorithms.
func SupportedSigningAlgorithm(algs ...Alg) error {
	const op = "SupportedSigningAlgorithm"
	for _, a := range algs {
		if _, ok := supportedAlgorithms[a]; !ok {
			return fmt.Errorf("%s: %w %q", op, ErrUnsupportedAlgorithm, a)
		}
	}
	return nil
}

// Validate checks that the key is usable with the algorithm and is valid per
// rsa.PrivateKey's Validate() method.
func (a Alg) Validate(key *rsa.PrivateKey) error {
	const op = "Alg.Validate"
	if key == nil {
		return fmt.Errorf("%s: %w", op, ErrNilPrivateKey)
	}
	if err := SupportedSigningAlgorithm(a); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
