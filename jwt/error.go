// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import "errors"

var (
	// ErrKeyParse is returned when a PEM buffer is empty, malformed or does
	// not hold an RSA private key.
	ErrKeyParse = errors.New("unable to parse private key")

	// ErrSigning is returned when the signature over a token could not be
	// computed.
	ErrSigning = errors.New("unable to sign token")

	// these may happen due to user error

	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingIssuer    = errors.New("missing issuer")
	ErrNilPrivateKey    = errors.New("nil private key")
	ErrKeyTooSmall      = errors.New("private key is too small")

	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrUnsupportedKeyType   = errors.New("unsupported key type")

	// if this happens, either the caller directly instantiated &Issuer{}
	// or there's a bug somewhere.

	ErrMissingFuncNow = errors.New("missing now func; please use NewIssuer()")
)
