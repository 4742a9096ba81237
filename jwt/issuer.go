// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Issuer signs GitHub App JWTs for a single issuer with a single RSA key.
// An Issuer is immutable once created, so it's safe for concurrent use.
type Issuer struct {
	issuer string
	key    *rsa.PrivateKey
	alg    Alg
	logger hclog.Logger

	// overwritten for testing
	now func() time.Time
}

// Token is a signed JWT along with the claims it carries.
type Token struct {
	// Raw is the compact serialization: header.payload.signature
	Raw    string
	Claims Claims
}

// NewIssuer creates an Issuer for issuer (the GitHub App's client ID or app
// ID) which signs with key.
//
// Supported options:
//   - WithNow
//   - WithLogger
//   - WithMinKeyBits
func NewIssuer(issuer string, key *rsa.PrivateKey, opt ...Option) (*Issuer, error) {
	const op = "NewIssuer"
	opts := getConfigOpts(opt...)

	var result *multierror.Error
	if issuer == "" {
		result = multierror.Append(result, ErrMissingIssuer)
	}
	if key == nil {
		result = multierror.Append(result, ErrNilPrivateKey)
	} else if err := checkKeySize(key, opts.withMinKeyBits); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
	}

	return &Issuer{
		issuer: issuer,
		key:    key,
		alg:    RS256,
		logger: opts.withLogger,
		now:    opts.withNow,
	}, nil
}

// Claims returns a new claim set stamped with the current time.
func (i *Issuer) Claims() Claims {
	return NewClaims(i.issuer, i.now())
}

// Issue returns a newly signed JWT in its compact serialization.
func (i *Issuer) Issue() (string, error) {
	const op = "Issuer.Issue"
	t, err := i.Token()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return t.Raw, nil
}

// Token returns a newly signed JWT and the claims it was built from. The
// issued at time is read after the key has been validated, right before the
// claims are signed.
func (i *Issuer) Token() (*Token, error) {
	const op = "Issuer.Token"
	if i.now == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingFuncNow)
	}
	if err := i.alg.Validate(i.key); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrSigning, err)
	}
	signer, err := i.signer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims := i.Claims()
	raw, err := josejwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrSigning, err)
	}
	i.log().Debug("issued token", "iss", claims.Issuer, "iat", claims.IssuedAt, "exp", claims.ExpiresAt)
	return &Token{Raw: raw, Claims: claims}, nil
}

func (i *Issuer) signer() (jose.Signer, error) {
	const op = "signer"
	sKey := jose.SigningKey{
		Algorithm: supportedAlgorithms[i.alg],
		Key:       i.key,
	}
	signer, err := jose.NewSigner(sKey, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrSigning, err)
	}
	return signer, nil
}

func (i *Issuer) log() hclog.Logger {
	if i.logger == nil {
		return hclog.NewNullLogger()
	}
	return i.logger
}

// IssueToken parses pemBytes into an RSA private key and returns a JWT for
// issuer signed with it. Key errors wrap ErrKeyParse and signing errors wrap
// ErrSigning; no token is returned with either.
//
// Supported options:
//   - WithPassphrase
//   - WithMinKeyBits
//   - WithNow
//   - WithLogger
func IssueToken(pemBytes []byte, issuer string, opt ...Option) (string, error) {
	const op = "IssueToken"
	key, err := ParsePrivateKeyPEM(pemBytes, opt...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	i, err := NewIssuer(issuer, key, opt...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	token, err := i.Issue()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
