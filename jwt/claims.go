// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import "time"

// Validity is how long an issued token stays valid. Ten minutes is the
// longest window GitHub accepts for an App JWT.
const Validity = 10 * time.Minute

// Claims is the claim set of a GitHub App JWT. Timestamps are whole seconds
// since the Unix epoch.
type Claims struct {
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Issuer    string `json:"iss"`
}

// NewClaims returns the claim set for issuer at now. ExpiresAt is always
// IssuedAt plus Validity.
func NewClaims(issuer string, now time.Time) Claims {
	iat := now.Unix()
	return Claims{
		IssuedAt:  iat,
		ExpiresAt: iat + int64(Validity/time.Second),
		Issuer:    issuer,
	}
}

// IssuedAtTime returns IssuedAt as a time.Time.
func (c Claims) IssuedAtTime() time.Time {
	return time.Unix(c.IssuedAt, 0)
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (c Claims) ExpiresAtTime() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}
