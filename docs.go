// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// ghappjwt generates the short-lived JWTs a GitHub App uses to authenticate
// to the GitHub REST API: an RS256 token signed with the App's private key,
// carrying the App's client ID as "iss" and valid for 10 minutes.
//
// The jwt package holds the issuer; cmd/ghappjwt is the command line tool.
//
// See README.md
package ghappjwt
