// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type configOptions struct {
	withNow        func() time.Time
	withLogger     hclog.Logger
	withMinKeyBits int
	withPassphrase []byte
}

func configDefaults() configOptions {
	return configOptions{
		withNow:    time.Now,
		withLogger: hclog.NewNullLogger(),
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed
// in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithNow provides an optional func for determining what the current time it
// is. A nil func is ignored.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			if now != nil {
				v.withNow = now
			}
		}
	}
}

// WithLogger provides an optional logger. A nil logger is ignored.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			if l != nil {
				v.withLogger = l
			}
		}
	}
}

// WithMinKeyBits rejects RSA keys whose modulus is shorter than bits. Zero
// disables the check.
func WithMinKeyBits(bits int) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withMinKeyBits = bits
		}
	}
}

// WithPassphrase provides the passphrase used to decrypt an
// "ENCRYPTED PRIVATE KEY" (PKCS#8) PEM block.
func WithPassphrase(passphrase []byte) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withPassphrase = passphrase
		}
	}
}
