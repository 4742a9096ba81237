// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

// DefaultEnvPrefix is the prefix of the environment variables read by Load.
const DefaultEnvPrefix = "GHAPPJWT_"

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type loadOptions struct {
	withFile      string
	withEnvPrefix string
	withOverrides map[string]interface{}
}

func loadDefaults() loadOptions {
	return loadOptions{
		withEnvPrefix: DefaultEnvPrefix,
	}
}

func getLoadOpts(opt ...Option) loadOptions {
	opts := loadDefaults()
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

// WithFile provides a YAML config file. When it's not set, the file named by
// the <prefix>CONFIG environment variable is used, if any.
func WithFile(path string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *loadOptions:
			v.withFile = path
		}
	}
}

// WithEnvPrefix overrides DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *loadOptions:
			v.withEnvPrefix = prefix
		}
	}
}

// WithOverrides provides values which take precedence over every other
// source, keyed by their koanf key (e.g. "client_id"). Typically these come
// from command line flags and arguments.
func WithOverrides(m map[string]interface{}) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *loadOptions:
			v.withOverrides = m
		}
	}
}
