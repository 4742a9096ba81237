// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package config loads the ghappjwt configuration from defaults, an optional
// YAML file, the environment and explicit overrides, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// ErrInvalidConfig is returned when the configuration can't be loaded or
// doesn't validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Output formats.
const (
	FormatText = "text"
	FormatRaw  = "raw"
	FormatJSON = "json"
)

// Koanf keys.
const (
	KeyKeyFile    = "key_file"
	KeyPrivateKey = "private_key"
	KeyClientID   = "client_id"
	KeyPassphrase = "passphrase"
	KeyMinKeyBits = "min_key_bits"
	KeyLogLevel   = "log_level"
	KeyFormat     = "format"
)

// Config holds everything needed to issue a token.
type Config struct {
	// KeyFile is the path of the PEM private key.
	KeyFile string `koanf:"key_file"`
	// PrivateKey is inline PEM content, used when KeyFile is empty.
	// Literal "\n" sequences are accepted in place of newlines.
	PrivateKey string `koanf:"private_key"`
	// ClientID is the GitHub App client ID (or app ID) used as "iss".
	ClientID string `koanf:"client_id"`
	// Passphrase decrypts an encrypted PKCS#8 key.
	Passphrase string `koanf:"passphrase"`
	// MinKeyBits is the smallest RSA modulus accepted. Zero disables the
	// check.
	MinKeyBits int    `koanf:"min_key_bits"`
	LogLevel   string `koanf:"log_level"`
	Format     string `koanf:"format"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		KeyMinKeyBits: 2048,
		KeyLogLevel:   "warn",
		KeyFormat:     FormatText,
	}
}

// Load builds a Config from, lowest precedence first: Defaults(), the YAML
// config file, environment variables and WithOverrides.
func Load(opt ...Option) (*Config, error) {
	const op = "config.Load"
	opts := getLoadOpts(opt...)

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("%s: %w: loading defaults: %w", op, ErrInvalidConfig, err)
	}

	file := opts.withFile
	if file == "" {
		file = os.Getenv(opts.withEnvPrefix + "CONFIG")
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: reading %s: %w", op, ErrInvalidConfig, file, err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w: parsing %s: %w", op, ErrInvalidConfig, file, err)
		}
	}

	envOpt := env.Opt{
		Prefix:        opts.withEnvPrefix,
		TransformFunc: envTransform(opts.withEnvPrefix),
	}
	if err := k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, fmt.Errorf("%s: %w: loading environment: %w", op, ErrInvalidConfig, err)
	}

	if len(opts.withOverrides) > 0 {
		if err := k.Load(confmap.Provider(opts.withOverrides, "."), nil); err != nil {
			return nil, fmt.Errorf("%s: %w: loading overrides: %w", op, ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// envTransform maps PREFIX_SOME_KEY to "some_key". Empty variables are
// skipped so they don't shadow values from the config file.
func envTransform(prefix string) func(key, val string) (string, any) {
	return func(key, val string) (string, any) {
		if val == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, prefix)), val
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	var result *multierror.Error
	switch c.Format {
	case FormatText, FormatRaw, FormatJSON:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown format %q", c.Format))
	}
	if c.MinKeyBits < 0 {
		result = multierror.Append(result, fmt.Errorf("min_key_bits must not be negative: %d", c.MinKeyBits))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the configured hclog level.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}
