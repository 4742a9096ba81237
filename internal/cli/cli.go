// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cli implements the ghappjwt command.
package cli

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hashicorp/go-ghappjwt/internal/config"
	"github.com/hashicorp/go-ghappjwt/internal/prompt"
	"github.com/hashicorp/go-ghappjwt/jwt"
)

// Version is set at build time.
var Version = "dev"

const (
	flagConfig           = "config"
	flagMinKeyBits       = "min-key-bits"
	flagLogLevel         = "log-level"
	flagFormat           = "format"
	flagPassphrasePrompt = "passphrase-prompt"
)

// Streams are the standard streams the command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// InFd is the file descriptor behind In, or -1.
	InFd int
}

// NewCommand returns the root ghappjwt command.
func NewCommand(s Streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghappjwt [key-file] [client-id]",
		Short: "Generate a JWT to authenticate as a GitHub App",
		Long: `Generate a JWT to authenticate as a GitHub App.

The token is signed with RS256 using the App's private key, carries the App's
client ID as its issuer and expires 10 minutes after it was issued.

Missing arguments are read from the config file or GHAPPJWT_* environment
variables, and otherwise prompted for.`,
		Args:          cobra.MaximumNArgs(2),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), args, s)
		},
	}
	cmd.SetIn(s.In)
	cmd.SetOut(s.Out)
	cmd.SetErr(s.Err)

	fs := cmd.Flags()
	fs.StringP(flagConfig, "c", "", "path of a YAML config file")
	fs.Int(flagMinKeyBits, 2048, "reject RSA keys smaller than this many bits (0 disables the check)")
	fs.String(flagLogLevel, "warn", "log level: trace, debug, info, warn, error or off")
	fs.String(flagFormat, config.FormatText, "output format: text, raw or json")
	fs.Bool(flagPassphrasePrompt, false, "prompt for the passphrase of an encrypted PKCS#8 key")
	return cmd
}

// Execute runs the command with args and returns the process exit code.
func Execute(s Streams, args []string) int {
	cmd := NewCommand(s)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(s.Err, "Error (%s): %s\n", category(err), err)
		return 1
	}
	return 0
}

func run(fs *pflag.FlagSet, args []string, s Streams) error {
	const op = "run"
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "ghappjwt",
		Level:  cfg.Level(),
		Output: s.Err,
	})

	p := prompt.New(s.In, s.Err, s.InFd)
	if err := complete(cfg, fs, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	key, err := loadKey(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Debug("loaded private key", "bits", key.N.BitLen())

	issuer, err := jwt.NewIssuer(cfg.ClientID, key,
		jwt.WithLogger(logger),
		jwt.WithMinKeyBits(cfg.MinKeyBits),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	token, err := issuer.Token()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("token issued", "iss", token.Claims.Issuer,
		"expires_at", token.Claims.ExpiresAtTime().UTC().Format(time.RFC3339))

	return write(s.Out, cfg.Format, token)
}

// loadConfig turns flags that were explicitly set and positional arguments
// into overrides, so flag defaults never shadow the file or environment.
func loadConfig(fs *pflag.FlagSet, args []string) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if fs.Changed(flagMinKeyBits) {
		v, _ := fs.GetInt(flagMinKeyBits)
		overrides[config.KeyMinKeyBits] = v
	}
	if fs.Changed(flagLogLevel) {
		v, _ := fs.GetString(flagLogLevel)
		overrides[config.KeyLogLevel] = v
	}
	if fs.Changed(flagFormat) {
		v, _ := fs.GetString(flagFormat)
		overrides[config.KeyFormat] = v
	}
	if len(args) > 0 {
		overrides[config.KeyKeyFile] = args[0]
	}
	if len(args) > 1 {
		overrides[config.KeyClientID] = args[1]
	}
	file, _ := fs.GetString(flagConfig)
	return config.Load(config.WithFile(file), config.WithOverrides(overrides))
}

// complete prompts for whatever the configuration is still missing.
func complete(cfg *config.Config, fs *pflag.FlagSet, p *prompt.Prompter) error {
	const op = "complete"
	var err error
	if cfg.KeyFile == "" && cfg.PrivateKey == "" {
		if cfg.KeyFile, err = p.String(prompt.KeyFileLabel); err != nil {
			return fmt.Errorf("%s: key file: %w", op, err)
		}
	}
	if cfg.ClientID == "" {
		if cfg.ClientID, err = p.String(prompt.ClientIDLabel); err != nil {
			return fmt.Errorf("%s: client id: %w", op, err)
		}
	}
	if ask, _ := fs.GetBool(flagPassphrasePrompt); ask && cfg.Passphrase == "" {
		if cfg.Passphrase, err = p.Secret(prompt.PassphraseLabel); err != nil {
			return fmt.Errorf("%s: passphrase: %w", op, err)
		}
	}
	return nil
}

func loadKey(cfg *config.Config) (*rsa.PrivateKey, error) {
	const op = "loadKey"
	if cfg.KeyFile == "" && cfg.PrivateKey == "" {
		return nil, fmt.Errorf("%s: missing private key: %w", op, jwt.ErrInvalidParameter)
	}
	opts := []jwt.Option{jwt.WithMinKeyBits(cfg.MinKeyBits)}
	if cfg.Passphrase != "" {
		opts = append(opts, jwt.WithPassphrase([]byte(cfg.Passphrase)))
	}
	if cfg.KeyFile != "" {
		return jwt.ReadPrivateKeyFile(cfg.KeyFile, opts...)
	}
	return jwt.ParsePrivateKeyPEM(jwt.NormalizePEM(cfg.PrivateKey), opts...)
}

func write(w io.Writer, format string, t *jwt.Token) error {
	const op = "write"
	var err error
	switch format {
	case config.FormatRaw:
		_, err = fmt.Fprintln(w, t.Raw)
	case config.FormatJSON:
		err = json.NewEncoder(w).Encode(struct {
			Token string `json:"token"`
			jwt.Claims
		}{t.Raw, t.Claims})
	default:
		_, err = fmt.Fprintf(w, "JWT:  %s\n", t.Raw)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func category(err error) string {
	switch {
	case errors.Is(err, jwt.ErrKeyParse):
		return "key parse"
	case errors.Is(err, jwt.ErrSigning):
		return "signing"
	case errors.Is(err, config.ErrInvalidConfig):
		return "configuration"
	case errors.Is(err, jwt.ErrInvalidParameter), errors.Is(err, prompt.ErrNoInput):
		return "input"
	default:
		return "usage"
	}
}
