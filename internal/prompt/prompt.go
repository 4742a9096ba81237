// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package prompt asks the user for values that weren't supplied as arguments
// or configuration.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Labels used by the ghappjwt command.
const (
	KeyFileLabel    = "Enter path of private PEM file: "
	ClientIDLabel   = "Enter your Client ID: "
	PassphraseLabel = "Enter passphrase for private key: "
)

// ErrNoInput is returned when input ends before a value was entered.
var ErrNoInput = errors.New("no input")

// Prompter writes labels to Out and reads answers from In.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// Fd is the file descriptor behind In. When it refers to a terminal,
	// Secret reads without echo. Use -1 when In isn't a file.
	Fd int

	r *bufio.Reader
}

// New returns a Prompter. fd should be the descriptor of in, or -1.
func New(in io.Reader, out io.Writer, fd int) *Prompter {
	return &Prompter{In: in, Out: out, Fd: fd}
}

// String prompts with label and returns the trimmed line that was entered.
func (p *Prompter) String(label string) (string, error) {
	const op = "Prompter.String"
	if _, err := io.WriteString(p.Out, label); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	line, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return line, nil
}

// Secret prompts with label and reads a value without echoing it when Fd is
// a terminal. Otherwise it reads a line like String.
func (p *Prompter) Secret(label string) (string, error) {
	const op = "Prompter.Secret"
	if !p.IsTerminal() {
		return p.String(label)
	}
	if _, err := io.WriteString(p.Out, label); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	b, err := term.ReadPassword(p.Fd)
	// ReadPassword swallows the newline
	_, _ = io.WriteString(p.Out, "\n")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(b), nil
}

// IsTerminal reports whether Fd refers to a terminal.
func (p *Prompter) IsTerminal() bool {
	return p.Fd >= 0 && term.IsTerminal(p.Fd)
}

func (p *Prompter) readLine() (string, error) {
	if p.In == nil {
		return "", ErrNoInput
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	line, err := p.r.ReadString('\n')
	switch {
	case err == io.EOF && line == "":
		return "", ErrNoInput
	case err != nil && err != io.EOF:
		return "", err
	}
	return strings.TrimSpace(line), nil
}
