// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/hashicorp/go-ghappjwt/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.Streams{
		In:   os.Stdin,
		Out:  os.Stdout,
		Err:  os.Stderr,
		InFd: int(os.Stdin.Fd()),
	}, os.Args[1:]))
}
