// Package main provides the flowgraph CLI for validating and
// inspecting flow definitions.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "flowgraph",
		Usage:                 "Validate and inspect flow definitions",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewConnectionsCommand(),
			NewInspectCommand(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		os.Exit(1)
	}
}
