package main

import (
	"context"
	"fmt"
	"sort"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgraph/flowgraph/pkg/log"
	"github.com/flowgraph/flowgraph/pkg/persistence/file"
	"github.com/flowgraph/flowgraph/pkg/registry"
)

func NewConnectionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "connections",
		Aliases:   []string{"c"},
		Usage:     "List the connection names a flow requires",
		ArgsUsage: "<flow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "flows",
				Usage:   "Path to the directory containing flow definition files",
				Value:   "./flows",
				Sources: cli.EnvVars("FLOWS_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			flowID := command.Args().First()
			if flowID == "" {
				return fmt.Errorf("missing flow id argument")
			}

			log.Setup(command.String("log-level"))

			logger := log.WithModule("flowgraph")
			repo := file.NewRepository(command.String("flows"), nil, registry.NewRegistry(logger))

			flow, err := repo.GetByID(ctx, flowID)
			if err != nil {
				return fmt.Errorf("failed to load flow %q: %w", flowID, err)
			}

			names := make([]string, 0)
			for name := range flow.GetConnectionNames() {
				names = append(names, name)
			}

			sort.Strings(names)

			if len(names) == 0 {
				fmt.Printf("Flow %s requires no connections.\n", flow.Name)

				return nil
			}

			fmt.Printf("Flow %s requires %d connection(s):\n", flow.Name, len(names))

			for _, name := range names {
				fmt.Printf("  - %s\n", name)
			}

			return nil
		},
	}
}
