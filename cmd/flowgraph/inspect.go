package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgraph/flowgraph/pkg/log"
	"github.com/flowgraph/flowgraph/pkg/persistence/file"
	"github.com/flowgraph/flowgraph/pkg/registry"
)

func NewInspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Aliases:   []string{"i"},
		Usage:     "Print a summary of a flow definition",
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

			fmt.Printf("Flow: %s (%s)\n", flow.Name, flow.ID)
			fmt.Printf("Inputs: %d, Outputs: %d, Tools: %d\n", len(flow.Inputs), len(flow.Outputs), len(flow.Tools))

			if flow.IsChatFlow() {
				fmt.Printf("Chat flow: input=%s output=%s\n", flow.GetChatInputName(), flow.GetChatOutputName())
			}

			if flow.HasAggregationNode() {
				fmt.Println("Contains aggregation nodes.")
			}

			fmt.Printf("\nNodes (%d):\n", len(flow.Nodes))

			for _, node := range flow.Nodes {

				kind := "normal"
				if node.Aggregation {
					kind = "aggregation"
				}

				fmt.Printf("  - %s (tool=%s, %s)\n", node.Name, node.Tool, kind)

				if _, err := flow.GetToolForNode(node.Name); err != nil {
					fmt.Printf("      tool not declared in catalog\n")
				}

				if node.UseVariants {
					fmt.Printf("      uses variants\n")
				}

				if node.Skip != nil {
					fmt.Printf("      skip when %v is %v\n", node.Skip.Condition.Serialize(), node.Skip.ConditionValue)
				}

				if node.Activate != nil {
					fmt.Printf("      activate when %v is %v\n", node.Activate.Condition.Serialize(), node.Activate.ConditionValue)
				}

				if flow.IsReferencedByFlowOutput(node) {
					fmt.Printf("      referenced by a flow output\n")
				}
			}

			return nil
		},
	}
}
