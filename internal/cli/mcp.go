package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-cortex/internal/callgraph"
	"github.com/mvp-joe/project-cortex/internal/mcp"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the Symbol Index and Hybrid Ranker as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			var graph *callgraph.Graph
			graphStorage, err := callgraph.NewStorage(c.graphDir)
			if err == nil {
				if data, err := graphStorage.Load(); err == nil && data != nil {
					graph = callgraph.NewGraph(data)
				}
			}

			srv := mcp.New(c.ranker, c.symbols, graph, rootFlagProjectRoot)
			return srv.Serve(ctx)
		},
	}
}
