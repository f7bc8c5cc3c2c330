package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-cortex/internal/callgraph"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report index consistency: store/symbol-index sizes and orphaned call-graph nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()

			st, err := c.store.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "store: %d files, %d chunks, %d embeddings (schema %s)\n",
				st.FileCount, st.ChunkCount, st.EmbeddingCount, st.SchemaVersion)

			astFiles, err := c.astDocs.ListAll()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ast documents: %d\n", len(astFiles))

			symStats := c.symbols.StatsSummary()
			fmt.Fprintf(out, "symbol index: %d entries, %d unique names\n",
				symStats.TotalEntries, symStats.UniqueNames)

			if st.FileCount != len(astFiles) {
				fmt.Fprintf(out, "WARNING: store has %d files but ast store has %d; run `codeindex refresh`\n",
					st.FileCount, len(astFiles))
			}

			graphStorage, err := callgraph.NewStorage(c.graphDir)
			if err != nil {
				return err
			}
			data, err := graphStorage.Load()
			if err != nil {
				return err
			}
			if data == nil {
				fmt.Fprintln(out, "call graph: not built yet; run `codeindex index`")
				return nil
			}
			graph := callgraph.NewGraph(data)
			orphans := graph.Orphans()
			fmt.Fprintf(out, "call graph: %d nodes, %d edges, %d orphans (no callers or callees)\n",
				len(data.Nodes), len(data.Edges), len(orphans))
			for _, id := range orphans {
				fmt.Fprintf(out, "  orphan: %s\n", id)
			}

			return nil
		},
	}
}
