package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	var limit int
	var showScores bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index with the hybrid lexical/vector ranker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			results, monitor, err := c.ranker.Search(ctx, args[0], limit)
			if err != nil {
				return err
			}

			for i, r := range results {
				cand := r.Candidate
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s:%d  %.4f  %s\n",
					i+1, cand.FilePath, cand.LineNumber, r.FinalScore, cand.Snippet)
				if showScores {
					fmt.Fprintf(cmd.OutOrStdout(), "      lexical=%.4f vector=%.4f source=%s\n",
						r.Breakdown.LexicalContribution, r.Breakdown.VectorContribution, cand.Source)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d results in %dms\n", len(results), monitor.TotalMs())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results to return")
	cmd.Flags().BoolVar(&showScores, "scores", false, "print lexical/vector score contributions")

	return cmd
}
