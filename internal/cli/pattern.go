package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-cortex/internal/pattern"
)

func newPatternCommand() *cobra.Command {
	var language string
	var contextLines int
	var strictness string
	var limit int

	cmd := &cobra.Command{
		Use:   "pattern <ast-grep-pattern>",
		Short: "Search for structural code patterns using ast-grep syntax",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if language == "" {
				return fmt.Errorf("pattern: --language is required")
			}

			ctx := context.Background()
			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			searcher := pattern.NewAstGrepProvider(c.symbols)
			resp, err := searcher.Search(ctx, &pattern.PatternRequest{
				Pattern:      args[0],
				Language:     language,
				ContextLines: &contextLines,
				Strictness:   strictness,
				Limit:        &limit,
			}, rootFlagProjectRoot)
			if err != nil {
				return err
			}

			for _, m := range resp.Matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d-%d\n%s\n\n", m.FilePath, m.StartLine, m.EndLine, m.MatchText)
				if m.Symbol != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "  in %s %s\n\n", m.Symbol.Kind, m.Symbol.Name)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d matches (%d total) in %dms\n", len(resp.Matches), resp.Total, resp.Metadata.TookMs)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "target language, e.g. go, python, javascript")
	cmd.Flags().IntVar(&contextLines, "context", 3, "lines of context before/after each match")
	cmd.Flags().StringVar(&strictness, "strictness", "smart", "ast-grep matching algorithm")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of matches to return")

	return cmd
}
