package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newIndexCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Clear the store and perform a full index of the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			if !quiet {
				var bar *progressbar.ProgressBar
				c.engine.Progress = func(processed, total int) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetDescription("indexing files"),
							progressbar.OptionSetWidth(40),
							progressbar.OptionShowCount(),
							progressbar.OptionShowIts(),
							progressbar.OptionSetItsString("files/s"),
							progressbar.OptionThrottle(65*time.Millisecond),
							progressbar.OptionShowElapsedTimeOnFinish(),
							progressbar.OptionOnCompletion(func() { fmt.Fprintln(cmd.OutOrStdout()) }),
						)
					}
					bar.Set(processed)
				}
			}

			counters, err := c.engine.FullIndex(ctx)
			if err != nil {
				return err
			}
			if _, err := c.engine.RebuildCallGraph(c.graphDir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "call graph rebuild failed: %v\n", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files (%d skipped, %d errors), %.1f files/s\n",
				counters.FilesAdded, counters.FilesSkipped, len(counters.Errors), counters.PerSecond())
			for _, e := range counters.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  error: %v\n", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the progress bar")

	return cmd
}
