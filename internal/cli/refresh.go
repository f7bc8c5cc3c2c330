package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-cortex/internal/incremental"
	"github.com/mvp-joe/project-cortex/internal/vcsdiff"
)

func newRefreshCommand() *cobra.Command {
	var since string
	var rangeSpec string
	var workingDir bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the index for files that changed since the last run",
		Long: "By default, refresh compares each file's mtime against the store's last-known " +
			"mtime. --since last-commit, --git-range A..B, or --working-dir instead derive the " +
			"changed-file set from git (spec §4.M).",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			var counters incremental.Counters
			switch {
			case workingDir:
				diff, err := c.vcs.WorkingDirectoryChanges()
				if err != nil {
					return err
				}
				counters, err = c.engine.RefreshByVCSDiff(ctx, diff)
				if err != nil {
					return err
				}
			case rangeSpec != "":
				r, err := vcsdiff.ParseRange(rangeSpec)
				if err != nil {
					return err
				}
				if r == nil {
					return fmt.Errorf("refresh: --git-range must be of the form FROM..TO or FROM...TO")
				}
				diff, err := c.vcs.RangeChanges(r.From, r.To)
				if err != nil {
					return err
				}
				counters, err = c.engine.RefreshByVCSDiff(ctx, diff)
				if err != nil {
					return err
				}
			case since == "last-commit":
				diff, err := c.vcs.LastCommitChanges()
				if err != nil {
					return err
				}
				counters, err = c.engine.RefreshByVCSDiff(ctx, diff)
				if err != nil {
					return err
				}
			default:
				counters, err = c.engine.RefreshByMtime(ctx)
				if err != nil {
					return err
				}
			}

			if counters.Mutations() > 0 {
				if _, err := c.engine.RebuildCallGraph(c.graphDir); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "call graph rebuild failed: %v\n", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "+%d ~%d -%d skipped=%d errors=%d\n",
				counters.FilesAdded, counters.FilesUpdated, counters.FilesDeleted, counters.FilesSkipped, len(counters.Errors))
			for _, e := range counters.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  error: %v\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", `use "last-commit" to refresh from the most recent commit's diff`)
	cmd.Flags().StringVar(&rangeSpec, "git-range", "", "refresh from a git commit range, e.g. main..feature")
	cmd.Flags().BoolVar(&workingDir, "working-dir", false, "refresh from uncommitted working-directory changes")

	return cmd
}
