package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-cortex/internal/incremental"
)

func newWatchCommand() *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the project tree and refresh the index on every debounced burst of changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			c, err := openComponents(ctx, rootFlagProjectRoot)
			if err != nil {
				return err
			}
			defer c.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", rootFlagProjectRoot)
			err = c.engine.Watch(ctx, time.Duration(debounceMs)*time.Millisecond)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", int(incremental.DefaultDebounce/time.Millisecond),
		"quiet period in milliseconds before a refresh fires after the last change")

	return cmd
}
