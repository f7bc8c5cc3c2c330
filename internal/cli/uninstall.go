package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newUninstallCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove all index state for the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := filepath.Join(rootFlagProjectRoot, StateDirName)
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "this will delete %s; rerun with --yes to confirm\n", stateDir)
				return nil
			}
			if err := os.RemoveAll(stateDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", stateDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal without prompting")

	return cmd
}
