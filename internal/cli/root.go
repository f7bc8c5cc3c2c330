package cli

import (
	"github.com/spf13/cobra"
)

var rootFlagProjectRoot string

// NewRootCommand builds the `codeindex` cobra command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "codeindex",
		Short: "Incremental code intelligence index: parse, chunk, and hybrid-search a codebase",
	}

	root.PersistentFlags().StringVar(&rootFlagProjectRoot, "root", ".", "project root directory")

	root.AddCommand(
		newInitCommand(),
		newIndexCommand(),
		newRefreshCommand(),
		newSearchCommand(),
		newDoctorCommand(),
		newWatchCommand(),
		newHooksCommand(),
		newUninstallCommand(),
		newMCPCommand(),
		newPatternCommand(),
	)

	return root
}
