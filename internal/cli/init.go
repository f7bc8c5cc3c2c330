package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/project-cortex/internal/config"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create .codeindex/config.yml with default settings and the state directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootFlagProjectRoot
			stateDir := filepath.Join(root, StateDirName)
			if err := os.MkdirAll(stateDir, 0o755); err != nil {
				return indexerr.Wrap(indexerr.StoreIOError, "create state directory", err)
			}

			configPath := filepath.Join(stateDir, "config.yml")
			if _, err := os.Stat(configPath); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it untouched\n", configPath)
				return nil
			}

			raw, err := yaml.Marshal(config.Default())
			if err != nil {
				return indexerr.Wrap(indexerr.ConfigInvalid, "marshal default config", err)
			}
			if err := os.WriteFile(configPath, raw, 0o644); err != nil {
				return indexerr.Wrap(indexerr.StoreIOError, "write config", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", stateDir)
			return nil
		},
	}
}
