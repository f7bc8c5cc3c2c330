package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerBegin = "# >>> codeindex hook >>>"
	hookMarkerEnd   = "# <<< codeindex hook <<<"
)

var defaultHooks = []string{"post-checkout", "post-merge"}

func hookScript(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#!/bin/sh\n%s\n", hookMarkerBegin)
	fmt.Fprintf(&b, "# installed by `codeindex hooks install` for the %s hook\n", name)
	b.WriteString(`PREV_HEAD="$1"
NEW_HEAD="$2"
if [ -z "$NEW_HEAD" ]; then NEW_HEAD=$(git rev-parse HEAD); fi
if [ -z "$PREV_HEAD" ]; then PREV_HEAD="$NEW_HEAD"; fi
(timeout 60 codeindex refresh --git-range "$PREV_HEAD..$NEW_HEAD" >/dev/null 2>&1 &)
exit 0
`)
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func hooksDir(root string) string {
	return filepath.Join(root, ".git", "hooks")
}

func newHooksCommand() *cobra.Command {
	var selected []string
	var force bool

	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage non-blocking VCS hooks that trigger a background refresh",
	}

	install := &cobra.Command{
		Use:   "install",
		Short: "Install post-checkout/post-merge hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			hooks := selected
			if len(hooks) == 0 {
				hooks = defaultHooks
			}
			dir := hooksDir(rootFlagProjectRoot)
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("hooks install: %s is not a git repository (no .git/hooks)", rootFlagProjectRoot)
			}
			for _, h := range hooks {
				path := filepath.Join(dir, h)
				existing, _ := os.ReadFile(path)
				if strings.Contains(string(existing), hookMarkerBegin) && !force {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: already installed (use --force to reinstall)\n", h)
					continue
				}
				content := string(existing) + hookScript(h)
				if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: installed\n", h)
			}
			return nil
		},
	}
	install.Flags().StringSliceVar(&selected, "hooks", nil, "hook names to install (default: post-checkout,post-merge)")
	install.Flags().BoolVar(&force, "force", false, "reinstall even if already present")

	uninstallHooks := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed hook block from VCS hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			hooks := selected
			if len(hooks) == 0 {
				hooks = defaultHooks
			}
			dir := hooksDir(rootFlagProjectRoot)
			for _, h := range hooks {
				path := filepath.Join(dir, h)
				existing, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				cleaned, removed := stripHookBlock(string(existing))
				if !removed {
					continue
				}
				if strings.TrimSpace(cleaned) == "#!/bin/sh" || strings.TrimSpace(cleaned) == "" {
					os.Remove(path)
				} else {
					os.WriteFile(path, []byte(cleaned), 0o755)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: removed\n", h)
			}
			return nil
		},
	}
	uninstallHooks.Flags().StringSliceVar(&selected, "hooks", nil, "hook names to uninstall (default: post-checkout,post-merge)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Report which hooks have the codeindex block installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := hooksDir(rootFlagProjectRoot)
			for _, h := range defaultHooks {
				content, err := os.ReadFile(filepath.Join(dir, h))
				installed := err == nil && strings.Contains(string(content), hookMarkerBegin)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", h, installed)
			}
			return nil
		},
	}

	cmd.AddCommand(install, uninstallHooks, status)
	return cmd
}

// stripHookBlock removes the marker-delimited block this tool installed,
// leaving any hook content the user had before install untouched.
func stripHookBlock(content string) (string, bool) {
	start := strings.Index(content, hookMarkerBegin)
	if start < 0 {
		return content, false
	}
	end := strings.Index(content, hookMarkerEnd)
	if end < 0 {
		return content, false
	}
	end += len(hookMarkerEnd)
	for end < len(content) && content[end] == '\n' {
		end++
	}
	return content[:start] + content[end:], true
}
