// Command codeindex is the CLI entrypoint for the incremental code
// intelligence index: init, index, refresh, search, doctor, watch, hooks,
// and uninstall (spec §6/§7).
package main

import (
	"fmt"
	"os"

	"github.com/mvp-joe/project-cortex/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
