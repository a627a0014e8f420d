// Casecore plays, inspects and converts courtroom adventure cases.
// Usage: casecore [--version] <command> [flags] [case]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "casecore",
		Short: "Play and inspect courtroom adventure cases",
		Long: `casecore plays courtroom adventure cases written in Lua or YAML.

A case is a directory of .lua files, a single .lua file, or a YAML case
file written by "casecore convert".

Examples:
  casecore play cases/first-turnabout
  casecore play --plain --script walkthrough.txt cases/first-turnabout
  casecore check cases/first-turnabout
  casecore states cases/first-turnabout --encounter office
  casecore convert cases/first-turnabout first-turnabout.yaml`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("casecore {{.Version}}\n")

	root.AddCommand(newPlayCmd(), newCheckCmd(), newStatesCmd(), newConvertCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
