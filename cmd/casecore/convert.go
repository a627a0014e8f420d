package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/casecore/casefile"
	"github.com/nathoo/casecore/loader"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <case> <output.yaml>",
		Short: "Write a case as a YAML case file",
		Long: `Load a case, validate it and write it as a single YAML case file.
Legacy staging lists are written as nested actions.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			if err := casefile.FromCase(cs).Save(args[1]); err != nil {
				return fmt.Errorf("writing %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d encounter(s)).\n", args[1], cs.Encounters.Len())
			return nil
		},
	}
}
