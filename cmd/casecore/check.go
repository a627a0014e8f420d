package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/casecore/loader"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <case>",
		Short: "Validate a case and list its problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, ve, err := loader.Inspect(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range ve.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range ve.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}

			reg := cs.Registry
			fmt.Fprintf(out, "%s: %d encounter(s), %d character(s), %d evidence, %d location(s)\n",
				cs.Info.Title, cs.Encounters.Len(), reg.Characters.Len(), reg.Evidence.Len(), reg.Locations.Len())
			if len(ve.Errors) > 0 {
				return fmt.Errorf("%d error(s), %d warning(s)", len(ve.Errors), len(ve.Warnings))
			}
			fmt.Fprintf(out, "OK (%d warning(s))\n", len(ve.Warnings))
			return nil
		},
	}
}
