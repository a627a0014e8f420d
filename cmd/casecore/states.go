package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nathoo/casecore/engine"
	"github.com/nathoo/casecore/engine/action"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/loader"
)

func newStatesCmd() *cobra.Command {
	var encounter string
	cmd := &cobra.Command{
		Use:   "states <case>",
		Short: "Print every action with the screen state it starts from",
		Long: `Print the action tree of every script, one action per line, with its
path and the characters and emotions on screen just before it runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			ids := cs.Encounters.IDs()
			if encounter != "" {
				if _, ok := cs.Encounter(encounter); !ok {
					return fmt.Errorf("no encounter %q", encounter)
				}
				ids = []string{encounter}
			}
			for _, id := range ids {
				enc, _ := cs.Encounter(id)
				printStates(cmd.OutOrStdout(), enc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&encounter, "encounter", "", "only print this encounter")
	return cmd
}

func printStates(w io.Writer, enc *conversation.Encounter) {
	fmt.Fprintf(w, "encounter %s\n", enc.ID)
	for _, s := range enc.Scripts() {
		fmt.Fprintf(w, "  %s\n", s.Root().ID)
		for i, list := range engine.Lists(s) {
			if i > 0 {
				conf := s.(*conversation.Confrontation)
				fmt.Fprintf(w, "    topic %s\n", conf.Topics[i-1].ID)
			}
			action.Walk(list, func(p action.Path, a action.Action) {
				st, ok := a.CachedState()
				state := "(unreached)"
				if ok {
					state = st.String()
				}
				fmt.Fprintf(w, "    %-10s %-28s %s\n", p, a.Kind(), state)
			})
		}
	}
}
