package main

import (
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/spf13/cobra"
)

func newToDFACmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "todfa <file>",
		Short: "Convert an NFA to an equivalent DFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			dfa, err := automaton.ToDFA(m)
			if err != nil {
				return err
			}
			a.log.Info().
				Int("nfa_states", len(m.States)).
				Int("dfa_states", len(dfa.States)).
				Msg("converted to DFA")

			if output != "" {
				return a.write(cmd, dfa, output)
			}
			return a.printJSON(cmd, dfa)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default JSON on stdout)")
	return cmd
}
