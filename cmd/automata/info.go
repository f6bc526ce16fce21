package main

import (
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Summarise an automaton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())

			var accepting []string
			labels := make([]string, len(m.States))
			for i, s := range m.States {
				labels[i] = s.Label
				if s.Accept {
					accepting = append(accepting, s.Label)
				}
			}

			p.printf("Type:        %s\n", m.Kind)
			if m.Name != "" {
				p.printf("Name:        %s\n", m.Name)
			}
			p.printf("States:      %d\n", len(m.States))
			p.printf("Symbols:     %d\n", len(m.Alphabet))
			p.printf("Transitions: %d\n", len(m.Transitions))
			if m.Start != "" {
				p.printf("Start:       %s\n", m.Label(m.Start))
			}
			if len(accepting) > 0 {
				p.printf("Accepting:   %v\n", accepting)
			}
			p.println()
			p.printf("States:      %v\n", labels)
			p.printf("Alphabet:    %v\n", m.Alphabet)
			return nil
		},
	}
}
