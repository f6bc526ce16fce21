package main

import (
	"os"

	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/spf13/cobra"
)

func newDotCmd(a *app) *cobra.Command {
	var output, title string

	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Export Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = m.Name
			}
			dot := automatonfile.GenerateDOT(m, title)

			if output == "" {
				_, err = cmd.OutOrStdout().Write([]byte(dot))
				return err
			}
			return os.WriteFile(output, []byte(dot), 0644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "graph title (default the automaton name)")
	return cmd
}
