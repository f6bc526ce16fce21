package main

import (
	"fmt"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <input> -o <output>",
		Short: "Convert between JSON and YAML",
		Long:  `Formats are chosen by extension: .json, .yaml or .yml.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			return a.write(cmd, m, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// write saves m to path and reports it.
func (a *app) write(cmd *cobra.Command, m *automaton.Automaton, path string) error {
	if err := automatonfile.Save(path, m); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.log.Info().Str("file", path).Msg("wrote automaton")
	newPrinter(cmd.OutOrStdout()).printf("Wrote %s\n", path)
	return nil
}

// printJSON writes m as indented JSON to stdout.
func (a *app) printJSON(cmd *cobra.Command, m *automaton.Automaton) error {
	data, err := automatonfile.ToJSON(m, true)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
