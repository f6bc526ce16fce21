package main

import (
	"errors"
	"fmt"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/spf13/cobra"
)

var errHasErrors = errors.New("automaton has errors")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an automaton for structural problems",
		Long:  `Reports duplicate labels, alphabet problems, missing or ambiguous DFA transitions and inaccessible states. Exits non-zero when any error is found.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(newPrinter(cmd.OutOrStdout()), args[0])
		},
	}
}

// check loads and validates the file at path, printing the diagnostics.
// It returns errHasErrors if any diagnostic is an error.
func (a *app) check(p *printer, path string) error {
	m, err := a.load(path)
	if err != nil {
		return err
	}
	diags := automaton.Validate(m)
	a.log.Info().Str("file", path).Int("diagnostics", len(diags)).Msg("validated")

	if len(diags) == 0 {
		p.good(fmt.Sprintf("%s: valid %s with %d states, %d transitions",
			path, m.Kind, len(m.States), len(m.Transitions)))
		return nil
	}
	p.println(path + ":")
	for _, d := range diags {
		p.diagnostic(d)
	}
	if automaton.HasErrors(diags) {
		return errHasErrors
	}
	return nil
}
