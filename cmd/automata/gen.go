package main

import (
	"os"

	"github.com/ha1tch/automata/pkg/codegen"
	"github.com/spf13/cobra"
)

func newGenCmd(a *app) *cobra.Command {
	var output, pkg string

	cmd := &cobra.Command{
		Use:   "gen <file>",
		Short: "Generate a Go state machine (NFAs are determinized first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			src, err := codegen.GenerateGo(m, pkg)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write([]byte(src))
				return err
			}
			if err := os.WriteFile(output, []byte(src), 0644); err != nil {
				return err
			}
			a.log.Info().Str("file", output).Msg("generated Go code")
			newPrinter(cmd.OutOrStdout()).printf("Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&pkg, "package", "p", "machine", "Go package name")
	return cmd
}
