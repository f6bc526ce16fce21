package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ha1tch/automata/internal/storage"
	"github.com/spf13/cobra"
)

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the library of saved automata",
		Long:    `The library lives in a directory, a SQLite database or Redis, as selected by the storage section of the config.`,
	}

	var output string
	load := &cobra.Command{
		Use:   "load <name>",
		Short: "Print a saved automaton, or write it with -o",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(cmd.Context(), func(repo storage.Repository) error {
				m, err := repo.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output != "" {
					return a.write(cmd, m, output)
				}
				return a.printJSON(cmd, m)
			})
		},
	}
	load.Flags().StringVarP(&output, "output", "o", "", "output file (default JSON on stdout)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <file> [name]",
			Short: "Save a file to the library, named after the file by default",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.load(args[0])
				if err != nil {
					return err
				}
				name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				if len(args) == 2 {
					name = args[1]
				}
				return a.withLibrary(cmd.Context(), func(repo storage.Repository) error {
					if err := repo.Save(cmd.Context(), name, m); err != nil {
						return err
					}
					newPrinter(cmd.OutOrStdout()).printf("Saved %s\n", name)
					return nil
				})
			},
		},
		load,
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List saved automata",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLibrary(cmd.Context(), func(repo storage.Repository) error {
					names, err := repo.List(cmd.Context())
					if err != nil {
						return err
					}
					p := newPrinter(cmd.OutOrStdout())
					for _, n := range names {
						p.println(n)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "rm <name>",
			Aliases: []string{"delete"},
			Short:   "Remove a saved automaton",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLibrary(cmd.Context(), func(repo storage.Repository) error {
					return repo.Delete(cmd.Context(), args[0])
				})
			},
		},
	)
	return cmd
}

// withLibrary opens the configured repository for the duration of fn.
func (a *app) withLibrary(ctx context.Context, fn func(storage.Repository) error) error {
	repo, err := storage.Open(ctx, a.cfg.Storage, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing library")
		}
	}()
	return fn(repo)
}
