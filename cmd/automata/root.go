package main

import (
	"github.com/ha1tch/automata/internal/config"
	"github.com/ha1tch/automata/internal/logging"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logging.Nop()}

	cmd := &cobra.Command{
		Use:           "automata",
		Short:         "Finite automaton toolkit",
		Long:          `automata checks, simulates and converts DFA and NFA documents stored as JSON or YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newValidateCmd(a),
		newRunCmd(a),
		newInfoCmd(a),
		newConvertCmd(a),
		newDotCmd(a),
		newToDFACmd(a),
		newGenCmd(a),
		newWatchCmd(a),
		newLibraryCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// load reads an automaton and logs what was read.
func (a *app) load(path string) (*automaton.Automaton, error) {
	m, err := automatonfile.Load(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug().
		Str("file", path).
		Str("kind", string(m.Kind)).
		Int("states", len(m.States)).
		Int("transitions", len(m.Transitions)).
		Msg("loaded automaton")
	return m, nil
}
