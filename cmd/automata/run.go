package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "run <file> [string...]",
		Short: "Test strings against an automaton",
		Long: `Runs each string and reports whether it is accepted, with the path taken.
With --interactive, reads one symbol per line from stdin instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if interactive {
				return runInteractive(m, cmd.InOrStdin(), p)
			}
			for _, input := range args[1:] {
				res, err := automaton.RunString(m, input)
				if err != nil {
					return err
				}
				a.log.Debug().Str("input", input).Bool("accepted", res.Accepted).Msg("ran")
				printResult(p, m, input, res)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "step through symbols read from stdin")
	return cmd
}

func printResult(p *printer, m *automaton.Automaton, input string, res automaton.Result) {
	if res.Accepted {
		p.good(fmt.Sprintf("%q: accepted", input))
	} else {
		msg := fmt.Sprintf("%q: rejected, %s", input, res.Reason)
		if res.Symbol != "" {
			msg += fmt.Sprintf(" (%q after %d symbols)", res.Symbol, res.Consumed)
		}
		p.bad(msg)
	}
	p.printf("  path: %s\n", trace(m, res.Trace))
	if m.Kind == automaton.KindNFA {
		sets := make([]string, len(res.Steps))
		for i, s := range res.Steps {
			sets[i] = stateSet(m, s)
		}
		p.printf("  sets: %s\n", strings.Join(sets, " "))
	}
}

func runInteractive(m *automaton.Automaton, in io.Reader, p *printer) error {
	runner, err := automaton.NewRunner(m)
	if err != nil {
		return err
	}

	p.printf("Automaton: %s (%s)\n", m.Name, m.Kind)
	p.println("Commands: <symbol>, reset, status, history, symbols, quit")
	p.println(runner.Status())

	scanner := bufio.NewScanner(in)
	for {
		p.printf("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit", "q":
			return nil
		case "reset":
			runner.Reset()
			p.println("Reset to start state")
			p.println(runner.Status())
		case "status":
			p.println(runner.Status())
		case "history":
			history := runner.History()
			if len(history) == 0 {
				p.println("No history yet")
				continue
			}
			for i, step := range history {
				p.printf("  %d: %s\n", i+1, runner.FormatStep(step))
			}
		case "symbols":
			syms := runner.AvailableSymbols()
			if len(syms) == 0 {
				p.println("No symbols available from current state")
			} else {
				p.printf("Available symbols: %v\n", syms)
			}
		default:
			if err := runner.Step(line); err != nil {
				p.bad("Error: " + err.Error())
				continue
			}
			p.println(runner.Status())
		}
	}
}
