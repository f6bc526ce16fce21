package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/muesli/termenv"
)

// printer colours output when writing to a terminal.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer) *printer {
	return &printer{out: termenv.NewOutput(w)}
}

func (p *printer) style(s, color string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(color))
}

func (p *printer) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *printer) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *printer) good(s string) {
	p.println(p.style(s, "#22c55e"))
}

func (p *printer) bad(s string) {
	p.println(p.style(s, "#ef4444"))
}

func (p *printer) diagnostic(d automaton.Diagnostic) {
	color := "#eab308"
	if d.Severity == automaton.SeverityError {
		color = "#ef4444"
	}
	p.printf("  %s %s\n", p.style(d.Severity.String()+":", color), d.Message)
}

// trace renders a state path by label.
func trace(a *automaton.Automaton, ids []automaton.StateID) string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = a.Label(id)
	}
	return strings.Join(labels, " → ")
}

// stateSet renders a set of states as {a,b}.
func stateSet(a *automaton.Automaton, ids []automaton.StateID) string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = a.Label(id)
	}
	return "{" + strings.Join(labels, ",") + "}"
}
