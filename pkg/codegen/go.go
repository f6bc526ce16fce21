// Package codegen compiles automata into standalone source code.
package codegen

import (
	"fmt"
	"go/format"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ha1tch/automata/pkg/automaton"
)

// GenerateGo generates a Go state machine for the automaton. An NFA is
// first converted to a DFA. When several transitions fire on the same
// symbol the earliest one wins, matching automaton.Run; epsilon
// transitions and symbols outside the alphabet are ignored.
func GenerateGo(a *automaton.Automaton, packageName string) (string, error) {
	if a.Kind == automaton.KindNFA {
		dfa, err := automaton.ToDFA(a)
		if err != nil {
			return "", err
		}
		a = dfa
	}
	if a.Start == "" || a.StateIndex(a.Start) < 0 {
		return "", automaton.ErrNoStartState
	}

	typeName := toPascalCase(a.Name)
	if typeName == "" {
		typeName = "Machine"
	} else if r, _ := utf8.DecodeRuneInString(typeName); !unicode.IsLetter(r) {
		typeName = "M" + typeName
	}
	if packageName == "" {
		packageName = "machine"
	}
	first, size := utf8.DecodeRuneInString(typeName)
	lower := string(unicode.ToLower(first)) + typeName[size:]

	states := newNamer(typeName + "State")
	for _, s := range a.States {
		states.add(string(s.ID), s.Label)
	}
	inputs := newNamer(typeName + "Input")
	for _, sym := range a.Alphabet {
		inputs.add(sym, sym)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `// Code generated by automata. DO NOT EDIT.
// Automaton: %s
// Type: %s

package %s

`, a.Name, a.Kind, packageName)

	// States
	writeEnum(&sb, typeName+"State", lower+"StateNames", "a state of "+typeName, states)
	// Inputs
	writeEnum(&sb, typeName+"Input", lower+"InputNames", "an alphabet token of "+typeName, inputs)

	fmt.Fprintf(&sb, "// Parse%sInput looks up an alphabet token.\n", typeName)
	fmt.Fprintf(&sb, "func Parse%sInput(tok string) (%sInput, bool) {\n", typeName, typeName)
	fmt.Fprintf(&sb, "\tfor i, name := range %sInputNames {\n", lower)
	sb.WriteString("\t\tif name == tok {\n")
	fmt.Fprintf(&sb, "\t\t\treturn %sInput(i), true\n", typeName)
	sb.WriteString("\t\t}\n\t}\n\treturn 0, false\n}\n\n")

	// Machine
	start := states.name(string(a.Start))
	fmt.Fprintf(&sb, "// %s is a deterministic finite automaton.\n", typeName)
	fmt.Fprintf(&sb, "type %s struct {\n\tstate %sState\n}\n\n", typeName, typeName)

	fmt.Fprintf(&sb, "// New%s creates a machine in its start state.\n", typeName)
	fmt.Fprintf(&sb, "func New%s() *%s {\n\treturn &%s{state: %s}\n}\n\n", typeName, typeName, typeName, start)

	sb.WriteString("// State returns the current state.\n")
	fmt.Fprintf(&sb, "func (m *%s) State() %sState {\n\treturn m.state\n}\n\n", typeName, typeName)

	moves := transitionTable(a, inputs)

	sb.WriteString("// Step consumes one input. It returns false, leaving the state unchanged,\n")
	sb.WriteString("// when no transition fires.\n")
	fmt.Fprintf(&sb, "func (m *%s) Step(input %sInput) bool {\n", typeName, typeName)
	writeSwitch(&sb, a, states, inputs, moves, func(to string) string {
		return "m.state = " + states.name(to) + "\n\t\t\treturn true"
	})
	sb.WriteString("\treturn false\n}\n\n")

	sb.WriteString("// CanStep reports whether Step would succeed.\n")
	fmt.Fprintf(&sb, "func (m *%s) CanStep(input %sInput) bool {\n", typeName, typeName)
	writeSwitch(&sb, a, states, inputs, moves, func(string) string {
		return "return true"
	})
	sb.WriteString("\treturn false\n}\n\n")

	sb.WriteString("// IsAccepting reports whether the current state accepts.\n")
	fmt.Fprintf(&sb, "func (m *%s) IsAccepting() bool {\n", typeName)
	var accepting []string
	for _, s := range a.States {
		if s.Accept {
			accepting = append(accepting, states.name(string(s.ID)))
		}
	}
	if len(accepting) > 0 {
		fmt.Fprintf(&sb, "\tswitch m.state {\n\tcase %s:\n\t\treturn true\n\t}\n", strings.Join(accepting, ", "))
	}
	sb.WriteString("\treturn false\n}\n\n")

	sb.WriteString("// Reset returns the machine to its start state.\n")
	fmt.Fprintf(&sb, "func (m *%s) Reset() {\n\tm.state = %s\n}\n\n", typeName, start)

	fmt.Fprintf(&sb, "// Match%s reports whether the token sequence is accepted.\n", typeName)
	fmt.Fprintf(&sb, "func Match%s(tokens []string) bool {\n", typeName)
	fmt.Fprintf(&sb, "\tm := New%s()\n", typeName)
	sb.WriteString("\tfor _, tok := range tokens {\n")
	fmt.Fprintf(&sb, "\t\tin, ok := Parse%sInput(tok)\n", typeName)
	sb.WriteString("\t\tif !ok || !m.Step(in) {\n\t\t\treturn false\n\t\t}\n\t}\n")
	sb.WriteString("\treturn m.IsAccepting()\n}\n")

	out, err := format.Source([]byte(sb.String()))
	if err != nil {
		return "", fmt.Errorf("formatting generated code: %w", err)
	}
	return string(out), nil
}

// transitionTable maps state id to input token to target state id. The
// first transition to claim a token wins.
func transitionTable(a *automaton.Automaton, inputs *namer) map[string]map[string]string {
	moves := make(map[string]map[string]string)
	for _, t := range a.Transitions {
		from := string(t.From)
		if moves[from] == nil {
			moves[from] = make(map[string]string)
		}
		for _, sym := range t.Symbols {
			if !inputs.has(sym) {
				continue
			}
			if _, taken := moves[from][sym]; !taken {
				moves[from][sym] = string(t.To)
			}
		}
	}
	return moves
}

func writeEnum(sb *strings.Builder, typ, names, doc string, n *namer) {
	fmt.Fprintf(sb, "// %s is %s.\n", typ, doc)
	fmt.Fprintf(sb, "type %s uint16\n\n", typ)

	sb.WriteString("const (\n")
	for i, key := range n.keys {
		if i == 0 {
			fmt.Fprintf(sb, "\t%s %s = iota\n", n.names[key], typ)
		} else {
			fmt.Fprintf(sb, "\t%s\n", n.names[key])
		}
	}
	sb.WriteString(")\n\n")

	fmt.Fprintf(sb, "var %s = [...]string{\n", names)
	for _, key := range n.keys {
		fmt.Fprintf(sb, "\t%q,\n", n.labels[key])
	}
	sb.WriteString("}\n\n")

	fmt.Fprintf(sb, "func (v %s) String() string {\n", typ)
	fmt.Fprintf(sb, "\tif int(v) < len(%s) {\n\t\treturn %s[v]\n\t}\n", names, names)
	sb.WriteString("\treturn \"unknown\"\n}\n\n")
}

// writeSwitch emits a state/input switch with body(target) for each move.
func writeSwitch(sb *strings.Builder, a *automaton.Automaton, states, inputs *namer, moves map[string]map[string]string, body func(to string) string) {
	sb.WriteString("\tswitch m.state {\n")
	for _, s := range a.States {
		row := moves[string(s.ID)]
		if len(row) == 0 {
			continue
		}
		fmt.Fprintf(sb, "\tcase %s:\n", states.name(string(s.ID)))
		sb.WriteString("\t\tswitch input {\n")
		// alphabet order keeps the output stable
		for _, sym := range inputs.keys {
			to, ok := row[sym]
			if !ok {
				continue
			}
			fmt.Fprintf(sb, "\t\tcase %s:\n\t\t\t%s\n", inputs.name(sym), body(to))
		}
		sb.WriteString("\t\t}\n")
	}
	sb.WriteString("\t}\n")
}
