package automatonfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/automata/pkg/automaton"
)

// GenerateDOT converts an automaton to Graphviz DOT format. Nodes are keyed
// by state id and labelled with the state label, so duplicate labels still
// draw as distinct nodes.
func GenerateDOT(a *automaton.Automaton, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph automaton {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	// Invisible start node
	if a.Start != "" {
		sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
		sb.WriteString(fmt.Sprintf("    __start -> \"%s\";\n", escapeDOT(string(a.Start))))
		sb.WriteString("\n")
	}

	for _, s := range a.States {
		shape := "circle"
		if s.Accept {
			shape = "doublecircle"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [shape=%s, label=\"%s\"];\n",
			escapeDOT(string(s.ID)), shape, escapeDOT(s.Label)))
	}
	sb.WriteString("\n")

	// Group transitions by (from, to), keeping first-seen order
	edgeLabels := make(map[[2]automaton.StateID][]string)
	var order [][2]automaton.StateID
	for _, t := range a.Transitions {
		key := [2]automaton.StateID{t.From, t.To}
		if _, ok := edgeLabels[key]; !ok {
			order = append(order, key)
		}
		label := "ε"
		if !t.IsEpsilon() {
			label = strings.Join(t.Symbols, ", ")
		}
		edgeLabels[key] = append(edgeLabels[key], label)
	}

	for _, key := range order {
		combined := strings.Join(edgeLabels[key], ", ")
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(string(key[0])), escapeDOT(string(key[1])), escapeDOT(combined)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
