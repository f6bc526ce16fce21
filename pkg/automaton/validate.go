package automaton

import (
	"fmt"
	"sort"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic codes, in reporting order.
const (
	CodeDuplicateLabel      = "duplicate_label"
	CodeRepeatedToken       = "repeated_token"
	CodeAlphabetViolation   = "alphabet_violation"
	CodeEpsilonInDFA        = "epsilon_in_dfa"
	CodeMissingTransition   = "missing_transition"
	CodeMultipleTransitions = "multiple_transitions"
	CodeEmptyAlphabet       = "empty_alphabet"
	CodeNoStartState        = "no_start_state"
	CodeInaccessible        = "inaccessible"
	CodeInaccessibleAccept  = "inaccessible_accept"
)

var codeRank = map[string]int{
	CodeDuplicateLabel:      0,
	CodeRepeatedToken:       1,
	CodeAlphabetViolation:   2,
	CodeEpsilonInDFA:        3,
	CodeMissingTransition:   4,
	CodeMultipleTransitions: 5,
	CodeEmptyAlphabet:       6,
	CodeNoStartState:        7,
	CodeInaccessible:        8,
	CodeInaccessibleAccept:  9,
}

// Diagnostic is an advisory finding about an automaton. It is not an error:
// the automaton is representable, only inconsistent.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Related  []string // ids of the states and transitions involved, sorted
}

func (d Diagnostic) String() string {
	return d.Severity.String() + ": " + d.Message
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks an automaton and returns every structural diagnostic.
// All checks always run. The result does not depend on insertion order.
func Validate(a *Automaton) []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, duplicateLabels(a)...)
	diags = append(diags, repeatedTokens(a)...)
	diags = append(diags, alphabetViolations(a)...)
	if a.Kind == KindDFA {
		diags = append(diags, epsilonTransitions(a)...)
		diags = append(diags, coverage(a)...)
	}
	if len(a.Alphabet) == 0 {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeEmptyAlphabet,
			Message:  "Alphabet needs at least one token",
		})
	}
	diags = append(diags, inaccessible(a)...)

	for i := range diags {
		sort.Strings(diags[i].Related)
	}
	sort.SliceStable(diags, func(i, j int) bool {
		di, dj := diags[i], diags[j]
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if codeRank[di.Code] != codeRank[dj.Code] {
			return codeRank[di.Code] < codeRank[dj.Code]
		}
		return di.Message < dj.Message
	})
	return diags
}

// LabelsUnique reports whether no two states share a label.
func LabelsUnique(a *Automaton) bool {
	seen := make(map[string]bool, len(a.States))
	for _, s := range a.States {
		if seen[s.Label] {
			return false
		}
		seen[s.Label] = true
	}
	return true
}

func duplicateLabels(a *Automaton) []Diagnostic {
	groups := make(map[string][]string)
	var order []string
	for _, s := range a.States {
		if _, ok := groups[s.Label]; !ok {
			order = append(order, s.Label)
		}
		groups[s.Label] = append(groups[s.Label], string(s.ID))
	}

	var diags []Diagnostic
	for _, label := range order {
		ids := groups[label]
		if len(ids) < 2 {
			continue
		}
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeDuplicateLabel,
			Message:  fmt.Sprintf("Duplicate state label %q (%d states)", label, len(ids)),
			Related:  ids,
		})
	}
	return diags
}

func repeatedTokens(a *Automaton) []Diagnostic {
	count := make(map[string]int)
	for _, tok := range a.Alphabet {
		count[tok]++
	}
	var diags []Diagnostic
	for tok, n := range count {
		if n > 1 {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeRepeatedToken,
				Message:  fmt.Sprintf("Token %q is repeated in alphabet", tok),
			})
		}
	}
	return diags
}

func alphabetViolations(a *Automaton) []Diagnostic {
	var diags []Diagnostic
	for _, t := range a.Transitions {
		for _, sym := range t.Symbols {
			if a.InAlphabet(sym) {
				continue
			}
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeAlphabetViolation,
				Message: fmt.Sprintf("Transition %s → %s uses token %q which is not in the alphabet",
					a.Label(t.From), a.Label(t.To), sym),
				Related: []string{string(t.ID)},
			})
		}
	}
	return diags
}

func epsilonTransitions(a *Automaton) []Diagnostic {
	var diags []Diagnostic
	for _, t := range a.Transitions {
		if !t.IsEpsilon() {
			continue
		}
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeEpsilonInDFA,
			Message: fmt.Sprintf("Transitions on empty string (ε) not allowed in DFA (%s → %s)",
				a.Label(t.From), a.Label(t.To)),
			Related: []string{string(t.ID)},
		})
	}
	return diags
}

// coverage requires exactly one outgoing transition per state and token.
func coverage(a *Automaton) []Diagnostic {
	var diags []Diagnostic
	seenTok := make(map[string]bool)
	for _, s := range a.States {
		for _, tok := range a.Alphabet {
			if seenTok[string(s.ID)+"\x00"+tok] {
				continue // repeated token, reported once
			}
			seenTok[string(s.ID)+"\x00"+tok] = true

			matches := a.GetTransitions(s.ID, tok)
			switch {
			case len(matches) == 0:
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeMissingTransition,
					Message:  fmt.Sprintf("State %q has no transition for token %q", s.Label, tok),
					Related:  []string{string(s.ID)},
				})
			case len(matches) > 1:
				related := []string{string(s.ID)}
				for _, t := range matches {
					related = append(related, string(t.ID))
				}
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeMultipleTransitions,
					Message:  fmt.Sprintf("State %q has multiple transitions for token %q", s.Label, tok),
					Related:  related,
				})
			}
		}
	}
	return diags
}

// Reachable returns the states reachable from the start state by following
// transitions in either mode, ignoring symbols.
func Reachable(a *Automaton) map[StateID]bool {
	visited := make(map[StateID]bool)
	if a.Start == "" || a.StateIndex(a.Start) < 0 {
		return visited
	}

	queue := []StateID{a.Start}
	visited[a.Start] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, t := range a.Outgoing(current) {
			if !visited[t.To] {
				visited[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}
	return visited
}

func inaccessible(a *Automaton) []Diagnostic {
	if len(a.States) == 0 {
		return nil
	}
	if a.Start == "" {
		return []Diagnostic{{
			Severity: SeverityWarning,
			Code:     CodeNoStartState,
			Message:  "Automaton has no start state",
		}}
	}

	reachable := Reachable(a)
	var diags []Diagnostic
	for _, s := range a.States {
		if reachable[s.ID] {
			continue
		}
		d := Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeInaccessible,
			Message:  fmt.Sprintf("State %q is inaccessible", s.Label),
			Related:  []string{string(s.ID)},
		}
		if s.Accept {
			d.Code = CodeInaccessibleAccept
			d.Message = fmt.Sprintf("Accept state %q is inaccessible; automaton can never accept there", s.Label)
		}
		diags = append(diags, d)
	}
	return diags
}
