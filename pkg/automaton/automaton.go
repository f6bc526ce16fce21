// Package automaton provides the finite automaton model being edited, the
// store that mutates it, and the validator and simulator that read it.
package automaton

import (
	"fmt"
	"strings"
)

// Kind represents the evaluation semantics of an automaton.
type Kind string

const (
	KindDFA Kind = "dfa"
	KindNFA Kind = "nfa"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDFA || k == KindNFA
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// StateID identifies a state. It is stable across renames.
type StateID string

// TransitionID identifies a transition.
type TransitionID string

// Position is where a front end drew a state. The core never reads it.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// State is a node of the automaton graph.
type State struct {
	ID     StateID
	Label  string
	Start  bool
	Accept bool
	Pos    Position
}

// Transition is a directed edge that fires on any of its symbols.
// An empty symbol list is an epsilon transition.
type Transition struct {
	ID      TransitionID
	From    StateID
	To      StateID
	Symbols []string
}

// IsEpsilon reports whether the transition fires without consuming input.
func (t Transition) IsEpsilon() bool {
	return len(t.Symbols) == 0
}

// Fires reports whether the transition fires on symbol.
func (t Transition) Fires(symbol string) bool {
	for _, s := range t.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Automaton is a snapshot of the machine being edited. States and
// Transitions keep insertion order.
type Automaton struct {
	Kind        Kind
	Name        string
	States      []State
	Transitions []Transition
	Alphabet    []string
	Start       StateID // empty when unset
}

// New creates an empty automaton of the given kind.
func New(k Kind) *Automaton {
	return &Automaton{
		Kind:        k,
		States:      make([]State, 0),
		Transitions: make([]Transition, 0),
		Alphabet:    make([]string, 0),
	}
}

// StateIndex returns the index of a state, or -1 if not found.
func (a *Automaton) StateIndex(id StateID) int {
	for i, s := range a.States {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// TransitionIndex returns the index of a transition, or -1 if not found.
func (a *Automaton) TransitionIndex(id TransitionID) int {
	for i, t := range a.Transitions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// State returns the state with the given id.
func (a *Automaton) State(id StateID) (State, bool) {
	if i := a.StateIndex(id); i >= 0 {
		return a.States[i], true
	}
	return State{}, false
}

// Transition returns the transition with the given id.
func (a *Automaton) Transition(id TransitionID) (Transition, bool) {
	if i := a.TransitionIndex(id); i >= 0 {
		return a.Transitions[i], true
	}
	return Transition{}, false
}

// Label returns the label of a state, or the raw id if the state is gone.
func (a *Automaton) Label(id StateID) string {
	if s, ok := a.State(id); ok {
		return s.Label
	}
	return string(id)
}

// IsAccepting returns true if the state is an accept state.
func (a *Automaton) IsAccepting(id StateID) bool {
	s, ok := a.State(id)
	return ok && s.Accept
}

// InAlphabet reports whether symbol is an alphabet token.
func (a *Automaton) InAlphabet(symbol string) bool {
	for _, s := range a.Alphabet {
		if s == symbol {
			return true
		}
	}
	return false
}

// Outgoing returns the transitions leaving a state, in insertion order.
func (a *Automaton) Outgoing(from StateID) []Transition {
	var result []Transition
	for _, t := range a.Transitions {
		if t.From == from {
			result = append(result, t)
		}
	}
	return result
}

// GetTransitions returns all transitions from a state on a given symbol.
// For a well-formed DFA it returns at most one.
func (a *Automaton) GetTransitions(from StateID, symbol string) []Transition {
	var result []Transition
	for _, t := range a.Transitions {
		if t.From == from && t.Fires(symbol) {
			result = append(result, t)
		}
	}
	return result
}

// GetEpsilonTransitions returns all epsilon transitions from a state.
func (a *Automaton) GetEpsilonTransitions(from StateID) []Transition {
	var result []Transition
	for _, t := range a.Transitions {
		if t.From == from && t.IsEpsilon() {
			result = append(result, t)
		}
	}
	return result
}

// Copy creates a deep copy of the automaton.
func (a *Automaton) Copy() *Automaton {
	c := &Automaton{
		Kind:        a.Kind,
		Name:        a.Name,
		Start:       a.Start,
		States:      make([]State, len(a.States)),
		Transitions: make([]Transition, len(a.Transitions)),
		Alphabet:    make([]string, len(a.Alphabet)),
	}
	copy(c.States, a.States)
	copy(c.Alphabet, a.Alphabet)
	for i, t := range a.Transitions {
		t.Symbols = append([]string(nil), t.Symbols...)
		c.Transitions[i] = t
	}
	return c
}

// String returns a short summary of the automaton.
func (a *Automaton) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Automaton[%s]: %s\n", a.Kind, a.Name))
	labels := make([]string, len(a.States))
	for i, s := range a.States {
		labels[i] = s.Label
	}
	sb.WriteString(fmt.Sprintf("  States: %v\n", labels))
	sb.WriteString(fmt.Sprintf("  Alphabet: %v\n", a.Alphabet))
	sb.WriteString(fmt.Sprintf("  Start: %s\n", a.Label(a.Start)))
	sb.WriteString(fmt.Sprintf("  Transitions: %d\n", len(a.Transitions)))
	return sb.String()
}
