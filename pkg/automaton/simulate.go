package automaton

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Reason explains a simulation outcome.
type Reason int

const (
	Accepted Reason = iota
	RejectNotAccepting
	RejectNoTransition
	RejectUnknownSymbol
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectNotAccepting:
		return "ended in a non-accepting state"
	case RejectNoTransition:
		return "no transition"
	case RejectUnknownSymbol:
		return "symbol not in alphabet"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Result is the outcome of testing an input against an automaton.
type Result struct {
	Accepted bool
	Reason   Reason

	// Trace holds the start state followed by one state per consumed
	// symbol. In NFA mode it is a witness path through Steps.
	Trace []StateID

	// Consumed is the number of input symbols read before stopping.
	Consumed int

	// Symbol is the symbol that stopped the run, if any.
	Symbol string

	// Steps holds the set of reachable states before the first symbol and
	// after each consumed one. In DFA mode every set has one element.
	Steps [][]StateID
}

// Run evaluates input against the automaton. Only a missing start state is
// an error; unknown symbols and dead ends reject.
func Run(a *Automaton, input []string) (Result, error) {
	if a.Start == "" || a.StateIndex(a.Start) < 0 {
		return Result{}, ErrNoStartState
	}
	if a.Kind == KindNFA {
		return runNFA(a, input), nil
	}
	return runDFA(a, input), nil
}

// RunString tokenizes s against the alphabet and runs it.
func RunString(a *Automaton, s string) (Result, error) {
	return Run(a, Tokenize(a.Alphabet, s))
}

// Tokenize splits s into alphabet tokens using greedy longest match.
// Characters that start no token become single-rune tokens.
func Tokenize(alphabet []string, s string) []string {
	tokens := make([]string, 0, len(s))
	for len(s) > 0 {
		best := ""
		for _, tok := range alphabet {
			if len(tok) > len(best) && strings.HasPrefix(s, tok) {
				best = tok
			}
		}
		if best == "" {
			_, size := utf8.DecodeRuneInString(s)
			best = s[:size]
		}
		tokens = append(tokens, best)
		s = s[len(best):]
	}
	return tokens
}

func runDFA(a *Automaton, input []string) Result {
	current := a.Start
	res := Result{
		Trace: []StateID{current},
		Steps: [][]StateID{{current}},
	}

	for _, sym := range input {
		if !a.InAlphabet(sym) {
			res.Reason = RejectUnknownSymbol
			res.Symbol = sym
			return res
		}
		// Insertion order decides when a DFA is (invalidly) ambiguous.
		matches := a.GetTransitions(current, sym)
		if len(matches) == 0 {
			res.Reason = RejectNoTransition
			res.Symbol = sym
			return res
		}
		current = matches[0].To
		res.Consumed++
		res.Trace = append(res.Trace, current)
		res.Steps = append(res.Steps, []StateID{current})
	}

	res.Accepted = a.IsAccepting(current)
	if !res.Accepted {
		res.Reason = RejectNotAccepting
	}
	return res
}

// runNFA simulates all paths at once. Each step records one predecessor per
// reached state so that a witness path can be rebuilt.
func runNFA(a *Automaton, input []string) Result {
	current := epsilonClosure(a, []StateID{a.Start})
	parents := []map[StateID]StateID{}
	res := Result{Steps: [][]StateID{current}}

	for _, sym := range input {
		if !a.InAlphabet(sym) {
			res.Reason = RejectUnknownSymbol
			res.Symbol = sym
			res.Trace = witness(a, res.Steps, parents, false)
			return res
		}

		parent := make(map[StateID]StateID)
		var next []StateID
		for _, from := range current {
			for _, t := range a.GetTransitions(from, sym) {
				for _, to := range epsilonClosure(a, []StateID{t.To}) {
					if _, ok := parent[to]; !ok {
						parent[to] = from
						next = append(next, to)
					}
				}
			}
		}
		if len(next) == 0 {
			res.Reason = RejectNoTransition
			res.Symbol = sym
			res.Trace = witness(a, res.Steps, parents, false)
			return res
		}

		next = a.order(next)
		parents = append(parents, parent)
		res.Steps = append(res.Steps, next)
		res.Consumed++
		current = next
	}

	for _, s := range current {
		if a.IsAccepting(s) {
			res.Accepted = true
			break
		}
	}
	if !res.Accepted {
		res.Reason = RejectNotAccepting
	}
	res.Trace = witness(a, res.Steps, parents, res.Accepted)
	return res
}

// witness walks predecessor links back from the last step. It ends in an
// accept state when preferAccept is set and one is available.
func witness(a *Automaton, steps [][]StateID, parents []map[StateID]StateID, preferAccept bool) []StateID {
	last := steps[len(steps)-1]
	end := last[0]
	if preferAccept {
		for _, s := range last {
			if a.IsAccepting(s) {
				end = s
				break
			}
		}
	}

	trace := make([]StateID, len(steps))
	trace[len(steps)-1] = end
	for i := len(parents) - 1; i >= 0; i-- {
		end = parents[i][end]
		trace[i] = end
	}
	return trace
}

// epsilonClosure computes all states reachable via epsilon transitions.
func epsilonClosure(a *Automaton, states []StateID) []StateID {
	closure := make(map[StateID]bool, len(states))
	queue := append([]StateID(nil), states...)
	for _, s := range states {
		closure[s] = true
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range a.GetEpsilonTransitions(s) {
			if !closure[t.To] {
				closure[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}

	// Seeds first so a witness path prefers them.
	result := append([]StateID(nil), states...)
	var rest []StateID
	for s := range closure {
		if !contains(states, s) {
			rest = append(rest, s)
		}
	}
	return append(result, a.order(rest)...)
}

// order sorts state ids by their position in the automaton.
func (a *Automaton) order(ids []StateID) []StateID {
	sort.SliceStable(ids, func(i, j int) bool {
		return a.StateIndex(ids[i]) < a.StateIndex(ids[j])
	})
	return ids
}

func contains(ids []StateID, id StateID) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}
