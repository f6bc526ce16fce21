package automaton

import (
	"fmt"
	"sort"
	"strings"
)

// ToDFA converts an NFA to an equivalent DFA using the powerset construction.
// The resulting DFA accepts the same language as the original NFA. State
// labels in the DFA are brace-enclosed lists of NFA labels. No sink state is
// added, so the result may be incomplete.
func ToDFA(a *Automaton) (*Automaton, error) {
	if a.Kind != KindNFA {
		// Already deterministic, return a copy
		return a.Copy(), nil
	}
	if a.Start == "" || a.StateIndex(a.Start) < 0 {
		return nil, ErrNoStartState
	}

	dfa := New(KindDFA)
	dfa.Name = a.Name
	dfa.Alphabet = uniqueTokens(a.Alphabet)

	// Canonical id of a state set, ordered by position in the NFA
	setID := func(states []StateID) StateID {
		parts := make([]string, len(states))
		for i, s := range a.order(append([]StateID(nil), states...)) {
			parts[i] = string(s)
		}
		return StateID(strings.Join(parts, ","))
	}

	setLabel := func(states []StateID) string {
		labels := make([]string, len(states))
		for i, s := range a.order(append([]StateID(nil), states...)) {
			labels[i] = a.Label(s)
		}
		return "{" + strings.Join(labels, ",") + "}"
	}

	isAccepting := func(states []StateID) bool {
		for _, s := range states {
			if a.IsAccepting(s) {
				return true
			}
		}
		return false
	}

	initial := epsilonClosure(a, []StateID{a.Start})
	dfa.Start = setID(initial)

	seen := map[StateID]bool{dfa.Start: true}
	queue := [][]StateID{initial}
	transitions := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		currentID := setID(current)

		dfa.States = append(dfa.States, State{
			ID:     currentID,
			Label:  setLabel(current),
			Start:  currentID == dfa.Start,
			Accept: isAccepting(current),
		})

		for _, sym := range dfa.Alphabet {
			targetSet := make(map[StateID]bool)
			for _, s := range current {
				for _, t := range a.GetTransitions(s, sym) {
					targetSet[t.To] = true
				}
			}
			if len(targetSet) == 0 {
				continue // No transition for this symbol
			}

			var targets []StateID
			for s := range targetSet {
				targets = append(targets, s)
			}
			sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
			targets = epsilonClosure(a, targets)
			targetID := setID(targets)

			dfa.Transitions = append(dfa.Transitions, Transition{
				ID:      TransitionID(fmt.Sprintf("t%d", transitions)),
				From:    currentID,
				To:      targetID,
				Symbols: []string{sym},
			})
			transitions++

			if !seen[targetID] {
				seen[targetID] = true
				queue = append(queue, targets)
			}
		}
	}

	return dfa, nil
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
