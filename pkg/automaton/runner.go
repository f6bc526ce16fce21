package automaton

import (
	"fmt"
	"sort"
	"strings"
)

// Runner steps an automaton one symbol at a time.
// For NFAs, it tracks all possible current states simultaneously.
type Runner struct {
	a       *Automaton
	current []StateID
	history []Step
}

// Step records one step of execution.
type Step struct {
	From   []StateID
	Symbol string
	To     []StateID
}

// NewRunner creates a runner over a snapshot of a.
func NewRunner(a *Automaton) (*Runner, error) {
	if a.Start == "" || a.StateIndex(a.Start) < 0 {
		return nil, ErrNoStartState
	}
	r := &Runner{a: a.Copy()}
	r.Reset()
	return r, nil
}

// Reset returns the runner to the start state.
func (r *Runner) Reset() {
	r.current = []StateID{r.a.Start}
	if r.a.Kind == KindNFA {
		r.current = epsilonClosure(r.a, r.current)
	}
	r.history = make([]Step, 0)
}

// Current returns the current states.
func (r *Runner) Current() []StateID {
	return append([]StateID(nil), r.current...)
}

// CurrentLabel returns the current state(s) as a string.
// For NFA, returns a brace-enclosed list of labels.
func (r *Runner) CurrentLabel() string {
	return r.formatSet(r.current)
}

// Accepting returns true if any current state is an accept state.
func (r *Runner) Accepting() bool {
	for _, s := range r.current {
		if r.a.IsAccepting(s) {
			return true
		}
	}
	return false
}

// AvailableSymbols returns the symbols valid from any current state.
func (r *Runner) AvailableSymbols() []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, s := range r.current {
		for _, t := range r.a.Outgoing(s) {
			for _, sym := range t.Symbols {
				if !seen[sym] {
					seen[sym] = true
					symbols = append(symbols, sym)
				}
			}
		}
	}
	sort.Strings(symbols)
	return symbols
}

// Step consumes one symbol. It returns an error, leaving the runner
// unchanged, if no current state has a transition on it.
func (r *Runner) Step(symbol string) error {
	if !r.a.InAlphabet(symbol) {
		return fmt.Errorf("%w: %q is not in the alphabet", ErrInvalidSymbol, symbol)
	}

	var next []StateID
	seen := make(map[StateID]bool)
	for _, from := range r.current {
		matches := r.a.GetTransitions(from, symbol)
		if r.a.Kind == KindDFA && len(matches) > 1 {
			matches = matches[:1]
		}
		for _, t := range matches {
			targets := []StateID{t.To}
			if r.a.Kind == KindNFA {
				targets = epsilonClosure(r.a, targets)
			}
			for _, to := range targets {
				if !seen[to] {
					seen[to] = true
					next = append(next, to)
				}
			}
		}
	}
	if len(next) == 0 {
		return fmt.Errorf("no transition from state %s on input %q", r.CurrentLabel(), symbol)
	}

	next = r.a.order(next)
	r.history = append(r.history, Step{From: r.current, Symbol: symbol, To: next})
	r.current = next
	return nil
}

// History returns the execution history.
func (r *Runner) History() []Step {
	return r.history
}

// Status returns a status line for the current state.
func (r *Runner) Status() string {
	status := fmt.Sprintf("State: %s", r.CurrentLabel())
	if r.Accepting() {
		status += " [accepting]"
	}
	return status
}

// FormatStep renders a step using state labels.
func (r *Runner) FormatStep(s Step) string {
	return fmt.Sprintf("%s --%s--> %s", r.formatSet(s.From), s.Symbol, r.formatSet(s.To))
}

func (r *Runner) formatSet(ids []StateID) string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = r.a.Label(id)
	}
	if len(labels) == 1 {
		return labels[0]
	}
	return "{" + strings.Join(labels, ", ") + "}"
}
