// Package automatonfile converts automata to and from their persisted form.
package automatonfile

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ha1tch/automata/pkg/automaton"
)

// Version is the document version written by this package.
const Version = 1

// Document is the persisted representation of an automaton.
type Document struct {
	Version     int                  `json:"version" yaml:"version"`
	Type        string               `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=dfa nfa"`
	Name        string               `json:"name,omitempty" yaml:"name,omitempty"`
	Alphabet    []string             `json:"alphabet" yaml:"alphabet" validate:"required,dive,required"`
	Start       *string              `json:"start" yaml:"start"`
	States      []DocumentState      `json:"states" yaml:"states" validate:"required,dive"`
	Transitions []DocumentTransition `json:"transitions" yaml:"transitions" validate:"required,dive"`
}

// DocumentState is a persisted state.
type DocumentState struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Label  string `json:"label" yaml:"label"`
	Start  bool   `json:"start,omitempty" yaml:"start,omitempty"`
	Accept bool   `json:"accept,omitempty" yaml:"accept,omitempty"`
	X      int    `json:"x,omitempty" yaml:"x,omitempty"`
	Y      int    `json:"y,omitempty" yaml:"y,omitempty"`
}

// DocumentTransition is a persisted transition. No symbols means epsilon.
type DocumentTransition struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	From    string   `json:"from" yaml:"from" validate:"required"`
	To      string   `json:"to" yaml:"to" validate:"required"`
	Symbols []string `json:"symbols" yaml:"symbols" validate:"dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their persisted names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FromAutomaton converts an automaton to its persisted form.
func FromAutomaton(a *automaton.Automaton) *Document {
	d := &Document{
		Version:     Version,
		Type:        string(a.Kind),
		Name:        a.Name,
		Alphabet:    append(make([]string, 0, len(a.Alphabet)), a.Alphabet...),
		States:      make([]DocumentState, 0, len(a.States)),
		Transitions: make([]DocumentTransition, 0, len(a.Transitions)),
	}
	if a.Start != "" {
		start := string(a.Start)
		d.Start = &start
	}

	for _, s := range a.States {
		d.States = append(d.States, DocumentState{
			ID:     string(s.ID),
			Label:  s.Label,
			Start:  s.ID == a.Start,
			Accept: s.Accept,
			X:      s.Pos.X,
			Y:      s.Pos.Y,
		})
	}
	for _, t := range a.Transitions {
		d.Transitions = append(d.Transitions, DocumentTransition{
			ID:      string(t.ID),
			From:    string(t.From),
			To:      string(t.To),
			Symbols: append(make([]string, 0, len(t.Symbols)), t.Symbols...),
		})
	}
	return d
}

// ToAutomaton converts a document back into an automaton. Import is
// all-or-nothing: any problem yields an error wrapping
// automaton.ErrMalformedData and no automaton.
func (d *Document) ToAutomaton() (*automaton.Automaton, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: empty document", automaton.ErrMalformedData)
	}

	var problems []string
	if err := validate.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("field %s failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
		return nil, malformed(problems)
	}

	if d.Version > Version {
		problems = append(problems, fmt.Sprintf("unsupported version %d", d.Version))
	}

	kind := automaton.KindDFA
	if d.Type != "" {
		kind = automaton.Kind(d.Type)
	}
	a := automaton.New(kind)
	a.Name = d.Name
	a.Alphabet = append(a.Alphabet, d.Alphabet...)

	var start automaton.StateID
	if d.Start != nil {
		start = automaton.StateID(*d.Start)
	}

	states := make(map[string]bool, len(d.States))
	flagged := 0
	for _, ds := range d.States {
		if states[ds.ID] {
			problems = append(problems, fmt.Sprintf("duplicate state id %q", ds.ID))
			continue
		}
		states[ds.ID] = true
		if ds.Start {
			flagged++
			if automaton.StateID(ds.ID) != start {
				problems = append(problems, fmt.Sprintf("state %q is flagged start but start is %q", ds.ID, start))
			}
		}
		a.States = append(a.States, automaton.State{
			ID:     automaton.StateID(ds.ID),
			Label:  ds.Label,
			Start:  automaton.StateID(ds.ID) == start,
			Accept: ds.Accept,
			Pos:    automaton.Position{X: ds.X, Y: ds.Y},
		})
	}
	if flagged > 1 {
		problems = append(problems, fmt.Sprintf("%d states are flagged start", flagged))
	}
	if start != "" {
		if !states[string(start)] {
			problems = append(problems, fmt.Sprintf("start state %q does not exist", start))
		}
		a.Start = start
	}

	transitions := make(map[string]bool, len(d.Transitions))
	for i, dt := range d.Transitions {
		if transitions[dt.ID] {
			problems = append(problems, fmt.Sprintf("duplicate transition id %q", dt.ID))
		}
		transitions[dt.ID] = true
		if !states[dt.From] {
			problems = append(problems, fmt.Sprintf("transition %d: from state %q does not exist", i, dt.From))
		}
		if !states[dt.To] {
			problems = append(problems, fmt.Sprintf("transition %d: to state %q does not exist", i, dt.To))
		}
		for _, sym := range dt.Symbols {
			if !a.InAlphabet(sym) {
				problems = append(problems, fmt.Sprintf("transition %d: symbol %q not in alphabet", i, sym))
			}
		}
		a.Transitions = append(a.Transitions, automaton.Transition{
			ID:      automaton.TransitionID(dt.ID),
			From:    automaton.StateID(dt.From),
			To:      automaton.StateID(dt.To),
			Symbols: append([]string(nil), dt.Symbols...),
		})
	}

	if len(problems) > 0 {
		return nil, malformed(problems)
	}
	return a, nil
}

func malformed(problems []string) error {
	return fmt.Errorf("%w: %s", automaton.ErrMalformedData, strings.Join(problems, "; "))
}
