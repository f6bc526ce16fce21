package automaton

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Op names a store mutation.
type Op string

const (
	OpAddState         Op = "add_state"
	OpRemoveState      Op = "remove_state"
	OpRenameState      Op = "rename_state"
	OpSetStart         Op = "set_start"
	OpSetAccept        Op = "set_accept"
	OpMoveState        Op = "move_state"
	OpAddTransition    Op = "add_transition"
	OpSetSymbols       Op = "set_symbols"
	OpRemoveTransition Op = "remove_transition"
	OpSetAlphabet      Op = "set_alphabet"
	OpSetKind          Op = "set_kind"
	OpReplace          Op = "replace"
)

// Change describes a mutation that has been fully applied.
type Change struct {
	Op  Op
	IDs []string // ids of the entities touched, removed ones included
}

// Store holds the single live automaton being edited. All mutations are
// synchronous and atomic: either fully applied or rejected unchanged.
// A Store is not safe for concurrent use.
type Store struct {
	a         *Automaton
	log       zerolog.Logger
	newID     func() string
	observers map[int]func(Change)
	nextObs   int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l.With().Str("component", "store").Logger()
	}
}

// WithName sets the automaton name.
func WithName(name string) Option {
	return func(s *Store) {
		s.a.Name = name
	}
}

// WithIDGenerator replaces the id source. Ids must be unique.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates a store holding an empty automaton of the given kind.
func NewStore(k Kind, opts ...Option) *Store {
	s := &Store{
		a:         New(k),
		log:       zerolog.Nop(),
		newID:     uuid.NewString,
		observers: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every applied mutation. The returned
// function removes the registration.
func (s *Store) OnChange(fn func(Change)) (unsubscribe func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Store) emit(op Op, ids ...string) {
	s.log.Debug().Str("op", string(op)).Strs("ids", ids).Msg("automaton changed")
	c := Change{Op: op, IDs: ids}
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			fn(c)
		}
	}
}

// Snapshot returns a deep copy of the current automaton.
func (s *Store) Snapshot() *Automaton {
	return s.a.Copy()
}

// Kind returns the automaton kind.
func (s *Store) Kind() Kind {
	return s.a.Kind
}

// State returns a copy of a state.
func (s *Store) State(id StateID) (State, bool) {
	return s.a.State(id)
}

// Transition returns a copy of a transition.
func (s *Store) Transition(id TransitionID) (Transition, bool) {
	t, ok := s.a.Transition(id)
	t.Symbols = append([]string(nil), t.Symbols...)
	return t, ok
}

// HasState reports whether the state exists.
func (s *Store) HasState(id StateID) bool {
	return s.a.StateIndex(id) >= 0
}

// HasTransition reports whether the transition exists.
func (s *Store) HasTransition(id TransitionID) bool {
	return s.a.TransitionIndex(id) >= 0
}

// Replace installs a new automaton wholesale, as on import.
func (s *Store) Replace(a *Automaton) {
	s.a = a.Copy()
	s.emit(OpReplace)
}

// AddState creates a state with a fresh id. Labels are not required to be
// unique; duplicates are reported by Validate.
func (s *Store) AddState(label string) StateID {
	id := StateID(s.newID())
	s.a.States = append(s.a.States, State{ID: id, Label: label})
	s.emit(OpAddState, string(id))
	return id
}

// RemoveState removes a state and every transition incident to it.
func (s *Store) RemoveState(id StateID) error {
	idx := s.a.StateIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: state %q", ErrInvalidReference, id)
	}

	touched := []string{string(id)}
	kept := make([]Transition, 0, len(s.a.Transitions))
	for _, t := range s.a.Transitions {
		if t.From == id || t.To == id {
			touched = append(touched, string(t.ID))
			continue
		}
		kept = append(kept, t)
	}
	s.a.Transitions = kept
	s.a.States = append(s.a.States[:idx], s.a.States[idx+1:]...)

	if s.a.Start == id {
		s.a.Start = ""
	}
	s.emit(OpRemoveState, touched...)
	return nil
}

// RenameState changes a state's label. It never deduplicates.
func (s *Store) RenameState(id StateID, label string) error {
	idx := s.a.StateIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: state %q", ErrInvalidReference, id)
	}
	s.a.States[idx].Label = label
	s.emit(OpRenameState, string(id))
	return nil
}

// SetStart makes id the sole start state.
func (s *Store) SetStart(id StateID) error {
	idx := s.a.StateIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: state %q", ErrInvalidReference, id)
	}
	for i := range s.a.States {
		s.a.States[i].Start = i == idx
	}
	s.a.Start = id
	s.emit(OpSetStart, string(id))
	return nil
}

// ClearStart unsets the start state.
func (s *Store) ClearStart() {
	for i := range s.a.States {
		s.a.States[i].Start = false
	}
	s.a.Start = ""
	s.emit(OpSetStart)
}

// ToggleAccept flips a state's accept flag.
func (s *Store) ToggleAccept(id StateID) error {
	idx := s.a.StateIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: state %q", ErrInvalidReference, id)
	}
	return s.SetAccept(id, !s.a.States[idx].Accept)
}

// SetAccept sets a state's accept flag.
func (s *Store) SetAccept(id StateID, accept bool) error {
	idx := s.a.StateIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: state %q", ErrInvalidReference, id)
	}
	s.a.States[idx].Accept = accept
	s.emit(OpSetAccept, string(id))
	return nil
}

// MoveState records where a front end placed a state.
func (s *Store) MoveState(id StateID, pos Position) error {
	idx := s.a.StateIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: state %q", ErrInvalidReference, id)
	}
	s.a.States[idx].Pos = pos
	s.emit(OpMoveState, string(id))
	return nil
}

// AddTransition adds a transition between two existing states. Every symbol
// must be in the current alphabet; an empty list adds an epsilon transition.
func (s *Store) AddTransition(from, to StateID, symbols []string) (TransitionID, error) {
	if s.a.StateIndex(from) < 0 {
		return "", fmt.Errorf("%w: state %q", ErrInvalidReference, from)
	}
	if s.a.StateIndex(to) < 0 {
		return "", fmt.Errorf("%w: state %q", ErrInvalidReference, to)
	}
	syms, err := s.checkSymbols(symbols)
	if err != nil {
		return "", err
	}

	id := TransitionID(s.newID())
	s.a.Transitions = append(s.a.Transitions, Transition{
		ID:      id,
		From:    from,
		To:      to,
		Symbols: syms,
	})
	s.emit(OpAddTransition, string(id))
	return id, nil
}

// SetTransitionSymbols replaces the symbols a transition fires on.
func (s *Store) SetTransitionSymbols(id TransitionID, symbols []string) error {
	idx := s.a.TransitionIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: transition %q", ErrInvalidReference, id)
	}
	syms, err := s.checkSymbols(symbols)
	if err != nil {
		return err
	}
	s.a.Transitions[idx].Symbols = syms
	s.emit(OpSetSymbols, string(id))
	return nil
}

// checkSymbols validates symbols against the alphabet and drops repeats.
func (s *Store) checkSymbols(symbols []string) ([]string, error) {
	syms := make([]string, 0, len(symbols))
	seen := make(map[string]bool)
	for _, sym := range symbols {
		if !s.a.InAlphabet(sym) {
			return nil, fmt.Errorf("%w: %q is not in the alphabet", ErrInvalidSymbol, sym)
		}
		if !seen[sym] {
			seen[sym] = true
			syms = append(syms, sym)
		}
	}
	return syms, nil
}

// RemoveTransition removes a transition.
func (s *Store) RemoveTransition(id TransitionID) error {
	idx := s.a.TransitionIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: transition %q", ErrInvalidReference, id)
	}
	s.a.Transitions = append(s.a.Transitions[:idx], s.a.Transitions[idx+1:]...)
	s.emit(OpRemoveTransition, string(id))
	return nil
}

// SetAlphabet replaces the alphabet. Transitions using tokens that are no
// longer present are kept and reported by Validate. Repeated tokens are kept
// as given and reported the same way.
func (s *Store) SetAlphabet(symbols []string) error {
	for _, sym := range symbols {
		if sym == "" {
			return fmt.Errorf("%w: empty token", ErrInvalidSymbol)
		}
	}
	s.a.Alphabet = append(make([]string, 0, len(symbols)), symbols...)
	s.emit(OpSetAlphabet)
	return nil
}

// SetKind switches between DFA and NFA semantics.
func (s *Store) SetKind(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, k)
	}
	s.a.Kind = k
	s.emit(OpSetKind)
	return nil
}
