// Package session mediates user gestures into automaton store mutations and
// keeps the selection consistent with the live automaton.
package session

import (
	"errors"
	"fmt"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/rs/zerolog"
)

// ErrNothingSelected is returned by edits that need a selected state.
var ErrNothingSelected = errors.New("no state selected")

// Tool is the active editing tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPlaceState
	ToolPlaceTransition
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPlaceState:
		return "place state"
	case ToolPlaceTransition:
		return "place transition"
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// RefKind says which kind of entity a Ref points at.
type RefKind int

const (
	RefState RefKind = iota
	RefTransition
)

// Ref identifies a state or transition by id.
type Ref struct {
	Kind RefKind
	ID   string
}

// StateRef refers to a state.
func StateRef(id automaton.StateID) Ref { return Ref{Kind: RefState, ID: string(id)} }

// TransitionRef refers to a transition.
func TransitionRef(id automaton.TransitionID) Ref {
	return Ref{Kind: RefTransition, ID: string(id)}
}

func (r Ref) String() string {
	if r.Kind == RefTransition {
		return "transition " + r.ID
	}
	return "state " + r.ID
}

// Session tracks the selection and the active tool for one store.
// Like the store it wraps, it is not safe for concurrent use.
type Session struct {
	store   *automaton.Store
	log     zerolog.Logger
	metrics *Metrics

	tool      Tool
	pending   automaton.StateID // source of a transition being placed
	selection []Ref

	labelsUnique bool
	unsubscribe  func()
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l.With().Str("component", "session").Logger()
	}
}

// WithMetrics records session activity on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// New creates a session over store and subscribes to its changes.
func New(store *automaton.Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		log:   zerolog.Nop(),
		tool:  ToolSelect,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = store.OnChange(s.onChange)
	s.labelsUnique = automaton.LabelsUnique(store.Snapshot())
	return s
}

// Close detaches the session from its store.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Store returns the underlying store.
func (s *Session) Store() *automaton.Store {
	return s.store
}

func (s *Session) onChange(c automaton.Change) {
	s.metrics.recordEdit(c.Op)

	kept := s.selection[:0]
	for _, r := range s.selection {
		if s.exists(r) {
			kept = append(kept, r)
		} else {
			s.log.Debug().Stringer("ref", r).Msg("dropped from selection")
		}
	}
	s.selection = kept

	if s.pending != "" && !s.store.HasState(s.pending) {
		s.pending = ""
	}
	s.refresh()
}

// refresh recomputes the derived flags.
func (s *Session) refresh() {
	s.labelsUnique = automaton.LabelsUnique(s.store.Snapshot())
}

func (s *Session) exists(r Ref) bool {
	switch r.Kind {
	case RefState:
		return s.store.HasState(automaton.StateID(r.ID))
	case RefTransition:
		return s.store.HasTransition(automaton.TransitionID(r.ID))
	}
	return false
}

// Tool returns the active tool.
func (s *Session) Tool() Tool {
	return s.tool
}

// SetTool switches tools and abandons any half-placed transition.
func (s *Session) SetTool(t Tool) {
	s.tool = t
	s.pending = ""
	s.log.Debug().Stringer("tool", t).Msg("tool selected")
}

// PendingSource returns the source state of a transition being placed.
func (s *Session) PendingSource() (automaton.StateID, bool) {
	return s.pending, s.pending != ""
}

// ClickCanvas handles a click on empty canvas at pos.
func (s *Session) ClickCanvas(pos automaton.Position) {
	switch s.tool {
	case ToolSelect:
		s.ClearSelection()
	case ToolPlaceState:
		id := s.store.AddState(s.nextLabel())
		_ = s.store.MoveState(id, pos)
		s.setSelection([]Ref{StateRef(id)})
	case ToolPlaceTransition:
		s.pending = ""
	}
}

// ClickState handles a click on a state.
func (s *Session) ClickState(id automaton.StateID) error {
	if !s.store.HasState(id) {
		return fmt.Errorf("%w: state %q", automaton.ErrInvalidReference, id)
	}

	switch s.tool {
	case ToolSelect, ToolPlaceState:
		s.setSelection([]Ref{StateRef(id)})
	case ToolPlaceTransition:
		if s.pending == "" {
			s.pending = id
			s.setSelection([]Ref{StateRef(id)})
			return nil
		}
		from := s.pending
		s.pending = ""
		tid, err := s.store.AddTransition(from, id, nil)
		if err != nil {
			return err
		}
		s.setSelection([]Ref{TransitionRef(tid)})
	}
	return nil
}

// ClickTransition handles a click on a transition.
func (s *Session) ClickTransition(id automaton.TransitionID) error {
	if !s.store.HasTransition(id) {
		return fmt.Errorf("%w: transition %q", automaton.ErrInvalidReference, id)
	}

	switch s.tool {
	case ToolSelect, ToolPlaceState:
		s.setSelection([]Ref{TransitionRef(id)})
	case ToolPlaceTransition:
		s.pending = ""
		s.setSelection([]Ref{TransitionRef(id)})
	}
	return nil
}

// nextLabel returns "qN" for the smallest N no state is labelled with.
func (s *Session) nextLabel() string {
	used := make(map[string]bool)
	for _, st := range s.store.Snapshot().States {
		used[st.Label] = true
	}
	for n := 0; ; n++ {
		label := fmt.Sprintf("q%d", n)
		if !used[label] {
			return label
		}
	}
}

// Selection returns the selected entities in selection order.
func (s *Session) Selection() []Ref {
	return append([]Ref(nil), s.selection...)
}

// SelectedStates returns the selected state ids in selection order.
func (s *Session) SelectedStates() []automaton.StateID {
	var ids []automaton.StateID
	for _, r := range s.selection {
		if r.Kind == RefState {
			ids = append(ids, automaton.StateID(r.ID))
		}
	}
	return ids
}

// IsSelected reports whether r is selected.
func (s *Session) IsSelected(r Ref) bool {
	for _, sel := range s.selection {
		if sel == r {
			return true
		}
	}
	return false
}

// Select replaces the selection. Nothing changes if any ref is unknown.
func (s *Session) Select(refs ...Ref) error {
	if err := s.check(refs); err != nil {
		return err
	}
	s.setSelection(refs)
	return nil
}

// AddToSelection appends refs that are not already selected.
func (s *Session) AddToSelection(refs ...Ref) error {
	if err := s.check(refs); err != nil {
		return err
	}
	s.setSelection(append(s.Selection(), refs...))
	return nil
}

// Deselect removes refs from the selection. Refs that are not selected are
// ignored.
func (s *Session) Deselect(refs ...Ref) {
	drop := make(map[Ref]bool, len(refs))
	for _, r := range refs {
		drop[r] = true
	}
	var kept []Ref
	for _, r := range s.selection {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	s.setSelection(kept)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.setSelection(nil)
}

func (s *Session) check(refs []Ref) error {
	for _, r := range refs {
		if !s.exists(r) {
			return fmt.Errorf("%w: %s", automaton.ErrInvalidReference, r)
		}
	}
	return nil
}

// setSelection installs refs, dropping repeats.
func (s *Session) setSelection(refs []Ref) {
	seen := make(map[Ref]bool, len(refs))
	sel := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if !seen[r] {
			seen[r] = true
			sel = append(sel, r)
		}
	}
	s.selection = sel
	s.refresh()
}

// DeleteSelection removes every selected entity. Removing a state also
// removes its transitions.
func (s *Session) DeleteSelection() error {
	for _, r := range s.Selection() {
		if !s.exists(r) {
			// already gone with a removed state
			continue
		}
		var err error
		switch r.Kind {
		case RefState:
			err = s.store.RemoveState(automaton.StateID(r.ID))
		case RefTransition:
			err = s.store.RemoveTransition(automaton.TransitionID(r.ID))
		}
		if err != nil {
			return err
		}
	}
	s.ClearSelection()
	return nil
}

// RenameSelected sets the label of every selected state.
func (s *Session) RenameSelected(label string) error {
	ids := s.SelectedStates()
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	for _, id := range ids {
		if err := s.store.RenameState(id, label); err != nil {
			return err
		}
	}
	return nil
}

// ToggleAcceptSelected flips the accept flag of every selected state.
func (s *Session) ToggleAcceptSelected() error {
	ids := s.SelectedStates()
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	for _, id := range ids {
		if err := s.store.ToggleAccept(id); err != nil {
			return err
		}
	}
	return nil
}

// SetStartSelected makes the first selected state the start state.
func (s *Session) SetStartSelected() error {
	ids := s.SelectedStates()
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	return s.store.SetStart(ids[0])
}

// SetSymbols replaces the symbols a transition fires on.
func (s *Session) SetSymbols(id automaton.TransitionID, symbols []string) error {
	return s.store.SetTransitionSymbols(id, symbols)
}

// LabelsUnique reports whether every state label is distinct.
func (s *Session) LabelsUnique() bool {
	return s.labelsUnique
}

// Diagnostics validates the current automaton.
func (s *Session) Diagnostics() []automaton.Diagnostic {
	diags := automaton.Validate(s.store.Snapshot())
	s.metrics.recordDiagnostics(diags)
	return diags
}

// Test runs input against the current automaton.
func (s *Session) Test(input string) (automaton.Result, error) {
	res, err := automaton.RunString(s.store.Snapshot(), input)
	if err != nil {
		return res, err
	}
	s.metrics.recordSimulation(res)
	s.log.Info().
		Str("input", input).
		Bool("accepted", res.Accepted).
		Stringer("reason", res.Reason).
		Msg("test string")
	return res, nil
}

// Export serializes the current automaton as indented JSON.
func (s *Session) Export() ([]byte, error) {
	return automatonfile.ToJSON(s.store.Snapshot(), true)
}

// Import replaces the automaton with one parsed from JSON and clears the
// selection. A malformed document leaves everything unchanged.
func (s *Session) Import(data []byte) error {
	a, err := automatonfile.ParseJSON(data)
	if err != nil {
		return err
	}
	s.Load(a)
	return nil
}

// Load replaces the automaton wholesale and clears the selection.
func (s *Session) Load(a *automaton.Automaton) {
	s.pending = ""
	s.selection = nil
	s.store.Replace(a)
	s.log.Info().Int("states", len(a.States)).Int("transitions", len(a.Transitions)).Msg("automaton loaded")
}
