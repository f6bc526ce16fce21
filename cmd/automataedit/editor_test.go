package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/ha1tch/automata/internal/logging"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/ha1tch/automata/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 30)
	t.Cleanup(screen.Fini)

	ed := newEditor(screen, automaton.NewStore(automaton.KindDFA), logging.Nop())
	t.Cleanup(ed.sess.Close)
	return ed
}

func press(ed *Editor, keys ...tcell.Key) {
	for _, k := range keys {
		ed.handleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
	}
}

func typeText(ed *Editor, s string) {
	for _, r := range s {
		ed.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func right(ed *Editor, n int) {
	for i := 0; i < n; i++ {
		press(ed, tcell.KeyRight)
	}
}

// twoStates places q0 at (0,0) and q1 at (12,0) over the alphabet {a,b}.
func twoStates(t *testing.T, ed *Editor) {
	t.Helper()
	typeText(ed, "c")
	typeText(ed, "a, b")
	press(ed, tcell.KeyEnter)

	typeText(ed, "a")
	press(ed, tcell.KeyEnter)
	right(ed, 12)
	press(ed, tcell.KeyEnter)

	a := ed.store.Snapshot()
	require.Len(t, a.States, 2)
	require.Equal(t, []string{"a", "b"}, a.Alphabet)
}

func labels(a *automaton.Automaton) []string {
	var out []string
	for _, s := range a.States {
		out = append(out, s.Label)
	}
	return out
}

// screenRow reads back one row of the simulated screen.
func screenRow(ed *Editor, y int) string {
	w, _ := ed.screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := ed.screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestPlaceStates(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)

	a := ed.store.Snapshot()
	assert.Equal(t, []string{"q0", "q1"}, labels(a))
	assert.Equal(t, automaton.Position{X: 0, Y: 0}, a.States[0].Pos)
	assert.Equal(t, automaton.Position{X: 12, Y: 0}, a.States[1].Pos)
	assert.Equal(t, []automaton.StateID{a.States[1].ID}, ed.sess.SelectedStates())
	assert.Equal(t, "Added state: q1", ed.message)
	assert.True(t, ed.modified)
}

func TestEnterOnStateSelectsIt(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)

	// still the place-state tool; clicking an existing state selects it
	ed.sess.ClearSelection()
	press(ed, tcell.KeyRight)
	press(ed, tcell.KeyEnter)

	a := ed.store.Snapshot()
	assert.Len(t, a.States, 2)
	assert.Equal(t, []automaton.StateID{a.States[1].ID}, ed.sess.SelectedStates())
}

func TestPlaceTransition(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)

	typeText(ed, "t")
	assert.Equal(t, session.ToolPlaceTransition, ed.sess.Tool())

	press(ed, tcell.KeyTab, tcell.KeyEnter)
	src, pending := ed.sess.PendingSource()
	require.True(t, pending)
	a := ed.store.Snapshot()
	assert.Equal(t, a.States[0].ID, src)
	assert.Contains(t, ed.modeString(), "TRANSITION FROM q0")

	press(ed, tcell.KeyTab, tcell.KeyEnter)
	_, pending = ed.sess.PendingSource()
	assert.False(t, pending)

	a = ed.store.Snapshot()
	require.Len(t, a.Transitions, 1)
	tr := a.Transitions[0]
	assert.Equal(t, a.States[0].ID, tr.From)
	assert.Equal(t, a.States[1].ID, tr.To)
	assert.True(t, tr.IsEpsilon())
	assert.True(t, ed.sess.IsSelected(session.TransitionRef(tr.ID)))

	typeText(ed, "y")
	require.Equal(t, ModeInput, ed.mode)
	typeText(ed, "a,b")
	press(ed, tcell.KeyEnter)
	tr, _ = ed.store.Transition(tr.ID)
	assert.Equal(t, []string{"a", "b"}, tr.Symbols)
	assert.Equal(t, MsgSuccess, ed.messageType)
}

func TestSymbolsOutsideAlphabet(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "t")
	press(ed, tcell.KeyTab, tcell.KeyEnter, tcell.KeyTab, tcell.KeyEnter)

	typeText(ed, "y")
	typeText(ed, "z")
	press(ed, tcell.KeyEnter)

	assert.Equal(t, MsgError, ed.messageType)
	tr := ed.store.Snapshot().Transitions[0]
	assert.True(t, tr.IsEpsilon())
}

func TestCancelPendingOnCanvas(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "t")
	press(ed, tcell.KeyTab, tcell.KeyEnter)

	// empty cell below q0
	press(ed, tcell.KeyDown, tcell.KeyEnter)
	_, pending := ed.sess.PendingSource()
	assert.False(t, pending)
	assert.Empty(t, ed.store.Snapshot().Transitions)
}

func TestEditSelectedState(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "s")

	press(ed, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "i")
	a := ed.store.Snapshot()
	assert.Equal(t, a.States[0].ID, a.Start)

	press(ed, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "f")
	a = ed.store.Snapshot()
	assert.True(t, a.States[1].Accept)

	typeText(ed, "r")
	require.Equal(t, ModeInput, ed.mode)
	assert.Equal(t, "q1", ed.inputBuffer)
	press(ed, tcell.KeyBackspace2, tcell.KeyBackspace2)
	typeText(ed, "end")
	press(ed, tcell.KeyEnter)
	a = ed.store.Snapshot()
	assert.Equal(t, []string{"q0", "end"}, labels(a))
	assert.True(t, ed.sess.LabelsUnique())
}

func TestRenameToDuplicateWarns(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)

	// q1 is selected after placing it
	typeText(ed, "r")
	press(ed, tcell.KeyBackspace2)
	typeText(ed, "0")
	press(ed, tcell.KeyEnter)

	assert.False(t, ed.sess.LabelsUnique())
	assert.Equal(t, MsgError, ed.messageType)
	assert.Contains(t, ed.message, "no longer unique")
}

func TestEditWithoutSelection(t *testing.T) {
	ed := newTestEditor(t)

	typeText(ed, "f")
	assert.Equal(t, MsgError, ed.messageType)
	assert.Contains(t, ed.message, session.ErrNothingSelected.Error())

	typeText(ed, "r")
	assert.Equal(t, ModeCanvas, ed.mode)
	typeText(ed, "y")
	assert.Equal(t, ModeCanvas, ed.mode)
	typeText(ed, "d")
	assert.Equal(t, "Nothing selected", ed.message)
}

func TestDeleteCascades(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "t")
	press(ed, tcell.KeyTab, tcell.KeyEnter, tcell.KeyTab, tcell.KeyEnter)
	require.Len(t, ed.store.Snapshot().Transitions, 1)

	typeText(ed, "s")
	press(ed, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "d")

	a := ed.store.Snapshot()
	assert.Equal(t, []string{"q1"}, labels(a))
	assert.Empty(t, a.Transitions)
	assert.Empty(t, ed.sess.Selection())
}

func TestCycleTransitions(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "t")
	press(ed, tcell.KeyTab, tcell.KeyEnter, tcell.KeyTab, tcell.KeyEnter)
	press(ed, tcell.KeyTab, tcell.KeyEnter, tcell.KeyTab, tcell.KeyEnter)
	a := ed.store.Snapshot()
	require.Len(t, a.Transitions, 2)

	typeText(ed, "s")
	press(ed, tcell.KeyBacktab)
	assert.Equal(t, []session.Ref{session.TransitionRef(a.Transitions[0].ID)}, ed.sess.Selection())
	press(ed, tcell.KeyBacktab)
	assert.Equal(t, []session.Ref{session.TransitionRef(a.Transitions[1].ID)}, ed.sess.Selection())
	press(ed, tcell.KeyBacktab)
	assert.Equal(t, []session.Ref{session.TransitionRef(a.Transitions[0].ID)}, ed.sess.Selection())
}

func TestTestString(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "t")
	press(ed, tcell.KeyTab, tcell.KeyEnter, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "y")
	typeText(ed, "a")
	press(ed, tcell.KeyEnter)

	typeText(ed, "s")
	press(ed, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "i")
	press(ed, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "f")

	typeText(ed, "x")
	typeText(ed, "a")
	press(ed, tcell.KeyEnter)
	assert.Equal(t, MsgSuccess, ed.messageType)
	assert.Equal(t, `"a" accepted: q0→q1`, ed.message)

	typeText(ed, "x")
	typeText(ed, "b")
	press(ed, tcell.KeyEnter)
	assert.Equal(t, MsgError, ed.messageType)
	assert.True(t, strings.HasPrefix(ed.message, `"b" rejected`), ed.message)
}

func TestTestStringWithoutStart(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)

	typeText(ed, "x")
	press(ed, tcell.KeyEnter)
	assert.Equal(t, MsgError, ed.messageType)
	assert.Contains(t, ed.message, automaton.ErrNoStartState.Error())
}

func TestEscapeCancelsInput(t *testing.T) {
	ed := newTestEditor(t)
	typeText(ed, "c")
	typeText(ed, "z")
	press(ed, tcell.KeyEscape)

	assert.Equal(t, ModeCanvas, ed.mode)
	assert.Empty(t, ed.store.Snapshot().Alphabet)
}

func TestToggleKind(t *testing.T) {
	ed := newTestEditor(t)
	typeText(ed, "k")
	assert.Equal(t, automaton.KindNFA, ed.store.Kind())
	typeText(ed, "k")
	assert.Equal(t, automaton.KindDFA, ed.store.Kind())
}

func TestMoveSelected(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)

	press(ed, tcell.KeyDown, tcell.KeyDown, tcell.KeyDown)
	typeText(ed, "g")

	st := ed.store.Snapshot().States[1]
	assert.Equal(t, automaton.Position{X: 12, Y: 3}, st.Pos)
}

func TestQuit(t *testing.T) {
	ed := newTestEditor(t)
	assert.False(t, ed.handleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)))
	assert.True(t, ed.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))

	// q is text while prompting
	typeText(ed, "c")
	assert.False(t, ed.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.Equal(t, "q", ed.inputBuffer)
}

func TestSaveAndLoad(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	path := filepath.Join(t.TempDir(), "machine.json")

	press(ed, tcell.KeyCtrlS)
	require.Equal(t, ModeInput, ed.mode)
	assert.Equal(t, "automaton.json", ed.inputBuffer)
	ed.inputBuffer = path
	press(ed, tcell.KeyEnter)

	assert.Equal(t, path, ed.filename)
	assert.False(t, ed.modified)
	assert.Equal(t, MsgSuccess, ed.messageType)

	saved, err := automatonfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"q0", "q1"}, labels(saved))

	other := newTestEditor(t)
	require.NoError(t, other.loadFile(path))
	assert.False(t, other.modified)
	assert.Equal(t, ed.store.Snapshot().States, other.store.Snapshot().States)
	assert.Empty(t, other.sess.Selection())
}

func TestDraw(t *testing.T) {
	ed := newTestEditor(t)
	twoStates(t, ed)
	typeText(ed, "t")
	press(ed, tcell.KeyTab, tcell.KeyEnter, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "y")
	typeText(ed, "a")
	press(ed, tcell.KeyEnter)
	typeText(ed, "s")
	press(ed, tcell.KeyTab, tcell.KeyEnter)
	typeText(ed, "i")

	ed.draw()

	top := screenRow(ed, 0)
	assert.True(t, strings.HasPrefix(top, "→[q0]"), top)
	assert.Contains(t, top, "○[q1]")
	assert.Contains(t, top, "DFA  tool: select")

	var sidebar []string
	for y := 1; y < 20; y++ {
		sidebar = append(sidebar, strings.TrimSpace(screenRow(ed, y)))
	}
	text := strings.Join(sidebar, "\n")
	assert.Contains(t, text, "→ q0")
	assert.Contains(t, text, "Alphabet: a b")
	assert.Contains(t, text, "q0 --a--> q1")
	assert.Contains(t, text, "Problems:")

	_, h := ed.screen.Size()
	assert.Contains(t, screenRow(ed, h-1), "[New] *")
	assert.Contains(t, screenRow(ed, h-2), "Tab/Enter:Select")
}

func TestDrawInputBox(t *testing.T) {
	ed := newTestEditor(t)
	typeText(ed, "c")
	typeText(ed, "a,b")
	ed.draw()

	_, h := ed.screen.Size()
	row := screenRow(ed, (h-3)/2+1)
	assert.Contains(t, row, "Alphabet (comma separated): a,b_")
	assert.Contains(t, screenRow(ed, h-1), "INPUT")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "bc"}, splitList(" a, ,bc,"))
	assert.Nil(t, splitList(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "→[", truncate("→[q0]", 2))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestStateText(t *testing.T) {
	a := automaton.New(automaton.KindDFA)
	a.States = []automaton.State{{ID: "s", Label: "s"}, {ID: "f", Label: "f", Accept: true}}
	a.Start = "s"
	assert.Equal(t, "→[s]", stateText(a, a.States[0]))
	assert.Equal(t, "○[f]*", stateText(a, a.States[1]))

	// the later state is drawn on top
	id, ok := stateAt(a, 2, 0)
	assert.True(t, ok)
	assert.Equal(t, automaton.StateID("f"), id)

	_, ok = stateAt(a, 2, 1)
	assert.False(t, ok)
}
