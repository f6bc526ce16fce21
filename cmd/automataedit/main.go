// Command automataedit is a TUI editor for finite automata.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/ha1tch/automata/internal/config"
	"github.com/ha1tch/automata/internal/logging"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/ha1tch/automata/pkg/session"
	"github.com/rs/zerolog"
)

// Editor holds all editor state
type Editor struct {
	screen   tcell.Screen
	store    *automaton.Store
	sess     *session.Session
	log      zerolog.Logger
	filename string
	modified bool
	mode     Mode

	message     string
	messageType MessageType

	// Canvas state
	cursorX     int
	cursorY     int
	cursorState int // index of the state Tab last moved to, -1 = none
	cursorTrans int // index of the transition Backtab last selected, -1 = none

	// Input state
	inputBuffer string
	inputPrompt string
	inputAction func(string)

	sidebarWidth int
}

// Mode represents editor mode
type Mode int

const (
	ModeCanvas Mode = iota
	ModeInput
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

func newEditor(screen tcell.Screen, store *automaton.Store, log zerolog.Logger) *Editor {
	ed := &Editor{
		screen:       screen,
		store:        store,
		log:          log,
		cursorState:  -1,
		cursorTrans:  -1,
		sidebarWidth: 40,
	}
	ed.sess = session.New(store, session.WithLogger(log))
	store.OnChange(func(automaton.Change) { ed.modified = true })
	return ed
}

func main() {
	configPath := flag.String("config", "", "config file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logging.Nop()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if log, err = logging.New(cfg.LogLevel, logging.FormatJSON, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	kind, err := automaton.ParseKind(cfg.Kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store := automaton.NewStore(kind, automaton.WithLogger(log))

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}

	ed := newEditor(screen, store, log)
	if flag.NArg() > 0 {
		ed.filename = flag.Arg(0)
		if err := ed.loadFile(ed.filename); err != nil && !errors.Is(err, os.ErrNotExist) {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", ed.filename, err)
			os.Exit(1)
		}
	}

	ed.run()
	ed.sess.Close()
	screen.Fini()
}

func (ed *Editor) run() {
	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case nil:
			return
		}
	}
}

// handleKey processes a key press. It returns true when the editor should
// exit.
func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlS {
		ed.save()
		return false
	}

	switch ed.mode {
	case ModeCanvas:
		return ed.handleCanvasKey(ev)
	case ModeInput:
		return ed.handleInputKey(ev)
	}
	return false
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if ed.cursorY > 0 {
			ed.cursorY--
		}
	case tcell.KeyDown:
		ed.cursorY++
	case tcell.KeyLeft:
		if ed.cursorX > 0 {
			ed.cursorX--
		}
	case tcell.KeyRight:
		ed.cursorX++
	case tcell.KeyEnter:
		ed.applyTool()
	case tcell.KeyTab:
		ed.cycleStates()
	case tcell.KeyBacktab:
		ed.cycleTransitions()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
	case tcell.KeyEscape:
		ed.sess.ClearSelection()
		ed.sess.SetTool(session.ToolSelect)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'a', 'A':
			ed.setTool(session.ToolPlaceState)
		case 't', 'T':
			ed.setTool(session.ToolPlaceTransition)
		case 's', 'S':
			ed.setTool(session.ToolSelect)
		case 'd', 'D':
			ed.deleteSelected()
		case 'r', 'R':
			ed.renameSelected()
		case 'f', 'F':
			ed.toggleAccepting()
		case 'i', 'I':
			ed.setStartState()
		case 'y', 'Y':
			ed.editSymbols()
		case 'c', 'C':
			ed.editAlphabet()
		case 'x', 'X':
			ed.testString()
		case 'k', 'K':
			ed.toggleKind()
		case 'g', 'G':
			ed.moveSelected()
		case 'w', 'W':
			ed.logExport()
		}
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		if ed.inputAction != nil {
			ed.inputAction(ed.inputBuffer)
		}
		ed.inputBuffer = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) > 0 {
			_, size := utf8.DecodeLastRuneInString(ed.inputBuffer)
			ed.inputBuffer = ed.inputBuffer[:len(ed.inputBuffer)-size]
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
	return false
}

// prompt switches to input mode; action runs with the text on Enter.
func (ed *Editor) prompt(label, initial string, action func(string)) {
	ed.inputPrompt = label
	ed.inputBuffer = initial
	ed.inputAction = action
	ed.mode = ModeInput
}

func (ed *Editor) setTool(t session.Tool) {
	ed.sess.SetTool(t)
	ed.showMessage("Tool: "+t.String(), MsgInfo)
}

// applyTool clicks whatever is under the cursor with the current tool.
func (ed *Editor) applyTool() {
	a := ed.store.Snapshot()
	if id, ok := stateAt(a, ed.cursorX, ed.cursorY); ok {
		if err := ed.sess.ClickState(id); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		if src, pending := ed.sess.PendingSource(); pending {
			ed.showMessage("From "+a.Label(src)+": choose target and press Enter", MsgInfo)
		} else if ed.sess.Tool() == session.ToolPlaceTransition {
			ed.showMessage("Added transition, press y to set its symbols", MsgSuccess)
		}
		return
	}

	before := len(a.States)
	ed.sess.ClickCanvas(automaton.Position{X: ed.cursorX, Y: ed.cursorY})
	if after := ed.store.Snapshot(); len(after.States) > before {
		ed.showMessage("Added state: "+after.States[len(after.States)-1].Label, MsgSuccess)
	}
}

// stateAt finds the state whose box covers the cell at x, y.
func stateAt(a *automaton.Automaton, x, y int) (automaton.StateID, bool) {
	for i := len(a.States) - 1; i >= 0; i-- {
		s := a.States[i]
		if s.Pos.Y == y && x >= s.Pos.X && x < s.Pos.X+utf8.RuneCountInString(stateText(a, s)) {
			return s.ID, true
		}
	}
	return "", false
}

func (ed *Editor) cycleStates() {
	a := ed.store.Snapshot()
	if len(a.States) == 0 {
		return
	}
	ed.cursorState = (ed.cursorState + 1) % len(a.States)
	s := a.States[ed.cursorState]
	ed.cursorX, ed.cursorY = s.Pos.X, s.Pos.Y
}

func (ed *Editor) cycleTransitions() {
	a := ed.store.Snapshot()
	if len(a.Transitions) == 0 {
		return
	}
	ed.cursorTrans = (ed.cursorTrans + 1) % len(a.Transitions)
	t := a.Transitions[ed.cursorTrans]
	if err := ed.sess.ClickTransition(t.ID); err != nil {
		ed.showMessage(err.Error(), MsgError)
	}
}

func (ed *Editor) deleteSelected() {
	n := len(ed.sess.Selection())
	if n == 0 {
		ed.showMessage("Nothing selected", MsgInfo)
		return
	}
	if err := ed.sess.DeleteSelection(); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage(fmt.Sprintf("Deleted %d item(s)", n), MsgSuccess)
}

func (ed *Editor) renameSelected() {
	ids := ed.sess.SelectedStates()
	if len(ids) == 0 {
		ed.showMessage("Select a state first (Tab, Enter)", MsgInfo)
		return
	}
	st, _ := ed.store.State(ids[0])
	ed.prompt("Label: ", st.Label, func(label string) {
		if err := ed.sess.RenameSelected(label); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		if !ed.sess.LabelsUnique() {
			ed.showMessage("Renamed; labels are no longer unique", MsgError)
			return
		}
		ed.showMessage("Renamed to "+label, MsgSuccess)
	})
}

func (ed *Editor) toggleAccepting() {
	if err := ed.sess.ToggleAcceptSelected(); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Toggled accept", MsgSuccess)
}

func (ed *Editor) setStartState() {
	if err := ed.sess.SetStartSelected(); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	a := ed.store.Snapshot()
	ed.showMessage("Start state: "+a.Label(a.Start), MsgSuccess)
}

// selectedTransition returns the first selected transition.
func (ed *Editor) selectedTransition() (automaton.Transition, bool) {
	for _, r := range ed.sess.Selection() {
		if r.Kind == session.RefTransition {
			return ed.store.Transition(automaton.TransitionID(r.ID))
		}
	}
	return automaton.Transition{}, false
}

func (ed *Editor) editSymbols() {
	t, ok := ed.selectedTransition()
	if !ok {
		ed.showMessage("Select a transition first (Shift+Tab)", MsgInfo)
		return
	}
	ed.prompt("Symbols (comma separated, empty for ε): ", strings.Join(t.Symbols, ","), func(text string) {
		if err := ed.sess.SetSymbols(t.ID, splitList(text)); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		ed.showMessage("Symbols updated", MsgSuccess)
	})
}

func (ed *Editor) editAlphabet() {
	a := ed.store.Snapshot()
	ed.prompt("Alphabet (comma separated): ", strings.Join(a.Alphabet, ","), func(text string) {
		if err := ed.store.SetAlphabet(splitList(text)); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		ed.showMessage("Alphabet updated", MsgSuccess)
	})
}

// splitList splits comma separated tokens, dropping blanks.
func splitList(text string) []string {
	var out []string
	for _, tok := range strings.Split(text, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func (ed *Editor) testString() {
	ed.prompt("Test string: ", "", func(input string) {
		res, err := ed.sess.Test(input)
		if err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		a := ed.store.Snapshot()
		labels := make([]string, len(res.Trace))
		for i, id := range res.Trace {
			labels[i] = a.Label(id)
		}
		path := strings.Join(labels, "→")
		if res.Accepted {
			ed.showMessage(fmt.Sprintf("%q accepted: %s", input, path), MsgSuccess)
		} else {
			ed.showMessage(fmt.Sprintf("%q rejected (%s): %s", input, res.Reason, path), MsgError)
		}
	})
}

func (ed *Editor) toggleKind() {
	kind := automaton.KindNFA
	if ed.store.Kind() == automaton.KindNFA {
		kind = automaton.KindDFA
	}
	if err := ed.store.SetKind(kind); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Type: "+string(kind), MsgInfo)
}

// moveSelected moves the selected states to the cursor.
func (ed *Editor) moveSelected() {
	ids := ed.sess.SelectedStates()
	if len(ids) == 0 {
		ed.showMessage("Select a state first (Tab, Enter)", MsgInfo)
		return
	}
	for i, id := range ids {
		if err := ed.store.MoveState(id, automaton.Position{X: ed.cursorX, Y: ed.cursorY + i}); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
	}
}

func (ed *Editor) logExport() {
	data, err := ed.sess.Export()
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.log.Info().RawJSON("automaton", data).Msg("export")
	ed.showMessage(fmt.Sprintf("Exported %d bytes to the log", len(data)), MsgInfo)
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.prompt("Save as: ", "automaton.json", func(path string) {
			if path == "" {
				return
			}
			ed.filename = path
			ed.save()
		})
		return
	}
	if err := automatonfile.Save(ed.filename, ed.store.Snapshot()); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.modified = false
	ed.log.Info().Str("file", ed.filename).Msg("saved")
	ed.showMessage("Saved "+ed.filename, MsgSuccess)
}

func (ed *Editor) loadFile(path string) error {
	a, err := automatonfile.Load(path)
	if err != nil {
		return err
	}
	ed.sess.Load(a)
	ed.modified = false
	return nil
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
}
