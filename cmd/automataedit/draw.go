package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/session"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleState      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStateSel   = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleStateInit  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStateAcc   = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	stylePending    = tcell.StyleDefault.Background(tcell.ColorPurple).Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleSidebarSel = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleDiagError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleDiagWarn   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCursor     = tcell.StyleDefault.Background(tcell.ColorDarkGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()
	a := ed.store.Snapshot()

	ed.drawCanvas(a, w, h)
	ed.drawSidebar(a, w, h)
	if ed.mode == ModeInput {
		ed.drawInputBox(w, h)
	}
	ed.drawStatusBar(w, h)
}

// stateText is how a state appears on the canvas.
func stateText(a *automaton.Automaton, s automaton.State) string {
	prefix := "○"
	if a.Start == s.ID {
		prefix = "→"
	}
	suffix := ""
	if s.Accept {
		suffix = "*"
	}
	return prefix + "[" + s.Label + "]" + suffix
}

func (ed *Editor) drawCanvas(a *automaton.Automaton, w, h int) {
	canvasW := w - ed.sidebarWidth
	canvasH := h - 2 // Leave room for status bar

	for y := 0; y < canvasH; y++ {
		ed.screen.SetContent(canvasW, y, '│', nil, styleBorder)
	}

	pending, _ := ed.sess.PendingSource()
	for _, s := range a.States {
		if s.Pos.X < 0 || s.Pos.X >= canvasW || s.Pos.Y < 0 || s.Pos.Y >= canvasH {
			continue
		}

		style := styleState
		if a.Start == s.ID {
			style = styleStateInit
		}
		if s.Accept {
			style = styleStateAcc
		}
		if ed.sess.IsSelected(session.StateRef(s.ID)) {
			style = styleStateSel
		}
		if s.ID == pending {
			style = stylePending
		}
		text := truncate(stateText(a, s), canvasW-s.Pos.X)
		ed.drawString(s.Pos.X, s.Pos.Y, text, style)
	}

	if ed.cursorX < canvasW && ed.cursorY < canvasH {
		r, _, _, _ := ed.screen.GetContent(ed.cursorX, ed.cursorY)
		if r == ' ' || r == 0 {
			r = '+'
		}
		ed.screen.SetContent(ed.cursorX, ed.cursorY, r, nil, styleCursor)
	}
}

func (ed *Editor) drawSidebar(a *automaton.Automaton, w, h int) {
	x := w - ed.sidebarWidth + 2
	y := 0
	width := ed.sidebarWidth - 4
	line := func(s string, style tcell.Style) bool {
		if y >= h-3 {
			return false
		}
		ed.drawString(x, y, truncate(s, width), style)
		y++
		return true
	}

	title := strings.ToUpper(string(a.Kind)) + "  tool: " + ed.sess.Tool().String()
	line(title, styleSidebarH)
	y++

	line("States:", styleSidebarH)
	for _, s := range a.States {
		prefix := "  "
		if a.Start == s.ID {
			prefix = "→ "
		}
		suffix := ""
		if s.Accept {
			suffix = " *"
		}
		style := styleSidebar
		if ed.sess.IsSelected(session.StateRef(s.ID)) {
			style = styleSidebarSel
		}
		if !line(prefix+s.Label+suffix, style) {
			return
		}
	}
	if !ed.sess.LabelsUnique() {
		line("  Labels not unique", styleDiagWarn)
	}
	y++

	line("Alphabet: "+strings.Join(a.Alphabet, " "), styleSidebarH)
	y++

	line("Transitions:", styleSidebarH)
	for _, t := range a.Transitions {
		style := styleSidebar
		if ed.sess.IsSelected(session.TransitionRef(t.ID)) {
			style = styleSidebarSel
		}
		if !line("  "+transitionText(a, t), style) {
			return
		}
	}
	y++

	diags := ed.sess.Diagnostics()
	if len(diags) == 0 {
		return
	}
	line("Problems:", styleSidebarH)
	for _, d := range diags {
		style := styleDiagWarn
		if d.Severity == automaton.SeverityError {
			style = styleDiagError
		}
		if !line("  "+d.Message, style) {
			return
		}
	}
}

// transitionText renders a transition as "from --a,b--> to".
func transitionText(a *automaton.Automaton, t automaton.Transition) string {
	sym := "ε"
	if !t.IsEpsilon() {
		sym = strings.Join(t.Symbols, ",")
	}
	return fmt.Sprintf("%s --%s--> %s", a.Label(t.From), sym, a.Label(t.To))
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if ed.filename != "" {
		if len(ed.filename) > 30 {
			fileInfo = filepath.Base(ed.filename)
		} else {
			fileInfo = ed.filename
		}
	}
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	modeStr := ed.modeString()
	ed.drawString(w/2-utf8.RuneCountInString(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		}
		ed.drawString(w-utf8.RuneCountInString(ed.message)-2, y, ed.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 60
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+utf8.RuneCountInString(ed.inputPrompt), boxY+1, ed.inputBuffer+"_", styleInput)
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// drawString draws s one rune per cell.
func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	col := x
	for _, r := range s {
		ed.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func (ed *Editor) modeString() string {
	if ed.mode == ModeInput {
		return "INPUT"
	}
	if src, ok := ed.sess.PendingSource(); ok {
		return "TRANSITION FROM " + ed.store.Snapshot().Label(src)
	}
	return ""
}

func (ed *Editor) helpString() string {
	if ed.mode == ModeInput {
		return "Type text  Enter:Confirm  Esc:Cancel"
	}
	switch ed.sess.Tool() {
	case session.ToolPlaceState:
		return "Arrows:Move  Enter:Place state  S:Select tool  T:Transition tool  Ctrl+S:Save  Q:Quit"
	case session.ToolPlaceTransition:
		return "Arrows:Move  Tab:Next state  Enter:Pick endpoint  Esc:Cancel  Y:Symbols  Q:Quit"
	}
	return "Arrows:Move  Tab/Enter:Select  A:Add  T:Transition  R:Rename  F:Accept  I:Start  Y:Symbols  C:Alphabet  X:Test  K:Kind  G:Move  D:Delete  Q:Quit"
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
