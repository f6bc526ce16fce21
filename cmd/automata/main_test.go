package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ha1tch/automata/internal/logging"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abMachine = `{
  "type": "dfa",
  "name": "ends-in-b",
  "alphabet": ["a", "b"],
  "start": "A",
  "states": [{"id": "A", "label": "A"}, {"id": "B", "label": "B", "accept": true}],
  "transitions": [
    {"id": "t1", "from": "A", "to": "B", "symbols": ["a"]},
    {"id": "t2", "from": "A", "to": "A", "symbols": ["b"]},
    {"id": "t3", "from": "B", "to": "B", "symbols": ["b"]},
    {"id": "t4", "from": "B", "to": "A", "symbols": ["a"]}
  ]
}`

// endsInAB accepts strings over {a,b} ending in "ab".
const endsInAB = `{
  "type": "nfa",
  "alphabet": ["a", "b"],
  "start": "0",
  "states": [{"id": "0", "label": "p"}, {"id": "1", "label": "q"}, {"id": "2", "label": "r", "accept": true}],
  "transitions": [
    {"id": "t1", "from": "0", "to": "0", "symbols": ["a", "b"]},
    {"id": "t2", "from": "0", "to": "1", "symbols": ["a"]},
    {"id": "t3", "from": "1", "to": "2", "symbols": ["b"]}
  ]
}`

const incomplete = `{
  "alphabet": ["a"],
  "start": "A",
  "states": [{"id": "A", "label": "A"}, {"id": "B", "label": "A"}],
  "transitions": []
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// execute runs the CLI with a private library directory.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUTOMATA_STORAGE_DRIVER", "file")
	t.Setenv("AUTOMATA_STORAGE_PATH", filepath.Join(t.TempDir(), "library"))
	t.Setenv("AUTOMATA_LOG_LEVEL", "disabled")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "", "validate", writeFile(t, "ab.json", abMachine))
	require.NoError(t, err)
	assert.Contains(t, out, "valid dfa with 2 states, 4 transitions")

	out, err = execute(t, "", "validate", writeFile(t, "bad.json", incomplete))
	assert.ErrorIs(t, err, errHasErrors)
	assert.Contains(t, out, `Duplicate state label "A" (2 states)`)
	assert.Contains(t, out, `State "A" has no transition for token "a"`)

	_, err = execute(t, "", "validate", writeFile(t, "broken.json", `{"states":`))
	assert.ErrorIs(t, err, automaton.ErrMalformedData)
}

func TestRunCommand(t *testing.T) {
	path := writeFile(t, "ab.json", abMachine)

	out, err := execute(t, "", "run", path, "ab", "ba", "aa", "ac")
	require.NoError(t, err)
	assert.Contains(t, out, `"ab": accepted`)
	assert.Contains(t, out, "path: A → B → B")
	assert.Contains(t, out, `"ba": accepted`)
	assert.Contains(t, out, `"aa": rejected, ended in a non-accepting state`)
	assert.Contains(t, out, `"ac": rejected, symbol not in alphabet ("c" after 1 symbols)`)
}

func TestRunCommandNFA(t *testing.T) {
	out, err := execute(t, "", "run", writeFile(t, "nfa.json", endsInAB), "aab")
	require.NoError(t, err)
	assert.Contains(t, out, `"aab": accepted`)
	assert.Contains(t, out, "path: p → p → q → r")
	assert.Contains(t, out, "sets: {p} {p,q} {p,q} {p,r}")
}

func TestRunInteractive(t *testing.T) {
	path := writeFile(t, "ab.json", abMachine)
	out, err := execute(t, "a\nsymbols\nz\nhistory\nreset\nquit\n", "run", "-i", path)
	require.NoError(t, err)
	assert.Contains(t, out, "State: A")
	assert.Contains(t, out, "State: B [accepting]")
	assert.Contains(t, out, "Available symbols: [a b]")
	assert.Contains(t, out, "Error: invalid symbol")
	assert.Contains(t, out, "1: A --a--> B")
	assert.Contains(t, out, "Reset to start state")
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "", "info", writeFile(t, "ab.json", abMachine))
	require.NoError(t, err)
	assert.Contains(t, out, "Type:        dfa")
	assert.Contains(t, out, "Name:        ends-in-b")
	assert.Contains(t, out, "Start:       A")
	assert.Contains(t, out, "Accepting:   [B]")
}

func TestConvertCommand(t *testing.T) {
	in := writeFile(t, "ab.json", abMachine)
	outPath := filepath.Join(t.TempDir(), "ab.yaml")

	_, err := execute(t, "", "convert", in, "-o", outPath)
	require.NoError(t, err)

	want, err := automatonfile.Load(in)
	require.NoError(t, err)
	got, err := automatonfile.Load(outPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = execute(t, "", "convert", in)
	assert.Error(t, err, "output is required")
}

func TestDotCommand(t *testing.T) {
	out, err := execute(t, "", "dot", writeFile(t, "ab.json", abMachine))
	require.NoError(t, err)
	assert.Contains(t, out, "digraph automaton {")
	assert.Contains(t, out, `label="ends-in-b"`)
}

func TestToDFACommand(t *testing.T) {
	out, err := execute(t, "", "todfa", writeFile(t, "nfa.json", endsInAB))
	require.NoError(t, err)

	dfa, err := automatonfile.ParseJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, automaton.KindDFA, dfa.Kind)
	for input, want := range map[string]bool{"ab": true, "aab": true, "ba": false, "abb": false} {
		res, err := automaton.RunString(dfa, input)
		require.NoError(t, err)
		assert.Equal(t, want, res.Accepted, input)
	}
}

func TestGenCommand(t *testing.T) {
	out, err := execute(t, "", "gen", "-p", "lexer", writeFile(t, "ab.json", abMachine))
	require.NoError(t, err)
	assert.Contains(t, out, "package lexer")
	assert.Contains(t, out, "func MatchEndsInB(tokens []string) bool")

	dest := filepath.Join(t.TempDir(), "machine.go")
	out, err = execute(t, "", "gen", "-o", dest, writeFile(t, "nfa.json", endsInAB))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)
	src, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package machine")
	assert.Contains(t, string(src), "// Type: dfa")
}

func TestGenCommandNoStart(t *testing.T) {
	_, err := execute(t, "", "gen", writeFile(t, "x.json", `{"alphabet":["a"],"states":[{"id":"A"}],"transitions":[]}`))
	assert.ErrorIs(t, err, automaton.ErrNoStartState)
}

func TestLibraryCommands(t *testing.T) {
	t.Setenv("AUTOMATA_STORAGE_DRIVER", "file")
	lib := filepath.Join(t.TempDir(), "library")
	path := writeFile(t, "ab.json", abMachine)

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		t.Setenv("AUTOMATA_STORAGE_PATH", lib)
		t.Setenv("AUTOMATA_LOG_LEVEL", "disabled")
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("library", "save", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ab")
	_, err = run("library", "save", path, "copy")
	require.NoError(t, err)

	out, err = run("library", "list")
	require.NoError(t, err)
	assert.Equal(t, "ab\ncopy\n", out)

	out, err = run("library", "load", "copy")
	require.NoError(t, err)
	loaded, err := automatonfile.ParseJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "ends-in-b", loaded.Name)

	_, err = run("library", "rm", "copy")
	require.NoError(t, err)
	_, err = run("library", "load", "copy")
	assert.Error(t, err)
}

func TestWatchFile(t *testing.T) {
	path := writeFile(t, "ab.json", abMachine)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, logging.Nop(), func() { changes.Add(1) })
	}()

	// keep writing until the watcher, which starts asynchronously, sees it
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(abMachine), 0644)
		return changes.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not stop")
	}
}
