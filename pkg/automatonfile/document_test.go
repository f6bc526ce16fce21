package automatonfile_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds an NFA that exercises every persisted field.
func sample(t *testing.T) *automaton.Automaton {
	t.Helper()
	s := automaton.NewStore(automaton.KindNFA, automaton.WithName("sample"))
	require.NoError(t, s.SetAlphabet([]string{"a", "b"}))
	q0 := s.AddState("q0")
	q1 := s.AddState("q1")
	q2 := s.AddState("q2")
	require.NoError(t, s.SetStart(q0))
	require.NoError(t, s.SetAccept(q2, true))
	require.NoError(t, s.MoveState(q1, automaton.Position{X: 10, Y: -4}))
	for _, e := range []struct {
		from, to automaton.StateID
		syms     []string
	}{
		{q0, q1, []string{"a", "b"}},
		{q1, q2, []string{"b"}},
		{q2, q0, nil},
	} {
		_, err := s.AddTransition(e.from, e.to, e.syms)
		require.NoError(t, err)
	}
	return s.Snapshot()
}

func TestRoundTrip(t *testing.T) {
	original := sample(t)

	tests := []struct {
		name   string
		encode func(*automaton.Automaton) ([]byte, error)
		decode func([]byte) (*automaton.Automaton, error)
	}{
		{"json", func(a *automaton.Automaton) ([]byte, error) { return automatonfile.ToJSON(a, false) }, automatonfile.ParseJSON},
		{"json pretty", func(a *automaton.Automaton) ([]byte, error) { return automatonfile.ToJSON(a, true) }, automatonfile.ParseJSON},
		{"yaml", automatonfile.ToYAML, automatonfile.ParseYAML},
		{"map", encodeMap, decodeMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.encode(original)
			require.NoError(t, err)
			got, err := tt.decode(data)
			require.NoError(t, err)
			assert.Equal(t, original, got)
		})
	}
}

func TestRoundTripWithoutStartOrTransitions(t *testing.T) {
	s := automaton.NewStore(automaton.KindDFA)
	s.AddState("lonely")
	original := s.Snapshot()

	data, err := automatonfile.ToJSON(original, false)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"start":null`)
	assert.Contains(t, string(data), `"transitions":[]`)

	got, err := automatonfile.ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestParseJSONMalformed(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		problem string
	}{
		{"syntax", `{"states": [`, "unexpected"},
		{"missing alphabet", `{"states":[],"transitions":[]}`, "alphabet"},
		{"missing states", `{"alphabet":["a"],"transitions":[]}`, "states"},
		{"missing transitions", `{"alphabet":["a"],"states":[]}`, "transitions"},
		{"empty token", `{"alphabet":[""],"states":[],"transitions":[]}`, "alphabet"},
		{"unknown type", `{"type":"moore","alphabet":["a"],"states":[],"transitions":[]}`, "type"},
		{"state without id", `{"alphabet":["a"],"states":[{"label":"q0"}],"transitions":[]}`, "id"},
		{"duplicate state id", `{"alphabet":["a"],"states":[{"id":"1"},{"id":"1"}],"transitions":[]}`, "duplicate state id"},
		{"dangling start", `{"alphabet":["a"],"start":"9","states":[{"id":"1"}],"transitions":[]}`, "start state"},
		{"start flag mismatch", `{"alphabet":["a"],"start":"1","states":[{"id":"1"},{"id":"2","start":true}],"transitions":[]}`, "flagged start"},
		{"two start flags", `{"alphabet":["a"],"start":"1","states":[{"id":"1","start":true},{"id":"2","start":true}],"transitions":[]}`, "flagged start"},
		{"dangling from", `{"alphabet":["a"],"states":[{"id":"1"}],"transitions":[{"id":"t","from":"x","to":"1","symbols":["a"]}]}`, "from state"},
		{"dangling to", `{"alphabet":["a"],"states":[{"id":"1"}],"transitions":[{"id":"t","from":"1","to":"x","symbols":["a"]}]}`, "to state"},
		{"symbol outside alphabet", `{"alphabet":["a"],"states":[{"id":"1"}],"transitions":[{"id":"t","from":"1","to":"1","symbols":["b"]}]}`, "not in alphabet"},
		{"duplicate transition id", `{"alphabet":["a"],"states":[{"id":"1"}],"transitions":[{"id":"t","from":"1","to":"1","symbols":["a"]},{"id":"t","from":"1","to":"1","symbols":["a"]}]}`, "duplicate transition id"},
		{"future version", `{"version":99,"alphabet":["a"],"states":[],"transitions":[]}`, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := automatonfile.ParseJSON([]byte(tt.json))
			require.Error(t, err)
			assert.Nil(t, a, "import must be all-or-nothing")
			assert.ErrorIs(t, err, automaton.ErrMalformedData)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestParseJSONHandWritten(t *testing.T) {
	// start flags may be omitted when start is given
	a, err := automatonfile.ParseJSON([]byte(`{
		"type": "dfa",
		"alphabet": ["0", "1"],
		"start": "even",
		"states": [{"id": "even", "label": "Even", "accept": true}, {"id": "odd", "label": "Odd"}],
		"transitions": [
			{"id": "t1", "from": "even", "to": "odd", "symbols": ["1"]},
			{"id": "t2", "from": "odd", "to": "even", "symbols": ["1"]},
			{"id": "t3", "from": "even", "to": "even", "symbols": ["0"]},
			{"id": "t4", "from": "odd", "to": "odd", "symbols": ["0"]}
		]
	}`))
	require.NoError(t, err)
	assert.True(t, a.States[0].Start)
	assert.Empty(t, automaton.Validate(a))

	res, err := automaton.RunString(a, "1011")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	res, err = automaton.RunString(a, "1001")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestDecodeMapRejectsUnknownKeys(t *testing.T) {
	_, err := automatonfile.DecodeMap(map[string]any{
		"alphabet":    []any{"a"},
		"states":      []any{},
		"transitions": []any{},
		"colour":      "blue",
	})
	assert.ErrorIs(t, err, automaton.ErrMalformedData)

	_, err = automatonfile.DecodeMap(nil)
	assert.ErrorIs(t, err, automaton.ErrMalformedData)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]automatonfile.Format{
		"m.json": automatonfile.FormatJSON,
		"m.YAML": automatonfile.FormatYAML,
		"m.yml":  automatonfile.FormatYAML,
	} {
		got, err := automatonfile.FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := automatonfile.FormatFromPath("m.fsm")
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	original := sample(t)
	for _, name := range []string{"m.json", "m.yaml"} {
		path := t.TempDir() + "/" + name
		require.NoError(t, automatonfile.Save(path, original))
		got, err := automatonfile.Load(path)
		require.NoError(t, err)
		assert.Equal(t, original, got, name)
	}
}

func TestGenerateDOT(t *testing.T) {
	a := sample(t)
	dot := automatonfile.GenerateDOT(a, `the "sample"`)

	assert.True(t, strings.HasPrefix(dot, "digraph automaton {"))
	assert.Contains(t, dot, `label="the \"sample\""`)
	assert.Contains(t, dot, "__start -> \""+string(a.Start)+"\"")
	assert.Contains(t, dot, `shape=doublecircle, label="q2"`)
	assert.Contains(t, dot, `[label="a, b"]`)
	assert.Contains(t, dot, `[label="ε"]`)
}

func encodeMap(a *automaton.Automaton) ([]byte, error) {
	return automatonfile.ToJSON(a, false)
}

// decodeMap goes through a generic map the way a front end holding the
// decoded export would.
func decodeMap(data []byte) (*automaton.Automaton, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return automatonfile.DecodeMap(m)
}
