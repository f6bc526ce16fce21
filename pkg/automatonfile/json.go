package automatonfile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/automata/pkg/automaton"
	"gopkg.in/yaml.v3"
)

// ParseJSON parses an automaton from JSON.
func ParseJSON(data []byte) (*automaton.Automaton, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", automaton.ErrMalformedData, err)
	}
	return d.ToAutomaton()
}

// ToJSON converts an automaton to JSON.
func ToJSON(a *automaton.Automaton, pretty bool) ([]byte, error) {
	d := FromAutomaton(a)
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// ParseYAML parses an automaton from YAML.
func ParseYAML(data []byte) (*automaton.Automaton, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", automaton.ErrMalformedData, err)
	}
	return d.ToAutomaton()
}

// ToYAML converts an automaton to YAML.
func ToYAML(a *automaton.Automaton) ([]byte, error) {
	return yaml.Marshal(FromAutomaton(a))
}
