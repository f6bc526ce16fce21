package automatonfile

import (
	"fmt"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/mitchellh/mapstructure"
)

// DecodeMap builds an automaton from an already-decoded generic object,
// keyed like the JSON form. Front ends that hold the export as a map (for
// example after reading it from a clipboard) use this instead of re-encoding.
func DecodeMap(m map[string]any) (*automaton.Automaton, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil map", automaton.ErrMalformedData)
	}

	var d Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &d,
		TagName:     "json",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %v", automaton.ErrMalformedData, err)
	}
	return d.ToAutomaton()
}
