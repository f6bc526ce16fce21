package automatonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/automata/pkg/automaton"
)

// Format is a persisted encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown file format: %s", filepath.Ext(path))
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*automaton.Automaton, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Encode serializes a in the given format.
func Encode(a *automaton.Automaton, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(a, true)
	case FormatYAML:
		return ToYAML(a)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Load reads an automaton from a .json, .yaml or .yml file.
func Load(path string) (*automaton.Automaton, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// Save writes an automaton to a file, choosing the format by extension.
func Save(path string, a *automaton.Automaton) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(a, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
