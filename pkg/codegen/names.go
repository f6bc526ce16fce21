package codegen

import (
	"fmt"
	"strings"
	"unicode"
)

// namer assigns distinct Go identifiers, keyed by id, in insertion order.
type namer struct {
	prefix string
	keys   []string
	names  map[string]string
	labels map[string]string
	taken  map[string]bool
}

func newNamer(prefix string) *namer {
	return &namer{
		prefix: prefix,
		names:  make(map[string]string),
		labels: make(map[string]string),
		taken:  make(map[string]bool),
	}
}

// add registers key with a human label. Repeated keys are ignored.
func (n *namer) add(key, label string) {
	if _, ok := n.names[key]; ok {
		return
	}
	base := n.prefix + toPascalCase(label)
	if base == n.prefix {
		base = fmt.Sprintf("%s%d", n.prefix, len(n.keys))
	}
	name := base
	for i := 2; n.taken[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	n.taken[name] = true
	n.keys = append(n.keys, key)
	n.names[key] = name
	n.labels[key] = label
}

func (n *namer) has(key string) bool {
	_, ok := n.names[key]
	return ok
}

func (n *namer) name(key string) string {
	return n.names[key]
}

// toPascalCase builds an exported identifier fragment from s, keeping only
// letters and digits.
func toPascalCase(s string) string {
	var result strings.Builder
	for _, word := range splitWords(s) {
		r := []rune(word)
		result.WriteRune(unicode.ToUpper(r[0]))
		result.WriteString(string(r[1:]))
	}
	return result.String()
}

func splitWords(s string) []string {
	var words []string
	var current strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}
