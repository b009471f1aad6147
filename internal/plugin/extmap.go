package plugin

import "sort"

// ExtensionMap is the bidirectional extension lookup derived from the
// plugin set. Input answers "what can a .scss file become"; Output
// answers "what on-disk extensions can satisfy a .css URL". Every output
// extension maps to at least itself, since a file can always be served
// unmodified.
type ExtensionMap struct {
	Input  map[string][]string
	Output map[string][]string
}

// NewExtensionMap builds the lookup tables from the full cross product of
// every plugin's input and output extensions.
func NewExtensionMap(plugins []*Plugin) ExtensionMap {
	m := ExtensionMap{
		Input:  make(map[string][]string),
		Output: make(map[string][]string),
	}

	for _, p := range plugins {
		for _, in := range p.Input {
			for _, out := range p.Output {
				m.Input[in] = addUnique(m.Input[in], out)
				if _, seeded := m.Output[out]; !seeded {
					// Identity fallback: a .css URL is always satisfiable
					// by a .css file on disk.
					m.Output[out] = []string{out}
				}
				m.Output[out] = addUnique(m.Output[out], in)
			}
		}
	}

	for _, exts := range m.Input {
		sort.Strings(exts)
	}
	for out, exts := range m.Output {
		// Keep the identity extension first: it is the cheapest candidate
		// for the reverse lookup to try.
		sort.Strings(exts)
		for i, ext := range exts {
			if ext == out && i != 0 {
				copy(exts[1:i+1], exts[:i])
				exts[0] = out
				break
			}
		}
	}

	return m
}

// SourcesFor returns the on-disk extensions that can produce the given
// output extension, falling back to the extension itself when no plugin
// declares it.
func (m ExtensionMap) SourcesFor(ext string) []string {
	if sources, ok := m.Output[ext]; ok {
		return sources
	}
	return []string{ext}
}

// OutputsFor returns the extensions the given input extension can be
// transformed into, falling back to the extension itself when no plugin
// consumes it.
func (m ExtensionMap) OutputsFor(ext string) []string {
	if outputs, ok := m.Input[ext]; ok {
		return outputs
	}
	return []string{ext}
}

func addUnique(exts []string, ext string) []string {
	for _, existing := range exts {
		if existing == ext {
			return exts
		}
	}
	return append(exts, ext)
}
