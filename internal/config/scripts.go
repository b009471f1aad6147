package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is one entry of the scripts mapping. IDs follow the
// "<verb>:<argument>" convention, e.g. "mount:web" or "build:ts,tsx".
type Script struct {
	ID  string
	Cmd string
}

// Scripts preserves the order scripts appear in the config file.
type Scripts []Script

// Prefixed returns the scripts whose id starts with the given verb prefix
// (including the trailing colon), in configuration order.
func (s Scripts) Prefixed(prefix string) Scripts {
	var out Scripts
	for _, entry := range s {
		if strings.HasPrefix(entry.ID, prefix) {
			out = append(out, entry)
		}
	}
	return out
}

// PluginRef is one entry of the plugins list: either a bare name or a
// [name, options] pair.
type PluginRef struct {
	Name    string
	Options map[string]any
}

// UnmarshalYAML accepts both forms of a plugin declaration.
func (p *PluginRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&p.Name)
	case yaml.SequenceNode:
		if len(node.Content) < 1 || len(node.Content) > 2 {
			return fmt.Errorf("plugin entry must be a name or a [name, options] pair")
		}
		if err := node.Content[0].Decode(&p.Name); err != nil {
			return fmt.Errorf("plugin entry name: %w", err)
		}
		if len(node.Content) == 2 {
			if err := node.Content[1].Decode(&p.Options); err != nil {
				return fmt.Errorf("plugin entry options: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("plugin entry must be a name or a [name, options] pair")
	}
}

// decodeOrdered extracts the scripts mapping and the plugins list from the
// raw config file, keeping file order intact.
func decodeOrdered(raw []byte) (Scripts, []PluginRef, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("config root must be a mapping")
	}

	var scripts Scripts
	var plugins []PluginRef

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]

		switch key.Value {
		case "scripts":
			if val.Kind != yaml.MappingNode {
				return nil, nil, fmt.Errorf("scripts must be a mapping of id to command")
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				var cmd string
				if err := val.Content[j+1].Decode(&cmd); err != nil {
					return nil, nil, fmt.Errorf("script %q: %w", val.Content[j].Value, err)
				}
				scripts = append(scripts, Script{ID: val.Content[j].Value, Cmd: cmd})
			}
		case "plugins":
			if err := val.Decode(&plugins); err != nil {
				return nil, nil, fmt.Errorf("plugins: %w", err)
			}
		}
	}

	return scripts, plugins, nil
}
