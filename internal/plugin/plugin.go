// Package plugin manages the transform/bundle plugin set and the
// extension lookup tables derived from it.
package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// BuildInput carries one source file into a transform capability.
type BuildInput struct {
	FilePath string
	Contents []byte
	// OutputExt is the extension the caller expects back, e.g. ".js".
	OutputExt string
}

// BuildFunc transforms one file's contents. Opaque to the resolver core.
type BuildFunc func(ctx context.Context, in BuildInput) ([]byte, error)

// BundleInput carries the already-built output directory into the bundler.
type BundleInput struct {
	SrcDir  string
	DestDir string
}

// BundleFunc bundles a built output directory in place.
type BundleFunc func(ctx context.Context, in BundleInput) error

// Plugin is the canonical, normalized descriptor every loaded plugin is
// reduced to: Input and Output are always non-empty deduplicated lists of
// dot-prefixed extensions, and the optional capabilities are explicit.
type Plugin struct {
	Name   string
	Input  []string
	Output []string
	Build  BuildFunc
	Bundle BundleFunc
}

// Normalize dedupes the extension lists and enforces the dot prefix.
// Downstream components rely on the canonical shape and never re-check it.
func (p *Plugin) Normalize() {
	p.Input = normalizeExts(p.Input)
	p.Output = normalizeExts(p.Output)
}

func normalizeExts(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// ConflictError reports a plugin name registered more than once, or a
// second bundler declaration.
type ConflictError struct {
	Name   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("plugin %q: %s", e.Name, e.Reason)
}

// NotFoundError reports a plugin name with no catalog registration.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin %q is not registered", e.Name)
}

// Factory instantiates a plugin with its declaration options.
type Factory func(options map[string]any) (*Plugin, error)

// Catalog is the host-supplied registry of plugin factories. The core
// resolves plugin names against it instead of loading modules from disk.
type Catalog map[string]Factory

// Load instantiates and normalizes the named plugin.
func (c Catalog) Load(name string, options map[string]any) (*Plugin, error) {
	factory, ok := c[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	p, err := factory(options)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	p.Normalize()
	return p, nil
}

// Names returns the registered plugin names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
