package plugin

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/config"
)

// RunCommand is an opaque run:* script, passed through for the host to
// execute alongside a build.
type RunCommand struct {
	ID  string
	Cmd string
}

// Set is the result of loading the configured plugins: the normalized
// descriptor list (script-derived first, then declared), the optional
// bundler, the run commands, and the raw shell build commands keyed by
// the extension they apply to.
type Set struct {
	Plugins       []*Plugin
	Bundler       *Plugin
	RunCommands   []RunCommand
	BuildCommands map[string]string
}

// Load resolves the configuration's script-style declarations and its
// declarative plugin list against the catalog.
//
// A build:* script whose command is not a registered plugin is not an
// error: it is kept as a raw shell command for the named extensions.
// A bundle:* script that does not resolve is fatal, as is a second
// bundler, a name collision between scripts and the plugin list, or a
// declared plugin without input extensions.
func Load(cfg *config.Config, catalog Catalog) (*Set, error) {
	set := &Set{BuildCommands: make(map[string]string)}

	// Index of script-derived plugins, so repeated build:* references to
	// the same plugin union their extension sets into one descriptor.
	byName := make(map[string]*Plugin)

	for _, script := range cfg.Scripts {
		verb, arg, ok := strings.Cut(script.ID, ":")
		if !ok {
			continue
		}

		switch verb {
		case "run":
			set.RunCommands = append(set.RunCommands, RunCommand{ID: script.ID, Cmd: script.Cmd})

		case "build":
			exts := normalizeExts(strings.Split(arg, ","))
			if len(exts) == 0 {
				return nil, &config.ScriptError{Script: script.ID, Reason: "no extensions named"}
			}

			name := strings.TrimSpace(script.Cmd)
			p, err := catalog.Load(name, nil)
			if err != nil {
				var notFound *NotFoundError
				if !errors.As(err, &notFound) {
					return nil, err
				}
				// Not a plugin: treat the literal command as a shell
				// build command for each named extension.
				for _, ext := range exts {
					set.BuildCommands[ext] = script.Cmd
				}
				log.Debug().Str("script", script.ID).Msg("Registered raw build command")
				continue
			}

			if existing, dup := byName[p.Name]; dup {
				existing.Input = normalizeExts(append(existing.Input, exts...))
				existing.Output = normalizeExts(append(existing.Output, exts...))
				continue
			}

			// The script id decides the extensions, overriding whatever
			// the plugin itself declares.
			p.Input = exts
			p.Output = exts
			byName[p.Name] = p
			set.Plugins = append(set.Plugins, p)

		case "bundle":
			p, err := catalog.Load(strings.TrimSpace(script.Cmd), nil)
			if err != nil {
				return nil, err
			}
			if p.Bundle == nil {
				return nil, &config.ScriptError{Script: script.ID, Reason: "plugin has no bundle capability"}
			}
			if set.Bundler != nil {
				return nil, &ConflictError{Name: p.Name, Reason: "only one bundler may be declared"}
			}
			set.Bundler = p
		}
	}

	for _, ref := range cfg.Plugins {
		if _, dup := byName[ref.Name]; dup {
			return nil, &ConflictError{
				Name:   ref.Name,
				Reason: "registered by both a build script and the plugins list; choose one",
			}
		}

		p, err := catalog.Load(ref.Name, ref.Options)
		if err != nil {
			return nil, err
		}
		if len(p.Input) == 0 {
			return nil, &ConflictError{Name: p.Name, Reason: "plugin declares no input extensions"}
		}
		if len(p.Output) == 0 {
			p.Output = p.Input
		}

		byName[p.Name] = p
		set.Plugins = append(set.Plugins, p)
	}

	log.Debug().
		Int("plugins", len(set.Plugins)).
		Int("run_commands", len(set.RunCommands)).
		Int("build_commands", len(set.BuildCommands)).
		Bool("bundler", set.Bundler != nil).
		Msg("Plugin set loaded")

	return set, nil
}
