// Package mount parses mount:* scripts into the table mapping on-disk
// directories to the URL prefixes they are served under.
package mount

import (
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/config"
)

// Entry maps a disk directory prefix to a URL prefix. Both are normalized
// with exactly one trailing "/", and URLPrefix always begins with "/".
type Entry struct {
	DiskPrefix string
	URLPrefix  string
}

// Table holds mount entries in configuration order. Immutable once built.
type Table struct {
	entries []Entry
}

// FromScripts builds the mount table from the mount:* entries of the
// scripts mapping. Commands have the form "mount <dir> [--to <url>]".
func FromScripts(scripts config.Scripts) (*Table, error) {
	t := &Table{}

	for _, script := range scripts.Prefixed("mount:") {
		entry, err := parseCommand(script)
		if err != nil {
			return nil, err
		}

		log.Debug().
			Str("script", script.ID).
			Str("dir", entry.DiskPrefix).
			Str("url", entry.URLPrefix).
			Msg("Mounted directory")

		t.upsert(entry)
	}

	return t, nil
}

func parseCommand(script config.Script) (Entry, error) {
	tokens := strings.Fields(script.Cmd)
	if len(tokens) == 0 || tokens[0] != "mount" {
		return Entry{}, &config.ScriptError{Script: script.ID, Reason: `command must start with "mount"`}
	}

	var sourceDir, toURL string
	args := tokens[1:]
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--to":
			if toURL != "" {
				return Entry{}, &config.ScriptError{Script: script.ID, Reason: "--to given more than once"}
			}
			if i+1 >= len(args) {
				return Entry{}, &config.ScriptError{Script: script.ID, Reason: "--to requires a value"}
			}
			i++
			toURL = args[i]
		case sourceDir == "":
			sourceDir = args[i]
		default:
			return Entry{}, &config.ScriptError{Script: script.ID, Reason: "exactly one source directory expected"}
		}
	}

	if sourceDir == "" {
		return Entry{}, &config.ScriptError{Script: script.ID, Reason: "source directory is required"}
	}

	if toURL == "" {
		toURL = "/" + sourceDir
	} else if !strings.HasPrefix(toURL, "/") {
		return Entry{}, &config.ScriptError{Script: script.ID, Reason: "--to value must start with /"}
	}

	return Entry{
		DiskPrefix: normalizePrefix(sourceDir),
		URLPrefix:  "/" + strings.TrimPrefix(normalizePrefix(toURL), "/"),
	}, nil
}

// normalizePrefix collapses duplicate separators and dot segments and
// guarantees a single trailing "/".
func normalizePrefix(p string) string {
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	switch cleaned {
	case ".", "/":
		return "/"
	}
	return cleaned + "/"
}

func (t *Table) upsert(entry Entry) {
	for i, existing := range t.entries {
		if existing.DiskPrefix == entry.DiskPrefix {
			t.entries[i] = entry
			return
		}
	}
	t.entries = append(t.entries, entry)
}

// Entries returns the mount entries in configuration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Map returns the disk-prefix to url-prefix mapping.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, len(t.entries))
	for _, e := range t.entries {
		out[e.DiskPrefix] = e.URLPrefix
	}
	return out
}

// ForDisk returns the mount entry whose disk prefix is a path-ancestor of
// the given slash-separated path. When several entries match, the longest
// disk prefix wins.
func (t *Table) ForDisk(p string) (Entry, bool) {
	p = strings.ReplaceAll(p, "\\", "/")

	var best Entry
	var found bool
	for _, e := range t.entries {
		if strings.HasPrefix(p, e.DiskPrefix) {
			if !found || len(e.DiskPrefix) > len(best.DiskPrefix) {
				best = e
				found = true
			}
		}
	}
	return best, found
}

// ForURL returns every mount entry whose URL prefix is a literal prefix of
// the requested URL, longest prefix first.
func (t *Table) ForURL(url string) []Entry {
	var matches []Entry
	for _, e := range t.entries {
		if strings.HasPrefix(url, e.URLPrefix) {
			matches = append(matches, e)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].URLPrefix) > len(matches[j].URLPrefix)
	})
	return matches
}
