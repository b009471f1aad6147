// Package importmap reads the dependency import map produced by the
// package installation step. The map associates bare specifiers with
// their installed location under the dependency directory.
package importmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileName is the import map file written by the installer into the
// dependency directory.
const FileName = "import-map.json"

// ImportMap maps bare specifiers to paths relative to the dependency
// directory, e.g. "lodash" -> "lodash.js".
type ImportMap struct {
	Imports map[string]string `json:"imports"`
}

// Lookup returns the mapped path for a bare specifier.
func (m *ImportMap) Lookup(specifier string) (string, bool) {
	if m == nil || m.Imports == nil {
		return "", false
	}
	mapped, ok := m.Imports[specifier]
	return mapped, ok
}

// Load reads the import map from the dependency directory. A missing file
// is not an error: dependencies may simply not be installed yet, in which
// case every bare specifier is unresolvable.
func Load(dependencyDir string) (*ImportMap, error) {
	path := filepath.Join(dependencyDir, FileName)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("No import map found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read import map: %w", err)
	}

	var m ImportMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse import map %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("entries", len(m.Imports)).Msg("Import map loaded")
	return &m, nil
}
