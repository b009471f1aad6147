package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/config"
	"github.com/floe-build/floe/internal/mount"
	"github.com/floe-build/floe/internal/plugin"
)

// FileResult is the outcome of a reverse lookup. An empty LocOnDisk is a
// miss, not an error; Lookups lists every path that was considered so the
// caller can produce a useful 404.
type FileResult struct {
	LocOnDisk string
	Lookups   []string
}

// FileOptions configures URLToFile.
type FileOptions struct {
	Config  *config.Config
	Catalog plugin.Catalog
	Cwd     string
	// Exists overrides the filesystem existence check. Nil means os.Stat.
	Exists func(path string) bool
}

// URLToFile maps a requested URL back to a concrete source file: it
// builds the extension map from the configured plugins, filters the mount
// table down to entries serving the URL, and probes every plausible
// source extension under each, longest URL prefix first.
func URLToFile(url string, opts FileOptions) (FileResult, error) {
	set, err := plugin.Load(opts.Config, opts.Catalog)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to load plugins: %w", err)
	}
	table, err := mount.FromScripts(opts.Config.Scripts)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read mounted directories: %w", err)
	}
	return FindFile(url, table, plugin.NewExtensionMap(set.Plugins), opts.Cwd, opts.Exists), nil
}

// FindFile is URLToFile with the resolution context prebuilt, for callers
// that serve many URLs against one configuration.
func FindFile(url string, table *mount.Table, extMap plugin.ExtensionMap, cwd string, exists func(string) bool) FileResult {
	if exists == nil {
		exists = fileExists
	}

	baseExt, expandedExt := SplitExtension(url)
	lookupExt := baseExt
	if expandedExt != "" {
		lookupExt = expandedExt
	}

	var result FileResult
	for _, entry := range table.ForURL(url) {
		tail := strings.TrimPrefix(url, entry.URLPrefix)

		for _, sourceExt := range extMap.SourcesFor(lookupExt) {
			candidate := entry.DiskPrefix + replaceSuffix(tail, lookupExt, sourceExt)
			onDisk := filepath.Join(cwd, filepath.FromSlash(candidate))
			result.Lookups = append(result.Lookups, onDisk)

			if result.LocOnDisk == "" && exists(onDisk) {
				result.LocOnDisk = onDisk
			}
		}
	}

	if result.LocOnDisk == "" {
		log.Debug().Str("url", url).Strs("lookups", result.Lookups).Msg("URL resolved to no file")
	}
	return result
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
