// Package resolve rewrites module specifiers into browser-resolvable
// URLs and maps requested URLs back to files on disk.
package resolve

import (
	"path"
	"regexp"
	"strings"

	"github.com/floe-build/floe/internal/importmap"
	"github.com/floe-build/floe/internal/mount"
)

// protocolPattern matches specifiers that are already full URLs
// ("https://...") or protocol-relative ("//...").
var protocolPattern = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*:)?//`)

// Context carries the per-file inputs of the import resolver. Build one
// per processed source file; it holds no mutable state.
type Context struct {
	// File is the project-relative, slash-separated path of the source
	// file whose imports are being resolved, e.g. "src/components/App.ts".
	File string
	// DependencyDir is the installed-dependencies directory
	// (installOptions.dest), e.g. "web_modules".
	DependencyDir string
	// ImportMap maps bare specifiers to installed paths. May be nil.
	ImportMap *importmap.ImportMap
	// Dev is true for the dev server, false for production builds.
	Dev bool
	// Bundled is true when the output is destined for a single bundled
	// artifact; specifiers are then left for the bundler to resolve.
	Bundled bool
	// Mounts is the active mount table.
	Mounts *mount.Table
	// BaseURL is buildOptions.baseUrl, possibly protocol-qualified.
	BaseURL string
}

// Resolver rewrites one specifier found in the context's file. The second
// return is false when the specifier is a bare import with no known
// mapping; the caller decides whether that is a warning or an error.
type Resolver func(specifier string) (string, bool)

// NewImportResolver returns the resolver for one source file.
//
// Priority order: protocol URLs pass through untouched; relative
// specifiers inside a mounted directory are rewritten into that mount's
// URL space; other path-like specifiers only get their extension fixed
// up; bare specifiers go through the dependency import map; anything
// else is a miss.
func NewImportResolver(ctx Context) Resolver {
	mountEntry, mounted := mount.Entry{}, false
	if ctx.Mounts != nil {
		mountEntry, mounted = ctx.Mounts.ForDisk(ctx.File)
	}

	return func(specifier string) (string, bool) {
		if protocolPattern.MatchString(specifier) {
			return specifier, true
		}

		if mounted && isRelative(specifier) {
			if resolved, ok := rewriteMounted(ctx, mountEntry, specifier); ok {
				return resolved, true
			}
		}

		if isPathLike(specifier) {
			return rewriteExtension(ctx, specifier), true
		}

		if mapped, ok := ctx.ImportMap.Lookup(specifier); ok {
			return resolveMapped(ctx, mapped), true
		}

		return "", false
	}
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

func isPathLike(specifier string) bool {
	return strings.HasPrefix(specifier, "/") || isRelative(specifier)
}

// rewriteMounted resolves a relative specifier against the source file's
// directory and substitutes the mount's disk prefix with its URL prefix.
// Fails when the specifier escapes the mounted directory.
func rewriteMounted(ctx Context, entry mount.Entry, specifier string) (string, bool) {
	resolved := path.Join(path.Dir(ctx.File), specifier)
	resolved = rewriteExtension(ctx, resolved)
	if !strings.HasPrefix(resolved, entry.DiskPrefix) {
		return "", false
	}
	return entry.URLPrefix + strings.TrimPrefix(resolved, entry.DiskPrefix), true
}

// rewriteExtension applies the source-extension rules: bundled output is
// left for the bundler to resolve; extensionless specifiers get ".js"
// appended; extensioned specifiers stay untouched.
func rewriteExtension(ctx Context, specifier string) string {
	if ctx.Bundled {
		return specifier
	}
	if path.Ext(specifier) == "" {
		return specifier + ".js"
	}
	return specifier
}

// resolveMapped turns an import-map entry into a servable URL.
func resolveMapped(ctx Context, mapped string) string {
	var resolved string
	if ctx.Dev {
		resolved = "/" + path.Join(ctx.DependencyDir, mapped)
	} else {
		resolved = joinURL(ctx.BaseURL, ctx.DependencyDir, mapped)
	}

	// Non-JS assets cannot be imported as modules directly; the proxy
	// suffix marks them for wrapping. Bundled output skips this since the
	// bundler consumes the asset itself.
	if !ctx.Bundled {
		if ext := path.Ext(resolved); ext != "" && ext != ".js" {
			resolved += ".proxy.js"
		}
	}
	return resolved
}

// joinURL path-joins its parts while keeping a protocol prefix on the
// first part out of the join, since path.Clean would collapse "//".
func joinURL(parts ...string) string {
	protocol := ""
	if m := protocolPattern.FindString(parts[0]); m != "" {
		protocol = m
		parts[0] = strings.TrimPrefix(parts[0], m)
	}
	return protocol + path.Join(parts...)
}
