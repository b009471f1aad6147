package resolve

import (
	"path"
	"strings"
)

// SplitExtension splits a URL or path into its base extension and, when
// the basename carries at least two dots, its expanded extension:
// "app.module.css" has base ".css" and expanded ".module.css". The
// expanded form is the better lookup key because plugins may target the
// compound extension as a whole.
func SplitExtension(u string) (base, expanded string) {
	name := path.Base(u)
	base = path.Ext(name)
	if rest := strings.TrimSuffix(name, base); rest != name {
		if second := path.Ext(rest); second != "" {
			expanded = second + base
		}
	}
	return base, expanded
}

// replaceSuffix swaps the trailing oldExt of p for newExt.
func replaceSuffix(p, oldExt, newExt string) string {
	return strings.TrimSuffix(p, oldExt) + newExt
}
