package resolve

import "regexp"

// importPattern matches the specifier of static import and re-export
// statements:
//   import { x } from "pkg"
//   import x from "pkg"
//   import * as x from "pkg"
//   import "pkg"
//   export { x } from "pkg"
var importPattern = regexp.MustCompile(`((?:import|export)\s+(?:type\s+)?(?:[\w\s{},*$]+\s+from\s+)?['"])([^'"]+)(['"])`)

// dynamicImportPattern matches dynamic import("pkg") calls.
var dynamicImportPattern = regexp.MustCompile(`(import\(\s*['"])([^'"]+)(['"])`)

// RewriteImports rewrites every import specifier in code through the
// resolver. Specifiers the resolver misses on are left untouched; the
// resolver itself decides whether to warn.
func RewriteImports(code []byte, resolver Resolver) []byte {
	rewrite := func(pattern *regexp.Regexp, src []byte) []byte {
		return pattern.ReplaceAllFunc(src, func(match []byte) []byte {
			groups := pattern.FindSubmatch(match)
			if groups == nil {
				return match
			}
			resolved, ok := resolver(string(groups[2]))
			if !ok {
				return match
			}
			out := make([]byte, 0, len(groups[1])+len(resolved)+len(groups[3]))
			out = append(out, groups[1]...)
			out = append(out, resolved...)
			out = append(out, groups[3]...)
			return out
		})
	}

	code = rewrite(importPattern, code)
	code = rewrite(dynamicImportPattern, code)
	return code
}
