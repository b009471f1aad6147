package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteImports(t *testing.T) {
	resolver := func(spec string) (string, bool) {
		switch spec {
		case "lodash":
			return "/web_modules/lodash.js", true
		case "./helpers":
			return "./helpers.js", true
		default:
			return "", false
		}
	}

	code := []byte(`import _ from "lodash";
import { help } from './helpers';
import "lodash";
export { x } from "lodash";
const mod = await import("lodash");
import unknown from "left-pad";
`)

	got := string(RewriteImports(code, resolver))

	assert.Contains(t, got, `import _ from "/web_modules/lodash.js";`)
	assert.Contains(t, got, `import { help } from './helpers.js';`)
	assert.Contains(t, got, `import "/web_modules/lodash.js";`)
	assert.Contains(t, got, `export { x } from "/web_modules/lodash.js";`)
	assert.Contains(t, got, `await import("/web_modules/lodash.js")`)
	assert.Contains(t, got, `import unknown from "left-pad";`, "misses stay untouched")
}
