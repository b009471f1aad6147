package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtensionMap_CrossProduct(t *testing.T) {
	plugins := []*Plugin{
		{Name: "svelte", Input: []string{".svelte"}, Output: []string{".js", ".css"}},
		{Name: "sass", Input: []string{".scss", ".sass"}, Output: []string{".css"}},
		{Name: "esbuild", Input: []string{".ts", ".tsx"}, Output: []string{".js"}},
	}

	m := NewExtensionMap(plugins)

	// Every (input, output) pair appears in both directions.
	for _, p := range plugins {
		for _, in := range p.Input {
			for _, out := range p.Output {
				assert.Contains(t, m.Input[in], out, "input[%s] missing %s", in, out)
				assert.Contains(t, m.Output[out], in, "output[%s] missing %s", out, in)
			}
		}
	}

	assert.ElementsMatch(t, []string{".js", ".css"}, m.Input[".svelte"])
	assert.ElementsMatch(t, []string{".css", ".scss", ".sass", ".svelte"}, m.Output[".css"])
}

func TestNewExtensionMap_IdentityFallback(t *testing.T) {
	m := NewExtensionMap([]*Plugin{
		{Name: "sass", Input: []string{".scss"}, Output: []string{".css"}},
	})

	// No plugin outputs .css from .css, yet a plain .css file must still
	// satisfy a .css URL.
	require.Contains(t, m.Output[".css"], ".css")
	assert.Equal(t, ".css", m.Output[".css"][0], "identity candidate is tried first")
}

func TestExtensionMap_Fallbacks(t *testing.T) {
	m := NewExtensionMap(nil)

	assert.Equal(t, []string{".woff2"}, m.SourcesFor(".woff2"))
	assert.Equal(t, []string{".js"}, m.OutputsFor(".js"))
}

func TestNewPipeline(t *testing.T) {
	esbuild := &Plugin{Name: "esbuild", Input: []string{".ts", ".tsx"}, Output: []string{".js"}}
	sucrase := &Plugin{Name: "sucrase", Input: []string{".ts"}, Output: []string{".js"}}

	p := NewPipeline([]*Plugin{esbuild, sucrase})

	first, ok := p.First(".ts")
	require.True(t, ok)
	assert.Same(t, esbuild, first, "registration order decides the winner")
	assert.Equal(t, []*Plugin{esbuild, sucrase}, p[".ts"])

	_, ok = p.First(".css")
	assert.False(t, ok)
}
