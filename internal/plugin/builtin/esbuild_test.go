package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floe-build/floe/internal/plugin"
)

func buildInput(path, code string) plugin.BuildInput {
	return plugin.BuildInput{FilePath: path, Contents: []byte(code), OutputExt: ".js"}
}

func TestCatalog_Esbuild(t *testing.T) {
	catalog := Catalog()

	p, err := catalog.Load("esbuild", nil)
	require.NoError(t, err)
	require.NotNil(t, p.Build)
	assert.Nil(t, p.Bundle)
	assert.Contains(t, p.Input, ".ts")
	assert.Equal(t, []string{".js"}, p.Output)
}

func TestEsbuild_TransformsTypeScript(t *testing.T) {
	catalog := Catalog()
	p, err := catalog.Load("esbuild", nil)
	require.NoError(t, err)

	out, err := p.Build(context.Background(), buildInput("src/app.ts",
		"const greet = (name: string): string => `hi ${name}`;\nexport default greet;\n"))
	require.NoError(t, err)

	code := string(out)
	assert.NotContains(t, code, ": string", "type annotations are stripped")
	assert.Contains(t, code, "export default")
}

func TestEsbuild_SyntaxErrorIsReported(t *testing.T) {
	catalog := Catalog()
	p, err := catalog.Load("esbuild", nil)
	require.NoError(t, err)

	_, err = p.Build(context.Background(), buildInput("src/bad.ts", "const = ;"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "src/bad.ts")
}

func TestEsbuild_RejectsUnknownTarget(t *testing.T) {
	_, err := Catalog().Load("esbuild", map[string]any{"target": "es3000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported target")
}

func TestCatalog_Bundler(t *testing.T) {
	p, err := Catalog().Load("esbuild-bundler", nil)
	require.NoError(t, err)
	assert.NotNil(t, p.Bundle)
}
