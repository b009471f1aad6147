package builder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floe-build/floe/internal/config"
	"github.com/floe-build/floe/internal/plugin"
)

// fakeTS "compiles" TypeScript by stripping a leading comment line, just
// enough to observe that the pipeline ran.
func fakeCatalog() plugin.Catalog {
	return plugin.Catalog{
		"fake-ts": func(map[string]any) (*plugin.Plugin, error) {
			return &plugin.Plugin{
				Input:  []string{".ts"},
				Output: []string{".js"},
				Build: func(ctx context.Context, in plugin.BuildInput) ([]byte, error) {
					return bytes.TrimPrefix(in.Contents, []byte("// ts\n")), nil
				},
			}, nil
		},
	}
}

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func testConfig() *config.Config {
	return &config.Config{
		Scripts: config.Scripts{
			{ID: "mount:web", Cmd: "mount web --to /"},
			{ID: "mount:src", Cmd: "mount src --to /_dist_"},
		},
		Plugins:        []config.PluginRef{{Name: "fake-ts"}},
		BuildOptions:   config.BuildOptions{BaseURL: "/", Dest: "build", Clean: true},
		InstallOptions: config.InstallOptions{Dest: "web_modules"},
		DevOptions:     config.DevOptions{Port: 8080},
	}
}

func TestBuilder_Run(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "src", "app.ts"),
		"// ts\nimport _ from \"lodash\";\nimport { x } from \"./dep\";\nexport default x;\n")
	writeFile(t, filepath.Join(cwd, "src", "dep.ts"), "// ts\nexport const x = 1;\n")
	writeFile(t, filepath.Join(cwd, "web", "index.html"), "<html></html>")
	writeFile(t, filepath.Join(cwd, "web_modules", "import-map.json"),
		`{"imports": {"lodash": "lodash.js"}}`)

	err := New(testConfig(), fakeCatalog(), cwd).Run(context.Background())
	require.NoError(t, err)

	// The transformed file lands under its mount's URL prefix with the
	// output extension.
	out, err := os.ReadFile(filepath.Join(cwd, "build", "_dist_", "app.js"))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "// ts", "plugin ran")
	assert.Contains(t, string(out), `"/web_modules/lodash.js"`, "bare import resolved via import map")
	assert.Contains(t, string(out), `"/_dist_/dep.js"`, "relative import rewritten into the mount's URL space")

	// Static files are copied through.
	html, err := os.ReadFile(filepath.Join(cwd, "build", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(html))
}

func TestBuilder_RawBuildCommand(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "src", "style.css"), "body { color: red }")

	cfg := testConfig()
	cfg.Scripts = append(cfg.Scripts, config.Script{ID: "build:css", Cmd: "cat"})

	err := New(cfg, fakeCatalog(), cwd).Run(context.Background())
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(cwd, "build", "_dist_", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body { color: red }", string(out))
}

func TestBuilder_NoMountsIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Scripts = nil

	err := New(cfg, fakeCatalog(), t.TempDir()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mount:* scripts")
}

func TestBuilder_RunCommandFailureIsFatal(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "web", "index.html"), "<html></html>")

	cfg := testConfig()
	cfg.Scripts = append(cfg.Scripts, config.Script{ID: "run:boom", Cmd: "exit 3"})

	err := New(cfg, fakeCatalog(), cwd).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `script "run:boom" failed`)
}
