package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		BuildOptions:   BuildOptions{BaseURL: "/", Dest: "build"},
		InstallOptions: InstallOptions{Dest: "web_modules"},
		DevOptions:     DevOptions{Port: 8080, Hostname: "localhost"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.BuildOptions.BaseURL = "" },
			wantErr: true,
			errMsg:  "buildOptions.baseUrl cannot be empty",
		},
		{
			name:    "empty build dest",
			mutate:  func(c *Config) { c.BuildOptions.Dest = "" },
			wantErr: true,
			errMsg:  "buildOptions.dest cannot be empty",
		},
		{
			name:    "empty install dest",
			mutate:  func(c *Config) { c.InstallOptions.Dest = "" },
			wantErr: true,
			errMsg:  "installOptions.dest cannot be empty",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.DevOptions.Port = 0 },
			wantErr: true,
			errMsg:  "devOptions.port must be between 1 and 65535",
		},
		{
			name:    "blank script command",
			mutate:  func(c *Config) { c.Scripts = Scripts{{ID: "mount:web", Cmd: "   "}} },
			wantErr: true,
			errMsg:  `script "mount:web": command cannot be empty`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDecodeOrdered(t *testing.T) {
	raw := []byte(`
scripts:
  mount:web: "mount web --to /"
  mount:src: "mount src --to /_dist_"
  build:ts,tsx: "esbuild"
  run:lint: "eslint src --ext .ts"
plugins:
  - esbuild
  - ["esbuild", {"target": "es2019"}]
buildOptions:
  dest: build
`)

	scripts, plugins, err := decodeOrdered(raw)
	require.NoError(t, err)

	require.Len(t, scripts, 4)
	assert.Equal(t, Script{ID: "mount:web", Cmd: "mount web --to /"}, scripts[0])
	assert.Equal(t, Script{ID: "mount:src", Cmd: "mount src --to /_dist_"}, scripts[1])
	assert.Equal(t, Script{ID: "build:ts,tsx", Cmd: "esbuild"}, scripts[2])
	assert.Equal(t, Script{ID: "run:lint", Cmd: "eslint src --ext .ts"}, scripts[3])

	require.Len(t, plugins, 2)
	assert.Equal(t, PluginRef{Name: "esbuild"}, plugins[0])
	assert.Equal(t, "esbuild", plugins[1].Name)
	assert.Equal(t, map[string]any{"target": "es2019"}, plugins[1].Options)
}

func TestDecodeOrdered_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"scripts not a mapping", "scripts:\n  - mount web"},
		{"plugin entry is a mapping", "plugins:\n  - foo: bar"},
		{"plugin pair too long", `plugins: [["a", {}, "extra"]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeOrdered([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestScripts_Prefixed(t *testing.T) {
	scripts := Scripts{
		{ID: "mount:web", Cmd: "mount web"},
		{ID: "build:js", Cmd: "esbuild"},
		{ID: "mount:src", Cmd: "mount src --to /_dist_"},
	}

	mounts := scripts.Prefixed("mount:")
	require.Len(t, mounts, 2)
	assert.Equal(t, "mount:web", mounts[0].ID)
	assert.Equal(t, "mount:src", mounts[1].ID)
	assert.Empty(t, scripts.Prefixed("bundle:"))
}
