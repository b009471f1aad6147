package mount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floe-build/floe/internal/config"
)

func TestFromScripts(t *testing.T) {
	tests := []struct {
		name    string
		scripts config.Scripts
		want    map[string]string
		wantErr string
	}{
		{
			name:    "explicit target",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mount src --to /_dist"}},
			want:    map[string]string{"src/": "/_dist/"},
		},
		{
			name:    "default target is the source dir",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mount src"}},
			want:    map[string]string{"src/": "/src/"},
		},
		{
			name: "multiple mounts",
			scripts: config.Scripts{
				{ID: "mount:web", Cmd: "mount web --to /"},
				{ID: "mount:src", Cmd: "mount src --to /_dist_"},
			},
			want: map[string]string{"web/": "/", "src/": "/_dist_/"},
		},
		{
			name:    "normalizes duplicate separators and dot segments",
			scripts: config.Scripts{{ID: "mount:a", Cmd: "mount ./a//b/../c --to //static//"}},
			want:    map[string]string{"a/c/": "/static/"},
		},
		{
			name:    "non-mount scripts are ignored",
			scripts: config.Scripts{{ID: "run:lint", Cmd: "eslint src"}},
			want:    map[string]string{},
		},
		{
			name:    "wrong verb",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mnt src"}},
			wantErr: `script "mount:src"`,
		},
		{
			name:    "missing source directory",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mount --to /x"}},
			wantErr: "source directory is required",
		},
		{
			name:    "two source directories",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mount src web"}},
			wantErr: "exactly one source directory expected",
		},
		{
			name:    "target without leading slash",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mount src --to dist"}},
			wantErr: "--to value must start with /",
		},
		{
			name:    "dangling --to",
			scripts: config.Scripts{{ID: "mount:src", Cmd: "mount src --to"}},
			wantErr: "--to requires a value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := FromScripts(tt.scripts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var scriptErr *config.ScriptError
				assert.ErrorAs(t, err, &scriptErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Map())
		})
	}
}

func TestTable_ForDisk(t *testing.T) {
	table, err := FromScripts(config.Scripts{
		{ID: "mount:src", Cmd: "mount src --to /_dist_"},
		{ID: "mount:vendor", Cmd: "mount src/vendor --to /vendor"},
	})
	require.NoError(t, err)

	// Longest disk prefix wins when several mounts contain the file.
	entry, ok := table.ForDisk("src/vendor/lib.js")
	require.True(t, ok)
	assert.Equal(t, "src/vendor/", entry.DiskPrefix)
	assert.Equal(t, "/vendor/", entry.URLPrefix)

	entry, ok = table.ForDisk("src/app.ts")
	require.True(t, ok)
	assert.Equal(t, "/_dist_/", entry.URLPrefix)

	_, ok = table.ForDisk("public/index.html")
	assert.False(t, ok)
}

func TestTable_ForURL(t *testing.T) {
	table, err := FromScripts(config.Scripts{
		{ID: "mount:web", Cmd: "mount web --to /"},
		{ID: "mount:src", Cmd: "mount src --to /_dist_"},
	})
	require.NoError(t, err)

	matches := table.ForURL("/_dist_/app.js")
	require.Len(t, matches, 2)
	// Longest URL prefix ordered first.
	assert.Equal(t, "/_dist_/", matches[0].URLPrefix)
	assert.Equal(t, "/", matches[1].URLPrefix)

	matches = table.ForURL("/index.html")
	require.Len(t, matches, 1)
	assert.Equal(t, "web/", matches[0].DiskPrefix)
}

func TestTable_EntriesPreserveOrder(t *testing.T) {
	table, err := FromScripts(config.Scripts{
		{ID: "mount:b", Cmd: "mount b"},
		{ID: "mount:a", Cmd: "mount a"},
		{ID: "mount:b2", Cmd: "mount b --to /override"},
	})
	require.NoError(t, err)

	entries := table.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{DiskPrefix: "b/", URLPrefix: "/override/"}, entries[0])
	assert.Equal(t, Entry{DiskPrefix: "a/", URLPrefix: "/a/"}, entries[1])
}
