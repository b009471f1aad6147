// Package builder runs a production build: it walks the mounted
// directories, pushes every file through the plugin pipeline, rewrites
// import specifiers for the browser, and hands the result to the bundler
// when one is configured.
package builder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/config"
	"github.com/floe-build/floe/internal/importmap"
	"github.com/floe-build/floe/internal/mount"
	"github.com/floe-build/floe/internal/plugin"
	"github.com/floe-build/floe/internal/resolve"
)

// Builder executes production builds for one project.
type Builder struct {
	cfg     *config.Config
	catalog plugin.Catalog
	cwd     string
}

// New creates a builder rooted at cwd.
func New(cfg *config.Config, catalog plugin.Catalog, cwd string) *Builder {
	return &Builder{cfg: cfg, catalog: catalog, cwd: cwd}
}

// Run performs the build. Configuration problems surface as errors; a
// file that no plugin handles is copied through unchanged.
func (b *Builder) Run(ctx context.Context) error {
	set, err := plugin.Load(b.cfg, b.catalog)
	if err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}

	table, err := mount.FromScripts(b.cfg.Scripts)
	if err != nil {
		return err
	}
	if len(table.Entries()) == 0 {
		return fmt.Errorf("nothing to build: no mount:* scripts configured")
	}

	deps, err := importmap.Load(filepath.Join(b.cwd, b.cfg.InstallOptions.Dest))
	if err != nil {
		return err
	}

	dest := filepath.Join(b.cwd, b.cfg.BuildOptions.Dest)
	if b.cfg.BuildOptions.Clean {
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to clean %s: %w", dest, err)
		}
	}

	pipeline := plugin.NewPipeline(set.Plugins)
	bundled := set.Bundler != nil

	for _, entry := range table.Entries() {
		if err := b.buildMount(ctx, entry, table, pipeline, set, deps, dest, bundled); err != nil {
			return err
		}
	}

	for _, run := range set.RunCommands {
		if err := b.runCommand(ctx, run); err != nil {
			return err
		}
	}

	if bundled {
		log.Info().Str("bundler", set.Bundler.Name).Msg("Bundling build output")
		if err := set.Bundler.Bundle(ctx, plugin.BundleInput{SrcDir: dest, DestDir: dest}); err != nil {
			return fmt.Errorf("bundling failed: %w", err)
		}
	}

	log.Info().Str("dest", dest).Msg("Build finished")
	return nil
}

// buildMount processes every file under one mounted directory into the
// destination, laid out the way the dev server would serve it.
func (b *Builder) buildMount(ctx context.Context, entry mount.Entry, table *mount.Table,
	pipeline plugin.Pipeline, set *plugin.Set, deps *importmap.ImportMap, dest string, bundled bool) error {

	srcRoot := filepath.Join(b.cwd, filepath.FromSlash(entry.DiskPrefix))
	if _, err := os.Stat(srcRoot); os.IsNotExist(err) {
		log.Warn().Str("dir", entry.DiskPrefix).Msg("Mounted directory does not exist, skipping")
		return nil
	}

	return filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(srcRoot, p)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		diskPath := entry.DiskPrefix + relSlash

		contents, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		ext := path.Ext(relSlash)
		outExt := ext
		output := contents

		if candidate, ok := pipeline.First(ext); ok {
			outExt = preferredOutput(candidate.Output)
			output, err = candidate.Build(ctx, plugin.BuildInput{
				FilePath:  diskPath,
				Contents:  contents,
				OutputExt: outExt,
			})
			if err != nil {
				return fmt.Errorf("build failed for %s: %w", diskPath, err)
			}
			log.Debug().Str("file", diskPath).Str("plugin", candidate.Name).Msg("Transformed file")
		} else if cmd, ok := set.BuildCommands[ext]; ok {
			output, err = b.runBuildCommand(ctx, cmd, p)
			if err != nil {
				return fmt.Errorf("build command failed for %s: %w", diskPath, err)
			}
		}

		if outExt == ".js" {
			resolver := resolve.NewImportResolver(resolve.Context{
				File:          diskPath,
				DependencyDir: b.cfg.InstallOptions.Dest,
				ImportMap:     deps,
				Dev:           false,
				Bundled:       bundled,
				Mounts:        table,
				BaseURL:       b.cfg.BuildOptions.BaseURL,
			})
			output = resolve.RewriteImports(output, func(spec string) (string, bool) {
				resolved, ok := resolver(spec)
				if !ok {
					log.Warn().Str("file", diskPath).Str("import", spec).Msg("Unresolvable bare import")
				}
				return resolved, ok
			})
		}

		outPath := filepath.Join(dest,
			filepath.FromSlash(strings.TrimPrefix(entry.URLPrefix, "/")),
			filepath.FromSlash(strings.TrimSuffix(relSlash, ext)+outExt))
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, output, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		return nil
	})
}

// runBuildCommand pipes one source file through a raw shell build command.
func (b *Builder) runBuildCommand(ctx context.Context, command, file string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = b.cwd
	cmd.Env = append(os.Environ(), "FILE="+file)

	in, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	cmd.Stdin = in

	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// runCommand executes one run:* script.
func (b *Builder) runCommand(ctx context.Context, run plugin.RunCommand) error {
	log.Info().Str("script", run.ID).Msg("Running script")

	cmd := exec.CommandContext(ctx, "sh", "-c", run.Cmd)
	cmd.Dir = b.cwd
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("script %q failed: %w", run.ID, err)
	}
	return nil
}

// preferredOutput picks the extension a transform should emit: ".js" when
// the plugin can produce it, otherwise its first declared output.
func preferredOutput(outputs []string) string {
	for _, ext := range outputs {
		if ext == ".js" {
			return ext
		}
	}
	return outputs[0]
}
