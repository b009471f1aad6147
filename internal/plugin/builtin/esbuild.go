// Package builtin provides the plugin capabilities floe ships with. The
// plugin core resolves names against a host-supplied catalog; this is
// that host's default content.
package builtin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/plugin"
)

// Catalog returns the built-in plugin factories.
func Catalog() plugin.Catalog {
	return plugin.Catalog{
		"esbuild":         newEsbuild,
		"esbuild-bundler": newEsbuildBundler,
	}
}

var loaders = map[string]api.Loader{
	".js":  api.LoaderJS,
	".jsx": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".tsx": api.LoaderTSX,
	".mjs": api.LoaderJS,
}

var targets = map[string]api.Target{
	"esnext": api.ESNext,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
}

// newEsbuild builds the single-file transform plugin: TypeScript and JSX
// sources in, plain ES modules out.
func newEsbuild(options map[string]any) (*plugin.Plugin, error) {
	target := api.ESNext
	if raw, ok := options["target"].(string); ok {
		t, known := targets[strings.ToLower(raw)]
		if !known {
			return nil, fmt.Errorf("unsupported target %q", raw)
		}
		target = t
	}
	minify, _ := options["minify"].(bool)

	build := func(ctx context.Context, in plugin.BuildInput) ([]byte, error) {
		loader, ok := loaders[filepath.Ext(in.FilePath)]
		if !ok {
			return nil, fmt.Errorf("esbuild: no loader for %s", in.FilePath)
		}

		result := api.Transform(string(in.Contents), api.TransformOptions{
			Loader:            loader,
			Format:            api.FormatESModule,
			Target:            target,
			Sourcefile:        in.FilePath,
			MinifyWhitespace:  minify,
			MinifyIdentifiers: minify,
			MinifySyntax:      minify,
		})
		if len(result.Errors) > 0 {
			return nil, transformError(in.FilePath, result.Errors)
		}
		for _, warning := range result.Warnings {
			log.Warn().Str("file", in.FilePath).Msg(warning.Text)
		}
		return result.Code, nil
	}

	return &plugin.Plugin{
		Name:   "esbuild",
		Input:  []string{".js", ".jsx", ".ts", ".tsx", ".mjs"},
		Output: []string{".js"},
		Build:  build,
	}, nil
}

// newEsbuildBundler builds the bundle capability used after a production
// build: it rewrites the built output directory into bundled entrypoints.
func newEsbuildBundler(options map[string]any) (*plugin.Plugin, error) {
	minify := true
	if raw, ok := options["minify"].(bool); ok {
		minify = raw
	}

	bundle := func(ctx context.Context, in plugin.BundleInput) error {
		entries, err := filepath.Glob(filepath.Join(in.SrcDir, "*.js"))
		if err != nil {
			return fmt.Errorf("esbuild-bundler: %w", err)
		}
		if len(entries) == 0 {
			log.Warn().Str("dir", in.SrcDir).Msg("Nothing to bundle")
			return nil
		}

		result := api.Build(api.BuildOptions{
			EntryPoints:       entries,
			Bundle:            true,
			Write:             true,
			Outdir:            in.DestDir,
			Format:            api.FormatESModule,
			MinifyWhitespace:  minify,
			MinifyIdentifiers: minify,
			MinifySyntax:      minify,
			LogLevel:          api.LogLevelSilent,
		})
		if len(result.Errors) > 0 {
			return bundleError(result.Errors)
		}
		return nil
	}

	return &plugin.Plugin{
		Name:   "esbuild-bundler",
		Input:  []string{".js"},
		Output: []string{".js"},
		Bundle: bundle,
	}, nil
}

func transformError(file string, messages []api.Message) error {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Text)
	}
	return fmt.Errorf("esbuild: %s: %s", file, strings.Join(texts, "; "))
}

func bundleError(messages []api.Message) error {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Text)
	}
	return fmt.Errorf("esbuild-bundler: %s", strings.Join(texts, "; "))
}
