// Package devserver serves a project straight from its mounted source
// directories, transforming files on the fly through the plugin pipeline
// and rewriting imports per request. It is a thin host over the resolver
// core; the core never depends on it.
package devserver

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/config"
	"github.com/floe-build/floe/internal/importmap"
	"github.com/floe-build/floe/internal/mount"
	"github.com/floe-build/floe/internal/plugin"
	"github.com/floe-build/floe/internal/resolve"
)

// Server is the floe dev server.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	cwd     string
	table   *mount.Table
	extMap  plugin.ExtensionMap
	pipe    plugin.Pipeline
	deps    *importmap.ImportMap
	metrics *Metrics
	reload  *Livereload
	watcher *Watcher
}

// NewServer wires the resolver core into a fiber app. Configuration
// problems are returned, not fatal; the CLI decides what to do.
func NewServer(cfg *config.Config, catalog plugin.Catalog, cwd string) (*Server, error) {
	set, err := plugin.Load(cfg, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugins: %w", err)
	}

	table, err := mount.FromScripts(cfg.Scripts)
	if err != nil {
		return nil, err
	}

	deps, err := importmap.Load(filepath.Join(cwd, cfg.InstallOptions.Dest))
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics()
	s := &Server{
		cfg:     cfg,
		cwd:     cwd,
		table:   table,
		extMap:  plugin.NewExtensionMap(set.Plugins),
		pipe:    plugin.NewPipeline(set.Plugins),
		deps:    deps,
		metrics: metrics,
		reload:  NewLivereload(metrics),
	}

	app := fiber.New(fiber.Config{
		ServerHeader:          "floe",
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Error().Err(err).Str("url", c.Path()).Msg("Request failed")
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		s.metrics.requestsTotal.WithLabelValues(strconv.Itoa(c.Response().StatusCode())).Inc()
		return err
	})

	app.Get("/_floe/metrics", metrics.Handler())
	app.Get("/_floe/livereload", websocket.New(s.reload.Handler()))
	app.Get("/*", s.handleRequest)

	s.app = app
	return s, nil
}

// Start watches the mounted directories and serves until Shutdown.
func (s *Server) Start() error {
	watcher, err := NewWatcher(s.table, s.cwd, func(changed string) {
		s.reload.Broadcast(changed)
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.watcher = watcher

	addr := fmt.Sprintf("%s:%d", s.cfg.DevOptions.Hostname, s.cfg.DevOptions.Port)
	log.Info().Str("address", addr).Msg("Dev server listening")
	return s.app.Listen(addr)
}

// Shutdown stops the watcher and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close watcher")
		}
	}
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleRequest(c *fiber.Ctx) error {
	url := c.Path()
	if strings.HasSuffix(url, "/") {
		url += "index.html"
	}

	if strings.HasSuffix(url, ".proxy.js") {
		return s.serveProxy(c, strings.TrimSuffix(url, ".proxy.js"))
	}
	return s.serveFile(c, url)
}

// serveFile resolves the URL to a source file, transforms it when the
// pipeline has a plugin for it, and rewrites imports in JS output.
func (s *Server) serveFile(c *fiber.Ctx, url string) error {
	body, lookups, err := s.loadURL(url)
	if err != nil {
		return err
	}
	if body == nil {
		return s.notFound(c, url, lookups)
	}

	ext := path.Ext(url)
	if ext == ".html" {
		body = injectLivereload(body)
	}

	if ext != "" {
		c.Type(strings.TrimPrefix(ext, "."))
	}
	return c.Send(body)
}

// serveProxy wraps a non-JS asset as an importable module.
func (s *Server) serveProxy(c *fiber.Ctx, assetURL string) error {
	body, lookups, err := s.loadURL(assetURL)
	if err != nil {
		return err
	}
	if body == nil {
		return s.notFound(c, assetURL+".proxy.js", lookups)
	}

	c.Type("js")
	return c.SendString(proxyModule(assetURL, body))
}

// loadURL runs the reverse lookup and the forward transform for one URL.
// A nil body with nil error is a resolution miss; the attempted paths
// come back either way.
func (s *Server) loadURL(url string) ([]byte, []string, error) {
	result := resolve.FindFile(url, s.table, s.extMap, s.cwd, nil)
	if result.LocOnDisk == "" {
		return nil, result.Lookups, nil
	}

	contents, err := os.ReadFile(result.LocOnDisk)
	if err != nil {
		return nil, result.Lookups, fmt.Errorf("failed to read %s: %w", result.LocOnDisk, err)
	}

	rel, err := filepath.Rel(s.cwd, result.LocOnDisk)
	if err != nil {
		return nil, result.Lookups, err
	}
	diskPath := filepath.ToSlash(rel)

	urlExt := path.Ext(url)
	sourceExt := path.Ext(diskPath)

	if sourceExt != urlExt || s.hasTransform(sourceExt) {
		if candidate, ok := s.pipe.First(sourceExt); ok {
			contents, err = candidate.Build(context.Background(), plugin.BuildInput{
				FilePath:  diskPath,
				Contents:  contents,
				OutputExt: urlExt,
			})
			if err != nil {
				return nil, result.Lookups, fmt.Errorf("transform failed for %s: %w", diskPath, err)
			}
			s.metrics.transformsTotal.WithLabelValues(candidate.Name).Inc()
		}
	}

	if urlExt == ".js" {
		resolver := resolve.NewImportResolver(resolve.Context{
			File:          diskPath,
			DependencyDir: s.cfg.InstallOptions.Dest,
			ImportMap:     s.deps,
			Dev:           true,
			Mounts:        s.table,
			BaseURL:       s.cfg.BuildOptions.BaseURL,
		})
		contents = resolve.RewriteImports(contents, func(spec string) (string, bool) {
			resolved, ok := resolver(spec)
			if !ok {
				log.Warn().Str("file", diskPath).Str("import", spec).Msg("Unresolvable bare import")
			}
			return resolved, ok
		})
	}

	return contents, result.Lookups, nil
}

func (s *Server) hasTransform(sourceExt string) bool {
	_, ok := s.pipe.First(sourceExt)
	return ok
}

// notFound reports a resolution miss with every location that was tried,
// so the 404 itself explains what to fix.
func (s *Server) notFound(c *fiber.Ctx, url string, lookups []string) error {
	s.metrics.resolutionMisses.Inc()

	var b strings.Builder
	fmt.Fprintf(&b, "Not found: %s\n", url)
	if len(lookups) > 0 {
		b.WriteString("Checked:\n")
		for _, lookup := range lookups {
			fmt.Fprintf(&b, "  %s\n", lookup)
		}
	} else {
		b.WriteString("No mounted directory serves this URL.\n")
	}
	return c.Status(fiber.StatusNotFound).SendString(b.String())
}

// injectLivereload adds the reload client to an HTML page.
func injectLivereload(body []byte) []byte {
	html := string(body)
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return []byte(html[:idx] + livereloadScript + html[idx:])
	}
	return append(body, []byte(livereloadScript)...)
}

// proxyModule wraps an asset so it can be imported from JS. CSS is
// injected into the document; everything else exports its text.
func proxyModule(assetURL string, contents []byte) string {
	quoted := strconv.Quote(string(contents))
	if strings.HasSuffix(assetURL, ".css") {
		return fmt.Sprintf(`const code = %s;
const style = document.createElement("style");
style.setAttribute("data-href", %q);
style.textContent = code;
document.head.appendChild(style);
export default code;
`, quoted, assetURL)
	}
	return fmt.Sprintf("export default %s;\n", quoted)
}
