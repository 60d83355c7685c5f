package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera"
	"github.com/vango-dev/tessera/internal/watch"
	"github.com/vango-dev/tessera/pkg/handler"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/treefile"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Preview a directory of tree documents over HTTP",
		Long: `Serve every tree document under dir (default ".") as a page.

Documents are reloaded on each request, so edits show up on refresh.
The directory is watched and routes are rebuilt when documents are added
or removed (disable with --no-watch). When metrics are enabled,
Prometheus metrics are served at /metrics.

Examples:
  tessera serve pages
  tessera serve pages --addr :8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runServe(g, dir, addr, !noWatch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not rebuild routes when documents are added or removed")

	return cmd
}

func runServe(g *globalFlags, dir, addr string, watchDir bool) error {
	engine, err := newEngine(g)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = engine.Config().Server.Addr
	}

	preview, err := newLivePreview(engine, dir)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           preview,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchDir {
		w := watch.New(watch.Config{Paths: []string{dir}})
		w.OnChange(preview.handleChanges)
		go w.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		engine.Logger().Info("server starting", "address", addr, "dir", dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		engine.Logger().Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// previewRouter mounts one route per document found in dir. Index pages
// are also served at their directory path.
func previewRouter(engine *tessera.Engine, dir string) (http.Handler, error) {
	docs, err := treefile.LoadDir(dir, engine.Options())
	if err != nil {
		return nil, err
	}

	pages := make(map[string]handler.PageFunc, len(docs))
	for _, doc := range docs {
		source := doc.Source
		page := func(r *http.Request, c *markup.Context) *markup.Node {
			fresh, err := treefile.Load(source, c.Options())
			if err != nil {
				// Failing the render makes the handler answer 500.
				return c.Create("main", func(*markup.Context) markup.Slot {
					return markup.Fail(err)
				})
			}
			return fresh.Node
		}

		route := "/" + doc.Path
		pages[route] = page
		if strings.HasSuffix(route, "/index.html") {
			pages[strings.TrimSuffix(route, "index.html")] = page
		}
	}
	engine.Logger().Debug("preview routes", "count", len(pages))

	// handler.Routes adds request IDs and panic recovery.
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	if engine.Metrics() != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Mount("/", handler.Routes(engine, pages))
	return r, nil
}

// livePreview serves the current preview router and swaps in a new one
// when the set of documents changes.
type livePreview struct {
	engine  *tessera.Engine
	dir     string
	current atomic.Pointer[http.Handler]
}

func newLivePreview(engine *tessera.Engine, dir string) (*livePreview, error) {
	p := &livePreview{engine: engine, dir: dir}
	if err := p.rebuild(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *livePreview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*p.current.Load()).ServeHTTP(w, r)
}

func (p *livePreview) rebuild() error {
	router, err := previewRouter(p.engine, p.dir)
	if err != nil {
		return err
	}
	p.current.Store(&router)
	return nil
}

// handleChanges rebuilds routes when a document was created or removed.
// Edits are already picked up per request. A failed rebuild keeps the
// previous routes.
func (p *livePreview) handleChanges(changes []watch.Change) {
	log := p.engine.Logger()
	structural := false
	for _, c := range changes {
		if c.Type != watch.ChangeDocument {
			continue
		}
		log.Debug("document changed", "path", c.Path, "op", c.Op)
		if c.Op != watch.OpWrite {
			structural = true
		}
	}
	if !structural {
		return
	}
	if err := p.rebuild(); err != nil {
		log.Error("route rebuild failed", "dir", p.dir, "error", err)
		return
	}
	log.Info("routes rebuilt", "dir", p.dir)
}
