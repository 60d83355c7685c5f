// Package handler serves rendered pages over HTTP.
//
// Each request gets its own build context whose host is a fresh
// markup.ActionRegistry carrying the request's CSRF token:
//
//	h := handler.New(engine, func(r *http.Request, c *markup.Context) *markup.Node {
//	    return c.Create("main", c.Create("h1", "Hello"))
//	})
//	http.Handle("/", h)
//
// Routes builds a chi router serving several pages with request ids and
// panic recovery.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/markup"
)

// PageFunc builds the page for a request. Nodes should be created through
// c so they render with the request's host. A nil result is a 404.
type PageFunc func(r *http.Request, c *markup.Context) *markup.Node

// Renderer renders pages. *tessera.Engine implements it.
type Renderer interface {
	NewContext(host markup.Host) *markup.Context
	RenderDocument(ctx context.Context, n *markup.Node) (string, error)
	Logger() *slog.Logger
}

// Config configures a Handler.
type Config struct {
	// CookieName is the CSRF cookie name (default CSRFCookieName).
	CookieName string

	// Secret signs generated CSRF tokens and is required to reuse a
	// client token. Nil accepts any non-empty token.
	Secret []byte

	// SecureCookies forces the Secure flag on the CSRF cookie.
	SecureCookies bool

	// SameSite is the CSRF cookie SameSite mode (default Lax).
	SameSite http.SameSite
}

// Option configures a Handler.
type Option func(*Config)

// WithSecret sets the CSRF signing secret.
func WithSecret(secret []byte) Option {
	return func(c *Config) { c.Secret = secret }
}

// WithCookieName sets the CSRF cookie name.
func WithCookieName(name string) Option {
	return func(c *Config) { c.CookieName = name }
}

// WithSecureCookies forces the Secure cookie flag.
func WithSecureCookies(secure bool) Option {
	return func(c *Config) { c.SecureCookies = secure }
}

// Handler renders one page per request.
type Handler struct {
	renderer Renderer
	page     PageFunc
	cfg      Config
}

// New creates a Handler.
func New(r Renderer, page PageFunc, opts ...Option) *Handler {
	cfg := Config{
		CookieName: CSRFCookieName,
		SameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = CSRFCookieName
	}
	return &Handler{renderer: r, page: page, cfg: cfg}
}

type registryKey struct{}

// Registry returns the action registry of the request being rendered, or
// nil outside a Handler.
func Registry(ctx context.Context) *markup.ActionRegistry {
	reg, _ := ctx.Value(registryKey{}).(*markup.ActionRegistry)
	return reg
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.renderer.Logger()
	token, reused := h.requestToken(r)

	reg := markup.NewActionRegistry(token)
	r = r.WithContext(context.WithValue(r.Context(), registryKey{}, reg))
	c := h.renderer.NewContext(reg)

	n := h.page(r, c)
	if n == nil {
		http.NotFound(w, r)
		return
	}

	html, err := h.renderer.RenderDocument(r.Context(), n)
	if err != nil {
		log.Error("page render failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"code", errors.CodeOf(err),
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !reused {
		h.setCookie(w, r, token)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write([]byte(html)); err != nil {
		log.Debug("write failed", "path", r.URL.Path, "error", err)
	}
}

// Routes returns a chi router serving each page at its pattern.
func Routes(r Renderer, pages map[string]PageFunc, opts ...Option) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	for pattern, page := range pages {
		router.Method(http.MethodGet, pattern, New(r, page, opts...))
	}
	return router
}
