// Package tessera is the entry point for building and rendering markup
// trees.
//
// An Engine turns a loaded configuration into immutable render options
// once, then creates and renders nodes with them:
//
//	cfg, err := config.Load(".")
//	engine, err := tessera.New(cfg)
//
//	page := engine.Create("main", func(c *markup.Context) markup.Slot {
//	    c.Create("h1", "Hello")
//	    return markup.Slot{}
//	})
//	html, err := engine.Render(ctx, page)
//
// The engine is safe for concurrent use. Each render owns its own node and
// context graph.
package tessera

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/tessera/internal/config"
	"github.com/vango-dev/tessera/internal/logging"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/security"
	"github.com/vango-dev/tessera/pkg/telemetry"
)

// Version is the tessera release.
const Version = "0.3.0"

// Engine creates and renders nodes with options derived from a Config.
type Engine struct {
	cfg     *config.Config
	opts    *markup.Options
	logger  *slog.Logger
	policy  *security.Policy
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// Option configures New.
type Option func(*engineOptions)

type engineOptions struct {
	logger    *slog.Logger
	logOutput io.Writer
	registry  prometheus.Registerer
	provider  trace.TracerProvider
	host      markup.Host
}

// WithLogger sets the logger. It overrides the logging section of the
// configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithLogOutput sets where the configured logger writes (default stderr).
func WithLogOutput(w io.Writer) Option {
	return func(o *engineOptions) {
		o.logOutput = w
	}
}

// WithRegistry sets the Prometheus registry used when metrics are enabled.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *engineOptions) {
		o.registry = reg
	}
}

// WithTracerProvider sets the tracer provider used when tracing is
// enabled. Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *engineOptions) {
		o.provider = tp
	}
}

// WithHost sets the default host for renders.
func WithHost(h markup.Host) Option {
	return func(o *engineOptions) {
		o.host = h
	}
}

// New creates an Engine. A nil cfg uses config.New().
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eo := engineOptions{
		logOutput: os.Stderr,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&eo)
	}

	logger := eo.logger
	if logger == nil {
		logger = logging.New(eo.logOutput, cfg.Logging.Level, cfg.Logging.Format)
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		policy: security.New(security.Config{
			AllowedImageDomains: cfg.Security.AllowedImageDomains,
			AllowDataImages:     cfg.Security.AllowDataImages,
		}),
	}

	mo := markup.Options{
		MaxDepth:        cfg.Render.MaxDepth,
		Host:            eo.host,
		Validator:       e.policy,
		Logger:          logger,
		HideActionAttrs: !cfg.ActionAttrs(),
	}
	if cfg.Metrics.Enabled {
		e.metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(eo.registry),
		)
		mo.Observer = e.metrics
	}
	if cfg.Tracing.Enabled {
		tp := eo.provider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		e.tracer = telemetry.NewTracerFrom(tp, cfg.Tracing.TracerName)
	}
	e.opts = markup.NewOptions(mo)

	logger.Debug("engine ready",
		"max_depth", e.opts.MaxDepth,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
	)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Options returns the render options shared by every node the engine
// creates.
func (e *Engine) Options() *markup.Options { return e.opts }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Policy returns the security policy built from the configuration.
func (e *Engine) Policy() *security.Policy { return e.policy }

// Metrics returns the render metrics, or nil when metrics are disabled.
func (e *Engine) Metrics() *telemetry.Metrics { return e.metrics }

// Create builds an element node with the engine's options.
func (e *Engine) Create(tag string, args ...any) *markup.Node {
	return e.opts.Create(tag, args...)
}

// Text creates an escaped text node with the engine's options.
func (e *Engine) Text(s string) *markup.Node {
	return e.opts.Text(s)
}

// Raw creates a trusted markup node with the engine's options.
func (e *Engine) Raw(html string) *markup.Node {
	return e.opts.Raw(html)
}

// NewContext returns a top-level context for one render. A non-nil host
// replaces the engine's host for everything created through the context.
func (e *Engine) NewContext(host markup.Host) *markup.Context {
	if host == nil {
		return markup.NewContext(e.opts)
	}
	return markup.NewContext(e.opts.WithHost(host))
}

// Render serializes n. The context is used for tracing only; rendering is
// not cancelled.
func (e *Engine) Render(ctx context.Context, n *markup.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	start := time.Now()

	var end func(int, error)
	if e.tracer != nil {
		_, end = e.tracer.StartRender(ctx, n.Tag(), n.Index())
	}

	html, err := n.Render()

	if end != nil {
		end(len(html), err)
	}
	if e.metrics != nil {
		e.metrics.ObserveRender(time.Since(start), len(html), err)
	}
	return html, err
}

// RenderTo writes the serialized node to w. Nothing is written when
// rendering fails.
func (e *Engine) RenderTo(ctx context.Context, w io.Writer, n *markup.Node) error {
	html, err := e.Render(ctx, n)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}

// RenderDocument is Render with a doctype prepended when n is an <html>
// element.
func (e *Engine) RenderDocument(ctx context.Context, n *markup.Node) (string, error) {
	html, err := e.Render(ctx, n)
	if err != nil {
		return "", err
	}
	if n != nil && n.Tag() == "html" {
		html = "<!DOCTYPE html>" + html
	}
	return html, nil
}
