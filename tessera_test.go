package tessera

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/tessera/internal/config"
	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/internal/logging"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/security"
)

func newTestEngine(t *testing.T, cfg *config.Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	e, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, nil)

	if got := e.Options().MaxDepth; got != config.DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", got, config.DefaultMaxDepth)
	}
	if e.Metrics() != nil {
		t.Error("Metrics() should be nil when metrics are disabled")
	}
	if e.Options().Observer != nil {
		t.Error("Observer should be nil when metrics are disabled")
	}
	if e.Policy() == nil {
		t.Error("Policy() returned nil")
	}
	if e.Config() == nil {
		t.Error("Config() returned nil")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.Render.MaxDepth = 0

	_, err := New(cfg, WithLogger(logging.NewNop()))
	if err == nil {
		t.Fatal("New() expected error for maxDepth 0")
	}
	if code := errors.CodeOf(err); code != "E123" {
		t.Errorf("code = %q, want E123", code)
	}
}

func TestEngineRender(t *testing.T) {
	e := newTestEngine(t, nil)

	page := e.Create("div", func(c *markup.Context) markup.Slot {
		c.Create("span", "Hi")
		return markup.Slot{}
	})

	got, err := e.Render(context.Background(), page)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := "<div><span>Hi</span></div>"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestEngineRenderNil(t *testing.T) {
	e := newTestEngine(t, nil)

	got, err := e.Render(context.Background(), nil)
	if err != nil || got != "" {
		t.Errorf("Render(nil) = %q, %v; want empty, nil", got, err)
	}
}

func TestEngineMaxDepthFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.Render.MaxDepth = 2
	e := newTestEngine(t, cfg)

	nest := func(levels int) *markup.Node {
		var build func(int) markup.Block
		build = func(n int) markup.Block {
			return func(c *markup.Context) markup.Slot {
				if n == 1 {
					return markup.Literal("leaf")
				}
				c.Create("div", build(n-1))
				return markup.Slot{}
			}
		}
		return e.Create("div", build(levels))
	}

	if _, err := e.Render(context.Background(), nest(2)); err != nil {
		t.Errorf("depth 2 error = %v, want nil", err)
	}
	_, err := e.Render(context.Background(), nest(3))
	if !errors.Is(err, markup.ErrDepthLimitExceeded) {
		t.Errorf("depth 3 error = %v, want E140", err)
	}
}

func TestEngineHidesActionAttrs(t *testing.T) {
	cfg := config.New()
	emit := false
	cfg.Render.EmitActionAttrs = &emit
	e := newTestEngine(t, cfg)

	n := e.Create("button", "Go").BindAction("click", "save")
	got, err := e.Render(context.Background(), n)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, "data-on-click") {
		t.Errorf("Render() = %q, want no action attributes", got)
	}
}

func TestEngineSecurityFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.Security.AllowedImageDomains = []string{"cdn.example.com"}
	e := newTestEngine(t, cfg)

	allowed := e.Create("img").SetSrc("https://cdn.example.com/a.png", security.ImageOptions{})
	if _, ok := allowed.Attr("src"); !ok {
		t.Error("src on allowed domain was dropped")
	}
	blocked := e.Create("img").SetSrc("https://evil.example.net/a.png", security.ImageOptions{})
	if _, ok := blocked.Attr("src"); ok {
		t.Error("src on unlisted domain was kept")
	}
}

func TestEngineMetrics(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = true
	reg := prometheus.NewRegistry()
	e := newTestEngine(t, cfg, WithRegistry(reg))

	if e.Metrics() == nil {
		t.Fatal("Metrics() = nil with metrics enabled")
	}
	e.Create("div").SetStyle("background:url(javascript:x)")
	if _, err := e.Render(context.Background(), e.Create("p", "ok")); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := testutil.CollectAndCount(reg, "tessera_renders_total"); got != 1 {
		t.Errorf("tessera_renders_total series = %d, want 1", got)
	}
	if got := testutil.CollectAndCount(reg, "tessera_rejections_total"); got != 1 {
		t.Errorf("tessera_rejections_total series = %d, want 1", got)
	}
}

func TestEngineTracing(t *testing.T) {
	cfg := config.New()
	cfg.Tracing.Enabled = true
	e := newTestEngine(t, cfg, WithTracerProvider(noop.NewTracerProvider()))

	got, err := e.Render(context.Background(), e.Create("p", "traced"))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "<p>traced</p>" {
		t.Errorf("Render() = %q", got)
	}
}

func TestEngineNewContextHost(t *testing.T) {
	e := newTestEngine(t, nil)
	reg := markup.NewActionRegistry("tok-1")

	c := e.NewContext(reg)
	if got := c.CSRFToken(); got != "tok-1" {
		t.Errorf("CSRFToken() = %q, want tok-1", got)
	}
	if _, ok := e.Options().Host.(*markup.ActionRegistry); ok {
		t.Error("NewContext(host) mutated the engine options")
	}

	plain := e.NewContext(nil)
	if got := plain.CSRFToken(); got != "" {
		t.Errorf("CSRFToken() = %q, want empty", got)
	}
}

func TestEngineRenderTo(t *testing.T) {
	e := newTestEngine(t, nil)

	var buf bytes.Buffer
	if err := e.RenderTo(context.Background(), &buf, e.Create("em", "x")); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if buf.String() != "<em>x</em>" {
		t.Errorf("RenderTo() wrote %q", buf.String())
	}

	buf.Reset()
	bad := e.Create("div", func(c *markup.Context) markup.Slot {
		return markup.Fail(errors.New("E161"))
	})
	if err := e.RenderTo(context.Background(), &buf, bad); err == nil {
		t.Error("RenderTo() expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("RenderTo() wrote %q on failure", buf.String())
	}
}

func TestEngineRenderDocument(t *testing.T) {
	e := newTestEngine(t, nil)

	got, err := e.RenderDocument(context.Background(), e.Create("html", e.Create("body")))
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	if want := "<!DOCTYPE html><html><body></body></html>"; got != want {
		t.Errorf("RenderDocument() = %q, want %q", got, want)
	}

	got, _ = e.RenderDocument(context.Background(), e.Create("div"))
	if got != "<div></div>" {
		t.Errorf("RenderDocument(div) = %q", got)
	}
}

func TestEngineConfiguredLogger(t *testing.T) {
	cfg := config.New()
	cfg.Logging.Level = "warn"
	var buf bytes.Buffer
	e, err := New(cfg, WithLogOutput(&buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	e.Create("a").SetAttribute("onclick", "x()")
	if !strings.Contains(buf.String(), "code=E103") {
		t.Errorf("log = %q, want code=E103", buf.String())
	}
	if e.Logger().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("logger should not be enabled at info")
	}
}
