package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/tessera/pkg/markup"
)

var _ markup.Observer = (*Metrics)(nil)

func TestMetricsObserveRender(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.ObserveRender(5*time.Millisecond, 512, nil)
	m.ObserveRender(time.Millisecond, 128, nil)
	m.ObserveRender(time.Millisecond, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.rendersTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("renders_total{status=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rendersTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("renders_total{status=error} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.renderDuration); got != 1 {
		t.Errorf("render_duration_seconds series = %d, want 1", got)
	}
}

func TestMetricsObserverHooks(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.Rejected("E100", "div")
	m.Rejected("E100", "div")
	m.Rejected("E103", "a")
	m.DepthExceeded("section", 51)

	if got := testutil.ToFloat64(m.rejections.WithLabelValues("E100", "div")); got != 2 {
		t.Errorf("rejections_total{E100,div} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("E103", "a")); got != 1 {
		t.Errorf("rejections_total{E103,a} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.depthExceeded); got != 1 {
		t.Errorf("depth_exceeded_total = %v, want 1", got)
	}
}

func TestMetricsCountRejectionsFromNodes(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	c := markup.NewContext(markup.NewOptions(markup.Options{Observer: m, Logger: discardLogger()}))

	c.Create("div").SetStyle("background:url(javascript:alert(1))")
	c.Create("a").SetAttribute("onclick", "x()")

	if got := testutil.ToFloat64(m.rejections.WithLabelValues("E100", "div")); got != 1 {
		t.Errorf("rejections_total{E100,div} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("E103", "a")); got != 1 {
		t.Errorf("rejections_total{E103,a} = %v, want 1", got)
	}
}

func TestMetricsNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("site"), WithSubsystem("pages"))
	m.ObserveRender(time.Millisecond, 10, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "site_pages_renders_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected site_pages_renders_total to be registered")
	}
}

func TestTracerStartRenderKeepsParent(t *testing.T) {
	tracer := NewTracerFrom(noop.NewTracerProvider(), "")

	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), parent)

	spanCtx, end := tracer.StartRender(ctx, "div", 7)
	if got := trace.SpanContextFromContext(spanCtx); got.TraceID() != parent.TraceID() {
		t.Errorf("span trace id = %v, want %v", got.TraceID(), parent.TraceID())
	}
	end(10, nil)
	end2ctx, end2 := tracer.StartRender(context.Background(), "p", 8)
	if end2ctx == nil {
		t.Fatal("StartRender returned a nil context")
	}
	end2(0, errors.New("failed"))
}
