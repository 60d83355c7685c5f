package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/tessera/internal/errors"
)

// DefaultTracerName is the tracer name used when none is configured.
const DefaultTracerName = "tessera"

// Tracer wraps renders in OpenTelemetry spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer from the global tracer provider. Configure
// the provider in main() before rendering:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracer(name string) *Tracer {
	return NewTracerFrom(otel.GetTracerProvider(), name)
}

// NewTracerFrom returns a Tracer from tp.
func NewTracerFrom(tp trace.TracerProvider, name string) *Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return &Tracer{tracer: tp.Tracer(name)}
}

// StartRender starts a span for rendering the node with the given tag and
// arena index. The returned function ends the span, recording the output
// size and any error.
func (t *Tracer) StartRender(ctx context.Context, tag string, index uint64) (context.Context, func(size int, err error)) {
	spanCtx, span := t.tracer.Start(ctx, "tessera.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tessera.tag", tag),
			attribute.Int64("tessera.node", int64(index)),
		),
	)

	return spanCtx, func(size int, err error) {
		defer span.End()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if code := errors.CodeOf(err); code != "" {
				span.SetAttributes(attribute.String("tessera.error_code", code))
			}
			return
		}
		span.SetAttributes(attribute.Int("tessera.bytes", size))
		span.SetStatus(codes.Ok, "")
	}
}
