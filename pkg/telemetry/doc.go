// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for renders.
//
// Metrics implements markup.Observer and is normally installed by the
// engine when metrics are enabled in the configuration:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	opts := markup.NewOptions(markup.Options{Observer: m})
//
// Tracer spans use the global tracer provider unless one is passed to
// NewTracerFrom.
package telemetry
