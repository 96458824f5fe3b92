// Package tracing provides the OpenTelemetry tracer used by the refresher.
//
// Spans are created through the global tracer provider, so they are no-ops
// until a provider is installed with otel.SetTracerProvider.
//
//	ctx, span := tracing.StartSpan(ctx, "refresh.scan", attribute.String("root", root))
//	defer span.End()
package tracing
