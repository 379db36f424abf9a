// Package oteltrace adapts the global OpenTelemetry tracer to the
// observability.Tracer port. The host is responsible for initializing an
// sdktrace.TracerProvider and exporter, then calling otel.SetTracerProvider.
package oteltrace

import (
	"context"

	"github.com/walletpay/walletpay-go/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

func New(name string) observability.Tracer {
	if name == "" {
		name = "walletpay"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
