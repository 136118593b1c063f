package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// ProviderSpanName is the per-provider span opened by the engine.
const ProviderSpanName = "codefix.provider"

// filteringTracerProvider hands out tracers that replace hot-path spans with
// no-op spans.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate   trace.TracerProvider
	noop       trace.TracerProvider
	suppressed map[string]bool
}

// NewFilteringTracerProvider wraps delegate so the given span names, or the
// per-provider span when none are given, are never exported.
func NewFilteringTracerProvider(delegate trace.TracerProvider, spanNames ...string) trace.TracerProvider {
	if len(spanNames) == 0 {
		spanNames = []string{ProviderSpanName}
	}

	suppressed := make(map[string]bool, len(spanNames))
	for _, name := range spanNames {
		suppressed[name] = true
	}

	return &filteringTracerProvider{
		delegate:   delegate,
		noop:       nooptrace.NewTracerProvider(),
		suppressed: suppressed,
	}
}

// Tracer returns a filtering tracer for name.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{
		delegate: f.delegate.Tracer(name, opts...),
		noop:     f.noop.Tracer(name, opts...),
		suppress: f.suppressed,
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
	suppress map[string]bool
}

// Start creates a span, or a no-op span for suppressed names. A suppressed
// span keeps the parent span context so children still join the trace.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if f.suppress[name] {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}
