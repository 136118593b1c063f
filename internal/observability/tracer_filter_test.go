package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
)

func newRecordingProvider() (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	exporter := tracetest.NewInMemoryExporter()

	return exporter, sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
}

func TestFilteringProvider_SuppressesProviderSpans(t *testing.T) {
	t.Parallel()

	exporter, base := newRecordingProvider()
	tracer := observability.NewFilteringTracerProvider(base).Tracer("codefix")

	ctx, root := tracer.Start(context.Background(), "codefix.list_actions")
	_, child := tracer.Start(ctx, observability.ProviderSpanName)
	child.End()
	root.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "codefix.list_actions", spans[0].Name)
}

func TestFilteringProvider_CustomNames(t *testing.T) {
	t.Parallel()

	exporter, base := newRecordingProvider()
	tracer := observability.NewFilteringTracerProvider(base, "hot").Tracer("codefix")

	_, hot := tracer.Start(context.Background(), "hot")
	hot.End()

	_, provider := tracer.Start(context.Background(), observability.ProviderSpanName)
	provider.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, observability.ProviderSpanName, spans[0].Name)
}

func TestFilteringProvider_NoopSpanIsUsable(t *testing.T) {
	t.Parallel()

	tracer := observability.NewFilteringTracerProvider(nooptrace.NewTracerProvider()).Tracer("codefix")

	ctx, span := tracer.Start(context.Background(), observability.ProviderSpanName)
	span.SetName("renamed")
	span.End()

	assert.NotNil(t, ctx)
}
