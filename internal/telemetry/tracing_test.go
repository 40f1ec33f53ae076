package telemetry

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestLogExporter_LogsSpans(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tp := NewTracerProvider(sdktrace.WithSyncer(NewLogExporter(logger)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, parent := tp.Tracer("test").Start(context.Background(), "collection.Carousel")
	_, child := tp.Tracer("test").Start(ctx, "store.GetAllMedias")
	child.SetAttributes(attribute.Int("items", 3))
	child.SetStatus(codes.Error, "boom")
	child.End()
	parent.End()

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "Span finished", first.Message)
	assert.Equal(t, "store.GetAllMedias", first.Data["span"])
	assert.Equal(t, int64(3), first.Data["attr.items"])
	assert.Equal(t, "boom", first.Data["status_message"])
	assert.Contains(t, first.Data, "parent_span_id")

	second := entries[1]
	assert.Equal(t, "collection.Carousel", second.Data["span"])
	assert.NotContains(t, second.Data, "parent_span_id")
}

func TestLogExporter_DropsAfterShutdown(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	exporter := NewLogExporter(logger)
	require.NoError(t, exporter.Shutdown(context.Background()))

	recorder := tracetest.NewSpanRecorder()
	tp := NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "late")
	span.End()

	require.NoError(t, exporter.ExportSpans(context.Background(), recorder.Ended()))
	assert.Empty(t, hook.AllEntries())
}

func TestSetup_Disabled(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tp, shutdown := Setup(false, logger)
	require.NotNil(t, tp)

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tp, shutdown := Setup(true, logger)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "real")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
