// Package telemetry configures OpenTelemetry tracing. Finished spans are written to the
// application logger, so tracing needs no collector to be useful.
package telemetry

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "zoetrope"

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(ctx context.Context) error

// Setup installs the global tracer provider. When disabled a no-op provider is installed.
func Setup(enabled bool, logger *logrus.Logger) (trace.TracerProvider, ShutdownFunc) {
	if !enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }
	}

	tp := NewTracerProvider(sdktrace.WithBatcher(NewLogExporter(logger)))
	otel.SetTracerProvider(tp)
	logger.Info("Tracing enabled, spans are logged at debug level")
	return tp, tp.Shutdown
}

// NewTracerProvider builds an always-sampling provider tagged with the service name
func NewTracerProvider(opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

// LogExporter writes finished spans to a logrus logger
type LogExporter struct {
	logger  *logrus.Logger
	mu      sync.Mutex
	stopped bool
}

// NewLogExporter creates an exporter that logs spans at debug level
func NewLogExporter(logger *logrus.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// ExportSpans logs every span with its timing, status and attributes
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}

	for _, span := range spans {
		fields := logrus.Fields{
			"trace_id":    span.SpanContext().TraceID().String(),
			"span_id":     span.SpanContext().SpanID().String(),
			"span":        span.Name(),
			"duration_ms": span.EndTime().Sub(span.StartTime()).Milliseconds(),
			"status":      span.Status().Code.String(),
		}
		if span.Parent().IsValid() {
			fields["parent_span_id"] = span.Parent().SpanID().String()
		}
		for _, kv := range span.Attributes() {
			fields["attr."+string(kv.Key)] = kv.Value.AsInterface()
		}

		entry := e.logger.WithFields(fields)
		if span.Status().Description != "" {
			entry = entry.WithField("status_message", span.Status().Description)
		}
		entry.Debug("Span finished")
	}
	return nil
}

// Shutdown stops the exporter; later exports are dropped
func (e *LogExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	return nil
}
