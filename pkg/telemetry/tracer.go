package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the application
const TracerName = "github.com/verustcode/rulemap"

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span.
// The caller is responsible for calling span.End() when the operation is complete.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SetSpanError records an error on the span and sets its status to error
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK sets the span status to OK
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Common attribute keys for consistent naming
var (
	AttrRunID          = attribute.Key("run.id")
	AttrStage          = attribute.Key("run.stage")
	AttrInputPath      = attribute.Key("input.path")
	AttrOutputPath     = attribute.Key("output.path")
	AttrNodeCount      = attribute.Key("tree.nodes")
	AttrMappingEntries = attribute.Key("mapping.entries")
)

// WithRunAttributes returns span start options identifying a run stage
func WithRunAttributes(runID, stage string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrRunID.String(runID),
		AttrStage.String(stage),
	)
}
