package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/authgate/prehook"

// Tracer provides OpenTelemetry tracing for prehook.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new prehook tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartRegisterSpan starts a new span for a trigger registration.
func (t *Tracer) StartRegisterSpan(ctx context.Context, opID, projectID, endpointID, eventType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "prehook.register",
		trace.WithAttributes(
			attribute.String("prehook.operation_id", opID),
			attribute.String("prehook.project_id", projectID),
			attribute.String("prehook.endpoint_id", endpointID),
			attribute.String("prehook.event_type", eventType),
		),
	)
}

// StartUnregisterSpan starts a new span for a trigger unregistration.
func (t *Tracer) StartUnregisterSpan(ctx context.Context, opID, projectID, endpointID, eventType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "prehook.unregister",
		trace.WithAttributes(
			attribute.String("prehook.operation_id", opID),
			attribute.String("prehook.project_id", projectID),
			attribute.String("prehook.endpoint_id", endpointID),
			attribute.String("prehook.event_type", eventType),
		),
	)
}

// EndSpan ends a registrar span, attaching the error message when present.
func (t *Tracer) EndSpan(span trace.Span, errMsg string) {
	if errMsg != "" {
		span.SetAttributes(attribute.String("prehook.error", errMsg))
	}
	span.End()
}
