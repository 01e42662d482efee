package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// EventEnvelope wraps every domain event published to the broker.
type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt string      `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NewEvent stamps a domain event.
func NewEvent(name string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		EventType:  "domain_event",
		EventName:  name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:    payload,
	}
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

// HeadersFromContext builds broker headers from the request id and active span in ctx.
func HeadersFromContext(ctx context.Context) map[string]string {
	traceID := ""
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	return BuildHeaders(RequestIDFromContext(ctx), traceID)
}

type requestIDKey struct{}

// WithRequestID stores the request id for downstream event headers.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
