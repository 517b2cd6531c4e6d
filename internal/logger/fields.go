package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging.
const (
	FieldRequestID  = "request_id"
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldHost       = "host"
	FieldURL        = "url"
	FieldStatus     = "status"
	FieldAttempt    = "attempt"

	FieldMention    = "mention"
	FieldEntityType = "entity_type"
	FieldLanguage   = "language"
	FieldEntityID   = "entity_id"
	FieldProperty   = "property"
	FieldQuery      = "query"
	FieldNodeType   = "node_type"
	FieldSimplifier = "simplifier"
)

type contextKey string

const requestIDKey contextKey = "logger_request_id"

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID stored in ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns base enriched with the request ID carried by ctx.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if id := RequestIDFromContext(ctx); id != "" {
		return base.With(FieldRequestID, id)
	}
	return base
}
