// internal/logging/context.go
package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if pageID := PageIDFromContext(ctx); pageID != "" {
		fields = append(fields, zap.String("page.id", pageID))
	}
	if formID := FormIDFromContext(ctx); formID != "" {
		fields = append(fields, zap.String("form.id", formID))
	}
	if fieldID := FieldIDFromContext(ctx); fieldID != "" {
		fields = append(fields, zap.String("field.id", fieldID))
	}

	return fields
}

type pageCtxKey struct{}
type formCtxKey struct{}
type fieldCtxKey struct{}
type loggerCtxKey struct{}

// WithPageID tags the context with the editor session it belongs to.
func WithPageID(ctx context.Context, pageID string) context.Context {
	return context.WithValue(ctx, pageCtxKey{}, pageID)
}

// PageIDFromContext returns the page id, or "".
func PageIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(pageCtxKey{}).(string)
	return s
}

// WithFormID tags the context with a form id.
func WithFormID(ctx context.Context, formID string) context.Context {
	return context.WithValue(ctx, formCtxKey{}, formID)
}

// FormIDFromContext returns the form id, or "".
func FormIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(formCtxKey{}).(string)
	return s
}

// WithFieldID tags the context with an editable field id.
func WithFieldID(ctx context.Context, fieldID string) context.Context {
	return context.WithValue(ctx, fieldCtxKey{}, fieldID)
}

// FieldIDFromContext returns the field id, or "".
func FieldIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(fieldCtxKey{}).(string)
	return s
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}
