package sentry

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// transactionKey is the context key for Sentry transactions
type transactionKey struct{}

// spanKey is the context key for Sentry spans
type spanKey struct{}

// StartTransaction starts a new Sentry transaction and returns a context with it.
func StartTransaction(ctx context.Context, name string, operation string) context.Context {
	span := sentry.StartTransaction(ctx, name)
	span.Op = operation
	ctx = span.Context()
	ctx = context.WithValue(ctx, transactionKey{}, span)
	return ctx
}

// StartSpan starts a new span within the current transaction.
func StartSpan(ctx context.Context, operation string) (context.Context, func()) {
	span := sentry.StartSpan(ctx, operation)
	ctx = span.Context()
	ctx = context.WithValue(ctx, spanKey{}, span)

	return ctx, span.Finish
}

// GetTransaction retrieves the current transaction from context.
func GetTransaction(ctx context.Context) *sentry.Span {
	if span, ok := ctx.Value(transactionKey{}).(*sentry.Span); ok {
		return span
	}
	// Try to get from Sentry's internal context
	if span := sentry.SpanFromContext(ctx); span != nil && span.IsTransaction() {
		return span
	}
	return nil
}

// GetSpan retrieves the current span from context.
func GetSpan(ctx context.Context) *sentry.Span {
	if span, ok := ctx.Value(spanKey{}).(*sentry.Span); ok {
		return span
	}
	return GetTransaction(ctx)
}

// enrichEventFromTransaction enriches a Sentry event with transaction data.
func enrichEventFromTransaction(ctx context.Context, event *sentry.Event) {
	if span := GetSpan(ctx); span != nil {
		event.Transaction = span.Name
		if traceID := span.TraceID; traceID != (sentry.TraceID{}) {
			event.Contexts["trace"] = sentry.Context{
				"trace_id":       traceID.String(),
				"span_id":        span.SpanID.String(),
				"parent_span_id": span.ParentSpanID.String(),
			}
		}

		// Add performance data
		if span.EndTime.After(span.StartTime) {
			duration := span.EndTime.Sub(span.StartTime)
			event.Extra["transaction.duration_ms"] = duration.Milliseconds()
		}
	}
}
