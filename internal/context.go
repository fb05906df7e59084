package internal

import (
	"context"
)

type ctxKey string

const (
	ContextUserKey  ctxKey = "userID"
	ContextPoolKey  ctxKey = "userType"
	ContextTraceKey ctxKey = "traceID"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextUserKey)
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// UserTypeFromContext returns the account pool of the authenticated caller.
func UserTypeFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextPoolKey)
}

func ContextWithUserType(ctx context.Context, pool string) context.Context {
	return context.WithValue(ctx, ContextPoolKey, pool)
}

// TraceIDFromContext returns the request's trace id, set by the request-id middleware.
func TraceIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextTraceKey)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ContextTraceKey, traceID)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
