package middleware

import (
	"net/http"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/pkg/logger"

	"github.com/google/uuid"
)

const (
	TraceHeader     = "X-Trace-ID"
	requestIDHeader = "X-Request-ID"
	maxTraceIDLen   = 64
)

// RequestID reuses a caller supplied trace id or mints one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = r.Header.Get(requestIDHeader)
		}
		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = uuid.NewString()
		}

		ctx := internal.ContextWithTraceID(r.Context(), traceID)
		ctx = logger.With(ctx, "traceID", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
