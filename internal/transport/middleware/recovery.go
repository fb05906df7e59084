package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/frahmantamala/hostel-management/pkg/logger"
)

// RecoveryMiddleware turns panics into a 500 envelope and logs the stack.
func RecoveryMiddleware(fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.FromOr(r.Context(), fallback).ErrorContext(r.Context(), "panic recovered",
						"error", err,
						"trace_id", internal.TraceIDFromContext(r.Context()),
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(transport.Envelope{
						Success: false,
						Message: "Internal server error",
						Code:    string(internal.ErrCodeInternal),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
