package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/hostel-management/pkg/logger"
)

// sensitiveFields are matched as substrings of lower-cased header and JSON keys.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"session",
	"credential",
	"transactionid",
	"paymentid",
}

const (
	filtered = "[FILTERED]"
	// maxLoggedBody caps how much of a request or response body reaches the log.
	maxLoggedBody = 4 << 10
)

// LoggingMiddleware logs each request and its outcome. Request bodies are logged
// with sensitive keys masked; response bodies only for failures, since successful
// responses carry student records.
// It must run after RequestID so the trace id is already on the context logger.
func LoggingMiddleware(fallback *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := logger.FromOr(r.Context(), fallback)

			lg.InfoContext(r.Context(), "incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", redactHeaders(r.Header),
				"body", readRequestBody(r),
			)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status()
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
			}
			if status >= http.StatusBadRequest && isJSON(rec.Header()) {
				attrs = append(attrs, "body", redactBody(rec.body.Bytes()))
			}
			lg.Log(r.Context(), levelFor(status), "response", attrs...)
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	code int
	size int
	body bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.code = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(room, len(b))])
	}
	rw.size += len(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseRecorder) status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func isJSON(h http.Header) bool {
	return strings.HasPrefix(h.Get("Content-Type"), "application/json")
}

// readRequestBody reads a JSON body for logging and puts it back for the handler.
func readRequestBody(r *http.Request) string {
	if r.Body == nil || !isJSON(r.Header) {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	if len(raw) > maxLoggedBody {
		return "[TRUNCATED]"
	}
	return redactBody(raw)
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return string(body)
	}
	out, err := json.Marshal(redactValue(v))
	if err != nil {
		return "[FILTERED - Unable to process]"
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if isSensitive(k) {
				out[k] = filtered
				continue
			}
			out[k] = redactValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}
