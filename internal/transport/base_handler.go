package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/pkg/logger"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	// ExposeErrors adds internal error detail to failure envelopes. Off in production.
	ExposeErrors bool
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, exposeErrors bool) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg, ExposeErrors: exposeErrors}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteError writes a failure envelope without an error code.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	h.WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// WriteAppError maps any error onto the envelope. Unknown errors become 500.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := internal.AsAppError(err)
	log := logger.From(r.Context())

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed", "code", appErr.Code, "error", err)
	} else {
		log.Warn("request rejected", "status", appErr.StatusCode, "code", appErr.Code, "error", err)
	}

	env := Envelope{
		Success: false,
		Message: appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	}
	if h.ExposeErrors {
		env.Error = err.Error()
	}
	h.WriteJSON(w, appErr.StatusCode, env)
}

// DecodeJSON decodes the body into dst, rejecting unknown shapes as validation errors.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.NewValidationError("Request body is required", internal.ErrCodeInvalidBody)
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("Request body is required", internal.ErrCodeInvalidBody)
		}
		return internal.NewValidationError("Invalid request body", internal.ErrCodeInvalidBody).WithCause(err)
	}
	return nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}

// ClientIP is the host part of RemoteAddr. Forwarding headers are only honoured
// when the router runs chi's RealIP middleware, which rewrites RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
