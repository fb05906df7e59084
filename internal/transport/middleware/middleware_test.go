package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/frahmantamala/hostel-management/internal/transport/middleware"
	"github.com/frahmantamala/hostel-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("Middleware", func() {
	var slogger *slog.Logger

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	Describe("RequestID", func() {
		It("should reuse the caller's trace id", func() {
			var seen string
			h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = internal.TraceIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.TraceHeader, "trace-123")
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			Expect(seen).To(Equal("trace-123"))
			Expect(w.Header().Get(middleware.TraceHeader)).To(Equal("trace-123"))
		})

		It("should mint a trace id when none is sent", func() {
			h := middleware.RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			w := httptest.NewRecorder()

			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Header().Get(middleware.TraceHeader)).To(HaveLen(36))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("should turn a panic into a 500 envelope", func() {
			h := middleware.RecoveryMiddleware(slogger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			}))
			w := httptest.NewRecorder()

			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			var env transport.Envelope
			Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
			Expect(env.Success).To(BeFalse())
			Expect(env.Code).To(Equal(string(internal.ErrCodeInternal)))
		})
	})

	Describe("CORS", func() {
		It("should answer preflight for an allowed origin", func() {
			h := middleware.CORS([]string{"http://localhost:3000"})(http.NotFoundHandler())
			req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		})

		It("should not echo an unknown origin", func() {
			h := middleware.CORS([]string{"http://localhost:3000"})(http.NotFoundHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})
	})

	Describe("LoggingMiddleware", func() {
		It("should leave the request body readable for the handler", func() {
			var got map[string]string
			h := middleware.LoggingMiddleware(slogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
				w.WriteHeader(http.StatusCreated)
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
				strings.NewReader(`{"email":"a@b.com","password":"secret1"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got["password"]).To(Equal("secret1"))
		})
	})

	Describe("UserContext", func() {
		var buf bytes.Buffer
		var h http.Handler

		BeforeEach(func() {
			buf.Reset()
			h = middleware.UserContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.From(r.Context()).Info("handled")
			}))
		})

		request := func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			return req.WithContext(logger.NewContext(req.Context(), slog.New(slog.NewJSONHandler(&buf, nil))))
		}

		It("should tag the request logger with the caller", func() {
			req := request()
			ctx := internal.ContextWithUserType(internal.ContextWithUserID(req.Context(), "u-1"), "staff")

			h.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

			Expect(buf.String()).To(ContainSubstring(`"userID":"u-1"`))
			Expect(buf.String()).To(ContainSubstring(`"userType":"staff"`))
		})

		It("should leave anonymous requests untagged", func() {
			h.ServeHTTP(httptest.NewRecorder(), request())

			Expect(buf.String()).To(ContainSubstring(`"msg":"handled"`))
			Expect(buf.String()).NotTo(ContainSubstring("userID"))
		})
	})
})
