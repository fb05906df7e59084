package transport_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

func decode(rec *httptest.ResponseRecorder) transport.Envelope {
	var env transport.Envelope
	Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
	return env
}

var _ = Describe("BaseHandler", func() {
	var (
		slogger *slog.Logger
		req     *http.Request
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		req = httptest.NewRequest(http.MethodGet, "/", nil)
	})

	Describe("WriteAppError", func() {
		It("uses the taxonomy status and hides detail in production", func() {
			// Given
			h := transport.NewBaseHandler(slogger, false)
			rec := httptest.NewRecorder()

			// When
			h.WriteAppError(rec, req, internal.ErrDuplicatePending)

			// Then
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			env := decode(rec)
			Expect(env.Success).To(BeFalse())
			Expect(env.Code).To(Equal(string(internal.ErrCodeDuplicatePending)))
			Expect(env.Error).To(BeEmpty())
		})

		It("exposes the cause outside production", func() {
			h := transport.NewBaseHandler(slogger, true)
			rec := httptest.NewRecorder()

			h.WriteAppError(rec, req, errors.New("connection reset"))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			env := decode(rec)
			Expect(env.Message).To(Equal("Internal server error"))
			Expect(env.Error).To(ContainSubstring("connection reset"))
		})

		It("unwraps wrapped app errors", func() {
			h := transport.NewBaseHandler(slogger, false)
			rec := httptest.NewRecorder()

			h.WriteAppError(rec, req, internal.ErrHostelScope.WithCause(errors.New("other hostel")))

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("WriteSuccess", func() {
		It("wraps data in the envelope", func() {
			h := transport.NewBaseHandler(slogger, false)
			rec := httptest.NewRecorder()

			h.WriteSuccess(rec, http.StatusCreated, "created", map[string]string{"id": "x"})

			Expect(rec.Code).To(Equal(http.StatusCreated))
			env := decode(rec)
			Expect(env.Success).To(BeTrue())
			Expect(env.Data).To(HaveKeyWithValue("id", "x"))
		})
	})

	Describe("DecodeJSON", func() {
		It("rejects malformed bodies as validation errors", func() {
			h := transport.NewBaseHandler(slogger, false)
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
			var dst map[string]interface{}

			err := h.DecodeJSON(r, &dst)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ExtractTokenFromHeader", func() {
		It("accepts bearer tokens only", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer abc.def")
			Expect(transport.ExtractTokenFromHeader(r)).To(Equal("abc.def"))

			r.Header.Set("Authorization", "Basic abc")
			Expect(transport.ExtractTokenFromHeader(r)).To(BeEmpty())
		})
	})

	Describe("ClientIP", func() {
		It("uses the connection address and ignores forwarding headers", func() {
			r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			r.RemoteAddr = "203.0.113.7:52114"
			r.Header.Set("X-Forwarded-For", "10.9.9.9, 203.0.113.7")

			Expect(transport.ClientIP(r)).To(Equal("203.0.113.7"))
		})

		It("returns an address without a port unchanged", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "198.51.100.4"

			Expect(transport.ClientIP(r)).To(Equal("198.51.100.4"))
		})
	})
})
