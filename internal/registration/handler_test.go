package registration_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	accountPostgres "github.com/frahmantamala/hostel-management/internal/account/postgres"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	"github.com/frahmantamala/hostel-management/internal/core/database/dbtest"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/hostel-management/internal/invoice/postgres"
	"github.com/frahmantamala/hostel-management/internal/registration"
	registrationPostgres "github.com/frahmantamala/hostel-management/internal/registration/postgres"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Registration Handler Integration", func() {
	var router *chi.Mux

	BeforeEach(func() {
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		renderer, err := invoice.NewHTMLRenderer()
		Expect(err).NotTo(HaveOccurred())
		invoices := invoice.NewService(invoicePostgres.NewInvoiceRepository(db), renderer,
			invoice.NewFileStore(afero.NewMemMapFs(), "/invoices"), nil, nil, slogger, invoice.Config{})

		service := registration.NewService(registration.Deps{
			Repo:     registrationPostgres.NewRegistrationRepository(db),
			Accounts: accountPostgres.NewAccountRepository(db),
			Invoices: invoices,
			Tx:       database.NewTransactor(db),
			Logger:   slogger,
		}, registration.Config{BcryptCost: bcrypt.MinCost})
		handler := registration.NewHandler(transport.NewBaseHandler(slogger, true), service)

		router = chi.NewRouter()
		router.Post("/api/registration/submit", handler.Submit)
		router.Post("/api/registration/complete-payment", handler.CompletePayment)
		router.Get("/api/registration/status/{identifier}", handler.Status)
		router.Get("/api/registration/all", handler.ListAll)
	})

	do := func(method, path string, body interface{}) (*httptest.ResponseRecorder, transport.Envelope) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env transport.Envelope
		Expect(json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&env)).To(Succeed())
		return w, env
	}

	It("should run a registration from submission to a student account", func() {
		// Given
		w, env := do(http.MethodPost, "/api/registration/submit", submission("Priya S", "priya@example.com", "female"))
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(env.Success).To(BeTrue())
		Expect(env.Message).To(ContainSubstring("24 hours"))

		// When
		w, env = do(http.MethodPost, "/api/registration/complete-payment", payment("priya@example.com"))

		// Then
		Expect(w.Code).To(Equal(http.StatusOK))
		data := env.Data.(map[string]interface{})
		Expect(data["hostelType"]).To(Equal("Girls Hostel"))
		Expect(data["canLogin"]).To(BeTrue())
		summary := data["invoice"].(map[string]interface{})
		Expect(summary["downloadUrl"]).To(HavePrefix("/api/invoice/"))

		w, env = do(http.MethodGet, "/api/registration/status/priya@example.com", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Data.(map[string]interface{})["status"]).To(Equal("completed"))
	})

	It("should reject a second pending submission", func() {
		_, _ = do(http.MethodPost, "/api/registration/submit", submission("Arun Kumar", "arun@example.com", "male"))

		w, env := do(http.MethodPost, "/api/registration/submit", submission("Arun Kumar", "arun@example.com", "male"))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Success).To(BeFalse())
		Expect(env.Code).To(Equal("REGISTRATION_PENDING"))
	})

	It("should reject an invalid form with field details", func() {
		dto := submission("Arun Kumar", "arun@example.com", "male")
		dto.Gender = "other"

		w, env := do(http.MethodPost, "/api/registration/submit", dto)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Details).NotTo(BeNil())
	})

	It("should return 404 for an unknown registration", func() {
		w, _ := do(http.MethodGet, "/api/registration/status/nobody@example.com", nil)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
