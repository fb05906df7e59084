package invoice_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database/dbtest"
	invoiceDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/invoice"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/hostel-management/internal/invoice/postgres"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

var _ = Describe("Invoice Handler Integration", func() {
	var (
		db      *gorm.DB
		service *invoice.Service
		router  *chi.Mux
		caller  *auth.Identity
		issued  *invoice.Invoice
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		renderer, err := invoice.NewHTMLRenderer()
		Expect(err).NotTo(HaveOccurred())
		service = invoice.NewService(invoicePostgres.NewInvoiceRepository(db), renderer,
			invoice.NewFileStore(afero.NewMemMapFs(), "/invoices"), nil, nil, slogger, invoice.Config{})
		handler := invoice.NewHandler(transport.NewBaseHandler(slogger, true), service, 30*time.Minute)

		caller = nil
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if caller != nil {
					r = r.WithContext(auth.ContextWithIdentity(r.Context(), caller))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/api/invoice/{invoiceId}", handler.GetInvoice)
		router.Get("/api/invoice/{invoiceId}/download", handler.DownloadInvoice)
		router.Get("/api/invoice/student/{email}", handler.StudentInvoices)

		issued, err = service.Generate(context.Background(), request("temp-h"))
		Expect(err).NotTo(HaveOccurred())
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	age := func(d time.Duration) {
		err := db.Model(&invoiceDatamodel.Invoice{}).
			Where("id = ?", issued.ID).
			Update("created_at", time.Now().UTC().Add(-d)).Error
		Expect(err).NotTo(HaveOccurred())
	}

	It("should serve a fresh invoice without a session", func() {
		w := get("/api/invoice/" + issued.ID)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(issued.InvoiceNumber))
	})

	It("should refuse guests once the window has passed", func() {
		age(31 * time.Minute)

		w := get("/api/invoice/" + issued.ID)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should let the owning student read an old invoice", func() {
		age(48 * time.Hour)
		caller = &auth.Identity{Account: &coreAccount.Account{
			ID: "student-1", Pool: coreAccount.PoolGirlsStudent, Email: "priya@example.com", Role: role.Student,
		}}

		w := get("/api/invoice/" + issued.ID)

		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should refuse another student", func() {
		caller = &auth.Identity{Account: &coreAccount.Account{
			ID: "student-2", Pool: coreAccount.PoolBoysStudent, Email: "someone@example.com", Role: role.Student,
		}}

		Expect(get("/api/invoice/" + issued.ID).Code).To(Equal(http.StatusForbidden))
		Expect(get("/api/invoice/student/priya@example.com").Code).To(Equal(http.StatusForbidden))
	})

	It("should download the document as an attachment and count it", func() {
		w := get("/api/invoice/" + issued.ID + "/download")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/html"))
		Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("attachment"))
		Expect(w.Body.String()).To(ContainSubstring("46,800"))

		stored, err := service.Get(context.Background(), issued.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.DownloadCount).To(Equal(1))
	})

	It("should return 404 for an unknown invoice", func() {
		Expect(get("/api/invoice/missing").Code).To(Equal(http.StatusNotFound))
	})
})
