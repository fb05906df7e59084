package invoice_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database/dbtest"
	"github.com/frahmantamala/hostel-management/internal/core/events"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/hostel-management/internal/invoice/postgres"
	"github.com/frahmantamala/hostel-management/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

func TestInvoice(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Invoice Suite")
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

type failingRenderer struct{}

func (failingRenderer) Render(*invoice.Invoice) ([]byte, error) {
	return nil, errors.New("template exploded")
}

func student() *coreAccount.Account {
	return &coreAccount.Account{
		ID:             "student-1",
		Pool:           coreAccount.PoolGirlsStudent,
		Email:          "Priya@Example.com",
		Role:           role.Student,
		FirstName:      "Priya",
		LastName:       "S",
		RegisterNumber: "GH251234",
		Course:         "B.E CSE",
		Year:           2,
		Gender:         "female",
		Category:       "BC",
	}
}

func request(tempID string) invoice.GenerateRequest {
	return invoice.GenerateRequest{
		TempRegistrationID: tempID,
		Student:            student(),
		PaymentID:          "pay_1",
		TransactionID:      "txn_1",
		PaymentMethod:      "UPI",
		PaymentDate:        time.Now().UTC(),
	}
}

var _ = Describe("Fee schedule", func() {
	It("adds up to 46,800", func() {
		fees := invoice.Schedule()

		Expect(fees.Total().Equal(decimal.NewFromInt(46800))).To(BeTrue())
		Expect(fees.Verify()).To(Succeed())
		Expect(fees.Lines()).To(HaveLen(8))
	})

	It("rejects a tampered schedule", func() {
		fees := invoice.Schedule()
		fees.MessAdvance = decimal.NewFromInt(1)

		Expect(fees.Verify()).NotTo(Succeed())
	})
})

var _ = Describe("Invoice numbers", func() {
	It("uses the prefix, year and month, and four digits", func() {
		now := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

		number, err := invoice.NewNumber(now, bytes.NewReader(make([]byte, 8)))

		Expect(err).NotTo(HaveOccurred())
		Expect(number).To(Equal("UCET-INV-25030000"))
	})

	It("formats the academic year", func() {
		Expect(invoice.AcademicYear(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))).To(Equal("2025-2026"))
	})
})

var _ = Describe("Invoice service", func() {
	var (
		db        *gorm.DB
		fs        afero.Fs
		publisher *recordingPublisher
		service   *invoice.Service
		ctx       context.Context
		logger    *slog.Logger
	)

	newService := func(renderer invoice.Renderer) *invoice.Service {
		return invoice.NewService(invoicePostgres.NewInvoiceRepository(db), renderer,
			invoice.NewFileStore(fs, "/invoices"), publisher, nil, logger, invoice.Config{})
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		fs = afero.NewMemMapFs()
		publisher = &recordingPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()

		renderer, err := invoice.NewHTMLRenderer()
		Expect(err).NotTo(HaveOccurred())
		service = newService(renderer)
	})

	Describe("Generate", func() {
		It("issues one invoice per registration with the fixed total", func() {
			// When
			inv, err := service.Generate(ctx, request("temp-1"))

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.InvoiceNumber).To(MatchRegexp(`^UCET-INV-\d{8}$`))
			Expect(inv.TotalAmount.Equal(invoice.ScheduleTotal)).To(BeTrue())
			Expect(inv.Status).To(Equal(invoice.StatusGenerated))
			Expect(inv.StudentDetails.HostelType).To(Equal("Girls Hostel"))
			Expect(inv.StudentEmail).To(Equal("priya@example.com"))
			Expect(inv.DocumentGenerated).To(BeTrue())

			content, err := afero.ReadFile(fs, inv.DocumentPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("46,800"))
			Expect(string(content)).To(ContainSubstring("24,000"))
			Expect(string(content)).To(ContainSubstring(inv.InvoiceNumber))

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeInvoiceGenerated))
		})

		It("returns the existing invoice for the same registration", func() {
			first, err := service.Generate(ctx, request("temp-1"))
			Expect(err).NotTo(HaveOccurred())

			second, err := service.Generate(ctx, request("temp-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			list, err := service.ListByStudent(ctx, "priya@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})

		It("keeps the invoice when rendering fails and renders on download", func() {
			broken := newService(failingRenderer{})
			inv, err := broken.Generate(ctx, request("temp-2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.DocumentGenerated).To(BeFalse())

			stored, err := service.Get(ctx, inv.ID)
			Expect(err).NotTo(HaveOccurred())
			doc, err := service.Download(ctx, stored)

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.FileName).To(Equal("Invoice-" + inv.InvoiceNumber + ".html"))
			Expect(string(doc.Content)).To(ContainSubstring("Hostel Fee Invoice"))
		})

		It("requires a student and a registration", func() {
			_, err := service.Generate(ctx, invoice.GenerateRequest{})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("downloads", func() {
		It("counts downloads and moves the status once", func() {
			inv, err := service.Generate(ctx, request("temp-3"))
			Expect(err).NotTo(HaveOccurred())

			Expect(service.TrackDownload(ctx, inv.ID)).To(Succeed())
			Expect(service.TrackDownload(ctx, inv.ID)).To(Succeed())

			stored, err := service.Get(ctx, inv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.DownloadCount).To(Equal(2))
			Expect(stored.Status).To(Equal(invoice.StatusDownloaded))
			Expect(stored.LastDownloadedAt).NotTo(BeNil())
		})

		It("does not count views", func() {
			inv, err := service.Generate(ctx, request("temp-4"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.View(ctx, inv)
			Expect(err).NotTo(HaveOccurred())

			stored, err := service.Get(ctx, inv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.DownloadCount).To(Equal(0))
			Expect(stored.Status).To(Equal(invoice.StatusGenerated))
		})

		It("reports unknown invoices", func() {
			Expect(service.TrackDownload(ctx, "missing")).To(MatchError(internal.ErrInvoiceNotFound))
		})
	})

	It("pages through invoices", func() {
		for _, id := range []string{"a", "b", "c"} {
			_, err := service.Generate(ctx, request("temp-"+id))
			Expect(err).NotTo(HaveOccurred())
		}

		result, err := service.List(ctx, 2, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Invoices).To(HaveLen(1))
		Expect(result.Pagination.Total).To(BeEquivalentTo(3))
		Expect(result.Pagination.Pages).To(BeEquivalentTo(2))
	})
})
