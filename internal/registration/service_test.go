package registration_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	accountPostgres "github.com/frahmantamala/hostel-management/internal/account/postgres"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	"github.com/frahmantamala/hostel-management/internal/core/database/dbtest"
	"github.com/frahmantamala/hostel-management/internal/core/events"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/hostel-management/internal/invoice/postgres"
	"github.com/frahmantamala/hostel-management/internal/registration"
	registrationPostgres "github.com/frahmantamala/hostel-management/internal/registration/postgres"
	"github.com/frahmantamala/hostel-management/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestRegistration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Registration Suite")
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, invoice.GenerateRequest) (*invoice.Invoice, error) {
	return nil, errors.New("renderer offline")
}

// zeroReader makes every generated register number end in 0000.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func submission(name, email, gender string) registration.SubmitDTO {
	return registration.SubmitDTO{
		Name:           name,
		Email:          email,
		Password:       "secret123",
		DateOfBirth:    "2004-06-15",
		Course:         "B.E CSE",
		Year:           1,
		Gender:         gender,
		Category:       "BC",
		MessPreference: "VEG",
		ParentInfo: registration.ContactDTO{
			Name:       "Ravi Kumar",
			Occupation: "Farmer",
			Address:    "12 Main Road, Madurai",
			Pin:        "625001",
			Contact:    "9876543210",
		},
	}
}

func payment(email string) registration.CompletePaymentDTO {
	return registration.CompletePaymentDTO{
		Email:         email,
		PaymentID:     "pay_123",
		TransactionID: "txn_456",
		PaymentMethod: "UPI",
	}
}

func validationError(err error) bool {
	appErr, ok := internal.IsAppError(err)
	return ok && appErr.Type == internal.ErrorTypeValidation
}

var _ = Describe("Registration service", func() {
	var (
		db        *gorm.DB
		accounts  *accountPostgres.AccountRepository
		invoices  *invoice.Service
		publisher *recordingPublisher
		service   *registration.Service
		ctx       context.Context
		logger    *slog.Logger
		now       time.Time
	)

	newService := func(generator registration.InvoiceGenerator) *registration.Service {
		svc := registration.NewService(registration.Deps{
			Repo:      registrationPostgres.NewRegistrationRepository(db),
			Accounts:  accounts,
			Invoices:  generator,
			Tx:        database.NewTransactor(db),
			Publisher: publisher,
			Logger:    logger,
		}, registration.Config{TTL: 24 * time.Hour, BcryptCost: bcrypt.MinCost})
		registration.SetClock(svc, func() time.Time { return now })
		return svc
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		accounts = accountPostgres.NewAccountRepository(db)
		renderer, err := invoice.NewHTMLRenderer()
		Expect(err).NotTo(HaveOccurred())
		invoices = invoice.NewService(invoicePostgres.NewInvoiceRepository(db), renderer,
			invoice.NewFileStore(afero.NewMemMapFs(), "/invoices"), nil, nil, logger, invoice.Config{})

		publisher = &recordingPublisher{}
		now = time.Now().UTC()
		ctx = context.Background()
		service = newService(invoices)
	})

	Describe("Submit", func() {
		It("stores a pending registration that expires in a day", func() {
			// When
			result, err := service.Submit(ctx, submission("Arun Kumar", "Arun@Example.com", "male"))

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(registration.StatusPendingPayment))
			Expect(result.Email).To(Equal("arun@example.com"))
			Expect(result.HostelType).To(Equal("Boys Hostel"))
			Expect(result.ExpiresAt).To(BeTemporally("~", now.Add(24*time.Hour), time.Second))
			Expect(result.Amount.Equal(decimal.NewFromInt(46800))).To(BeTrue())
			Expect(publisher.types()).To(ConsistOf(events.EventTypeRegistrationSubmitted))
		})

		It("rejects a second submission while the first is pending", func() {
			_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Submit(ctx, submission("Arun K", "ARUN@example.com", "male"))

			Expect(err).To(MatchError(internal.ErrDuplicatePending))
		})

		It("accepts a new submission once the old one has expired", func() {
			_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())

			now = now.Add(25 * time.Hour)
			_, err = service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))

			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an email that already belongs to a student", func() {
			_, err := service.Submit(ctx, submission("Meena R", "meena@example.com", "female"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CompletePayment(ctx, payment("meena@example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Submit(ctx, submission("Meena R", "meena@example.com", "female"))

			Expect(err).To(MatchError(internal.ErrAlreadyRegistered))
		})

		It("validates the form", func() {
			dto := submission("Arun Kumar", "arun@example.com", "male")
			dto.Year = 5
			_, err := service.Submit(ctx, dto)
			Expect(validationError(err)).To(BeTrue())

			dto = submission("Arun Kumar", "not-an-email", "male")
			_, err = service.Submit(ctx, dto)
			Expect(validationError(err)).To(BeTrue())

			dto = submission("Arun Kumar", "arun@example.com", "male")
			dto.DateOfBirth = now.Add(48 * time.Hour).Format("2006-01-02")
			_, err = service.Submit(ctx, dto)
			Expect(validationError(err)).To(BeTrue())

			dto = submission("Arun Kumar", "arun@example.com", "male")
			dto.Password = "abc"
			_, err = service.Submit(ctx, dto)
			Expect(validationError(err)).To(BeTrue())
		})
	})

	Describe("CompletePayment", func() {
		It("promotes a male student into the boys pool with one invoice", func() {
			_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())

			// When
			result, err := service.CompletePayment(ctx, payment("arun@example.com"))

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CanLogin).To(BeTrue())
			Expect(result.HostelType).To(Equal("Boys Hostel"))
			Expect(result.RegisterNumber).To(MatchRegexp(`^BH\d{6}$`))
			Expect(result.User.Pool).To(Equal(coreAccount.PoolBoysStudent))
			Expect(result.User.Role).To(Equal(role.Student))
			Expect(result.User.FirstName).To(Equal("Arun"))
			Expect(result.User.LastName).To(Equal("Kumar"))
			Expect(result.Invoice).NotTo(BeNil())
			Expect(result.Invoice.TotalAmount.Equal(invoice.ScheduleTotal)).To(BeTrue())

			stored, err := accounts.FindByEmail(ctx, coreAccount.PoolBoysStudent, "arun@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123"))).To(Succeed())
			Expect(stored.ParentContact.Phone).To(Equal("9876543210"))
			Expect(stored.PaymentSnapshot.TransactionID).To(Equal("txn_456"))

			issued, err := invoices.ListByStudent(ctx, "arun@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(issued).To(HaveLen(1))

			Expect(publisher.types()).To(ContainElement(events.EventTypeRegistrationCompleted))
		})

		It("routes female and transgender students to the girls pool", func() {
			for _, c := range []struct{ email, gender string }{
				{"priya@example.com", "female"},
				{"sam@example.com", "transgender"},
			} {
				_, err := service.Submit(ctx, submission("Student Name", c.email, c.gender))
				Expect(err).NotTo(HaveOccurred())

				result, err := service.CompletePayment(ctx, payment(c.email))

				Expect(err).NotTo(HaveOccurred())
				Expect(result.User.Pool).To(Equal(coreAccount.PoolGirlsStudent))
				Expect(result.RegisterNumber).To(HavePrefix("GH"))
			}
		})

		It("does not complete the same registration twice", func() {
			_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CompletePayment(ctx, payment("arun@example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CompletePayment(ctx, payment("arun@example.com"))

			Expect(err).To(MatchError(internal.ErrRegistrationNotFound))
		})

		It("refuses to promote an email already registered in the other student pool", func() {
			_, err := service.Submit(ctx, submission("Dev Kumar", "dup@example.com", "female"))
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, &coreAccount.Account{
				ID:             "direct-1",
				Pool:           coreAccount.PoolBoysStudent,
				Email:          "dup@example.com",
				Role:           role.Student,
				RegisterNumber: "BH250099",
				FirstName:      "Dev",
				IsActive:       true,
			})).To(Succeed())

			_, err = service.CompletePayment(ctx, payment("dup@example.com"))

			Expect(err).To(MatchError(internal.ErrAlreadyRegistered))
			_, err = accounts.FindByEmail(ctx, coreAccount.PoolGirlsStudent, "dup@example.com")
			Expect(err).To(MatchError(internal.ErrAccountNotFound))
			status, err := service.Status(ctx, "dup@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(status.IsTemporary).To(BeTrue())
		})

		It("refuses an expired registration", func() {
			_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())

			now = now.Add(24*time.Hour + time.Minute)
			_, err = service.CompletePayment(ctx, payment("arun@example.com"))

			Expect(err).To(MatchError(internal.ErrRegistrationNotFound))
		})

		It("rejects an amount that does not match the fee", func() {
			dto := payment("arun@example.com")
			amount := decimal.NewFromInt(1000)
			dto.Amount = &amount

			_, err := service.CompletePayment(ctx, dto)

			Expect(validationError(err)).To(BeTrue())
		})

		It("keeps the account when the invoice cannot be issued", func() {
			service = newService(failingGenerator{})
			_, err := service.Submit(ctx, submission("Priya S", "priya@example.com", "female"))
			Expect(err).NotTo(HaveOccurred())

			result, err := service.CompletePayment(ctx, payment("priya@example.com"))

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Invoice).To(BeNil())
			_, err = accounts.FindByEmail(ctx, coreAccount.PoolGirlsStudent, "priya@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.types()).To(ContainElements(
				events.EventTypeInvoiceFailed, events.EventTypeRegistrationCompleted))
		})

		It("rolls back when no free register number can be drawn", func() {
			registration.SetRand(service, zeroReader{})
			_, err := service.Submit(ctx, submission("Priya S", "priya@example.com", "female"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Submit(ctx, submission("Divya M", "divya@example.com", "female"))
			Expect(err).NotTo(HaveOccurred())

			first, err := service.CompletePayment(ctx, payment("priya@example.com"))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.RegisterNumber).To(HaveSuffix("0000"))

			// When
			_, err = service.CompletePayment(ctx, payment("divya@example.com"))

			// Then
			Expect(err).To(MatchError(internal.ErrDuplicateAccount))
			status, err := service.Status(ctx, "divya@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(status.IsTemporary).To(BeTrue())
			Expect(status.Status).To(Equal(registration.StatusPendingPayment))
		})
	})

	Describe("Status", func() {
		It("reports a pending registration", func() {
			submitted, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())

			status, err := service.Status(ctx, submitted.RegistrationID)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.IsTemporary).To(BeTrue())
			Expect(status.PaymentRequired).To(BeTrue())
			Expect(status.CanLogin).To(BeFalse())
			Expect(status.Registration.Email).To(Equal("arun@example.com"))
		})

		It("finds a completed student by register number", func() {
			_, err := service.Submit(ctx, submission("Priya S", "priya@example.com", "female"))
			Expect(err).NotTo(HaveOccurred())
			done, err := service.CompletePayment(ctx, payment("priya@example.com"))
			Expect(err).NotTo(HaveOccurred())

			status, err := service.Status(ctx, done.RegisterNumber)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.Status).To(Equal(registration.StatusCompleted))
			Expect(status.IsTemporary).To(BeFalse())
			Expect(status.HostelType).To(Equal("Girls Hostel"))
			Expect(status.CompletedAt).NotTo(BeNil())
		})

		It("does not report an expired registration", func() {
			_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
			Expect(err).NotTo(HaveOccurred())

			now = now.Add(30 * time.Hour)

			_, err = service.Status(ctx, "arun@example.com")
			Expect(err).To(MatchError(internal.ErrRegistrationNotFound))
		})
	})

	It("lists pending and completed registrations with a summary", func() {
		for _, s := range []registration.SubmitDTO{
			submission("Arun Kumar", "arun@example.com", "male"),
			submission("Priya S", "priya@example.com", "female"),
			submission("Karthik V", "karthik@example.com", "male"),
		} {
			_, err := service.Submit(ctx, s)
			Expect(err).NotTo(HaveOccurred())
		}
		_, err := service.CompletePayment(ctx, payment("priya@example.com"))
		Expect(err).NotTo(HaveOccurred())

		all, err := service.ListAll(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(all.Summary.Temporary).To(Equal(2))
		Expect(all.Summary.Girls).To(Equal(1))
		Expect(all.Summary.Boys).To(Equal(0))
		Expect(all.Summary.Total).To(Equal(3))
	})

	It("sweeps expired registrations", func() {
		_, err := service.Submit(ctx, submission("Arun Kumar", "arun@example.com", "male"))
		Expect(err).NotTo(HaveOccurred())
		now = now.Add(2 * time.Hour)
		_, err = service.Submit(ctx, submission("Priya S", "priya@example.com", "female"))
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(23 * time.Hour)
		removed, err := service.SweepExpired(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeEquivalentTo(1))
		Expect(publisher.types()).To(ContainElement(events.EventTypeRegistrationExpired))

		all, err := service.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all.Temporary).To(HaveLen(1))
		Expect(all.Temporary[0].Email).To(Equal("priya@example.com"))
	})
})
