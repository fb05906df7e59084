package invoice

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	invoiceDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/invoice"
	"github.com/frahmantamala/hostel-management/internal/core/events"
	"github.com/frahmantamala/hostel-management/internal/core/metrics"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Create(ctx context.Context, inv *invoiceDatamodel.Invoice) error
	GetByID(ctx context.Context, id string) (*invoiceDatamodel.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*invoiceDatamodel.Invoice, error)
	GetByTempRegistration(ctx context.Context, tempRegistrationID string) (*invoiceDatamodel.Invoice, error)
	ListByEmail(ctx context.Context, email string) ([]*invoiceDatamodel.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*invoiceDatamodel.Invoice, int64, error)
	SetDocument(ctx context.Context, id, path string) error
	TrackDownload(ctx context.Context, id string, at time.Time) error
}

// GenerateRequest carries the promoted account and the payment it was promoted on.
type GenerateRequest struct {
	TempRegistrationID string
	Student            *coreAccount.Account
	PaymentID          string
	TransactionID      string
	PaymentMethod      string
	PaymentDate        time.Time
}

// Document is a rendered invoice ready to be served.
type Document struct {
	Invoice     *Invoice
	FileName    string
	ContentType string
	Content     []byte
}

type ListResult struct {
	Invoices   []*Invoice `json:"invoices"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type Config struct {
	MaxNumberAttempts int
	College           *CollegeDetails
}

type Service struct {
	repo        RepositoryAPI
	renderer    Renderer
	store       DocumentStore
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	college     CollegeDetails
	maxAttempts int
	now         func() time.Time
	rand        io.Reader
}

func NewService(repo RepositoryAPI, renderer Renderer, store DocumentStore, publisher events.Publisher,
	m *metrics.Metrics, logger *slog.Logger, cfg Config) *Service {
	if cfg.MaxNumberAttempts <= 0 {
		cfg.MaxNumberAttempts = 5
	}
	college := DefaultCollege
	if cfg.College != nil {
		college = *cfg.College
	}
	return &Service{
		repo:        repo,
		renderer:    renderer,
		store:       store,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
		college:     college,
		maxAttempts: cfg.MaxNumberAttempts,
		now:         time.Now,
		rand:        rand.Reader,
	}
}

// Generate issues the invoice for a completed registration. A registration gets
// at most one invoice; asking again returns the existing one.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Invoice, error) {
	if req.Student == nil || req.TempRegistrationID == "" {
		return nil, internal.NewValidationError("Invoice request needs a student and a registration", internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByTempRegistration(ctx, req.TempRegistrationID); err == nil {
		return FromDataModel(existing), nil
	} else if !errors.Is(err, internal.ErrInvoiceNotFound) {
		return nil, err
	}

	fees := Schedule()
	if err := fees.Verify(); err != nil {
		return nil, internal.NewInternalError("Fee schedule is inconsistent", err)
	}

	now := s.now().UTC()
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}
	student := req.Student
	inv := &Invoice{
		InvoiceDate:  now,
		AcademicYear: AcademicYear(now),
		StudentEmail: coreAccount.NormalizeEmail(student.Email),
		StudentDetails: StudentDetails{
			Name:           student.FullName(),
			Email:          coreAccount.NormalizeEmail(student.Email),
			RegisterNumber: student.RegisterNumber,
			Course:         student.Course,
			Year:           student.Year,
			Gender:         student.Gender,
			Category:       student.Category,
			HostelType:     student.Pool.HostelType(),
		},
		Fees:        fees,
		TotalAmount: fees.Total(),
		PaymentDetails: PaymentDetails{
			PaymentID:     req.PaymentID,
			TransactionID: req.TransactionID,
			PaymentMethod: req.PaymentMethod,
			PaymentDate:   paymentDate,
			PaymentStatus: "Completed",
		},
		CollegeDetails:     s.college,
		TempRegistrationID: req.TempRegistrationID,
		StudentID:          student.ID,
		StudentPool:        string(student.Pool),
		Status:             StatusGenerated,
		Remarks:            defaultRemarks,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	for attempt := 1; ; attempt++ {
		number, err := NewNumber(now, s.rand)
		if err != nil {
			return nil, internal.NewInternalError("Failed to generate invoice number", err)
		}
		inv.ID = uuid.NewString()
		inv.InvoiceNumber = number

		err = s.repo.Create(ctx, ToDataModel(inv))
		if err == nil {
			break
		}
		if !errors.Is(err, internal.ErrDuplicateInvoice) {
			return nil, err
		}
		// a concurrent call may have issued it first
		if existing, lookupErr := s.repo.GetByTempRegistration(ctx, req.TempRegistrationID); lookupErr == nil {
			return FromDataModel(existing), nil
		}
		if attempt >= s.maxAttempts {
			return nil, err
		}
		s.logger.WarnContext(ctx, "invoice number collision, retrying", "number", number, "attempt", attempt)
	}

	if _, err := s.renderDocument(ctx, inv); err != nil {
		s.logger.WarnContext(ctx, "invoice document not rendered", "invoice_id", inv.ID, "error", err)
	}

	s.metrics.IncInvoiceGenerated()
	s.publish(ctx, events.NewInvoiceGeneratedEvent(inv.ID, inv.InvoiceNumber, inv.StudentEmail, inv.TotalAmount.String()))
	s.logger.InfoContext(ctx, "invoice generated", "invoice_id", inv.ID, "number", inv.InvoiceNumber,
		"email", inv.StudentEmail, "total", inv.TotalAmount.String())
	return inv, nil
}

// Rerender renders the document again and records its new location.
func (s *Service) Rerender(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if _, err := s.renderDocument(ctx, inv); err != nil {
		return nil, internal.NewInternalError("Failed to render invoice", err)
	}
	return inv, nil
}

func (s *Service) renderDocument(ctx context.Context, inv *Invoice) ([]byte, error) {
	content, err := s.renderer.Render(inv)
	if err != nil {
		return nil, err
	}
	path, err := s.store.Save(ctx, inv.InvoiceNumber+".html", content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDocument(ctx, inv.ID, path); err != nil {
		return nil, err
	}
	inv.DocumentPath = path
	inv.DocumentGenerated = true
	return content, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event", event.EventType(), "error", err)
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	row, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) ListByStudent(ctx context.Context, email string) ([]*Invoice, error) {
	rows, err := s.repo.ListByEmail(ctx, coreAccount.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// List pages through every invoice, newest first.
func (s *Service) List(ctx context.Context, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list invoices", "error", err)
		return nil, err
	}

	return &ListResult{
		Invoices: fromRows(rows),
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + int64(limit) - 1) / int64(limit),
		},
	}, nil
}

// TrackDownload counts a download and moves a generated invoice to downloaded.
func (s *Service) TrackDownload(ctx context.Context, id string) error {
	if err := s.repo.TrackDownload(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.metrics.IncInvoiceDownload()
	return nil
}

// Download returns the document and counts the download.
func (s *Service) Download(ctx context.Context, inv *Invoice) (*Document, error) {
	doc, err := s.document(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := s.TrackDownload(ctx, inv.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// View returns the document without counting a download.
func (s *Service) View(ctx context.Context, inv *Invoice) (*Document, error) {
	return s.document(ctx, inv)
}

// document loads the stored rendering, rendering it again when it was never
// written or has gone missing.
func (s *Service) document(ctx context.Context, inv *Invoice) (*Document, error) {
	var content []byte
	var err error
	if inv.DocumentGenerated {
		content, err = s.store.Load(ctx, inv.DocumentPath)
	}
	if !inv.DocumentGenerated || errors.Is(err, ErrDocumentMissing) {
		content, err = s.renderDocument(ctx, inv)
	}
	if err != nil {
		return nil, internal.NewInternalError("Failed to load invoice document", err)
	}

	return &Document{
		Invoice:     inv,
		FileName:    inv.FileName(),
		ContentType: "text/html; charset=utf-8",
		Content:     content,
	}, nil
}

func fromRows(rows []*invoiceDatamodel.Invoice) []*Invoice {
	out := make([]*Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
