package registration

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/account"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/breaker"
	registrationDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/registration"
	"github.com/frahmantamala/hostel-management/internal/core/events"
	"github.com/frahmantamala/hostel-management/internal/core/metrics"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	Create(ctx context.Context, reg *registrationDatamodel.TempRegistration) error
	// FindLive matches id or email among records that have not expired.
	FindLive(ctx context.Context, identifier string, now time.Time) (*registrationDatamodel.TempRegistration, error)
	ListLive(ctx context.Context, now time.Time) ([]*registrationDatamodel.TempRegistration, error)
	Update(ctx context.Context, reg *registrationDatamodel.TempRegistration) error
	Delete(ctx context.Context, id string) error
	DeleteExpiredByEmail(ctx context.Context, email string, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AccountStore is the part of the account repository promotion needs.
type AccountStore interface {
	Create(ctx context.Context, acc *coreAccount.Account) error
	FindByEmail(ctx context.Context, pool coreAccount.Pool, email string) (*coreAccount.Account, error)
	FindByIdentifier(ctx context.Context, pool coreAccount.Pool, identifier string) (*coreAccount.Account, error)
	List(ctx context.Context, filter account.ListFilter) ([]*coreAccount.Account, error)
}

type InvoiceGenerator interface {
	Generate(ctx context.Context, req invoice.GenerateRequest) (*invoice.Invoice, error)
}

type Deps struct {
	Repo      RepositoryAPI
	Accounts  AccountStore
	Invoices  InvoiceGenerator
	Tx        account.TxRunner
	Breaker   *gobreaker.CircuitBreaker
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

type Config struct {
	TTL                 time.Duration
	BcryptCost          int
	MaxRegisterAttempts int
}

type Service struct {
	repo        RepositoryAPI
	accounts    AccountStore
	invoices    InvoiceGenerator
	tx          account.TxRunner
	breaker     *gobreaker.CircuitBreaker
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	ttl         time.Duration
	bcryptCost  int
	maxAttempts int
	now         func() time.Time
	rand        io.Reader
}

func NewService(deps Deps, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MaxRegisterAttempts <= 0 {
		cfg.MaxRegisterAttempts = 5
	}
	return &Service{
		repo:        deps.Repo,
		accounts:    deps.Accounts,
		invoices:    deps.Invoices,
		tx:          deps.Tx,
		breaker:     deps.Breaker,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		ttl:         cfg.TTL,
		bcryptCost:  cfg.BcryptCost,
		maxAttempts: cfg.MaxRegisterAttempts,
		now:         time.Now,
		rand:        rand.Reader,
	}
}

// Submit stores a pending registration that must be paid for within the TTL.
func (s *Service) Submit(ctx context.Context, dto SubmitDTO) (*SubmitResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	reg := dto.registration()
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to secure password", err)
	}

	now := s.now().UTC()
	reg.ID = uuid.NewString()
	reg.PasswordHash = string(hash)
	reg.SubmittedAt = now
	reg.ExpiresAt = now.Add(s.ttl)
	reg.Payment = PaymentDetails{Amount: invoice.ScheduleTotal.String()}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.DeleteExpiredByEmail(ctx, reg.Email, now); err != nil {
			return err
		}
		if _, err := s.repo.FindLive(ctx, reg.Email, now); err == nil {
			return internal.ErrDuplicatePending
		} else if !errors.Is(err, internal.ErrRegistrationNotFound) {
			return err
		}
		for _, pool := range coreAccount.StudentPools {
			if _, err := s.accounts.FindByEmail(ctx, pool, reg.Email); err == nil {
				return internal.ErrAlreadyRegistered
			} else if !errors.Is(err, internal.ErrAccountNotFound) {
				return err
			}
		}
		return s.repo.Create(ctx, ToDataModel(reg))
	})
	if err != nil {
		s.logger.WarnContext(ctx, "registration submit rejected", "email", reg.Email, "error", err)
		return nil, err
	}

	s.metrics.IncSubmitted()
	s.publish(ctx, events.NewRegistrationSubmittedEvent(reg.ID, reg.Email, reg.ExpiresAt))
	s.logger.InfoContext(ctx, "registration submitted", "registration_id", reg.ID, "pool", reg.Pool())

	return &SubmitResult{
		RegistrationID:  reg.ID,
		Email:           reg.Email,
		Status:          reg.Status,
		HostelType:      reg.Pool().HostelType(),
		ExpiresAt:       reg.ExpiresAt,
		PaymentRequired: true,
		Amount:          invoice.ScheduleTotal,
	}, nil
}

// CompletePayment promotes a paid registration into its student pool. The
// account insert and the removal of the temporary record commit together; the
// invoice is issued afterwards and its failure does not undo the promotion.
func (s *Service) CompletePayment(ctx context.Context, dto CompletePaymentDTO) (*CompletionResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := coreAccount.NormalizeEmail(dto.Email)
	now := s.now().UTC()

	var (
		reg      *TempRegistration
		acc      *coreAccount.Account
		promoted bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		row, err := s.repo.FindLive(ctx, email, now)
		if err != nil {
			return err
		}
		reg = FromDataModel(row)

		// a previous attempt may have committed the account and lost the response;
		// an account in the other student pool was registered some other way
		for _, pool := range coreAccount.StudentPools {
			existing, err := s.accounts.FindByEmail(ctx, pool, email)
			if errors.Is(err, internal.ErrAccountNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if pool != reg.Pool() {
				return internal.ErrAlreadyRegistered
			}
			acc = existing
			return s.repo.Delete(ctx, reg.ID)
		}

		reg.Payment = dto.payment(now)
		reg.Status = StatusCompleted
		reg.UpdatedAt = now
		if err := s.repo.Update(ctx, ToDataModel(reg)); err != nil {
			return err
		}

		acc = reg.ToAccount(now)
		acc.UpdatedAt = now
		if err := s.insertAccount(ctx, acc, now); err != nil {
			return err
		}
		promoted = true
		return s.repo.Delete(ctx, reg.ID)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "payment completion failed", "email", email, "error", err)
		return nil, err
	}

	if promoted {
		s.metrics.IncCompleted(string(acc.Pool))
		s.logger.InfoContext(ctx, "registration promoted",
			"registration_id", reg.ID, "user_id", acc.ID, "pool", acc.Pool, "register_number", acc.RegisterNumber)
	}

	result := &CompletionResult{
		User:           acc,
		HostelType:     acc.Pool.HostelType(),
		RegisterNumber: acc.RegisterNumber,
		CanLogin:       true,
	}

	invoiceID := ""
	if inv := s.issueInvoice(ctx, reg, acc); inv != nil {
		result.Invoice = inv.Summary()
		invoiceID = inv.ID
	}

	s.publish(ctx, events.NewRegistrationCompletedEvent(reg.ID, acc.ID, string(acc.Pool), acc.RegisterNumber, invoiceID))
	return result, nil
}

// insertAccount assigns a register number and inserts, drawing a new number on
// collision. Each attempt runs in a savepoint so a failed insert leaves the
// outer transaction usable.
func (s *Service) insertAccount(ctx context.Context, acc *coreAccount.Account, now time.Time) error {
	for attempt := 1; ; attempt++ {
		number, err := coreAccount.NewRegisterNumber(acc.Pool, now, s.rand)
		if err != nil {
			return internal.NewInternalError("Failed to generate register number", err)
		}
		acc.RegisterNumber = number
		acc.ID = uuid.NewString()

		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.accounts.Create(ctx, acc)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, internal.ErrDuplicateAccount) || attempt >= s.maxAttempts {
			return err
		}
		s.logger.DebugContext(ctx, "register number collision", "number", number, "attempt", attempt)
	}
}

func (s *Service) issueInvoice(ctx context.Context, reg *TempRegistration, acc *coreAccount.Account) *invoice.Invoice {
	if s.invoices == nil {
		return nil
	}

	payment := acc.PaymentSnapshot
	paidAt := s.now().UTC()
	if payment.PaymentDate != nil {
		paidAt = *payment.PaymentDate
	}
	req := invoice.GenerateRequest{
		TempRegistrationID: reg.ID,
		Student:            acc,
		PaymentID:          payment.PaymentID,
		TransactionID:      payment.TransactionID,
		PaymentMethod:      payment.PaymentMethod,
		PaymentDate:        paidAt,
	}

	inv, err := breaker.Execute(ctx, s.breaker, func(ctx context.Context) (*invoice.Invoice, error) {
		return s.invoices.Generate(ctx, req)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "invoice generation failed", "registration_id", reg.ID, "email", acc.Email, "error", err)
		s.metrics.IncInvoiceFailure()
		s.publish(ctx, events.NewInvoiceFailedEvent(reg.ID, acc.Email, err.Error()))
		return nil
	}
	return inv
}

// Status looks a registration up by id, email or register number, first among
// pending records and then in the student pools.
func (s *Service) Status(ctx context.Context, identifier string) (*StatusResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, internal.NewValidationFieldError("identifier", "identifier is required", internal.ErrCodeValidationFailed)
	}
	now := s.now().UTC()

	row, err := s.repo.FindLive(ctx, identifier, now)
	if err == nil {
		reg := FromDataModel(row)
		return &StatusResponse{
			Status:          reg.Status,
			IsTemporary:     true,
			PaymentRequired: reg.Status == StatusPendingPayment,
			HostelType:      reg.Pool().HostelType(),
			Registration:    reg,
			SubmittedAt:     &reg.SubmittedAt,
			ExpiresAt:       &reg.ExpiresAt,
		}, nil
	}
	if !errors.Is(err, internal.ErrRegistrationNotFound) {
		return nil, err
	}

	for _, pool := range coreAccount.StudentPools {
		acc, err := s.accounts.FindByIdentifier(ctx, pool, identifier)
		if errors.Is(err, internal.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		submitted := acc.RegistrationSnapshot.OriginalSubmissionDate
		if submitted == nil {
			submitted = &acc.CreatedAt
		}
		return &StatusResponse{
			Status:      StatusCompleted,
			CanLogin:    acc.IsActive,
			HostelType:  pool.HostelType(),
			User:        acc,
			SubmittedAt: submitted,
			CompletedAt: acc.RegistrationSnapshot.PaymentCompletedAt,
		}, nil
	}
	return nil, internal.ErrRegistrationNotFound
}

// ListAll returns pending records and both student pools.
func (s *Service) ListAll(ctx context.Context) (*ListAllResponse, error) {
	rows, err := s.repo.ListLive(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	temps := make([]*TempRegistration, 0, len(rows))
	for _, row := range rows {
		temps = append(temps, FromDataModel(row))
	}

	boys, err := s.accounts.List(ctx, account.ListFilter{Pool: coreAccount.PoolBoysStudent})
	if err != nil {
		return nil, err
	}
	girls, err := s.accounts.List(ctx, account.ListFilter{Pool: coreAccount.PoolGirlsStudent})
	if err != nil {
		return nil, err
	}

	completed := len(boys) + len(girls)
	return &ListAllResponse{
		Temporary: temps,
		Boys:      boys,
		Girls:     girls,
		Summary: Summary{
			Temporary: len(temps),
			Boys:      len(boys),
			Girls:     len(girls),
			Completed: completed,
			Total:     len(temps) + completed,
		},
	}, nil
}

// SweepExpired removes unpaid registrations past their expiry.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.AddExpired(n)
		s.publish(ctx, events.NewRegistrationsExpiredEvent(n))
		s.logger.InfoContext(ctx, "expired registrations removed", "count", n)
	}
	return n, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
