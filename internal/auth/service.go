package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/metrics"
	"github.com/frahmantamala/hostel-management/internal/core/ratelimit"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginSuccess   = "success"
	loginFailure   = "failure"
	loginThrottled = "throttled"
)

// Service is the main auth service with dependencies
type Service struct {
	repo       AccountRepository
	tokens     TokenGenerator
	throttle   Throttle
	metrics    *metrics.Metrics
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

type Option func(*Service)

// WithThrottle enables failed-login counting.
func WithThrottle(t Throttle) Option {
	return func(s *Service) { s.throttle = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBcryptCost sets the cost of the hash compared against when the email is unknown.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// NewService creates a new auth service
func NewService(repo AccountRepository, tokens TokenGenerator, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login resolves the email across pools in probe order and issues a token.
// Unknown email, inactive account and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, dto LoginDTO, clientIP string) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	email := account.NormalizeEmail(dto.Email)

	if err := s.checkThrottle(ctx, email, clientIP); err != nil {
		return nil, err
	}

	acc, err := s.probe(ctx, email)
	if err != nil {
		return nil, err
	}

	if acc == nil || !acc.IsActive {
		// keep the timing of a real comparison
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(dto.Password))
		s.recordFailure(ctx, email, clientIP)
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(dto.Password)); err != nil {
		s.recordFailure(ctx, email, clientIP)
		return nil, internal.ErrInvalidCredentials
	}

	if (dto.Role == hintAdmin && !acc.IsStaff()) || (dto.Role == hintStudent && acc.IsStaff()) {
		s.logger.WarnContext(ctx, "login role hint mismatch", "user_id", acc.ID, "pool", acc.Pool, "hint", dto.Role)
		s.metrics.IncLogin(loginFailure)
		return nil, internal.ErrRoleMismatch
	}

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, acc.Pool, acc.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to stamp last login", "user_id", acc.ID, "error", err)
	} else {
		acc.LastLogin = &now
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email, clientIP); err != nil {
			s.logger.WarnContext(ctx, "failed to reset login throttle", "error", err)
		}
	}

	token, expiresAt, err := s.tokens.Generate(acc)
	if err != nil {
		return nil, internal.NewInternalError("Failed to issue session", err)
	}

	s.metrics.IncLogin(loginSuccess)
	s.logger.InfoContext(ctx, "login succeeded", "user_id", acc.ID, "pool", acc.Pool, "role", acc.Role)

	return &LoginResult{
		Token:       token,
		ExpiresAt:   expiresAt,
		UserType:    acc.Pool,
		User:        acc,
		Permissions: acc.Permissions(),
	}, nil
}

// probe returns the first pool hit or nil when no pool knows the email.
func (s *Service) probe(ctx context.Context, email string) (*account.Account, error) {
	for _, pool := range account.LoginProbeOrder {
		acc, err := s.repo.FindByEmail(ctx, pool, email)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, internal.ErrAccountNotFound) {
			s.logger.ErrorContext(ctx, "credential lookup failed", "pool", pool, "error", err)
			return nil, internal.NewInternalError("Login failed", err)
		}
	}
	return nil, nil
}

func (s *Service) checkThrottle(ctx context.Context, email, clientIP string) error {
	if s.throttle == nil {
		return nil
	}
	err := s.throttle.Check(ctx, email, clientIP)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ratelimit.ErrRateLimited):
		s.metrics.IncLogin(loginThrottled)
		s.logger.WarnContext(ctx, "login throttled", "email", email, "ip", clientIP)
		return internal.ErrTooManyAttempts
	default:
		// fail open
		s.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		return nil
	}
}

func (s *Service) recordFailure(ctx context.Context, email, clientIP string) {
	s.metrics.IncLogin(loginFailure)
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email, clientIP); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
	}
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("hostel-dummy-password"), s.bcryptCost)
		if err != nil {
			hash, _ = bcrypt.GenerateFromPassword([]byte("hostel-dummy-password"), bcrypt.DefaultCost)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Verify re-reads the account named by the claims. The token alone is not enough:
// a deleted or deactivated account ends the session.
func (s *Service) Verify(ctx context.Context, claims *Claims) (*Identity, error) {
	pool := account.Pool(claims.UserType)
	if !pool.Valid() {
		return nil, internal.ErrInvalidSession
	}

	acc, err := s.repo.FindByID(ctx, pool, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			return nil, internal.ErrInvalidSession
		}
		s.logger.ErrorContext(ctx, "session lookup failed", "user_id", claims.UserID, "error", err)
		return nil, internal.NewInternalError("Failed to verify session", err)
	}
	if !acc.IsActive {
		return nil, internal.ErrInvalidSession
	}

	return &Identity{Account: acc, Claims: claims}, nil
}

// Authenticate validates a bearer token and resolves its account.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, internal.ErrNoToken
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return s.Verify(ctx, claims)
}

// IssueToken signs a session for an account created outside Login.
func (s *Service) IssueToken(acc *account.Account) (string, time.Time, error) {
	token, expiresAt, err := s.tokens.Generate(acc)
	if err != nil {
		return "", time.Time{}, internal.NewInternalError("Failed to issue session", err)
	}
	return token, expiresAt, nil
}
