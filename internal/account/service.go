package account

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo       Repository
	tokens     TokenIssuer
	hostels    HostelDirectory
	tx         TxRunner
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
	rand       io.Reader
}

type Config struct {
	BcryptCost int
}

func NewService(repo Repository, tokens TokenIssuer, hostels HostelDirectory, tx TxRunner, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		hostels:    hostels,
		tx:         tx,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
		rand:       rand.Reader,
	}
}

// Register creates an account directly and signs a session for it.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error) {
	acc, err := s.create(ctx, dto)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.IssueToken(acc)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{User: acc, UserType: acc.Pool, Token: token, ExpiresAt: expiresAt}, nil
}

// CreateStaff registers a staff member on behalf of senior staff.
func (s *Service) CreateStaff(ctx context.Context, dto RegisterDTO) (*coreAccount.Account, error) {
	if r, ok := role.Parse(dto.Role); ok && !role.IsStaff(r) {
		return nil, internal.NewValidationFieldError("role", "role must be a staff role", internal.ErrCodeInvalidRole)
	}
	return s.create(ctx, dto)
}

func (s *Service) create(ctx context.Context, dto RegisterDTO) (*coreAccount.Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	r, _ := role.Parse(dto.Role)
	acc := s.accountFromDTO(dto, r)

	if err := s.ensureEmailFree(ctx, acc); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to secure password", err)
	}
	acc.PasswordHash = string(hash)

	// generated identifiers may collide; caller-supplied ones fail straight away
	generated := (acc.Pool == coreAccount.PoolStaff && dto.EmployeeID == "") ||
		(acc.Pool.IsStudent() && dto.RegisterNumber == "")

	for attempt := 1; ; attempt++ {
		if err := s.assignIdentifier(acc, dto); err != nil {
			return nil, internal.NewInternalError("Failed to generate identifier", err)
		}
		acc.ID = uuid.NewString()

		err = s.repo.Create(ctx, acc)
		if err == nil {
			break
		}
		if !errors.Is(err, internal.ErrDuplicateAccount) || !generated || attempt >= maxIdentifierAttempts {
			s.logger.WarnContext(ctx, "account creation failed", "email", acc.Email, "pool", acc.Pool, "error", err)
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "account registered", "user_id", acc.ID, "pool", acc.Pool, "role", acc.Role)
	return acc, nil
}

// ensureEmailFree rejects an email already taken in the account's pool. A
// student email is unique across both student pools.
func (s *Service) ensureEmailFree(ctx context.Context, acc *coreAccount.Account) error {
	pools := []coreAccount.Pool{acc.Pool}
	if acc.Pool.IsStudent() {
		pools = coreAccount.StudentPools
	}
	for _, pool := range pools {
		if _, err := s.repo.FindByEmail(ctx, pool, acc.Email); err == nil {
			return internal.ErrDuplicateAccount.WithMessage("An account with this email already exists")
		} else if !errors.Is(err, internal.ErrAccountNotFound) {
			return err
		}
	}
	return nil
}

func (s *Service) accountFromDTO(dto RegisterDTO, r role.Role) *coreAccount.Account {
	now := s.now().UTC()
	acc := &coreAccount.Account{
		Email:          coreAccount.NormalizeEmail(dto.Email),
		Role:           r,
		FirstName:      strings.TrimSpace(dto.FirstName),
		LastName:       strings.TrimSpace(dto.LastName),
		Phone:          dto.Phone,
		Gender:         strings.ToLower(dto.Gender),
		DateOfBirth:    dto.DateOfBirth,
		Department:     dto.Department,
		Qualification:  dto.Qualification,
		Experience:     dto.Experience,
		JoiningDate:    dto.JoiningDate,
		Course:         dto.Course,
		Year:           dto.Year,
		Category:       dto.Category,
		MessPreference: dto.MessPreference,
		IsActive:       true,
		IsVerified:     true,
		CreatedAt:      now,
	}

	if role.IsStaff(r) {
		acc.Pool = coreAccount.PoolStaff
		acc.GenderScope = role.DefaultGenderScope(r)
		if !role.Gendered(r) && dto.AssignedGender != "" {
			acc.GenderScope = role.GenderScope(dto.AssignedGender)
		}
		if acc.JoiningDate == nil {
			acc.JoiningDate = &now
		}
	} else {
		acc.Pool = coreAccount.PoolForGender(dto.Gender)
		acc.GenderScope = acc.Pool.GenderScope()
	}
	return acc
}

func (s *Service) assignIdentifier(acc *coreAccount.Account, dto RegisterDTO) error {
	var err error
	switch {
	case acc.Pool == coreAccount.PoolStaff && dto.EmployeeID != "":
		acc.EmployeeID = dto.EmployeeID
	case acc.Pool == coreAccount.PoolStaff:
		acc.EmployeeID, err = coreAccount.NewEmployeeID(s.now(), s.rand)
	case dto.RegisterNumber != "":
		acc.RegisterNumber = strings.ToUpper(dto.RegisterNumber)
	default:
		acc.RegisterNumber, err = coreAccount.NewRegisterNumber(acc.Pool, s.now(), s.rand)
	}
	return err
}

// Profile returns the caller's account; staff also get their permission list.
func (s *Service) Profile(ctx context.Context, id *auth.Identity) (*ProfileResponse, error) {
	acc, err := s.repo.FindByID(ctx, id.Pool, id.ID)
	if err != nil {
		return nil, err
	}
	resp := &ProfileResponse{User: acc, UserType: acc.Pool}
	if acc.IsStaff() {
		resp.Permissions = acc.Permissions()
	}
	return resp, nil
}

// UpdateProfile applies the allowed fields to the target account. The route guard
// decides who may name a target other than themselves.
func (s *Service) UpdateProfile(ctx context.Context, targetID string, dto UpdateProfileDTO) (*coreAccount.Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByIDAnyPool(ctx, targetID)
	if err != nil {
		return nil, err
	}

	dto.Apply(acc)
	if err := s.repo.Update(ctx, acc); err != nil {
		s.logger.ErrorContext(ctx, "profile update failed", "user_id", targetID, "error", err)
		return nil, err
	}
	return acc, nil
}

// ChangePassword checks the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, id *auth.Identity, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	acc, err := s.repo.FindByID(ctx, id.Pool, id.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(dto.CurrentPassword)) != nil {
		return internal.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("Failed to secure password", err)
	}
	if err := s.repo.UpdatePassword(ctx, acc.Pool, acc.ID, string(hash)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", acc.ID)
	return nil
}

// UpdateContact lets a representative, or senior staff on their behalf, keep the
// contact block current.
func (s *Service) UpdateContact(ctx context.Context, targetID string, dto UpdateContactDTO) (*coreAccount.Account, error) {
	acc, err := s.repo.FindByIDAnyPool(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !acc.IsRepresentative() {
		return nil, internal.NewValidationError("Account is not a representative", internal.ErrCodeInvalidRole)
	}

	if dto.Phone != nil {
		acc.Phone = *dto.Phone
	}
	if dto.EmergencyContact != nil {
		acc.EmergencyContact = *dto.EmergencyContact
	}
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}
