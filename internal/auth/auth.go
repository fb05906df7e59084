// Package auth resolves who is calling. It logs accounts in across the three pools,
// issues and verifies session tokens and provides the guard chain that authorizes
// each route.
package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. Role is "student" for every student-family
// role; the account keeps its true role.
type Claims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	UserType   string `json:"user_type"`
	Role       string `json:"role"`
	IsStaff    bool   `json:"is_staff"`
	IsStudent  bool   `json:"is_student"`
	Gender     string `json:"gender,omitempty"`
	HostelType string `json:"hostel_type,omitempty"`
	jwt.RegisteredClaims
}

// AccountRepository is the credential view of the account pools.
type AccountRepository interface {
	FindByEmail(ctx context.Context, pool account.Pool, email string) (*account.Account, error)
	FindByID(ctx context.Context, pool account.Pool, id string) (*account.Account, error)
	TouchLastLogin(ctx context.Context, pool account.Pool, id string, at time.Time) error
}

// TokenGenerator signs and parses session tokens.
type TokenGenerator interface {
	Generate(acc *account.Account) (token string, expiresAt time.Time, err error)
	Validate(token string) (*Claims, error)
}

// Throttle counts failed logins. ratelimit.Limiter implements it.
type Throttle interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email, ip string) error
}

type LoginResult struct {
	Token       string            `json:"token"`
	ExpiresAt   time.Time         `json:"expiresAt"`
	UserType    account.Pool      `json:"userType"`
	User        *account.Account  `json:"user"`
	Permissions []role.Permission `json:"permissions"`
}

// ClaimsFor builds the token payload for an account.
func ClaimsFor(acc *account.Account) Claims {
	claimRole := string(acc.Role)
	if role.IsStudent(acc.Role) {
		claimRole = string(role.Student)
	}
	return Claims{
		UserID:     acc.ID,
		Email:      acc.Email,
		UserType:   string(acc.Pool),
		Role:       claimRole,
		IsStaff:    acc.IsStaff(),
		IsStudent:  acc.IsStudent(),
		Gender:     acc.Gender,
		HostelType: acc.Pool.HostelType(),
	}
}
