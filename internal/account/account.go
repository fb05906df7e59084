// Package account manages accounts after they exist: direct registration, profiles,
// passwords and staff administration. Promotion from a paid registration lives in
// the registration package.
package account

import (
	"context"
	"time"

	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
)

type Repository interface {
	Create(ctx context.Context, acc *coreAccount.Account) error
	FindByID(ctx context.Context, pool coreAccount.Pool, id string) (*coreAccount.Account, error)
	FindByIDAnyPool(ctx context.Context, id string) (*coreAccount.Account, error)
	FindByEmail(ctx context.Context, pool coreAccount.Pool, email string) (*coreAccount.Account, error)
	FindByIdentifier(ctx context.Context, pool coreAccount.Pool, identifier string) (*coreAccount.Account, error)
	Update(ctx context.Context, acc *coreAccount.Account) error
	UpdatePassword(ctx context.Context, pool coreAccount.Pool, id, hash string) error
	List(ctx context.Context, filter ListFilter) ([]*coreAccount.Account, error)
	Count(ctx context.Context, pool coreAccount.Pool) (int64, error)
}

type ListFilter struct {
	Pool         coreAccount.Pool
	Roles        []role.Role
	Active       *bool
	HostelID     string
	GenderScopes []role.GenderScope
	Limit        int
	Offset       int
}

// TokenIssuer signs a session for a freshly registered account.
type TokenIssuer interface {
	IssueToken(acc *coreAccount.Account) (string, time.Time, error)
}

// HostelDirectory is the hostel side of staff assignment.
type HostelDirectory interface {
	LocateHostel(ctx context.Context, id string) (*auth.HostelRef, error)
	AssignIncharge(ctx context.Context, hostelID, staffID string) error
}

// TxRunner runs fn in one transaction. database.Transactor implements it.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type RegisterResult struct {
	User      *coreAccount.Account `json:"user"`
	UserType  coreAccount.Pool     `json:"userType"`
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

type ProfileResponse struct {
	User        *coreAccount.Account `json:"user"`
	UserType    coreAccount.Pool     `json:"userType"`
	Permissions []role.Permission    `json:"permissions,omitempty"`
}

const maxIdentifierAttempts = 5
