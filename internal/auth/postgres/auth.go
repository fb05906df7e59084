package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	accountDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/account"
	"gorm.io/gorm"
)

// Repository is the credential view of the accounts table used by login and
// session verification.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByEmail(ctx context.Context, pool account.Pool, email string) (*account.Account, error) {
	var row accountDatamodel.Account
	err := database.Conn(ctx, r.db).
		Where("pool = ? AND email = ?", string(pool), account.NormalizeEmail(email)).
		First(&row).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, err
	}
	return account.FromDataModel(&row), nil
}

func (r *Repository) FindByID(ctx context.Context, pool account.Pool, id string) (*account.Account, error) {
	var row accountDatamodel.Account
	err := database.Conn(ctx, r.db).
		Where("pool = ? AND id = ?", string(pool), id).
		First(&row).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, err
	}
	return account.FromDataModel(&row), nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, pool account.Pool, id string, at time.Time) error {
	return database.Conn(ctx, r.db).
		Model(&accountDatamodel.Account{}).
		Where("pool = ? AND id = ?", string(pool), id).
		UpdateColumn("last_login", at).Error
}
