package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/account"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	accountDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/account"
	"gorm.io/gorm"
)

// AccountRepository implements account.Repository using GORM. Every query joins the
// transaction carried on ctx, if any.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db)
}

// Create inserts the account. Unique violations on (pool, email), register number
// or employee id become internal.ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, acc *coreAccount.Account) error {
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now

	row := coreAccount.ToDataModel(acc)
	if err := r.conn(ctx).Create(row).Error; err != nil {
		if database.IsDuplicate(err) {
			return internal.ErrDuplicateAccount.WithCause(err)
		}
		return err
	}
	acc.Email = row.Email
	return nil
}

func (r *AccountRepository) first(ctx context.Context, query string, args ...interface{}) (*coreAccount.Account, error) {
	var row accountDatamodel.Account
	if err := r.conn(ctx).Where(query, args...).First(&row).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, err
	}
	return coreAccount.FromDataModel(&row), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, pool coreAccount.Pool, id string) (*coreAccount.Account, error) {
	return r.first(ctx, "pool = ? AND id = ?", string(pool), id)
}

// FindByIDAnyPool looks an id up without knowing its pool; ids are uuids so at
// most one pool matches.
func (r *AccountRepository) FindByIDAnyPool(ctx context.Context, id string) (*coreAccount.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, pool coreAccount.Pool, email string) (*coreAccount.Account, error) {
	return r.first(ctx, "pool = ? AND email = ?", string(pool), coreAccount.NormalizeEmail(email))
}

// FindByIdentifier matches a register number, id or email within one pool.
func (r *AccountRepository) FindByIdentifier(ctx context.Context, pool coreAccount.Pool, identifier string) (*coreAccount.Account, error) {
	return r.first(ctx, "pool = ? AND (register_number = ? OR id = ? OR email = ?)",
		string(pool), identifier, identifier, coreAccount.NormalizeEmail(identifier))
}

// Update saves every column of the account.
func (r *AccountRepository) Update(ctx context.Context, acc *coreAccount.Account) error {
	acc.UpdatedAt = time.Now().UTC()
	result := r.conn(ctx).Save(coreAccount.ToDataModel(acc))
	if result.Error != nil {
		if database.IsDuplicate(result.Error) {
			return internal.ErrDuplicateAccount.WithCause(result.Error)
		}
		return result.Error
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, pool coreAccount.Pool, id, hash string) error {
	result := r.conn(ctx).Model(&accountDatamodel.Account{}).
		Where("pool = ? AND id = ?", string(pool), id).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrAccountNotFound
	}
	return nil
}

// List returns accounts matching the filter, newest first.
func (r *AccountRepository) List(ctx context.Context, filter account.ListFilter) ([]*coreAccount.Account, error) {
	q := r.conn(ctx).Model(&accountDatamodel.Account{})
	if filter.Pool != "" {
		q = q.Where("pool = ?", string(filter.Pool))
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, rl := range filter.Roles {
			roles[i] = string(rl)
		}
		q = q.Where("role IN ?", roles)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if filter.HostelID != "" {
		q = q.Where("assigned_hostel_id = ?", filter.HostelID)
	}
	if len(filter.GenderScopes) > 0 {
		scopes := make([]string, len(filter.GenderScopes))
		for i, g := range filter.GenderScopes {
			scopes[i] = string(g)
		}
		q = q.Where("gender_scope IN ?", scopes)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []accountDatamodel.Account
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]*coreAccount.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, coreAccount.FromDataModel(&rows[i]))
	}
	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context, pool coreAccount.Pool) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&accountDatamodel.Account{}).Where("pool = ?", string(pool)).Count(&count).Error
	return count, err
}
