package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	registrationDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/registration"
	"github.com/frahmantamala/hostel-management/internal/registration"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

var _ registration.RepositoryAPI = (*RegistrationRepository)(nil)

// Create inserts a pending record. The email is unique, so a concurrent submit
// for the same address surfaces as internal.ErrDuplicatePending.
func (r *RegistrationRepository) Create(ctx context.Context, reg *registrationDatamodel.TempRegistration) error {
	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now

	if err := database.Conn(ctx, r.db).Create(reg).Error; err != nil {
		if database.IsDuplicate(err) {
			return internal.ErrDuplicatePending.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *RegistrationRepository) FindLive(ctx context.Context, identifier string, now time.Time) (*registrationDatamodel.TempRegistration, error) {
	var reg registrationDatamodel.TempRegistration
	err := database.Conn(ctx, r.db).
		Where("(id = ? OR email = ?) AND expires_at > ?", identifier, coreAccount.NormalizeEmail(identifier), now).
		First(&reg).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) ListLive(ctx context.Context, now time.Time) ([]*registrationDatamodel.TempRegistration, error) {
	var regs []*registrationDatamodel.TempRegistration
	err := database.Conn(ctx, r.db).
		Where("expires_at > ?", now).
		Order("submitted_at DESC").
		Find(&regs).Error
	return regs, err
}

func (r *RegistrationRepository) Update(ctx context.Context, reg *registrationDatamodel.TempRegistration) error {
	reg.UpdatedAt = time.Now().UTC()
	return database.Conn(ctx, r.db).Save(reg).Error
}

func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	result := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&registrationDatamodel.TempRegistration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrRegistrationNotFound
	}
	return nil
}

func (r *RegistrationRepository) DeleteExpiredByEmail(ctx context.Context, email string, now time.Time) (int64, error) {
	result := database.Conn(ctx, r.db).
		Where("email = ? AND expires_at <= ?", coreAccount.NormalizeEmail(email), now).
		Delete(&registrationDatamodel.TempRegistration{})
	return result.RowsAffected, result.Error
}

// DeleteExpired removes unpaid records past expiry. Completed rows are removed at
// promotion and never reach here.
func (r *RegistrationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := database.Conn(ctx, r.db).
		Where("expires_at <= ? AND status <> ?", now, string(registration.StatusCompleted)).
		Delete(&registrationDatamodel.TempRegistration{})
	return result.RowsAffected, result.Error
}
