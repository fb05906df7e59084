package postgres

import (
	"context"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	hostelDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/hostel"
	"github.com/frahmantamala/hostel-management/internal/hostel"
	"gorm.io/gorm"
)

type HostelRepository struct {
	db *gorm.DB
}

func NewHostelRepository(db *gorm.DB) *HostelRepository {
	return &HostelRepository{db: db}
}

var _ hostel.RepositoryAPI = (*HostelRepository)(nil)

func (r *HostelRepository) Create(ctx context.Context, h *hostelDatamodel.Hostel) error {
	if err := database.Conn(ctx, r.db).Create(h).Error; err != nil {
		if database.IsDuplicate(err) {
			return internal.ErrDuplicateHostel.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *HostelRepository) GetByID(ctx context.Context, id string) (*hostelDatamodel.Hostel, error) {
	var h hostelDatamodel.Hostel
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&h).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrHostelNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *HostelRepository) List(ctx context.Context, filter hostel.ListFilter) ([]*hostelDatamodel.Hostel, error) {
	q := database.Conn(ctx, r.db).Model(&hostelDatamodel.Hostel{})
	if len(filter.Genders) > 0 {
		q = q.Where("gender IN ?", filter.Genders)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var hostels []*hostelDatamodel.Hostel
	err := q.Order("code ASC").Find(&hostels).Error
	return hostels, err
}

func (r *HostelRepository) Update(ctx context.Context, h *hostelDatamodel.Hostel) error {
	if err := database.Conn(ctx, r.db).Save(h).Error; err != nil {
		if database.IsDuplicate(err) {
			return internal.ErrDuplicateHostel.WithCause(err)
		}
		return err
	}
	return nil
}

// FindByRepresentative returns the hostel where the account holds either seat.
func (r *HostelRepository) FindByRepresentative(ctx context.Context, accountID string) (*hostelDatamodel.Hostel, error) {
	var h hostelDatamodel.Hostel
	err := database.Conn(ctx, r.db).
		Where("hostel_rep_id = ? OR mess_rep_id = ?", accountID, accountID).
		First(&h).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrHostelNotFound
		}
		return nil, err
	}
	return &h, nil
}
