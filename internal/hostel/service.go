package hostel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/account"
	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	hostelDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/hostel"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Create(ctx context.Context, h *hostelDatamodel.Hostel) error
	GetByID(ctx context.Context, id string) (*hostelDatamodel.Hostel, error)
	List(ctx context.Context, filter ListFilter) ([]*hostelDatamodel.Hostel, error)
	Update(ctx context.Context, h *hostelDatamodel.Hostel) error
	FindByRepresentative(ctx context.Context, accountID string) (*hostelDatamodel.Hostel, error)
}

type ListFilter struct {
	Genders    []string
	ActiveOnly bool
}

// AccountStore is the slice of the account repository representatives need.
type AccountStore interface {
	FindByIDAnyPool(ctx context.Context, id string) (*coreAccount.Account, error)
	Update(ctx context.Context, acc *coreAccount.Account) error
	List(ctx context.Context, filter account.ListFilter) ([]*coreAccount.Account, error)
}

type Service struct {
	repo     RepositoryAPI
	accounts AccountStore
	tx       account.TxRunner
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, accounts AccountStore, tx account.TxRunner, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		tx:       tx,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateHostelDTO) (*Hostel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gender := role.GenderScope(dto.Gender)
	h := &Hostel{
		ID:            uuid.NewString(),
		Name:          dto.Name,
		Code:          NormalizeCode(dto.Code),
		Gender:        gender,
		Type:          TypeFor(gender),
		Capacity:      dto.Capacity,
		Floors:        dto.Floors,
		RoomsPerFloor: dto.RoomsPerFloor,
		WardenID:      dto.WardenID,
		ContactNumber: dto.ContactNumber,
		Address:       dto.Address,
		Facilities:    dto.Facilities,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, ToDataModel(h)); err != nil {
		s.logger.WarnContext(ctx, "failed to create hostel", "code", h.Code, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "hostel created", "hostel_id", h.ID, "code", h.Code, "gender", h.Gender)
	return h, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Hostel, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// List returns the hostels the caller's gender scope covers, optionally narrowed
// to one gender.
func (s *Service) List(ctx context.Context, scope role.GenderScope, gender string) ([]*Hostel, error) {
	target := role.NormalizeTargetGender(gender)
	if target != "" && !scope.Covers(target) {
		return nil, internal.ErrGenderScope
	}

	filter := ListFilter{}
	switch {
	case target != "":
		filter.Genders = []string{string(target)}
	case scope != role.ScopeBoth:
		filter.Genders = []string{string(scope)}
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list hostels", "error", err)
		return nil, err
	}

	hostels := make([]*Hostel, 0, len(rows))
	for _, row := range rows {
		hostels = append(hostels, FromDataModel(row))
	}
	return hostels, nil
}

// UpdateOccupancy keeps occupancy within capacity.
func (s *Service) UpdateOccupancy(ctx context.Context, id string, dto UpdateOccupancyDTO) (*Hostel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var h *Hostel
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		h = FromDataModel(row)
		if *dto.CurrentOccupancy > h.Capacity {
			return internal.ErrOverCapacity
		}
		h.CurrentOccupancy = *dto.CurrentOccupancy
		h.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, ToDataModel(h))
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// AssignIncharge records the staff member in charge of the hostel.
func (s *Service) AssignIncharge(ctx context.Context, hostelID, staffID string) error {
	row, err := s.repo.GetByID(ctx, hostelID)
	if err != nil {
		return err
	}
	h := FromDataModel(row)
	h.InchargeID = staffID
	h.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, ToDataModel(h))
}

// LocateHostel implements auth.HostelLocator.
func (s *Service) LocateHostel(ctx context.Context, id string) (*auth.HostelRef, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.HostelRef{ID: row.ID, Gender: role.GenderScope(row.Gender)}, nil
}

// AssignRepresentatives seats student accounts as the hostel and mess
// representatives. A seated student is promoted to the matching role and the
// previous holder of the seat goes back to student.
func (s *Service) AssignRepresentatives(ctx context.Context, hostelID string, dto AssignRepresentativesDTO) (*Hostel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var h *Hostel
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		row, err := s.repo.GetByID(ctx, hostelID)
		if err != nil {
			return err
		}
		h = FromDataModel(row)

		if dto.HostelRepresentativeID != nil {
			if err := s.seat(ctx, h, &h.HostelRepID, *dto.HostelRepresentativeID, role.HostelRepresentative); err != nil {
				return err
			}
		}
		if dto.MessRepresentativeID != nil {
			if err := s.seat(ctx, h, &h.MessRepID, *dto.MessRepresentativeID, role.MessRepresentative); err != nil {
				return err
			}
		}

		h.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, ToDataModel(h))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "representatives assigned", "hostel_id", hostelID,
		"hostel_rep", h.HostelRepID, "mess_rep", h.MessRepID)
	return h, nil
}

func (s *Service) seat(ctx context.Context, h *Hostel, slot *string, accountID string, seatRole role.Role) error {
	if *slot == accountID {
		return nil
	}

	if accountID != "" {
		acc, err := s.accounts.FindByIDAnyPool(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.Pool.IsStudent() || !acc.IsActive {
			return internal.NewValidationError("Representatives must be active students", internal.ErrCodeInvalidRole)
		}
		if acc.Pool.GenderScope() != h.Gender {
			return internal.ErrGenderScope.WithMessage("Student does not belong to this hostel's gender")
		}
		if acc.Role != role.Student && acc.Role != seatRole {
			return internal.NewValidationError("Student already holds another representative seat", internal.ErrCodeInvalidRole)
		}
		acc.Role = seatRole
		acc.AssignedHostelID = h.ID
		if err := s.accounts.Update(ctx, acc); err != nil {
			return err
		}
	}

	if *slot != "" {
		if err := s.demote(ctx, *slot); err != nil {
			return err
		}
	}
	*slot = accountID
	return nil
}

func (s *Service) demote(ctx context.Context, accountID string) error {
	prev, err := s.accounts.FindByIDAnyPool(ctx, accountID)
	if errors.Is(err, internal.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !prev.IsRepresentative() {
		return nil
	}
	prev.Role = role.Student
	return s.accounts.Update(ctx, prev)
}

// RemoveRepresentative returns a representative to the student role and frees
// their seat.
func (s *Service) RemoveRepresentative(ctx context.Context, accountID string) (*coreAccount.Account, error) {
	var acc *coreAccount.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.accounts.FindByIDAnyPool(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.IsRepresentative() {
			return internal.NewValidationError("Account is not a representative", internal.ErrCodeInvalidRole)
		}

		row, err := s.repo.FindByRepresentative(ctx, accountID)
		switch {
		case err == nil:
			h := FromDataModel(row)
			if h.HostelRepID == accountID {
				h.HostelRepID = ""
			}
			if h.MessRepID == accountID {
				h.MessRepID = ""
			}
			h.UpdatedAt = time.Now().UTC()
			if err := s.repo.Update(ctx, ToDataModel(h)); err != nil {
				return err
			}
		case !errors.Is(err, internal.ErrHostelNotFound):
			return err
		}

		acc.Role = role.Student
		return s.accounts.Update(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "representative removed", "user_id", accountID)
	return acc, nil
}

// ForRepresentative returns the hostel whose seat the account holds.
func (s *Service) ForRepresentative(ctx context.Context, id *auth.Identity) (*RepresentativeHostel, error) {
	row, err := s.repo.FindByRepresentative(ctx, id.ID)
	if err != nil {
		if !errors.Is(err, internal.ErrHostelNotFound) || id.AssignedHostelID == "" {
			return nil, err
		}
		if row, err = s.repo.GetByID(ctx, id.AssignedHostelID); err != nil {
			return nil, err
		}
	}

	h := FromDataModel(row)
	seat := string(id.Role)
	switch id.ID {
	case h.HostelRepID:
		seat = string(role.HostelRepresentative)
	case h.MessRepID:
		seat = string(role.MessRepresentative)
	}
	return &RepresentativeHostel{Hostel: h.ToResponse(), Seat: seat}, nil
}

// Representatives lists representative accounts, for one hostel when hostelID is
// set, limited to the caller's gender scope.
func (s *Service) Representatives(ctx context.Context, scope role.GenderScope, hostelID string) ([]*coreAccount.Account, error) {
	filter := account.ListFilter{
		Roles:    []role.Role{role.HostelRepresentative, role.MessRepresentative},
		HostelID: hostelID,
	}
	switch scope {
	case role.ScopeBoys:
		filter.Pool = coreAccount.PoolBoysStudent
	case role.ScopeGirls:
		filter.Pool = coreAccount.PoolGirlsStudent
	}
	return s.accounts.List(ctx, filter)
}
