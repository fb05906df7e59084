package account

import (
	"context"

	"github.com/frahmantamala/hostel-management/internal"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
)

// StaffFilter narrows ListStaff. Role must be a staff role when set.
type StaffFilter struct {
	Role   string
	Active *bool
	Limit  int
	Offset int
}

func (s *Service) ListStaff(ctx context.Context, filter StaffFilter) ([]*coreAccount.Account, error) {
	f := ListFilter{Pool: coreAccount.PoolStaff, Active: filter.Active, Limit: filter.Limit, Offset: filter.Offset}
	if filter.Role != "" {
		r, err := staffRole(filter.Role)
		if err != nil {
			return nil, err
		}
		f.Roles = []role.Role{r}
	}
	return s.repo.List(ctx, f)
}

func (s *Service) StaffByRole(ctx context.Context, roleName string) ([]*coreAccount.Account, error) {
	return s.ListStaff(ctx, StaffFilter{Role: roleName})
}

func (s *Service) GetStaff(ctx context.Context, staffID string) (*coreAccount.Account, error) {
	return s.repo.FindByID(ctx, coreAccount.PoolStaff, staffID)
}

func (s *Service) UpdateStaff(ctx context.Context, staffID string, dto UpdateStaffDTO) (*coreAccount.Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByID(ctx, coreAccount.PoolStaff, staffID)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		acc.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		acc.LastName = *dto.LastName
	}
	if dto.Phone != nil {
		acc.Phone = *dto.Phone
	}
	if dto.Department != nil {
		acc.Department = *dto.Department
	}
	if dto.Qualification != nil {
		acc.Qualification = *dto.Qualification
	}
	if dto.Experience != nil {
		acc.Experience = *dto.Experience
	}
	// gendered roles keep the scope their role implies
	if dto.AssignedGender != nil && !role.Gendered(acc.Role) {
		acc.GenderScope = role.GenderScope(*dto.AssignedGender)
	}

	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ChangeStaffRole moves a staff member to another staff role and re-derives the
// gender scope from it.
func (s *Service) ChangeStaffRole(ctx context.Context, staffID string, dto ChangeRoleDTO) (*coreAccount.Account, error) {
	r, err := staffRole(dto.Role)
	if err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByID(ctx, coreAccount.PoolStaff, staffID)
	if err != nil {
		return nil, err
	}

	previous := acc.Role
	acc.Role = r
	acc.GenderScope = role.DefaultGenderScope(r)
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "staff role changed", "staff_id", staffID, "from", previous, "to", r)
	return acc, nil
}

// AssignHostel records the hostel on the staff account. A hostel incharge also
// becomes the hostel's incharge, in the same transaction.
func (s *Service) AssignHostel(ctx context.Context, staffID string, dto AssignHostelDTO) (*coreAccount.Account, error) {
	if dto.HostelID == "" {
		return nil, internal.NewValidationFieldError("hostelId", "hostelId is required", internal.ErrCodeValidationFailed)
	}

	var acc *coreAccount.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.repo.FindByID(ctx, coreAccount.PoolStaff, staffID)
		if err != nil {
			return err
		}

		hostel, err := s.hostels.LocateHostel(ctx, dto.HostelID)
		if err != nil {
			return err
		}
		if !acc.CanManageGender(hostel.Gender) {
			return internal.ErrGenderScope.WithMessage("Staff member's gender scope does not cover this hostel")
		}

		acc.AssignedHostelID = hostel.ID
		if err := s.repo.Update(ctx, acc); err != nil {
			return err
		}
		if acc.Role == role.HostelIncharge {
			return s.hostels.AssignIncharge(ctx, hostel.ID, acc.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "staff assigned to hostel", "staff_id", staffID, "hostel_id", dto.HostelID)
	return acc, nil
}

// SetStaffActive activates or deactivates a staff account. Nobody may deactivate
// themselves.
func (s *Service) SetStaffActive(ctx context.Context, actorID, staffID string, active bool) (*coreAccount.Account, error) {
	if !active && actorID == staffID {
		return nil, internal.NewValidationError("You cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	acc, err := s.repo.FindByID(ctx, coreAccount.PoolStaff, staffID)
	if err != nil {
		return nil, err
	}
	acc.IsActive = active
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "staff activation changed", "staff_id", staffID, "active", active, "by", actorID)
	return acc, nil
}

func staffRole(name string) (role.Role, error) {
	r, ok := role.Parse(name)
	if !ok || !role.IsStaff(r) {
		return "", internal.NewValidationFieldError("role", "role must be a staff role", internal.ErrCodeInvalidRole)
	}
	return r, nil
}
