package auth

import (
	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
)

// Policy answers ownership questions that need the resource attributes in hand,
// after the route guards have run.
type Policy struct{}

var defaultPolicy Policy

// CanActOn allows the caller on their own account. With elevated nil any staff
// member is allowed; otherwise only the listed roles are.
func (Policy) CanActOn(id *Identity, targetID string, elevated []role.Role) error {
	if id == nil || id.Account == nil {
		return internal.ErrMissingIdentity
	}
	if targetID != "" && targetID == id.ID {
		return nil
	}
	if elevated == nil {
		if id.IsStaff() {
			return nil
		}
	} else if role.In(id.Role, elevated) {
		return nil
	}
	return internal.ErrForbidden
}

// CanReadStudentRecord allows staff and the student the record was issued to.
func (Policy) CanReadStudentRecord(id *Identity, ownerEmail string) error {
	if id == nil || id.Account == nil {
		return internal.ErrMissingIdentity
	}
	if id.IsStaff() {
		return nil
	}
	if ownerEmail != "" && account.NormalizeEmail(ownerEmail) == account.NormalizeEmail(id.Email) {
		return nil
	}
	return internal.ErrForbidden.WithMessage("Access denied. You can only access your own records.")
}

// CanReadStudentRecord is the package-level shorthand for handlers.
func CanReadStudentRecord(id *Identity, ownerEmail string) error {
	return defaultPolicy.CanReadStudentRecord(id, ownerEmail)
}
