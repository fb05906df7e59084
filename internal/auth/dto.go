package auth

import (
	"github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/common/validation"
	"github.com/frahmantamala/hostel-management/internal/role"
)

// LoginDTO is the body of POST /api/auth/login. Role is an optional hint:
// "admin" for the staff portal, "student" for the student portal.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

const (
	hintAdmin   = "admin"
	hintStudent = "student"
)

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	v.Field("role", d.Role).OneOf(hintAdmin, hintStudent)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// VerifyResponse is returned by GET /api/auth/verify.
type VerifyResponse struct {
	User        *account.Account  `json:"user"`
	UserType    account.Pool      `json:"userType"`
	Permissions []role.Permission `json:"permissions"`
}

// RolesResponse is returned by GET /api/auth/roles.
type RolesResponse struct {
	StaffRoles   []role.Role                     `json:"staffRoles"`
	StudentRoles []role.Role                     `json:"studentRoles"`
	Permissions  map[role.Role][]role.Permission `json:"permissions"`
}
