package account

import (
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/common/validation"
	"github.com/frahmantamala/hostel-management/internal/role"
)

var (
	genders         = []string{"male", "female", "transgender"}
	categories      = []string{"FC", "BC", "MBC", "SC", "ST"}
	messPreferences = []string{"VEG", "NON VEG"}
	scopes          = []string{string(role.ScopeBoys), string(role.ScopeGirls), string(role.ScopeBoth)}
)

// RegisterDTO creates an account directly, outside the paid registration flow.
type RegisterDTO struct {
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	Role           string     `json:"role"`
	Phone          string     `json:"phone"`
	Gender         string     `json:"gender"`
	DateOfBirth    *time.Time `json:"dateOfBirth"`
	Department     string     `json:"department"`
	EmployeeID     string     `json:"employeeId"`
	Qualification  string     `json:"qualification"`
	Experience     int        `json:"experience"`
	JoiningDate    *time.Time `json:"dateOfJoining"`
	AssignedGender string     `json:"assignedGender"`
	Course         string     `json:"course"`
	Year           int        `json:"year"`
	RegisterNumber string     `json:"registerNumber"`
	Category       string     `json:"category"`
	MessPreference string     `json:"messPreference"`
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("firstName", d.FirstName).Required().MaxLength(100)
	v.Field("lastName", d.LastName).MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("role", d.Role).Required().Custom(func(value interface{}) *internal.AppError {
		if _, ok := role.Parse(d.Role); !ok {
			return internal.NewValidationFieldError("role", "role is not recognised", internal.ErrCodeInvalidRole)
		}
		return nil
	})
	v.Field("assignedGender", d.AssignedGender).OneOf(scopes...)
	v.Field("category", d.Category).OneOf(categories...)
	v.Field("messPreference", d.MessPreference).OneOf(messPreferences...)
	v.Field("year", d.Year).IntRange(0, 4)
	v.Field("experience", d.Experience).IntRange(0, 60)

	if r, ok := role.Parse(d.Role); ok && role.IsStudent(r) {
		v.Field("gender", d.Gender).Required().OneOf(genders...)
	} else {
		v.Field("gender", d.Gender).OneOf(genders...)
	}
	if d.DateOfBirth != nil {
		v.Field("dateOfBirth", *d.DateOfBirth).NotFuture()
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if appErr := validation.Password("password", d.Password); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateProfileDTO lists the only fields a profile update may touch. Password, role,
// activation and identifiers have their own operations.
type UpdateProfileDTO struct {
	FirstName        *string              `json:"firstName"`
	LastName         *string              `json:"lastName"`
	Phone            *string              `json:"phone"`
	Department       *string              `json:"department"`
	Course           *string              `json:"course"`
	Year             *int                 `json:"year"`
	MessPreference   *string              `json:"messPreference"`
	ProfilePicture   *string              `json:"profilePicture"`
	EmergencyContact *coreAccount.Contact `json:"emergencyContact"`
}

func (d UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	if d.FirstName != nil {
		v.Field("firstName", *d.FirstName).Required().MaxLength(100)
	}
	if d.LastName != nil {
		v.Field("lastName", *d.LastName).MaxLength(100)
	}
	if d.Year != nil {
		v.Field("year", *d.Year).IntRange(1, 4)
	}
	if d.MessPreference != nil {
		v.Field("messPreference", *d.MessPreference).OneOf(messPreferences...)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Apply copies the set fields onto acc.
func (d UpdateProfileDTO) Apply(acc *coreAccount.Account) {
	if d.FirstName != nil {
		acc.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		acc.LastName = *d.LastName
	}
	if d.Phone != nil {
		acc.Phone = *d.Phone
	}
	if d.Department != nil {
		acc.Department = *d.Department
	}
	if d.Course != nil {
		acc.Course = *d.Course
	}
	if d.Year != nil {
		acc.Year = *d.Year
	}
	if d.MessPreference != nil {
		acc.MessPreference = *d.MessPreference
	}
	if d.ProfilePicture != nil {
		acc.ProfilePicture = *d.ProfilePicture
	}
	if d.EmergencyContact != nil {
		acc.EmergencyContact = *d.EmergencyContact
	}
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (d ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("currentPassword", d.CurrentPassword).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if appErr := validation.Password("newPassword", d.NewPassword); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateStaffDTO is what senior staff may change on another staff member.
type UpdateStaffDTO struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Phone          *string `json:"phone"`
	Department     *string `json:"department"`
	Qualification  *string `json:"qualification"`
	Experience     *int    `json:"experience"`
	AssignedGender *string `json:"assignedGender"`
}

func (d UpdateStaffDTO) Validate() error {
	v := validation.NewValidator()
	if d.FirstName != nil {
		v.Field("firstName", *d.FirstName).Required().MaxLength(100)
	}
	if d.Experience != nil {
		v.Field("experience", *d.Experience).IntRange(0, 60)
	}
	if d.AssignedGender != nil {
		v.Field("assignedGender", *d.AssignedGender).Required().OneOf(scopes...)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ChangeRoleDTO struct {
	Role string `json:"role"`
}

type AssignHostelDTO struct {
	HostelID string `json:"hostelId"`
}

// UpdateContactDTO is the contact block a representative keeps current.
type UpdateContactDTO struct {
	Phone            *string              `json:"phone"`
	EmergencyContact *coreAccount.Contact `json:"emergencyContact"`
}
