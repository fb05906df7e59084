// Package account holds the single account type shared by every pool. Services in
// auth, registration and account operate on it; pool membership is the Pool tag.
package account

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	accountDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/account"
	"github.com/frahmantamala/hostel-management/internal/role"
	"gorm.io/datatypes"
)

type Pool string

const (
	PoolStaff        Pool = "staff"
	PoolBoysStudent  Pool = "boys_student"
	PoolGirlsStudent Pool = "girls_student"
)

// LoginProbeOrder is the order pools are searched when resolving an email.
var LoginProbeOrder = []Pool{PoolStaff, PoolBoysStudent, PoolGirlsStudent}

// StudentPools in status lookup order.
var StudentPools = []Pool{PoolBoysStudent, PoolGirlsStudent}

func (p Pool) Valid() bool {
	return p == PoolStaff || p == PoolBoysStudent || p == PoolGirlsStudent
}

func (p Pool) IsStudent() bool {
	return p == PoolBoysStudent || p == PoolGirlsStudent
}

func (p Pool) HostelType() string {
	switch p {
	case PoolBoysStudent:
		return "Boys Hostel"
	case PoolGirlsStudent:
		return "Girls Hostel"
	default:
		return ""
	}
}

func (p Pool) RegisterPrefix() string {
	if p == PoolBoysStudent {
		return "BH"
	}
	return "GH"
}

func (p Pool) GenderScope() role.GenderScope {
	switch p {
	case PoolBoysStudent:
		return role.ScopeBoys
	case PoolGirlsStudent:
		return role.ScopeGirls
	default:
		return role.ScopeBoth
	}
}

// PoolForGender routes male students to the boys pool and everyone else to the girls pool.
func PoolForGender(gender string) Pool {
	if strings.EqualFold(strings.TrimSpace(gender), "male") {
		return PoolBoysStudent
	}
	return PoolGirlsStudent
}

type (
	Contact              = accountDatamodel.Contact
	PaymentSnapshot      = accountDatamodel.PaymentSnapshot
	RegistrationSnapshot = accountDatamodel.RegistrationSnapshot
)

type Account struct {
	ID                   string               `json:"id"`
	Pool                 Pool                 `json:"userType"`
	Email                string               `json:"email"`
	PasswordHash         string               `json:"-"`
	Role                 role.Role            `json:"role"`
	FirstName            string               `json:"firstName"`
	LastName             string               `json:"lastName"`
	Phone                string               `json:"phone,omitempty"`
	DateOfBirth          *time.Time           `json:"dateOfBirth,omitempty"`
	Gender               string               `json:"gender,omitempty"`
	Category             string               `json:"category,omitempty"`
	MessPreference       string               `json:"messPreference,omitempty"`
	Course               string               `json:"course,omitempty"`
	Year                 int                  `json:"year,omitempty"`
	Department           string               `json:"department,omitempty"`
	RegisterNumber       string               `json:"registerNumber,omitempty"`
	EmployeeID           string               `json:"employeeId,omitempty"`
	Qualification        string               `json:"qualification,omitempty"`
	Experience           int                  `json:"experience,omitempty"`
	JoiningDate          *time.Time           `json:"dateOfJoining,omitempty"`
	AssignedHostelID     string               `json:"assignedHostel,omitempty"`
	GenderScope          role.GenderScope     `json:"assignedGender"`
	ProfilePicture       string               `json:"profilePicture,omitempty"`
	ParentContact        Contact              `json:"parentContact"`
	EmergencyContact     Contact              `json:"emergencyContact"`
	PaymentSnapshot      PaymentSnapshot      `json:"paymentDetails"`
	RegistrationSnapshot RegistrationSnapshot `json:"registrationData"`
	IsActive             bool                 `json:"isActive"`
	IsVerified           bool                 `json:"isVerified"`
	LastLogin            *time.Time           `json:"lastLogin,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

func (a *Account) IsStaff() bool {
	return a.Pool == PoolStaff && role.IsStaff(a.Role)
}

func (a *Account) IsStudent() bool {
	return a.Pool.IsStudent() && role.IsStudent(a.Role)
}

func (a *Account) IsRepresentative() bool {
	return role.IsRepresentative(a.Role)
}

func (a *Account) Permissions() []role.Permission {
	return role.PermissionsOf(a.Role)
}

func (a *Account) CanManageGender(target role.GenderScope) bool {
	return a.GenderScope.Covers(target)
}

func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// SplitName takes the first token as first name and the rest as last name.
// A single token fills both fields.
func SplitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// NormalizeEmail lower-cases and trims; pools compare emails case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomDigits(r io.Reader, n int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(r, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v.Int64()), nil
}

// NewRegisterNumber builds prefix + yy + 4 random digits, e.g. BH251234.
func NewRegisterNumber(p Pool, now time.Time, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	suffix, err := randomDigits(r, 4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%02d%s", p.RegisterPrefix(), now.Year()%100, suffix), nil
}

// NewEmployeeID builds EMP + yy + 3 random digits.
func NewEmployeeID(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	suffix, err := randomDigits(r, 3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP%02d%s", now.Year()%100, suffix), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:                   a.ID,
		Pool:                 string(a.Pool),
		Email:                NormalizeEmail(a.Email),
		PasswordHash:         a.PasswordHash,
		Role:                 string(a.Role),
		FirstName:            a.FirstName,
		LastName:             a.LastName,
		Phone:                a.Phone,
		DateOfBirth:          a.DateOfBirth,
		Gender:               a.Gender,
		Category:             a.Category,
		MessPreference:       a.MessPreference,
		Course:               a.Course,
		Year:                 a.Year,
		Department:           a.Department,
		RegisterNumber:       optional(a.RegisterNumber),
		EmployeeID:           optional(a.EmployeeID),
		Qualification:        a.Qualification,
		Experience:           a.Experience,
		JoiningDate:          a.JoiningDate,
		AssignedHostelID:     optional(a.AssignedHostelID),
		GenderScope:          string(a.GenderScope),
		ProfilePicture:       a.ProfilePicture,
		ParentContact:        datatypes.NewJSONType(a.ParentContact),
		EmergencyContact:     datatypes.NewJSONType(a.EmergencyContact),
		PaymentSnapshot:      datatypes.NewJSONType(a.PaymentSnapshot),
		RegistrationSnapshot: datatypes.NewJSONType(a.RegistrationSnapshot),
		IsActive:             a.IsActive,
		IsVerified:           a.IsVerified,
		LastLogin:            a.LastLogin,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func FromDataModel(m *accountDatamodel.Account) *Account {
	return &Account{
		ID:                   m.ID,
		Pool:                 Pool(m.Pool),
		Email:                m.Email,
		PasswordHash:         m.PasswordHash,
		Role:                 role.Role(m.Role),
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Phone:                m.Phone,
		DateOfBirth:          m.DateOfBirth,
		Gender:               m.Gender,
		Category:             m.Category,
		MessPreference:       m.MessPreference,
		Course:               m.Course,
		Year:                 m.Year,
		Department:           m.Department,
		RegisterNumber:       deref(m.RegisterNumber),
		EmployeeID:           deref(m.EmployeeID),
		Qualification:        m.Qualification,
		Experience:           m.Experience,
		JoiningDate:          m.JoiningDate,
		AssignedHostelID:     deref(m.AssignedHostelID),
		GenderScope:          role.GenderScope(m.GenderScope),
		ProfilePicture:       m.ProfilePicture,
		ParentContact:        m.ParentContact.Data(),
		EmergencyContact:     m.EmergencyContact.Data(),
		PaymentSnapshot:      m.PaymentSnapshot.Data(),
		RegistrationSnapshot: m.RegistrationSnapshot.Data(),
		IsActive:             m.IsActive,
		IsVerified:           m.IsVerified,
		LastLogin:            m.LastLogin,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
