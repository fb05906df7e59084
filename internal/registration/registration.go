// Package registration runs the paid student registration pipeline: a temporary
// record is submitted, paid for, and promoted into a student account pool.
package registration

import (
	"time"

	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	registrationDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/registration"
	"github.com/frahmantamala/hostel-management/internal/role"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusCompleted      Status = "completed"
	StatusExpired        Status = "expired"
)

type (
	Contact        = coreAccount.Contact
	PaymentDetails = registrationDatamodel.PaymentDetails
)

type TempRegistration struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	PasswordHash     string         `json:"-"`
	DateOfBirth      time.Time      `json:"dateOfBirth"`
	Course           string         `json:"course"`
	Year             int            `json:"year"`
	Gender           string         `json:"gender"`
	Category         string         `json:"category"`
	MessPreference   string         `json:"messPreference"`
	ParentInfo       Contact        `json:"parentInfo"`
	GuardianInfo     Contact        `json:"guardianInfo"`
	ProfileImagePath string         `json:"profileImagePath,omitempty"`
	Status           Status         `json:"status"`
	Payment          PaymentDetails `json:"paymentDetails"`
	SubmittedAt      time.Time      `json:"submittedAt"`
	ExpiresAt        time.Time      `json:"expiresAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (t *TempRegistration) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Pool is where the registration lands once paid for.
func (t *TempRegistration) Pool() coreAccount.Pool {
	return coreAccount.PoolForGender(t.Gender)
}

// ToAccount builds the permanent student account. The stored hash is reused as
// is; the register number is assigned by the caller.
func (t *TempRegistration) ToAccount(completedAt time.Time) *coreAccount.Account {
	first, last := coreAccount.SplitName(t.Name)
	pool := t.Pool()
	dob := t.DateOfBirth
	submitted := t.SubmittedAt
	completed := completedAt

	acc := &coreAccount.Account{
		Pool:           pool,
		Email:          coreAccount.NormalizeEmail(t.Email),
		PasswordHash:   t.PasswordHash,
		Role:           role.Student,
		FirstName:      first,
		LastName:       last,
		Phone:          t.ParentInfo.Phone,
		DateOfBirth:    &dob,
		Gender:         t.Gender,
		Category:       t.Category,
		MessPreference: t.MessPreference,
		Course:         t.Course,
		Year:           t.Year,
		GenderScope:    pool.GenderScope(),
		ProfilePicture: t.ProfileImagePath,
		ParentContact:  t.ParentInfo,
		PaymentSnapshot: coreAccount.PaymentSnapshot{
			PaymentID:     t.Payment.PaymentID,
			TransactionID: t.Payment.TransactionID,
			PaymentMethod: t.Payment.PaymentMethod,
			Amount:        t.Payment.Amount,
			PaymentDate:   t.Payment.PaymentDate,
		},
		RegistrationSnapshot: coreAccount.RegistrationSnapshot{
			OriginalSubmissionDate: &submitted,
			PaymentCompletedAt:     &completed,
			Status:                 string(StatusCompleted),
		},
		IsActive:   true,
		IsVerified: true,
		CreatedAt:  completedAt,
	}

	parent := t.ParentInfo
	acc.RegistrationSnapshot.ParentInfo = &parent
	if t.GuardianInfo.Name != "" {
		guardian := t.GuardianInfo
		guardian.Relationship = "Guardian"
		acc.EmergencyContact = guardian
		acc.RegistrationSnapshot.GuardianInfo = &guardian
	} else {
		acc.EmergencyContact = parent
	}
	return acc
}

func ToDataModel(t *TempRegistration) *registrationDatamodel.TempRegistration {
	return &registrationDatamodel.TempRegistration{
		ID:               t.ID,
		Name:             t.Name,
		Email:            coreAccount.NormalizeEmail(t.Email),
		PasswordHash:     t.PasswordHash,
		DateOfBirth:      t.DateOfBirth,
		Course:           t.Course,
		Year:             t.Year,
		Gender:           t.Gender,
		Category:         t.Category,
		MessPreference:   t.MessPreference,
		ParentInfo:       datatypes.NewJSONType(t.ParentInfo),
		GuardianInfo:     datatypes.NewJSONType(t.GuardianInfo),
		ProfileImagePath: t.ProfileImagePath,
		Status:           string(t.Status),
		PaymentDetails:   datatypes.NewJSONType(t.Payment),
		SubmittedAt:      t.SubmittedAt,
		ExpiresAt:        t.ExpiresAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func FromDataModel(m *registrationDatamodel.TempRegistration) *TempRegistration {
	return &TempRegistration{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		DateOfBirth:      m.DateOfBirth,
		Course:           m.Course,
		Year:             m.Year,
		Gender:           m.Gender,
		Category:         m.Category,
		MessPreference:   m.MessPreference,
		ParentInfo:       m.ParentInfo.Data(),
		GuardianInfo:     m.GuardianInfo.Data(),
		ProfileImagePath: m.ProfileImagePath,
		Status:           Status(m.Status),
		Payment:          m.PaymentDetails.Data(),
		SubmittedAt:      m.SubmittedAt,
		ExpiresAt:        m.ExpiresAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
