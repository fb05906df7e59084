package registration

import (
	"strings"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/common/validation"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	"github.com/shopspring/decimal"
)

var (
	genders         = []string{"male", "female", "transgender"}
	categories      = []string{"FC", "BC", "MBC", "SC", "ST"}
	messPreferences = []string{"VEG", "NON VEG"}
)

// dateLayouts accepted for dateOfBirth and paymentDate.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type ContactDTO struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Address    string `json:"address"`
	Pin        string `json:"pin"`
	Contact    string `json:"contact"`
}

func (c ContactDTO) contact(relationship string) Contact {
	return Contact{
		Name:         strings.TrimSpace(c.Name),
		Relationship: relationship,
		Phone:        strings.TrimSpace(c.Contact),
		Occupation:   strings.TrimSpace(c.Occupation),
		Address:      strings.TrimSpace(c.Address),
		Pincode:      strings.TrimSpace(c.Pin),
	}
}

type SubmitDTO struct {
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Password         string      `json:"password"`
	DateOfBirth      string      `json:"dateOfBirth"`
	Course           string      `json:"course"`
	Year             int         `json:"year"`
	Gender           string      `json:"gender"`
	Category         string      `json:"category"`
	MessPreference   string      `json:"messPreference"`
	ParentInfo       ContactDTO  `json:"parentInfo"`
	GuardianInfo     *ContactDTO `json:"guardianInfo"`
	ProfileImagePath string      `json:"profileImagePath"`
}

func (d SubmitDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("dateOfBirth", d.DateOfBirth).Required().Custom(func(value interface{}) *internal.AppError {
		dob, ok := parseDate(d.DateOfBirth)
		if !ok {
			return internal.NewValidationFieldError("dateOfBirth", "dateOfBirth must be a date (YYYY-MM-DD)", internal.ErrCodeValidationFailed)
		}
		if dob.After(time.Now()) {
			return internal.NewValidationFieldError("dateOfBirth", "dateOfBirth cannot be in the future", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("course", d.Course).Required().MaxLength(100)
	v.Field("year", d.Year).Required().IntRange(1, 4)
	v.Field("gender", d.Gender).Required().OneOf(genders...)
	v.Field("category", d.Category).Required().OneOf(categories...)
	v.Field("messPreference", d.MessPreference).Required().OneOf(messPreferences...)
	v.Field("parentInfo.name", d.ParentInfo.Name).Required().MaxLength(100)
	v.Field("parentInfo.contact", d.ParentInfo.Contact).Required().MaxLength(20)
	if d.GuardianInfo != nil && strings.TrimSpace(d.GuardianInfo.Name) != "" {
		v.Field("guardianInfo.contact", d.GuardianInfo.Contact).Required().MaxLength(20)
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if appErr := validation.Password("password", d.Password); appErr != nil {
		return appErr
	}
	return nil
}

// registration builds the record without identifiers, hash or timestamps.
func (d SubmitDTO) registration() *TempRegistration {
	dob, _ := parseDate(d.DateOfBirth)
	reg := &TempRegistration{
		Name:             strings.TrimSpace(d.Name),
		Email:            coreAccount.NormalizeEmail(d.Email),
		DateOfBirth:      dob,
		Course:           strings.TrimSpace(d.Course),
		Year:             d.Year,
		Gender:           d.Gender,
		Category:         d.Category,
		MessPreference:   d.MessPreference,
		ParentInfo:       d.ParentInfo.contact("Parent"),
		ProfileImagePath: d.ProfileImagePath,
		Status:           StatusPendingPayment,
	}
	if d.GuardianInfo != nil && strings.TrimSpace(d.GuardianInfo.Name) != "" {
		reg.GuardianInfo = d.GuardianInfo.contact("Guardian")
	}
	return reg
}

type CompletePaymentDTO struct {
	Email         string           `json:"email"`
	PaymentID     string           `json:"paymentId"`
	TransactionID string           `json:"transactionId"`
	PaymentMethod string           `json:"paymentMethod"`
	PaymentDate   string           `json:"paymentDate"`
	Amount        *decimal.Decimal `json:"amount"`
}

func (d CompletePaymentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("paymentId", d.PaymentID).Required().MaxLength(100)
	v.Field("transactionId", d.TransactionID).Required().MaxLength(100)
	v.Field("paymentMethod", d.PaymentMethod).Required().MaxLength(50)
	if d.PaymentDate != "" {
		v.Field("paymentDate", d.PaymentDate).Custom(func(value interface{}) *internal.AppError {
			if _, ok := parseDate(d.PaymentDate); !ok {
				return internal.NewValidationFieldError("paymentDate", "paymentDate must be a date", internal.ErrCodeValidationFailed)
			}
			return nil
		})
	}
	if d.Amount != nil {
		v.Field("amount", d.Amount.String()).Custom(func(value interface{}) *internal.AppError {
			if !d.Amount.Equal(invoice.ScheduleTotal) {
				return internal.NewValidationFieldError("amount", "amount must equal the registration fee of "+invoice.ScheduleTotal.String(), internal.ErrCodeValidationFailed)
			}
			return nil
		})
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// payment turns the request into the stored payment block, defaulting the date
// to now.
func (d CompletePaymentDTO) payment(now time.Time) PaymentDetails {
	paidAt := now
	if t, ok := parseDate(d.PaymentDate); ok {
		paidAt = t
	}
	return PaymentDetails{
		PaymentID:     strings.TrimSpace(d.PaymentID),
		TransactionID: strings.TrimSpace(d.TransactionID),
		PaymentMethod: strings.TrimSpace(d.PaymentMethod),
		Amount:        invoice.ScheduleTotal.String(),
		PaymentDate:   &paidAt,
	}
}

type SubmitResult struct {
	RegistrationID  string          `json:"registrationId"`
	Email           string          `json:"email"`
	Status          Status          `json:"status"`
	HostelType      string          `json:"hostelType"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	PaymentRequired bool            `json:"paymentRequired"`
	Amount          decimal.Decimal `json:"amount"`
}

type CompletionResult struct {
	User           *coreAccount.Account `json:"user"`
	HostelType     string               `json:"hostelType"`
	RegisterNumber string               `json:"registerNumber"`
	CanLogin       bool                 `json:"canLogin"`
	Invoice        *invoice.Summary     `json:"invoice"`
}

// StatusResponse describes where a registration stands; the temporary and
// completed shapes share it.
type StatusResponse struct {
	Status          Status               `json:"status"`
	IsTemporary     bool                 `json:"isTemporary"`
	PaymentRequired bool                 `json:"paymentRequired"`
	CanLogin        bool                 `json:"canLogin"`
	HostelType      string               `json:"hostelType"`
	Registration    *TempRegistration    `json:"registration,omitempty"`
	User            *coreAccount.Account `json:"user,omitempty"`
	SubmittedAt     *time.Time           `json:"submittedAt,omitempty"`
	CompletedAt     *time.Time           `json:"completedAt,omitempty"`
	ExpiresAt       *time.Time           `json:"expiresAt,omitempty"`
}

type Summary struct {
	Temporary int `json:"totalTemp"`
	Boys      int `json:"totalBoys"`
	Girls     int `json:"totalGirls"`
	Completed int `json:"totalCompleted"`
	Total     int `json:"total"`
}

type ListAllResponse struct {
	Temporary []*TempRegistration    `json:"tempRegistrations"`
	Boys      []*coreAccount.Account `json:"boysHostelUsers"`
	Girls     []*coreAccount.Account `json:"girlsHostelUsers"`
	Summary   Summary                `json:"summary"`
}
