package account

import (
	"time"

	"gorm.io/datatypes"
)

type Contact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Occupation   string `json:"occupation,omitempty"`
	Address      string `json:"address,omitempty"`
	Pincode      string `json:"pincode,omitempty"`
}

type PaymentSnapshot struct {
	PaymentID     string     `json:"paymentId,omitempty"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Amount        string     `json:"amount,omitempty"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
}

type RegistrationSnapshot struct {
	OriginalSubmissionDate *time.Time `json:"originalSubmissionDate,omitempty"`
	PaymentCompletedAt     *time.Time `json:"paymentCompletedAt,omitempty"`
	Status                 string     `json:"status,omitempty"`
	ParentInfo             *Contact   `json:"parentInfo,omitempty"`
	GuardianInfo           *Contact   `json:"guardianInfo,omitempty"`
}

// Account is one row per account; Pool partitions staff, boys and girls students.
type Account struct {
	ID                   string                                   `gorm:"primaryKey;type:varchar(36)"`
	Pool                 string                                   `gorm:"column:pool;not null;uniqueIndex:idx_accounts_pool_email,priority:1"`
	Email                string                                   `gorm:"column:email;not null;uniqueIndex:idx_accounts_pool_email,priority:2"`
	PasswordHash         string                                   `gorm:"column:password_hash;not null"`
	Role                 string                                   `gorm:"column:role;not null;index"`
	FirstName            string                                   `gorm:"column:first_name;not null"`
	LastName             string                                   `gorm:"column:last_name"`
	Phone                string                                   `gorm:"column:phone"`
	DateOfBirth          *time.Time                               `gorm:"column:date_of_birth"`
	Gender               string                                   `gorm:"column:gender"`
	Category             string                                   `gorm:"column:category"`
	MessPreference       string                                   `gorm:"column:mess_preference"`
	Course               string                                   `gorm:"column:course"`
	Year                 int                                      `gorm:"column:year"`
	Department           string                                   `gorm:"column:department"`
	RegisterNumber       *string                                  `gorm:"column:register_number;uniqueIndex"`
	EmployeeID           *string                                  `gorm:"column:employee_id;uniqueIndex"`
	Qualification        string                                   `gorm:"column:qualification"`
	Experience           int                                      `gorm:"column:experience"`
	JoiningDate          *time.Time                               `gorm:"column:joining_date"`
	AssignedHostelID     *string                                  `gorm:"column:assigned_hostel_id;index"`
	GenderScope          string                                   `gorm:"column:gender_scope;not null"`
	ProfilePicture       string                                   `gorm:"column:profile_picture"`
	ParentContact        datatypes.JSONType[Contact]              `gorm:"column:parent_contact"`
	EmergencyContact     datatypes.JSONType[Contact]              `gorm:"column:emergency_contact"`
	PaymentSnapshot      datatypes.JSONType[PaymentSnapshot]      `gorm:"column:payment_snapshot"`
	RegistrationSnapshot datatypes.JSONType[RegistrationSnapshot] `gorm:"column:registration_snapshot"`
	IsActive             bool                                     `gorm:"column:is_active;not null"`
	IsVerified           bool                                     `gorm:"column:is_verified;not null"`
	LastLogin            *time.Time                               `gorm:"column:last_login"`
	CreatedAt            time.Time                                `gorm:"column:created_at"`
	UpdatedAt            time.Time                                `gorm:"column:updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
