package registration

import (
	"time"

	accountDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/account"
	"gorm.io/datatypes"
)

type PaymentDetails struct {
	PaymentID     string     `json:"paymentId,omitempty"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Amount        string     `json:"amount,omitempty"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
}

type TempRegistration struct {
	ID               string                                       `gorm:"primaryKey;type:varchar(36)"`
	Name             string                                       `gorm:"column:name;not null"`
	Email            string                                       `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash     string                                       `gorm:"column:password_hash;not null"`
	DateOfBirth      time.Time                                    `gorm:"column:date_of_birth;not null"`
	Course           string                                       `gorm:"column:course;not null"`
	Year             int                                          `gorm:"column:year;not null"`
	Gender           string                                       `gorm:"column:gender;not null"`
	Category         string                                       `gorm:"column:category;not null"`
	MessPreference   string                                       `gorm:"column:mess_preference;not null"`
	ParentInfo       datatypes.JSONType[accountDatamodel.Contact] `gorm:"column:parent_info"`
	GuardianInfo     datatypes.JSONType[accountDatamodel.Contact] `gorm:"column:guardian_info"`
	ProfileImagePath string                                       `gorm:"column:profile_image_path"`
	Status           string                                       `gorm:"column:status;not null;index"`
	PaymentDetails   datatypes.JSONType[PaymentDetails]           `gorm:"column:payment_details"`
	SubmittedAt      time.Time                                    `gorm:"column:submitted_at;not null"`
	ExpiresAt        time.Time                                    `gorm:"column:expires_at;not null;index"`
	CreatedAt        time.Time                                    `gorm:"column:created_at"`
	UpdatedAt        time.Time                                    `gorm:"column:updated_at"`
}

func (TempRegistration) TableName() string {
	return "temp_registrations"
}
