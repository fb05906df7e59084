package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type StudentDetails struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegisterNumber string `json:"registerNumber"`
	Course         string `json:"course"`
	Year           int    `json:"year"`
	Gender         string `json:"gender"`
	Category       string `json:"category"`
	HostelType     string `json:"hostelType"`
}

type PaymentDetails struct {
	PaymentID     string    `json:"paymentId"`
	TransactionID string    `json:"transactionId"`
	PaymentMethod string    `json:"paymentMethod"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentStatus string    `json:"paymentStatus"`
}

type CollegeDetails struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Website      string `json:"website"`
	AffiliatedTo string `json:"affiliatedTo"`
}

type Invoice struct {
	ID                 string                             `gorm:"primaryKey;type:varchar(36)"`
	InvoiceNumber      string                             `gorm:"column:invoice_number;not null;uniqueIndex"`
	InvoiceDate        time.Time                          `gorm:"column:invoice_date;not null;index"`
	AcademicYear       string                             `gorm:"column:academic_year;not null"`
	StudentEmail       string                             `gorm:"column:student_email;not null;index"`
	StudentDetails     datatypes.JSONType[StudentDetails] `gorm:"column:student_details"`
	AdmissionFee       decimal.Decimal                    `gorm:"column:admission_fee;type:decimal(12,2);not null"`
	AmenitiesFund      decimal.Decimal                    `gorm:"column:amenities_fund;type:decimal(12,2);not null"`
	BlockAdvance       decimal.Decimal                    `gorm:"column:block_advance;type:decimal(12,2);not null"`
	RoomRent           decimal.Decimal                    `gorm:"column:room_rent;type:decimal(12,2);not null"`
	ElectricityCharges decimal.Decimal                    `gorm:"column:electricity_charges;type:decimal(12,2);not null"`
	WaterCharges       decimal.Decimal                    `gorm:"column:water_charges;type:decimal(12,2);not null"`
	EstablishmentFee   decimal.Decimal                    `gorm:"column:establishment_charges;type:decimal(12,2);not null"`
	MessAdvance        decimal.Decimal                    `gorm:"column:mess_advance;type:decimal(12,2);not null"`
	TotalAmount        decimal.Decimal                    `gorm:"column:total_amount;type:decimal(12,2);not null"`
	PaymentDetails     datatypes.JSONType[PaymentDetails] `gorm:"column:payment_details"`
	CollegeDetails     datatypes.JSONType[CollegeDetails] `gorm:"column:college_details"`
	TempRegistrationID string                             `gorm:"column:temp_registration_id;not null;uniqueIndex"`
	StudentID          string                             `gorm:"column:student_id;not null;index"`
	StudentPool        string                             `gorm:"column:student_pool;not null"`
	Status             string                             `gorm:"column:status;not null"`
	Remarks            string                             `gorm:"column:remarks"`
	DocumentPath       string                             `gorm:"column:document_path"`
	DocumentGenerated  bool                               `gorm:"column:document_generated;not null"`
	DownloadCount      int                                `gorm:"column:download_count;not null"`
	LastDownloadedAt   *time.Time                         `gorm:"column:last_downloaded_at"`
	CreatedAt          time.Time                          `gorm:"column:created_at"`
	UpdatedAt          time.Time                          `gorm:"column:updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}
