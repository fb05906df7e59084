// Package invoice issues the fee invoice for a completed registration and serves
// its rendered document.
package invoice

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	invoiceDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/invoice"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusGenerated  Status = "generated"
	StatusSent       Status = "sent"
	StatusDownloaded Status = "downloaded"
	StatusArchived   Status = "archived"
)

const (
	numberPrefix   = "UCET-INV-"
	defaultRemarks = "Payment received successfully. This is a computer-generated invoice."
)

type (
	StudentDetails = invoiceDatamodel.StudentDetails
	PaymentDetails = invoiceDatamodel.PaymentDetails
	CollegeDetails = invoiceDatamodel.CollegeDetails
)

// DefaultCollege is printed on invoices unless configured otherwise.
var DefaultCollege = CollegeDetails{
	Name:         "University College of Engineering Tindivanam",
	Address:      "Melpakkam, Tindivanam - 604 001, Villupuram District, Tamil Nadu",
	Phone:        "+91-4147-238100",
	Email:        "principal@ucet.ac.in",
	Website:      "www.ucet.ac.in",
	AffiliatedTo: "Anna University, Chennai",
}

type Invoice struct {
	ID                 string          `json:"id"`
	InvoiceNumber      string          `json:"invoiceNumber"`
	InvoiceDate        time.Time       `json:"invoiceDate"`
	AcademicYear       string          `json:"academicYear"`
	StudentEmail       string          `json:"-"`
	StudentDetails     StudentDetails  `json:"studentDetails"`
	Fees               Fees            `json:"feeDetails"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	PaymentDetails     PaymentDetails  `json:"paymentDetails"`
	CollegeDetails     CollegeDetails  `json:"collegeDetails"`
	TempRegistrationID string          `json:"tempRegistrationId"`
	StudentID          string          `json:"studentId"`
	StudentPool        string          `json:"studentCollection"`
	Status             Status          `json:"status"`
	Remarks            string          `json:"remarks"`
	DocumentPath       string          `json:"-"`
	DocumentGenerated  bool            `json:"pdfGenerated"`
	DownloadCount      int             `json:"downloadCount"`
	LastDownloadedAt   *time.Time      `json:"lastDownloaded,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Summary is the invoice block returned with a completed registration.
type Summary struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	DownloadURL   string          `json:"downloadUrl"`
}

func (i *Invoice) Summary() *Summary {
	return &Summary{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		TotalAmount:   i.TotalAmount,
		Status:        i.Status,
		InvoiceDate:   i.InvoiceDate,
		DownloadURL:   "/api/invoice/" + i.ID + "/download",
	}
}

// GuestReadable reports whether an unauthenticated caller may still fetch the
// invoice, which is only true shortly after it was issued.
func (i *Invoice) GuestReadable(now time.Time, window time.Duration) bool {
	return now.Sub(i.CreatedAt) <= window
}

// FileName is the download name of the rendered document.
func (i *Invoice) FileName() string {
	return "Invoice-" + i.InvoiceNumber + ".html"
}

// NewNumber returns UCET-INV-yymm followed by four random digits.
func NewNumber(now time.Time, r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%04d", numberPrefix, now.Format("0601"), n.Int64()), nil
}

// AcademicYear formats the academic year starting in now's calendar year.
func AcademicYear(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.Year(), now.Year()+1)
}

func ToDataModel(i *Invoice) *invoiceDatamodel.Invoice {
	return &invoiceDatamodel.Invoice{
		ID:                 i.ID,
		InvoiceNumber:      i.InvoiceNumber,
		InvoiceDate:        i.InvoiceDate,
		AcademicYear:       i.AcademicYear,
		StudentEmail:       i.StudentEmail,
		StudentDetails:     datatypes.NewJSONType(i.StudentDetails),
		AdmissionFee:       i.Fees.AdmissionFee,
		AmenitiesFund:      i.Fees.AmenitiesFund,
		BlockAdvance:       i.Fees.BlockAdvance,
		RoomRent:           i.Fees.RoomRent,
		ElectricityCharges: i.Fees.ElectricityCharges,
		WaterCharges:       i.Fees.WaterCharges,
		EstablishmentFee:   i.Fees.EstablishmentCharges,
		MessAdvance:        i.Fees.MessAdvance,
		TotalAmount:        i.TotalAmount,
		PaymentDetails:     datatypes.NewJSONType(i.PaymentDetails),
		CollegeDetails:     datatypes.NewJSONType(i.CollegeDetails),
		TempRegistrationID: i.TempRegistrationID,
		StudentID:          i.StudentID,
		StudentPool:        i.StudentPool,
		Status:             string(i.Status),
		Remarks:            i.Remarks,
		DocumentPath:       i.DocumentPath,
		DocumentGenerated:  i.DocumentGenerated,
		DownloadCount:      i.DownloadCount,
		LastDownloadedAt:   i.LastDownloadedAt,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
}

func FromDataModel(m *invoiceDatamodel.Invoice) *Invoice {
	return &Invoice{
		ID:             m.ID,
		InvoiceNumber:  m.InvoiceNumber,
		InvoiceDate:    m.InvoiceDate,
		AcademicYear:   m.AcademicYear,
		StudentEmail:   m.StudentEmail,
		StudentDetails: m.StudentDetails.Data(),
		Fees: Fees{
			AdmissionFee:         m.AdmissionFee,
			AmenitiesFund:        m.AmenitiesFund,
			BlockAdvance:         m.BlockAdvance,
			RoomRent:             m.RoomRent,
			ElectricityCharges:   m.ElectricityCharges,
			WaterCharges:         m.WaterCharges,
			EstablishmentCharges: m.EstablishmentFee,
			MessAdvance:          m.MessAdvance,
		},
		TotalAmount:        m.TotalAmount,
		PaymentDetails:     m.PaymentDetails.Data(),
		CollegeDetails:     m.CollegeDetails.Data(),
		TempRegistrationID: m.TempRegistrationID,
		StudentID:          m.StudentID,
		StudentPool:        m.StudentPool,
		Status:             Status(m.Status),
		Remarks:            m.Remarks,
		DocumentPath:       m.DocumentPath,
		DocumentGenerated:  m.DocumentGenerated,
		DownloadCount:      m.DownloadCount,
		LastDownloadedAt:   m.LastDownloadedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
