package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRegistrationSubmitted = "registration.submitted"
	EventTypeRegistrationCompleted = "registration.completed"
	EventTypeRegistrationExpired   = "registration.expired"
	EventTypeInvoiceGenerated      = "invoice.generated"
	EventTypeInvoiceFailed         = "invoice.failed"
)

// Catalog lists every event type the services publish.
var Catalog = []string{
	EventTypeRegistrationSubmitted,
	EventTypeRegistrationCompleted,
	EventTypeRegistrationExpired,
	EventTypeInvoiceGenerated,
	EventTypeInvoiceFailed,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type RegistrationSubmittedEvent struct {
	BaseEvent
	RegistrationID string    `json:"registration_id"`
	Email          string    `json:"email"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func NewRegistrationSubmittedEvent(registrationID, email string, expiresAt time.Time) *RegistrationSubmittedEvent {
	return &RegistrationSubmittedEvent{
		BaseEvent: newBase(EventTypeRegistrationSubmitted, map[string]interface{}{
			"registration_id": registrationID,
			"email":           email,
			"expires_at":      expiresAt,
		}),
		RegistrationID: registrationID,
		Email:          email,
		ExpiresAt:      expiresAt,
	}
}

type RegistrationCompletedEvent struct {
	BaseEvent
	RegistrationID string `json:"registration_id"`
	AccountID      string `json:"account_id"`
	Pool           string `json:"pool"`
	RegisterNumber string `json:"register_number"`
	InvoiceID      string `json:"invoice_id,omitempty"`
}

func NewRegistrationCompletedEvent(registrationID, accountID, pool, registerNumber, invoiceID string) *RegistrationCompletedEvent {
	return &RegistrationCompletedEvent{
		BaseEvent: newBase(EventTypeRegistrationCompleted, map[string]interface{}{
			"registration_id": registrationID,
			"account_id":      accountID,
			"pool":            pool,
			"register_number": registerNumber,
			"invoice_id":      invoiceID,
		}),
		RegistrationID: registrationID,
		AccountID:      accountID,
		Pool:           pool,
		RegisterNumber: registerNumber,
		InvoiceID:      invoiceID,
	}
}

type RegistrationsExpiredEvent struct {
	BaseEvent
	Count int64 `json:"count"`
}

func NewRegistrationsExpiredEvent(count int64) *RegistrationsExpiredEvent {
	return &RegistrationsExpiredEvent{
		BaseEvent: newBase(EventTypeRegistrationExpired, map[string]interface{}{"count": count}),
		Count:     count,
	}
}

type InvoiceGeneratedEvent struct {
	BaseEvent
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	StudentEmail  string `json:"student_email"`
	Total         string `json:"total"`
}

func NewInvoiceGeneratedEvent(invoiceID, invoiceNumber, studentEmail, total string) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseEvent: newBase(EventTypeInvoiceGenerated, map[string]interface{}{
			"invoice_id":     invoiceID,
			"invoice_number": invoiceNumber,
			"student_email":  studentEmail,
			"total":          total,
		}),
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		StudentEmail:  studentEmail,
		Total:         total,
	}
}

type InvoiceFailedEvent struct {
	BaseEvent
	RegistrationID string `json:"registration_id"`
	Email          string `json:"email"`
	Reason         string `json:"reason"`
}

func NewInvoiceFailedEvent(registrationID, email, reason string) *InvoiceFailedEvent {
	return &InvoiceFailedEvent{
		BaseEvent: newBase(EventTypeInvoiceFailed, map[string]interface{}{
			"registration_id": registrationID,
			"email":           email,
			"reason":          reason,
		}),
		RegistrationID: registrationID,
		Email:          email,
		Reason:         reason,
	}
}
