package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	invoiceDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/invoice"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

var _ invoice.RepositoryAPI = (*InvoiceRepository)(nil)

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoiceDatamodel.Invoice) error {
	if err := database.Conn(ctx, r.db).Create(inv).Error; err != nil {
		if database.IsDuplicate(err) {
			return internal.ErrDuplicateInvoice.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *InvoiceRepository) first(ctx context.Context, query string, args ...interface{}) (*invoiceDatamodel.Invoice, error) {
	var inv invoiceDatamodel.Invoice
	if err := database.Conn(ctx, r.db).Where(query, args...).First(&inv).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*invoiceDatamodel.Invoice, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*invoiceDatamodel.Invoice, error) {
	return r.first(ctx, "invoice_number = ?", number)
}

func (r *InvoiceRepository) GetByTempRegistration(ctx context.Context, tempRegistrationID string) (*invoiceDatamodel.Invoice, error) {
	return r.first(ctx, "temp_registration_id = ?", tempRegistrationID)
}

func (r *InvoiceRepository) ListByEmail(ctx context.Context, email string) ([]*invoiceDatamodel.Invoice, error) {
	var invoices []*invoiceDatamodel.Invoice
	err := database.Conn(ctx, r.db).
		Where("student_email = ?", email).
		Order("invoice_date DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*invoiceDatamodel.Invoice, int64, error) {
	var total int64
	if err := database.Conn(ctx, r.db).Model(&invoiceDatamodel.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*invoiceDatamodel.Invoice
	err := database.Conn(ctx, r.db).
		Order("invoice_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *InvoiceRepository) SetDocument(ctx context.Context, id, path string) error {
	return database.Conn(ctx, r.db).Model(&invoiceDatamodel.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"document_path":      path,
			"document_generated": true,
			"updated_at":         time.Now().UTC(),
		}).Error
}

// TrackDownload bumps the counter and advances a generated invoice to downloaded
// in a single UPDATE.
func (r *InvoiceRepository) TrackDownload(ctx context.Context, id string, at time.Time) error {
	result := database.Conn(ctx, r.db).Model(&invoiceDatamodel.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"download_count":     gorm.Expr("download_count + 1"),
			"last_downloaded_at": at,
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				string(invoice.StatusGenerated), string(invoice.StatusDownloaded)),
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrInvoiceNotFound
	}
	return nil
}
