package invoice

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/auth"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Get(ctx context.Context, id string) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	ListByStudent(ctx context.Context, email string) ([]*Invoice, error)
	List(ctx context.Context, page, limit int) (*ListResult, error)
	Download(ctx context.Context, inv *Invoice) (*Document, error)
	View(ctx context.Context, inv *Invoice) (*Document, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	GuestWindow time.Duration
	now         func() time.Time
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, guestWindow time.Duration) *Handler {
	if guestWindow <= 0 {
		guestWindow = 30 * time.Minute
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		GuestWindow: guestWindow,
		now:         time.Now,
	}
}

// authorize lets a session holder through when they may read the record, and a
// caller without a session only while the invoice is fresh.
func (h *Handler) authorize(r *http.Request, inv *Invoice) error {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		if inv.GuestReadable(h.now(), h.GuestWindow) {
			return nil
		}
		return internal.ErrGuestWindow
	}
	return auth.CanReadStudentRecord(id, inv.StudentEmail)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Invoice, bool) {
	inv, err := h.Service.Get(r.Context(), chi.URLParam(r, "invoiceId"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return nil, false
	}
	if err := h.authorize(r, inv); err != nil {
		h.WriteAppError(w, r, err)
		return nil, false
	}
	return inv, true
}

// GetInvoice handles GET /api/invoice/{invoiceId}
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", inv)
}

// DownloadInvoice handles GET /api/invoice/{invoiceId}/download
func (h *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	doc, err := h.Service.Download(r.Context(), inv)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeDocument(w, doc, "attachment")
}

// ViewInvoice handles GET /api/invoice/{invoiceId}/view
func (h *Handler) ViewInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	doc, err := h.Service.View(r.Context(), inv)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeDocument(w, doc, "inline")
}

func (h *Handler) writeDocument(w http.ResponseWriter, doc *Document, disposition string) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Content); err != nil {
		h.Logger.Warn("failed to write invoice document", "invoice", doc.Invoice.InvoiceNumber, "error", err)
	}
}

// ListInvoices handles GET /api/invoice/?page=&limit=
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.Service.List(r.Context(), page, limit)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", result)
}

// StudentInvoices handles GET /api/invoice/student/{email}
func (h *Handler) StudentInvoices(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrMissingIdentity)
		return
	}
	if err := auth.CanReadStudentRecord(id, email); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	invoices, err := h.Service.ListByStudent(r.Context(), email)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", map[string]interface{}{
		"invoices": invoices,
		"count":    len(invoices),
	})
}

// InvoiceByNumber handles GET /api/invoice/number/{invoiceNumber}
func (h *Handler) InvoiceByNumber(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrMissingIdentity)
		return
	}

	inv, err := h.Service.GetByNumber(r.Context(), chi.URLParam(r, "invoiceNumber"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := auth.CanReadStudentRecord(id, inv.StudentEmail); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", inv)
}
