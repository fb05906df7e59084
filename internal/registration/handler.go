package registration

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitDTO) (*SubmitResult, error)
	CompletePayment(ctx context.Context, dto CompletePaymentDTO) (*CompletionResult, error)
	Status(ctx context.Context, identifier string) (*StatusResponse, error)
	ListAll(ctx context.Context) (*ListAllResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: service}
}

// Submit handles POST /api/registration/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	result, err := h.Service.Submit(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated,
		"Registration submitted successfully. Please complete payment within 24 hours.", result)
}

// CompletePayment handles POST /api/registration/complete-payment
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	var dto CompletePaymentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	result, err := h.Service.CompletePayment(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	message := "Payment completed successfully. Registration finalized."
	if result.Invoice == nil {
		message = "Payment completed successfully. The invoice will be issued shortly."
	}
	h.WriteSuccess(w, http.StatusOK, message, result)
}

// Status handles GET /api/registration/status/{identifier}
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.Status(r.Context(), chi.URLParam(r, "identifier"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", status)
}

// ListAll handles GET /api/registration/all
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", all)
}
