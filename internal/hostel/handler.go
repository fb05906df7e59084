package hostel

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateHostelDTO) (*Hostel, error)
	Get(ctx context.Context, id string) (*Hostel, error)
	List(ctx context.Context, scope role.GenderScope, gender string) ([]*Hostel, error)
	UpdateOccupancy(ctx context.Context, id string, dto UpdateOccupancyDTO) (*Hostel, error)
	AssignRepresentatives(ctx context.Context, hostelID string, dto AssignRepresentativesDTO) (*Hostel, error)
	RemoveRepresentative(ctx context.Context, accountID string) (*coreAccount.Account, error)
	ForRepresentative(ctx context.Context, id *auth.Identity) (*RepresentativeHostel, error)
	Representatives(ctx context.Context, scope role.GenderScope, hostelID string) ([]*coreAccount.Account, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

type HostelsResponse struct {
	Hostels []HostelResponse `json:"hostels"`
	Count   int              `json:"count"`
}

type RepresentativesResponse struct {
	Representatives []*coreAccount.Account `json:"representatives"`
	Count           int                    `json:"count"`
}

func toResponses(hostels []*Hostel) HostelsResponse {
	out := make([]HostelResponse, 0, len(hostels))
	for _, h := range hostels {
		out = append(out, h.ToResponse())
	}
	return HostelsResponse{Hostels: out, Count: len(out)}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrMissingIdentity)
	}
	return id, ok
}

// GetHostels handles GET /api/hostels/
func (h *Handler) GetHostels(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("gender"))
}

// GetHostelsByGender handles GET /api/hostels/gender/{gender}
func (h *Handler) GetHostelsByGender(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "gender"))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, gender string) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	hostels, err := h.Service.List(r.Context(), id.GenderScope, gender)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", toResponses(hostels))
}

// CreateHostel handles POST /api/hostels/
func (h *Handler) CreateHostel(w http.ResponseWriter, r *http.Request) {
	var dto CreateHostelDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Hostel created successfully", created.ToResponse())
}

// GetHostel handles GET /api/hostels/{hostelId}
func (h *Handler) GetHostel(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "hostelId"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", found.ToResponse())
}

// UpdateOccupancy handles PUT /api/hostels/{hostelId}/occupancy
func (h *Handler) UpdateOccupancy(w http.ResponseWriter, r *http.Request) {
	var dto UpdateOccupancyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	updated, err := h.Service.UpdateOccupancy(r.Context(), chi.URLParam(r, "hostelId"), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Occupancy updated successfully", updated.ToResponse())
}

// AssignRepresentatives handles PUT /api/hostels/{hostelId}/representatives
func (h *Handler) AssignRepresentatives(w http.ResponseWriter, r *http.Request) {
	var dto AssignRepresentativesDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	updated, err := h.Service.AssignRepresentatives(r.Context(), chi.URLParam(r, "hostelId"), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Representatives assigned successfully", updated.ToResponse())
}

// ListRepresentatives handles GET /api/representatives/ and
// GET /api/representatives/hostel/{hostelId}
func (h *Handler) ListRepresentatives(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	reps, err := h.Service.Representatives(r.Context(), id.GenderScope, chi.URLParam(r, "hostelId"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", RepresentativesResponse{Representatives: reps, Count: len(reps)})
}

// MyHostel handles GET /api/representatives/hostel
func (h *Handler) MyHostel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	result, err := h.Service.ForRepresentative(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", result)
}

// RemoveRepresentative handles PUT /api/representatives/{userId}/remove
func (h *Handler) RemoveRepresentative(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Service.RemoveRepresentative(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Representative removed successfully", acc)
}
