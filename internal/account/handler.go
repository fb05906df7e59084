package account

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error)
	Profile(ctx context.Context, id *auth.Identity) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, targetID string, dto UpdateProfileDTO) (*coreAccount.Account, error)
	ChangePassword(ctx context.Context, id *auth.Identity, dto ChangePasswordDTO) error
	UpdateContact(ctx context.Context, targetID string, dto UpdateContactDTO) (*coreAccount.Account, error)

	ListStaff(ctx context.Context, filter StaffFilter) ([]*coreAccount.Account, error)
	StaffByRole(ctx context.Context, roleName string) ([]*coreAccount.Account, error)
	GetStaff(ctx context.Context, staffID string) (*coreAccount.Account, error)
	CreateStaff(ctx context.Context, dto RegisterDTO) (*coreAccount.Account, error)
	UpdateStaff(ctx context.Context, staffID string, dto UpdateStaffDTO) (*coreAccount.Account, error)
	ChangeStaffRole(ctx context.Context, staffID string, dto ChangeRoleDTO) (*coreAccount.Account, error)
	AssignHostel(ctx context.Context, staffID string, dto AssignHostelDTO) (*coreAccount.Account, error)
	SetStaffActive(ctx context.Context, actorID, staffID string, active bool) (*coreAccount.Account, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, base *transport.BaseHandler) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrMissingIdentity)
	}
	return id, ok
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	result, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "User registered successfully", result)
}

// GetProfile handles GET /api/auth/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	profile, err := h.Service.Profile(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", profile)
}

// UpdateProfile handles PUT /api/auth/profile and PUT /api/auth/profile/{userId}.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "userId")
	if targetID == "" {
		targetID = id.ID
	}

	var dto UpdateProfileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	acc, err := h.Service.UpdateProfile(r.Context(), targetID, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Profile updated successfully", acc)
}

// ChangePassword handles PUT /api/auth/change-password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), id, dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

// UpdateRepresentativeContact handles PUT /api/representatives/{userId}/contact
func (h *Handler) UpdateRepresentativeContact(w http.ResponseWriter, r *http.Request) {
	var dto UpdateContactDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	acc, err := h.Service.UpdateContact(r.Context(), chi.URLParam(r, "userId"), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Contact updated successfully", acc)
}

// ListStaff handles GET /api/staff/?role=&active=&limit=&offset=
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := StaffFilter{Role: q.Get("role")}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.WriteAppError(w, r, internal.NewValidationFieldError("active", "active must be true or false", internal.ErrCodeValidationFailed))
			return
		}
		filter.Active = &active
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	staff, err := h.Service.ListStaff(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", map[string]interface{}{
		"staff": staff,
		"count": len(staff),
	})
}

// StaffByRole handles GET /api/staff/role/{role}
func (h *Handler) StaffByRole(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Service.StaffByRole(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", map[string]interface{}{
		"staff": staff,
		"count": len(staff),
	})
}

// GetStaff handles GET /api/staff/{staffId}
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Service.GetStaff(r.Context(), chi.URLParam(r, "staffId"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", acc)
}

// CreateStaff handles POST /api/staff/
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	acc, err := h.Service.CreateStaff(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Staff member created successfully", acc)
}

// UpdateStaff handles PUT /api/staff/{staffId}
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	var dto UpdateStaffDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	acc, err := h.Service.UpdateStaff(r.Context(), chi.URLParam(r, "staffId"), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Staff member updated successfully", acc)
}

// ChangeStaffRole handles PUT /api/staff/{staffId}/role
func (h *Handler) ChangeStaffRole(w http.ResponseWriter, r *http.Request) {
	var dto ChangeRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	acc, err := h.Service.ChangeStaffRole(r.Context(), chi.URLParam(r, "staffId"), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Staff role updated successfully", acc)
}

// AssignHostel handles PUT /api/staff/{staffId}/assign-hostel
func (h *Handler) AssignHostel(w http.ResponseWriter, r *http.Request) {
	var dto AssignHostelDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	acc, err := h.Service.AssignHostel(r.Context(), chi.URLParam(r, "staffId"), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Hostel assigned successfully", acc)
}

// ActivateStaff handles PUT /api/staff/{staffId}/activate
func (h *Handler) ActivateStaff(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// DeactivateStaff handles PUT /api/staff/{staffId}/deactivate
func (h *Handler) DeactivateStaff(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	acc, err := h.Service.SetStaffActive(r.Context(), id.ID, chi.URLParam(r, "staffId"), active)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	message := "Staff member activated successfully"
	if !active {
		message = "Staff member deactivated successfully"
	}
	h.WriteSuccess(w, http.StatusOK, message, acc)
}
