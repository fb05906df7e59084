package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, clientIP string) (*LoginResult, error)
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

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	result, err := h.Service.Login(r.Context(), dto, transport.ClientIP(r))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Login successful", result)
}

// Logout handles POST /api/auth/logout. Sessions are stateless tokens, so the
// client discards its token; the route only confirms it was still valid.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrMissingIdentity)
		return
	}
	h.Logger.InfoContext(r.Context(), "logout", "user_id", id.ID)
	h.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Verify handles GET /api/auth/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrMissingIdentity)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Token is valid", VerifyResponse{
		User:        id.Account,
		UserType:    id.Pool,
		Permissions: id.Permissions(),
	})
}

// Roles handles GET /api/auth/roles
func (h *Handler) Roles(w http.ResponseWriter, r *http.Request) {
	h.WriteSuccess(w, http.StatusOK, "", RolesResponse{
		StaffRoles:   role.StaffRoles(),
		StudentRoles: role.StudentRoles(),
		Permissions:  role.Table(),
	})
}
