package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
)

// Guard allows a request by returning nil or denies it with an *internal.AppError.
type Guard func(r *http.Request, id *Identity) error

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// HostelRef is the part of a hostel the scope guard needs.
type HostelRef struct {
	ID     string
	Gender role.GenderScope
}

// HostelLocator finds hostels for HostelScope. It returns internal.ErrHostelNotFound
// when the id is unknown.
type HostelLocator interface {
	LocateHostel(ctx context.Context, id string) (*HostelRef, error)
}

// Guards builds the authentication and authorization middleware.
type Guards struct {
	auth Authenticator
	*transport.BaseHandler
}

func NewGuards(a Authenticator, base *transport.BaseHandler) *Guards {
	return &Guards{auth: a, BaseHandler: base}
}

// Authenticated requires a valid bearer token and attaches the identity.
func (g *Guards) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := transport.ExtractTokenFromHeader(r)
		if token == "" {
			g.WriteAppError(w, r, internal.ErrNoToken)
			return
		}

		id, err := g.auth.Authenticate(r.Context(), token)
		if err != nil {
			g.WriteAppError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// Optional authenticates only when an Authorization header is present. A header
// that fails to authenticate is rejected rather than treated as anonymous.
func (g *Guards) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		g.Authenticated(next).ServeHTTP(w, r)
	})
}

// Require runs guards in order and stops at the first denial.
func (g *Guards) Require(guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				g.WriteAppError(w, r, internal.ErrMissingIdentity)
				return
			}
			for _, guard := range guards {
				if err := guard(r, id); err != nil {
					g.WriteAppError(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RoleIn(roles ...role.Role) Guard {
	return func(_ *http.Request, id *Identity) error {
		if role.In(id.Role, roles) {
			return nil
		}
		return internal.ErrForbidden
	}
}

func HasPermission(p role.Permission) Guard {
	return func(_ *http.Request, id *Identity) error {
		if role.HasPermission(id.Role, p) {
			return nil
		}
		return internal.ErrForbidden
	}
}

func StaffOnly() Guard {
	return func(_ *http.Request, id *Identity) error {
		if id.IsStaff() {
			return nil
		}
		return internal.ErrForbidden.WithMessage("Access denied. Staff only.")
	}
}

func StudentOnly() Guard {
	return func(_ *http.Request, id *Identity) error {
		if id.IsStudent() {
			return nil
		}
		return internal.ErrForbidden.WithMessage("Access denied. Students only.")
	}
}

func RepresentativeOnly() Guard {
	return func(_ *http.Request, id *Identity) error {
		if id.IsRepresentative() {
			return nil
		}
		return internal.ErrForbidden.WithMessage("Access denied. Representatives only.")
	}
}

// AnyOf allows when at least one guard allows. The last denial is returned.
func AnyOf(guards ...Guard) Guard {
	return func(r *http.Request, id *Identity) error {
		err := error(internal.ErrForbidden)
		for _, guard := range guards {
			if err = guard(r, id); err == nil {
				return nil
			}
		}
		return err
	}
}

// URLParam reads a chi route parameter.
func URLParam(name string) func(*http.Request) string {
	return func(r *http.Request) string {
		return chi.URLParam(r, name)
	}
}

// GenderScope checks the caller's gender scope against the target gender.
// An empty target is not restricted.
func GenderScope(target func(*http.Request) string) Guard {
	return func(r *http.Request, id *Identity) error {
		if id.CanManageGender(role.NormalizeTargetGender(target(r))) {
			return nil
		}
		return internal.ErrGenderScope
	}
}

// SelfOrStaff allows the account named by the URL param or any staff member.
func SelfOrStaff(param string) Guard {
	return func(r *http.Request, id *Identity) error {
		return defaultPolicy.CanActOn(id, chi.URLParam(r, param), nil)
	}
}

// OwnerOrSeniorStaff allows the account named by the URL param or the warden tier.
func OwnerOrSeniorStaff(param string) Guard {
	return func(r *http.Request, id *Identity) error {
		return defaultPolicy.CanActOn(id, chi.URLParam(r, param), role.WardenTier())
	}
}

// HostelScope restricts hostel routes. Wardens see every hostel; other staff need a
// matching gender scope and a hostel incharge only sees the hostel assigned to them.
func HostelScope(param string, locator HostelLocator) Guard {
	return func(r *http.Request, id *Identity) error {
		hostelID := chi.URLParam(r, param)
		if hostelID == "" {
			return nil
		}

		hostel, err := locator.LocateHostel(r.Context(), hostelID)
		if err != nil {
			return err
		}

		if id.Role == role.Warden {
			return nil
		}
		if !id.CanManageGender(hostel.Gender) {
			return internal.ErrGenderScope
		}
		if id.Role == role.HostelIncharge && id.AssignedHostelID != hostel.ID {
			return internal.ErrHostelScope
		}
		return nil
	}
}
