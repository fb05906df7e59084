package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubLocator map[string]*HostelRef

func (s stubLocator) LocateHostel(_ context.Context, id string) (*HostelRef, error) {
	if h, ok := s[id]; ok {
		return h, nil
	}
	return nil, internal.ErrHostelNotFound
}

func identityFor(r role.Role, pool account.Pool, assignedHostel string) *Identity {
	scope := pool.GenderScope()
	if pool == account.PoolStaff {
		scope = role.DefaultGenderScope(r)
	}
	return &Identity{Account: &account.Account{
		ID:               "acc-" + string(r),
		Pool:             pool,
		Email:            string(r) + "@ucet.edu.in",
		Role:             r,
		GenderScope:      scope,
		AssignedHostelID: assignedHostel,
		IsActive:         true,
	}}
}

var _ = ginkgo.Describe("Guards", func() {
	var (
		guards  *Guards
		locator stubLocator
	)

	ginkgo.BeforeEach(func() {
		guards = NewGuards(nil, transport.NewBaseHandler(testLogger(), false))
		locator = stubLocator{
			"hostel-a": {ID: "hostel-a", Gender: role.ScopeBoys},
			"hostel-b": {ID: "hostel-b", Gender: role.ScopeGirls},
		}
	})

	// serve routes the request through chi so URL params resolve, with the identity
	// already attached as Authenticated would.
	serve := func(pattern, path string, id *Identity, gs ...Guard) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.With(guards.Require(gs...)).Get(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if id != nil {
			req = req.WithContext(ContextWithIdentity(req.Context(), id))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.It("should answer 401 when no identity is attached", func() {
		rec := serve("/x", "/x", nil, StaffOnly())

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		var env transport.Envelope
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(gomega.Succeed())
		gomega.Expect(env.Success).To(gomega.BeFalse())
	})

	ginkgo.It("should stop at the first denial", func() {
		calls := 0
		counting := func(*http.Request, *Identity) error {
			calls++
			return nil
		}

		rec := serve("/x", "/x", identityFor(role.Student, account.PoolBoysStudent, ""), StaffOnly(), counting)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(calls).To(gomega.BeZero())
	})

	ginkgo.Describe("role and permission guards", func() {
		ginkgo.It("should allow roles in the set only", func() {
			gomega.Expect(serve("/x", "/x", identityFor(role.ExecutiveWarden, account.PoolStaff, ""), RoleIn(role.WardenTier()...)).Code).
				To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/x", "/x", identityFor(role.MessIncharge, account.PoolStaff, ""), RoleIn(role.WardenTier()...)).Code).
				To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should check permissions through the registry", func() {
			gomega.Expect(serve("/x", "/x", identityFor(role.Warden, account.PoolStaff, ""), HasPermission(role.ManageAllHostels)).Code).
				To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/x", "/x", identityFor(role.HostelIncharge, account.PoolStaff, ""), HasPermission(role.ManageAllHostels)).Code).
				To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should allow representatives only where asked", func() {
			gomega.Expect(serve("/x", "/x", identityFor(role.MessRepresentative, account.PoolGirlsStudent, ""), RepresentativeOnly()).Code).
				To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/x", "/x", identityFor(role.Student, account.PoolGirlsStudent, ""), RepresentativeOnly()).Code).
				To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve("/x", "/x", identityFor(role.Student, account.PoolGirlsStudent, ""), StudentOnly()).Code).
				To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should pass AnyOf when one member allows", func() {
			g := AnyOf(HasPermission(role.HandleRoomAllocation), RoleIn(role.WardenTier()...))

			gomega.Expect(serve("/x", "/x", identityFor(role.DeputyWardenBoys, account.PoolStaff, ""), g).Code).
				To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/x", "/x", identityFor(role.MessIncharge, account.PoolStaff, ""), g).Code).
				To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("GenderScope", func() {
		g := func() Guard { return GenderScope(URLParam("gender")) }

		ginkgo.It("should let a boys deputy manage boys but not girls", func() {
			id := identityFor(role.DeputyWardenBoys, account.PoolStaff, "")

			gomega.Expect(serve("/g/{gender}", "/g/male", id, g()).Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/g/{gender}", "/g/female", id, g()).Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should treat transgender as girls", func() {
			id := identityFor(role.DeputyWardenGirls, account.PoolStaff, "")

			gomega.Expect(serve("/g/{gender}", "/g/transgender", id, g()).Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should let a both-scoped role through", func() {
			id := identityFor(role.Warden, account.PoolStaff, "")

			gomega.Expect(serve("/g/{gender}", "/g/girls", id, g()).Code).To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("ownership guards", func() {
		ginkgo.It("should allow self or staff", func() {
			student := identityFor(role.Student, account.PoolBoysStudent, "")

			gomega.Expect(serve("/u/{userId}", "/u/"+student.ID, student, SelfOrStaff("userId")).Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/u/{userId}", "/u/someone-else", student, SelfOrStaff("userId")).Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve("/u/{userId}", "/u/someone-else", identityFor(role.MessIncharge, account.PoolStaff, ""), SelfOrStaff("userId")).Code).
				To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should restrict others to the warden tier", func() {
			gomega.Expect(serve("/u/{userId}", "/u/other", identityFor(role.MessIncharge, account.PoolStaff, ""), OwnerOrSeniorStaff("userId")).Code).
				To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve("/u/{userId}", "/u/other", identityFor(role.DeputyWardenGirls, account.PoolStaff, ""), OwnerOrSeniorStaff("userId")).Code).
				To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("HostelScope", func() {
		scope := func() Guard { return HostelScope("hostelId", locator) }

		ginkgo.It("should let the warden into any hostel", func() {
			id := identityFor(role.Warden, account.PoolStaff, "")

			gomega.Expect(serve("/h/{hostelId}", "/h/hostel-a", id, scope()).Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/h/{hostelId}", "/h/hostel-b", id, scope()).Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should keep an incharge to the assigned hostel", func() {
			id := identityFor(role.HostelIncharge, account.PoolStaff, "hostel-a")

			gomega.Expect(serve("/h/{hostelId}", "/h/hostel-a", id, scope()).Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/h/{hostelId}", "/h/hostel-b", id, scope()).Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should apply the gender scope to other staff", func() {
			id := identityFor(role.ResidentialCounsellorGirls, account.PoolStaff, "")

			gomega.Expect(serve("/h/{hostelId}", "/h/hostel-b", id, scope()).Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve("/h/{hostelId}", "/h/hostel-a", id, scope()).Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should answer 404 for an unknown hostel", func() {
			id := identityFor(role.Warden, account.PoolStaff, "")

			gomega.Expect(serve("/h/{hostelId}", "/h/missing", id, scope()).Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})

var _ = ginkgo.Describe("Authenticated middleware", func() {
	var (
		service *Service
		repo    *mockAccountRepository
		handler http.Handler
	)

	ginkgo.BeforeEach(func() {
		repo = newMockAccountRepository()
		repo.add(account.PoolStaff, "staff-1", "warden@ucet.edu.in", "pw123456", role.Warden)
		service = NewService(repo, NewJWTTokenGenerator("secret", 0), testLogger())
		guards := NewGuards(service, transport.NewBaseHandler(testLogger(), false))
		handler = guards.Authenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(internal.UserIDFromContext(r.Context())).To(gomega.Equal(id.ID))
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	ginkgo.It("should attach the identity for a valid bearer token", func() {
		token, _, err := service.IssueToken(repo.accounts[account.PoolStaff]["warden@ucet.edu.in"])
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
	})

	ginkgo.It("should reject a non-bearer header", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})
})
