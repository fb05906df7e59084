package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hostel-management/internal/account"
	"github.com/frahmantamala/hostel-management/internal/auth"
	"github.com/frahmantamala/hostel-management/internal/core/metrics"
	"github.com/frahmantamala/hostel-management/internal/hostel"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	"github.com/frahmantamala/hostel-management/internal/registration"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport/middleware"
	"github.com/frahmantamala/hostel-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth         *auth.Handler
	Account      *account.Handler
	Registration *registration.Handler
	Invoice      *invoice.Handler
	Hostel       *hostel.Handler
}

type Options struct {
	Guards         *auth.Guards
	Hostels        auth.HostelLocator
	Health         *HealthHandler
	Metrics        *metrics.Metrics
	MetricsPath    string
	AllowedOrigins []string
	// TrustProxy installs RealIP so X-Forwarded-For decides the client address.
	TrustProxy bool
	// SpecPath is the OpenAPI document served at /openapi.yml.
	SpecPath string
	Logger   *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	g := opts.Guards

	if opts.TrustProxy {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.Metrics.Handler())
	}

	if opts.Health != nil {
		router.Get("/health", opts.Health.healthCheckHandler)
		router.Get("/ping", opts.Health.pingHandler)
	}

	if opts.SpecPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.SpecPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	hostelScope := auth.HostelScope("hostelId", opts.Hostels)

	router.Route("/api", func(r chi.Router) {
		r.Route("/registration", func(rr chi.Router) {
			rr.Post("/submit", h.Registration.Submit)
			rr.Post("/complete-payment", h.Registration.CompletePayment)
			rr.Get("/status/{identifier}", h.Registration.Status)
			rr.With(g.Authenticated, middleware.UserContext, g.Require(auth.StaffOnly())).Get("/all", h.Registration.ListAll)
		})

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Account.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Get("/roles", h.Auth.Roles)

			ar.Group(func(pr chi.Router) {
				pr.Use(g.Authenticated, middleware.UserContext)
				pr.Get("/profile", h.Account.GetProfile)
				pr.Put("/profile", h.Account.UpdateProfile)
				pr.With(g.Require(auth.SelfOrStaff("userId"))).Put("/profile/{userId}", h.Account.UpdateProfile)
				pr.Put("/change-password", h.Account.ChangePassword)
				pr.Post("/logout", h.Auth.Logout)
				pr.Get("/verify", h.Auth.Verify)
			})
		})

		r.Route("/invoice", func(ir chi.Router) {
			ir.With(g.Optional, middleware.UserContext).Get("/{invoiceId}", h.Invoice.GetInvoice)
			ir.With(g.Optional, middleware.UserContext).Get("/{invoiceId}/download", h.Invoice.DownloadInvoice)

			ir.Group(func(pr chi.Router) {
				pr.Use(g.Authenticated, middleware.UserContext)
				pr.Get("/{invoiceId}/view", h.Invoice.ViewInvoice)
				pr.Get("/student/{email}", h.Invoice.StudentInvoices)
				pr.Get("/number/{invoiceNumber}", h.Invoice.InvoiceByNumber)
				pr.With(g.Require(auth.StaffOnly())).Get("/", h.Invoice.ListInvoices)
			})
		})

		r.Route("/staff", func(sr chi.Router) {
			sr.Use(g.Authenticated, middleware.UserContext)

			sr.Group(func(read chi.Router) {
				read.Use(g.Require(auth.RoleIn(role.SeniorStaff()...)))
				read.Get("/", h.Account.ListStaff)
				read.Get("/role/{role}", h.Account.StaffByRole)
				read.Get("/{staffId}", h.Account.GetStaff)
			})

			sr.Group(func(write chi.Router) {
				write.Use(g.Require(auth.RoleIn(role.WardenTier()...)))
				write.Post("/", h.Account.CreateStaff)
				write.Put("/{staffId}", h.Account.UpdateStaff)
				write.Put("/{staffId}/role", h.Account.ChangeStaffRole)
				write.Put("/{staffId}/assign-hostel", h.Account.AssignHostel)
				write.Put("/{staffId}/activate", h.Account.ActivateStaff)
				write.Put("/{staffId}/deactivate", h.Account.DeactivateStaff)
			})
		})

		r.Route("/hostels", func(hr chi.Router) {
			hr.Use(g.Authenticated, middleware.UserContext)

			hr.With(g.Require(auth.StaffOnly())).Get("/", h.Hostel.GetHostels)
			hr.With(g.Require(auth.HasPermission(role.ManageAllHostels))).Post("/", h.Hostel.CreateHostel)
			hr.With(g.Require(auth.StaffOnly(), auth.GenderScope(auth.URLParam("gender")))).
				Get("/gender/{gender}", h.Hostel.GetHostelsByGender)
			hr.With(g.Require(auth.StaffOnly(), hostelScope)).Get("/{hostelId}", h.Hostel.GetHostel)
			hr.With(g.Require(
				auth.AnyOf(auth.HasPermission(role.HandleRoomAllocation), auth.RoleIn(role.WardenTier()...)),
				hostelScope,
			)).Put("/{hostelId}/occupancy", h.Hostel.UpdateOccupancy)
			hr.With(g.Require(auth.StaffOnly(), hostelScope)).Put("/{hostelId}/representatives", h.Hostel.AssignRepresentatives)
		})

		r.Route("/representatives", func(rr chi.Router) {
			rr.Use(g.Authenticated, middleware.UserContext)

			rr.With(g.Require(auth.StaffOnly())).Get("/", h.Hostel.ListRepresentatives)
			rr.With(g.Require(auth.RepresentativeOnly())).Get("/hostel", h.Hostel.MyHostel)
			rr.With(g.Require(auth.StaffOnly(), hostelScope)).Get("/hostel/{hostelId}", h.Hostel.ListRepresentatives)
			rr.With(g.Require(auth.RoleIn(role.WardenTier()...))).Put("/{userId}/remove", h.Hostel.RemoveRepresentative)
			rr.With(g.Require(auth.OwnerOrSeniorStaff("userId"))).Put("/{userId}/contact", h.Account.UpdateRepresentativeContact)
		})
	})
}
