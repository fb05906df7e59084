package hostel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	accountPostgres "github.com/frahmantamala/hostel-management/internal/account/postgres"
	"github.com/frahmantamala/hostel-management/internal/auth"
	coreAccount "github.com/frahmantamala/hostel-management/internal/core/account"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	"github.com/frahmantamala/hostel-management/internal/core/database/dbtest"
	"github.com/frahmantamala/hostel-management/internal/hostel"
	hostelPostgres "github.com/frahmantamala/hostel-management/internal/hostel/postgres"
	"github.com/frahmantamala/hostel-management/internal/role"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Hostel Handler Integration", func() {
	var (
		service *hostel.Service
		handler *hostel.Handler
		router  *chi.Mux
		caller  *auth.Identity
	)

	BeforeEach(func() {
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = hostel.NewService(hostelPostgres.NewHostelRepository(db), accountPostgres.NewAccountRepository(db),
			database.NewTransactor(db), slogger)
		handler = hostel.NewHandler(transport.NewBaseHandler(slogger, true), service)

		caller = &auth.Identity{Account: &coreAccount.Account{
			ID: "warden-1", Pool: coreAccount.PoolStaff, Role: role.Warden, GenderScope: role.ScopeBoth,
		}}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), caller)))
			})
		})
		router.Get("/api/hostels/", handler.GetHostels)
		router.Post("/api/hostels/", handler.CreateHostel)
		router.Get("/api/hostels/gender/{gender}", handler.GetHostelsByGender)
		router.Get("/api/hostels/{hostelId}", handler.GetHostel)
		router.Put("/api/hostels/{hostelId}/occupancy", handler.UpdateOccupancy)

		for _, dto := range []hostel.CreateHostelDTO{
			{Name: "Block A", Code: "A-BOYS", Gender: "boys", Capacity: 200},
			{Name: "Block B", Code: "B-GIRLS", Gender: "girls", Capacity: 150},
		} {
			_, err := service.Create(context.Background(), dto)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	do := func(method, path string, body interface{}) (*httptest.ResponseRecorder, transport.Envelope) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env transport.Envelope
		Expect(json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&env)).To(Succeed())
		return w, env
	}

	It("should list every hostel for a warden", func() {
		w, env := do(http.MethodGet, "/api/hostels/", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(env.Success).To(BeTrue())
		data := env.Data.(map[string]interface{})
		Expect(data["count"]).To(BeEquivalentTo(2))
	})

	It("should list only the caller's gender for gendered staff", func() {
		caller.Role = role.DeputyWardenGirls
		caller.GenderScope = role.ScopeGirls

		w, env := do(http.MethodGet, "/api/hostels/", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		hostels := env.Data.(map[string]interface{})["hostels"].([]interface{})
		Expect(hostels).To(HaveLen(1))
		Expect(hostels[0].(map[string]interface{})["code"]).To(Equal("B-GIRLS"))
	})

	It("should create a hostel and report derived capacity", func() {
		w, env := do(http.MethodPost, "/api/hostels/", hostel.CreateHostelDTO{
			Name: "Block C", Code: "c-boys", Gender: "boys", Capacity: 40,
		})

		Expect(w.Code).To(Equal(http.StatusCreated))
		data := env.Data.(map[string]interface{})
		Expect(data["code"]).To(Equal("C-BOYS"))
		Expect(data["availableCapacity"]).To(BeEquivalentTo(40))
		Expect(data["occupancyPercentage"]).To(BeEquivalentTo(0))
	})

	It("should reject occupancy above capacity with 400", func() {
		list, err := service.List(context.Background(), role.ScopeBoys, "")
		Expect(err).NotTo(HaveOccurred())

		w, env := do(http.MethodPut, "/api/hostels/"+list[0].ID+"/occupancy", map[string]int{"currentOccupancy": 500})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Success).To(BeFalse())
	})

	It("should return 404 for an unknown hostel", func() {
		w, env := do(http.MethodGet, "/api/hostels/unknown", nil)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(env.Success).To(BeFalse())
	})
})
