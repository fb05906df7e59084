package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/database/dbtest"
	registrationDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/registration"
	"github.com/frahmantamala/hostel-management/internal/registration"
)

func TestRegistrationRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Registration Repository Suite")
}

func pending(id, email string, submitted time.Time) *registrationDatamodel.TempRegistration {
	return &registrationDatamodel.TempRegistration{
		ID:             id,
		Name:           "Arun Kumar",
		Email:          email,
		PasswordHash:   "hash",
		DateOfBirth:    time.Date(2004, 6, 15, 0, 0, 0, 0, time.UTC),
		Course:         "B.E CSE",
		Year:           1,
		Gender:         "male",
		Category:       "BC",
		MessPreference: "VEG",
		Status:         string(registration.StatusPendingPayment),
		SubmittedAt:    submitted,
		ExpiresAt:      submitted.Add(24 * time.Hour),
	}
}

var _ = ginkgo.Describe("RegistrationRepository", func() {
	var (
		db   *gorm.DB
		repo *RegistrationRepository
		ctx  context.Context
		now  time.Time
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		repo = NewRegistrationRepository(db)
		ctx = context.Background()
		now = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should reject a second record for the same email", func() {
			gomega.Expect(repo.Create(ctx, pending("reg-1", "arun@example.com", now))).To(gomega.Succeed())

			err := repo.Create(ctx, pending("reg-2", "arun@example.com", now))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrDuplicatePending))
		})
	})

	ginkgo.Describe("FindLive", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(repo.Create(ctx, pending("reg-1", "arun@example.com", now))).To(gomega.Succeed())
		})

		ginkgo.It("should match by id or by email in any case", func() {
			byID, err := repo.FindLive(ctx, "reg-1", now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(byID.Email).To(gomega.Equal("arun@example.com"))

			byEmail, err := repo.FindLive(ctx, "  Arun@Example.com ", now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(byEmail.ID).To(gomega.Equal("reg-1"))
		})

		ginkgo.It("should treat a record as gone from the moment it expires", func() {
			_, err := repo.FindLive(ctx, "reg-1", now.Add(24*time.Hour-time.Second))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = repo.FindLive(ctx, "reg-1", now.Add(24*time.Hour))
			gomega.Expect(err).To(gomega.MatchError(internal.ErrRegistrationNotFound))
		})
	})

	ginkgo.It("should list only live records, newest submission first", func() {
		gomega.Expect(repo.Create(ctx, pending("old", "old@example.com", now.Add(-30*time.Hour)))).To(gomega.Succeed())
		gomega.Expect(repo.Create(ctx, pending("first", "first@example.com", now.Add(-2*time.Hour)))).To(gomega.Succeed())
		gomega.Expect(repo.Create(ctx, pending("second", "second@example.com", now.Add(-time.Hour)))).To(gomega.Succeed())

		rows, err := repo.ListLive(ctx, now)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rows).To(gomega.HaveLen(2))
		gomega.Expect(rows[0].ID).To(gomega.Equal("second"))
		gomega.Expect(rows[1].ID).To(gomega.Equal("first"))
	})

	ginkgo.Describe("deleting", func() {
		ginkgo.It("should report deleting an unknown record", func() {
			gomega.Expect(repo.Delete(ctx, "nope")).To(gomega.MatchError(internal.ErrRegistrationNotFound))
		})

		ginkgo.It("should clear an expired record for one email only", func() {
			gomega.Expect(repo.Create(ctx, pending("stale", "arun@example.com", now.Add(-25*time.Hour)))).To(gomega.Succeed())
			gomega.Expect(repo.Create(ctx, pending("other", "priya@example.com", now.Add(-25*time.Hour)))).To(gomega.Succeed())

			n, err := repo.DeleteExpiredByEmail(ctx, "ARUN@example.com", now)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(n).To(gomega.Equal(int64(1)))
			var left int64
			gomega.Expect(db.Model(&registrationDatamodel.TempRegistration{}).Count(&left).Error).To(gomega.Succeed())
			gomega.Expect(left).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should sweep expired unpaid records and keep live ones", func() {
			gomega.Expect(repo.Create(ctx, pending("stale-1", "a@example.com", now.Add(-48*time.Hour)))).To(gomega.Succeed())
			gomega.Expect(repo.Create(ctx, pending("stale-2", "b@example.com", now.Add(-25*time.Hour)))).To(gomega.Succeed())
			gomega.Expect(repo.Create(ctx, pending("live", "c@example.com", now.Add(-time.Hour)))).To(gomega.Succeed())

			n, err := repo.DeleteExpired(ctx, now)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(n).To(gomega.Equal(int64(2)))
			_, err = repo.FindLive(ctx, "live", now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})
	})

	ginkgo.It("should save payment details on update", func() {
		reg := pending("reg-1", "arun@example.com", now)
		gomega.Expect(repo.Create(ctx, reg)).To(gomega.Succeed())

		paid := now.Add(time.Hour)
		reg.Status = string(registration.StatusCompleted)
		reg.PaymentDetails = datatypes.NewJSONType(registrationDatamodel.PaymentDetails{
			PaymentID:   "pay_123",
			Amount:      "46800",
			PaymentDate: &paid,
		})
		gomega.Expect(repo.Update(ctx, reg)).To(gomega.Succeed())

		row, err := repo.FindLive(ctx, "reg-1", now)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(row.Status).To(gomega.Equal(string(registration.StatusCompleted)))
		gomega.Expect(row.PaymentDetails.Data().PaymentID).To(gomega.Equal("pay_123"))
	})
})
