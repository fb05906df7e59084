package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/hostel-management/internal/core/ratelimit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

func TestRateLimit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rate Limit Suite")
}

var _ = Describe("Login limiter", func() {
	var (
		mr      *miniredis.Miniredis
		client  *redis.Client
		limiter *ratelimit.Limiter
		ctx     context.Context
	)

	BeforeEach(func() {
		mr = miniredis.RunT(GinkgoT())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		limiter = ratelimit.New(client, ratelimit.Config{MaxLoginAttempts: 3, LoginCooldown: time.Minute, ThrottleIP: true})
		ctx = context.Background()
	})

	AfterEach(func() {
		_ = client.Close()
	})

	It("allows attempts under the budget", func() {
		Expect(limiter.RecordFailure(ctx, "warden@ucet.edu.in", "10.0.0.1")).To(Succeed())
		Expect(limiter.RecordFailure(ctx, "warden@ucet.edu.in", "10.0.0.1")).To(Succeed())

		Expect(limiter.Check(ctx, "warden@ucet.edu.in", "10.0.0.1")).To(Succeed())
	})

	It("blocks once the budget is spent", func() {
		for i := 0; i < 3; i++ {
			Expect(limiter.RecordFailure(ctx, "Warden@ucet.edu.in", "")).To(Succeed())
		}

		Expect(limiter.Check(ctx, "warden@ucet.edu.in", "")).To(MatchError(ratelimit.ErrRateLimited))
	})

	It("forgets failures after the cooldown", func() {
		for i := 0; i < 3; i++ {
			Expect(limiter.RecordFailure(ctx, "a@x.com", "")).To(Succeed())
		}

		mr.FastForward(2 * time.Minute)

		Expect(limiter.Check(ctx, "a@x.com", "")).To(Succeed())
	})

	It("throttles by address across emails", func() {
		Expect(limiter.RecordFailure(ctx, "a@x.com", "10.0.0.9")).To(Succeed())
		Expect(limiter.RecordFailure(ctx, "b@x.com", "10.0.0.9")).To(Succeed())
		Expect(limiter.RecordFailure(ctx, "c@x.com", "10.0.0.9")).To(Succeed())

		Expect(limiter.Check(ctx, "d@x.com", "10.0.0.9")).To(MatchError(ratelimit.ErrRateLimited))
	})

	It("resets the email counter on success", func() {
		Expect(limiter.RecordFailure(ctx, "a@x.com", "")).To(Succeed())

		Expect(limiter.Reset(ctx, "a@x.com", "")).To(Succeed())

		attempts, err := limiter.Attempts(ctx, "a@x.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(attempts).To(BeZero())
	})

	It("reports an unavailable backend", func() {
		mr.Close()

		err := limiter.Check(ctx, "a@x.com", "")

		Expect(err).To(MatchError(ratelimit.ErrUnavailable))
	})
})
