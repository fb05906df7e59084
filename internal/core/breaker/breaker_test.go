package breaker_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/hostel-management/internal/core/breaker"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker"
)

func TestBreaker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Breaker Suite")
}

var _ = Describe("Circuit breaker", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("passes results through while closed", func() {
		cb := breaker.New(breaker.NameInvoice, logger)

		out, err := breaker.Execute(context.Background(), cb, func(context.Context) (string, error) {
			return "UCET-INV-25070001", nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("UCET-INV-25070001"))
	})

	It("opens after three consecutive failures", func() {
		// Given
		cb := breaker.New(breaker.NameInvoice, logger)
		boom := errors.New("disk full")
		calls := 0
		fail := func(context.Context) (int, error) {
			calls++
			return 0, boom
		}

		// When
		for i := 0; i < 3; i++ {
			_, err := breaker.Execute(context.Background(), cb, fail)
			Expect(err).To(MatchError(boom))
		}
		_, err := breaker.Execute(context.Background(), cb, fail)

		// Then
		Expect(err).To(MatchError(gobreaker.ErrOpenState))
		Expect(calls).To(Equal(3))
		Expect(cb.State()).To(Equal(gobreaker.StateOpen))
	})

	It("calls straight through without a breaker", func() {
		out, err := breaker.Execute(context.Background(), nil, func(context.Context) (int, error) {
			return 7, nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(7))
	})
})
