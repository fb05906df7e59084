// Package breaker wraps sony/gobreaker with the service's standard settings.
package breaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

const (
	NameInvoice = "Invoice-Generator"
	NameRedis   = "Redis-RateLimit"
)

// New creates a breaker that opens after three consecutive failures.
func New(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	var timeout time.Duration
	switch name {
	case NameRedis:
		timeout = 5 * time.Second
	case NameInvoice:
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state change",
					"breaker", name,
					"from", from.String(),
					"to", to.String())
			}
		},
	})
}

// Execute runs fn through cb and returns its typed result.
func Execute[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if cb == nil {
		return fn(ctx)
	}
	out, err := cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}
