// Package ratelimit throttles failed logins with fixed-window counters in redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrUnavailable = errors.New("rate limiter backend unavailable")
)

type Config struct {
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	// ThrottleIP also counts failures per client address.
	ThrottleIP bool
}

type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 5
	}
	if cfg.LoginCooldown <= 0 {
		cfg.LoginCooldown = 15 * time.Minute
	}
	return &Limiter{redis: client, config: cfg}
}

func emailKey(email string) string {
	return "hostel:login:email:" + strings.ToLower(email)
}

func ipKey(ip string) string {
	return "hostel:login:ip:" + ip
}

// Check returns ErrRateLimited once the failure budget is spent.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, emailKey(email)); err != nil {
		return err
	}
	if l.config.ThrottleIP && ip != "" {
		return l.checkCounter(ctx, ipKey(ip))
	}
	return nil
}

// RecordFailure counts one failed attempt. The window starts at the first failure.
func (l *Limiter) RecordFailure(ctx context.Context, email, ip string) error {
	if _, err := l.incrementWithTTL(ctx, emailKey(email)); err != nil {
		return err
	}
	if l.config.ThrottleIP && ip != "" {
		if _, err := l.incrementWithTTL(ctx, ipKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the email counter after a successful login. The IP counter is kept.
func (l *Limiter) Reset(ctx context.Context, email, _ string) error {
	if err := l.redis.Del(ctx, emailKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *Limiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, emailKey(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (l *Limiter) Ping(ctx context.Context) error {
	return l.redis.Ping(ctx).Err()
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count >= int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.LoginCooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return count, nil
}
