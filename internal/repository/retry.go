package repository

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// RetryPolicy defines exponential backoff parameters for connecting to Redis.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy gives Redis a few seconds to come up next to the API.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:    3,
	InitialDelay:  200 * time.Millisecond,
	MaxDelay:      2 * time.Second,
	BackoffFactor: 2,
}

// NextDelay returns the wait before retry number attempt (1-based), clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	d := time.Duration(float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// PingWithRetry pings until Redis answers, the policy is exhausted or ctx is done.
func PingWithRetry(ctx context.Context, client *redis.Client, policy RetryPolicy) error {
	err := Ping(ctx, client)
	for attempt := 1; err != nil && attempt <= policy.MaxRetries; attempt++ {
		timer := time.NewTimer(policy.NextDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = Ping(ctx, client)
	}
	return err
}
