// Package ratelimit throttles outgoing calls with a token bucket.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter implements the token bucket algorithm for outgoing requests.
// A nil *Limiter never blocks.
type Limiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// New returns a Limiter refilling requestsPerSecond tokens per second with
// room for burst tokens. A burst below 1 means 1.
//
// Example:
//
//	limiter := ratelimit.New(1.0, 1) // Slack webhooks: 1 message per second
func New(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	r := rate.Limit(requestsPerSecond)
	return &Limiter{
		rate:    r,
		burst:   burst,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Optional returns New(requestsPerSecond, 1) for a positive rate and nil otherwise.
func Optional(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return New(requestsPerSecond, 1)
}

// Allow blocks until a token is available or ctx is done. It fails early
// when the wait would outlast the context deadline.
func (l *Limiter) Allow(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Rate returns the refill rate in tokens per second.
func (l *Limiter) Rate() float64 {
	if l == nil {
		return 0
	}
	return float64(l.rate)
}

// Burst returns the bucket size.
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.burst
}
