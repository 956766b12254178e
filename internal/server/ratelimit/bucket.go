package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// bucket is a token bucket for one client and route
type bucket struct {
	limiter *rate.Limiter
	limit   rate.Limit
	burst   int
}

// newBucket creates a full bucket holding burst tokens that refills at refillRate tokens per second.
func newBucket(burst int, refillRate float64) *bucket {
	limit := rate.Limit(refillRate)
	return &bucket{
		limiter: rate.NewLimiter(limit, burst),
		limit:   limit,
		burst:   burst,
	}
}

func (b *bucket) allow(now time.Time) bool {
	return b.limiter.AllowN(now, 1)
}

// status reports the whole tokens left at now and when the bucket will be full again.
func (b *bucket) status(now time.Time) (remaining int, resetTime time.Time) {
	tokens := b.limiter.TokensAt(now)
	remaining = max(int(tokens), 0)
	if missing := float64(b.burst) - tokens; missing > 0 && b.limit > 0 {
		return remaining, now.Add(time.Duration(missing / float64(b.limit) * float64(time.Second)))
	}
	return remaining, now
}

// retryAfter is the wait until one token is available at now.
func (b *bucket) retryAfter(now time.Time) time.Duration {
	tokens := b.limiter.TokensAt(now)
	if tokens >= 1 || b.limit <= 0 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(b.limit) * float64(time.Second))
}
