// Package ratelimit provides per-client request limiting backed by
// golang.org/x/time/rate token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// entry is a bucket plus the last time it was used
type entry struct {
	bucket   *bucket
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and route. Requests to the same
// route share a bucket regardless of path values, so every session of a
// client draws from the same allowance.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = time.Hour
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.sweepLoop(config.CleanupInterval)
	}
	return l
}

// Allow checks whether a request from clientID for method and path may proceed.
func (l *Limiter) Allow(clientID, method, path string) (bool, Info) {
	switch {
	case !l.config.Enabled, l.config.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Blacklist[clientID]:
		return false, Info{}
	}

	limit, window, burst := l.config.DefaultLimit, l.config.DefaultWindow, l.config.DefaultLimit
	route := "*"
	if rule := Match(method, path, l.config.Rules); rule != nil {
		limit, window, burst = rule.Limit, rule.Window, rule.Burst
		route = rule.Pattern
	}
	if limit <= 0 || window <= 0 {
		return true, Info{Allowed: true}
	}
	if burst <= 0 {
		burst = limit
	}

	now := l.now()
	b := l.bucketFor(clientID+" "+route, now, burst, float64(limit)/window.Seconds())

	allowed := b.allow(now)
	info := Info{Allowed: allowed, Limit: limit}
	info.Remaining, info.ResetTime = b.status(now)
	if !allowed {
		info.RetryAfter = b.retryAfter(now)
	}
	return allowed, info
}

// bucketFor returns the bucket for key, creating it on first use.
func (l *Limiter) bucketFor(key string, now time.Time, burst int, refillRate float64) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{bucket: newBucket(burst, refillRate)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.bucket
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(l.now())
		case <-l.done:
			return
		}
	}
}

// sweep drops buckets idle for longer than IdleTTL as of now.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
