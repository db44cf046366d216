// Package ratelimit throttles demo submissions per dashboard session.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

var _ ports.RateLimiter = (*SessionLimiter)(nil)

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// SessionLimiter keeps one token bucket per key. Buckets idle longer than
// the TTL are evicted by a background loop.
type SessionLimiter struct {
	clock ports.Clock
	ttl   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

// NewSessionLimiter creates a limiter and starts its eviction loop. Call
// Stop to terminate it.
func NewSessionLimiter(ttl time.Duration, clock ports.Clock) *SessionLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	l := &SessionLimiter{
		clock:   clock,
		ttl:     ttl,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go l.evictLoop()
	return l
}

// Stop terminates the eviction loop. It is safe to call more than once.
func (l *SessionLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *SessionLimiter) evictLoop() {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Evict()
		case <-l.stop:
			return
		}
	}
}

// Allow takes one token from key's bucket. A non-positive r disables
// limiting.
func (l *SessionLimiter) Allow(_ context.Context, key string, r float64, burst int) bool {
	if r <= 0 {
		return true
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.bucketLocked(key, r, burst, now)
	b.lastUsed = now
	return b.limiter.AllowN(now, 1)
}

// RetryAfter estimates how long key must wait for its next token.
func (l *SessionLimiter) RetryAfter(key string) time.Duration {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		return 0
	}
	tokens := b.limiter.TokensAt(now)
	limit := float64(b.limiter.Limit())
	if tokens >= 1 || limit <= 0 {
		return 0
	}
	return time.Duration(math.Ceil((1 - tokens) / limit * float64(time.Second)))
}

func (l *SessionLimiter) bucketLocked(key string, r float64, burst int, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(r), burst)}
		l.buckets[key] = b
		return b
	}
	if float64(b.limiter.Limit()) != r || b.limiter.Burst() != burst {
		// Settings changed between calls; keep the bucket's history.
		b.limiter.SetLimitAt(now, rate.Limit(r))
		b.limiter.SetBurstAt(now, burst)
	}
	return b
}

// Evict removes buckets idle for longer than the TTL.
func (l *SessionLimiter) Evict() {
	cutoff := l.clock.Now().Add(-l.ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (l *SessionLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
