// Package ratelimiter throttles callers with one token bucket per key.
package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultIdleTTL is how long an unused bucket is kept.
	defaultIdleTTL = 10 * time.Minute
	// sweepEvery is the number of Allow calls between idle sweeps.
	sweepEvery = 512
)

// MapLimiter applies a token bucket per string key and periodically evicts idle entries.
// A nil *MapLimiter allows everything.
type MapLimiter struct {
	// limit is the sustained rate of every bucket.
	limit rate.Limit
	// burst is the bucket size.
	burst int
	// idleTTL is how long a bucket survives without hits.
	idleTTL time.Duration

	// mu protects byKey and hits.
	mu    sync.Mutex
	byKey map[string]*entry
	hits  uint64
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a key-based limiter; it returns nil when rps or burst is not positive,
// which disables limiting.
func New(rps float64, burst int, idleTTL time.Duration) *MapLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}

	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}

	return &MapLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*entry),
	}
}

// Allow reports whether one token can be consumed for key at now.
func (l *MapLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}

	key = strings.TrimSpace(key)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &entry{
			limiter: rate.NewLimiter(l.limit, l.burst),
		}
		l.byKey[key] = e
	}

	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%sweepEvery == 0 {
		l.evictIdle(now)
	}

	return allowed
}

// Len returns the number of tracked keys.
func (l *MapLimiter) Len() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.byKey)
}

// evictIdle drops buckets not seen since now minus idleTTL. Callers hold mu.
func (l *MapLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-l.idleTTL)

	for k, v := range l.byKey {
		if v.lastSeen.Before(cutoff) {
			delete(l.byKey, k)
		}
	}
}
