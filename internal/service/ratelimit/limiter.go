package ratelimit

import (
	"sync"
	"time"
)

// bucket is one provider's token budget. Refill happens lazily at each
// acquire; no background timer.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter holds per-provider token buckets. Buckets are registered once at
// startup, so the registry map is read-only afterwards and each bucket has
// its own lock; unrelated providers never contend.
type Limiter struct {
	buckets map[string]*bucket
	clock   func() time.Time
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket), clock: time.Now}
}

// Register adds a provider budget. Must be called before serving traffic.
func (l *Limiter) Register(providerID string, capacity, refillPerSec float64) {
	l.buckets[providerID] = &bucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillPerSec,
		last:       l.clock(),
	}
}

// TryAcquire consumes one token for providerID if available. It never
// blocks; check-and-decrement is atomic under the bucket lock so concurrent
// callers cannot both win a single remaining token. Unknown providers are
// unconstrained.
func (l *Limiter) TryAcquire(providerID string) bool {
	b, ok := l.buckets[providerID]
	if !ok {
		return true
	}

	now := l.clock()
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens -= 1
		return true
	}
	return false
}

// Tokens reports the current balance for diagnostics.
func (l *Limiter) Tokens(providerID string) float64 {
	b, ok := l.buckets[providerID]
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

// SetClock overrides the time source. Used by tests to make refill
// deterministic.
func (l *Limiter) SetClock(fn func() time.Time) {
	l.clock = fn
	for _, b := range l.buckets {
		b.last = fn()
	}
}
