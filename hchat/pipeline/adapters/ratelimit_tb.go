package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	ports "github.com/ZanzyTHEbar/hybridchat/hchat/pipeline/ports"
)

// ErrRateLimitExceeded is returned when a bucket has no tokens left.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// TokenBucket keeps one bucket per key. Each Acquire spends a token and
// tokens come back one per refill interval, up to capacity.
type TokenBucket struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   int
	refillRate time.Duration
	now        func() time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewTokenBucket creates a limiter allowing bursts of capacity calls.
func NewTokenBucket(capacity int, refillRate time.Duration) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if refillRate <= 0 {
		refillRate = time.Second
	}
	return &TokenBucket{
		buckets:    make(map[string]*bucket),
		capacity:   capacity,
		refillRate: refillRate,
		now:        time.Now,
	}
}

// Acquire spends one token for key. Spent tokens are only returned by
// refill, so release does nothing.
func (tb *TokenBucket) Acquire(ctx context.Context, key string) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, exists := tb.buckets[key]
	if !exists {
		b = &bucket{tokens: tb.capacity, lastRefill: now}
		tb.buckets[key] = b
	}

	if refills := int(now.Sub(b.lastRefill) / tb.refillRate); refills > 0 {
		b.tokens = min(b.tokens+refills, tb.capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(refills) * tb.refillRate)
	}

	if b.tokens <= 0 {
		return nil, ErrRateLimitExceeded
	}
	b.tokens--

	return func() {}, nil
}

var _ ports.RateLimiter = (*TokenBucket)(nil)
