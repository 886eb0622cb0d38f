package middleware

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestTokenBucketLimiter_Refill(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewTokenBucketLimiter(2, 2, 0)
	l.now = clock.Now

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Remaining)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "keys have separate buckets")

	clock.Advance(500 * time.Millisecond)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 2, l.BucketCount())
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewTokenBucketLimiter(1, 3, 0)
	l.now = clock.Now
	l.cleanupInterval = time.Minute

	l.Allow("idle")
	clock.Advance(2 * time.Minute)
	l.cleanup()
	assert.Equal(t, 0, l.BucketCount())

	l.Stop()
	l.Stop()
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Parallel()
	l := NewTokenBucketLimiter(0.001, 1, 0)
	r := newEngine(RequestID(), RateLimit(l))

	w := serve(r, http.MethodPost, "/api/v1/heatmaps", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = serve(r, http.MethodPost, "/api/v1/heatmaps", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

//Personal.AI order the ending
