package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo contains current rate limit state for a given key.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// --- Token Bucket Limiter ---

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// TokenBucketLimiter implements RateLimiter with one in-memory token bucket
// per key.
type TokenBucketLimiter struct {
	rate            float64
	burstSize       int
	buckets         map[string]*tokenBucket
	mu              sync.RWMutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewTokenBucketLimiter creates a limiter refilling rate tokens per second up
// to burstSize. A positive cleanupInterval starts a goroutine that drops idle
// buckets; call Stop to end it.
func NewTokenBucketLimiter(rate float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	l := &TokenBucketLimiter{
		rate:            rate,
		burstSize:       burstSize,
		buckets:         make(map[string]*tokenBucket),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow takes one token from key's bucket when available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.RLock()
	bucket, exists := l.buckets[key]
	l.mu.RUnlock()
	if !exists {
		l.mu.Lock()
		bucket, exists = l.buckets[key]
		if !exists {
			bucket = &tokenBucket{tokens: float64(l.burstSize), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * l.rate
	if bucket.tokens > float64(l.burstSize) {
		bucket.tokens = float64(l.burstSize)
	}
	bucket.lastRefill = now

	info := RateLimitInfo{
		Limit:   l.burstSize,
		ResetAt: now.Add(time.Duration(float64(time.Second) / l.rate)),
	}
	if bucket.tokens >= 1.0 {
		bucket.tokens--
		info.Remaining = int(bucket.tokens)
		return true, info
	}
	return false, info
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup removes buckets that have sat idle and full for a whole interval.
func (l *TokenBucketLimiter) cleanup() {
	threshold := l.now().Add(-l.cleanupInterval)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		bucket.mu.Lock()
		if bucket.lastRefill.Before(threshold) && bucket.tokens >= float64(l.burstSize)-1 {
			delete(l.buckets, key)
		}
		bucket.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// BucketCount returns the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// --- Middleware ---

// RateLimit rejects requests over the limit with 429 and a Retry-After
// header. Clients are keyed by IP.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, info := limiter.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
		if allowed {
			c.Next()
			return
		}

		retryAfter := int(time.Until(info.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":       "RATE_LIMITED",
			"message":    "rate limit exceeded, please retry later",
			"request_id": GetRequestID(c),
		})
	}
}

//Personal.AI order the ending
