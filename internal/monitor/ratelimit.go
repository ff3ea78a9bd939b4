package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────
// Keyed Token Bucket Rate Limiter
//
// Uses stdlib only — no external dependency.
//
// Each key gets its own bucket with a configurable capacity and refill
// rate. When the bucket is empty the request receives HTTP 429 with a
// Retry-After header indicating when to try again. The bulk /identities
// listing is keyed by client IP, same as the teacher's alert feed; the
// single-identity lookup below is instead keyed by the requested identity
// name, so one identity's standing being polled hard from many different
// IPs is throttled as one stream of traffic rather than looking like many
// separate well-behaved clients.
//
// A background goroutine cleans up buckets idle for more than
// cleanupIdleDuration to prevent unbounded memory growth from a run that
// keeps restarting its --http listener against varying clients or
// identities.
// ──────────────────────────────────────────────────────────────────────

const cleanupIdleDuration = 10 * time.Minute

type keyBucket struct {
	tokens   float64
	lastSeen time.Time
	mu       sync.Mutex
}

// RateLimiter holds per-key state.
type RateLimiter struct {
	rate    float64 // tokens added per second
	burst   float64 // max bucket capacity
	mu      sync.Mutex
	buckets map[string]*keyBucket
}

// NewRateLimiter creates a rate limiter allowing ratePerMin requests per
// minute per key, with a burst capacity of burst requests.
func NewRateLimiter(ratePerMin, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:    float64(ratePerMin) / 60.0,
		burst:   float64(burst),
		buckets: make(map[string]*keyBucket),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &keyBucket{tokens: rl.burst}
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(bucket.lastSeen).Seconds()
	bucket.tokens += elapsed * rl.rate
	if bucket.tokens > rl.burst {
		bucket.tokens = rl.burst
	}
	bucket.lastSeen = now

	if bucket.tokens >= 1.0 {
		bucket.tokens--
		return true, 0
	}

	retryAfter := time.Duration((1.0-bucket.tokens)/rl.rate*1000) * time.Millisecond
	return false, retryAfter
}

// Middleware returns a Gin handler that enforces the rate limit keyed by
// client IP — the bulk-listing endpoints' shape.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return rl.middlewareKeyedBy(func(c *gin.Context) string { return c.ClientIP() })
}

// MiddlewareByIdentity returns a Gin handler that enforces the rate
// limit keyed by the requested identity's name (the route's :name path
// param), falling back to client IP when the param is absent. Use this
// on single-identity lookup routes so the limit tracks "how hard is this
// identity being polled" rather than "how hard is this IP polling".
func (rl *RateLimiter) MiddlewareByIdentity() gin.HandlerFunc {
	return rl.middlewareKeyedBy(func(c *gin.Context) string {
		if name := c.Param("name"); name != "" {
			return "identity:" + name
		}
		return c.ClientIP()
	})
}

func (rl *RateLimiter) middlewareKeyedBy(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.allow(key(c))
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"retryAfter": retryAfter.String(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// cleanupLoop removes stale buckets every cleanupIdleDuration.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupIdleDuration)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-cleanupIdleDuration)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			b.mu.Lock()
			idle := b.lastSeen.Before(cutoff)
			b.mu.Unlock()
			if idle {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}
