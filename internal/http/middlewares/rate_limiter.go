package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

// MemoryLimiter is a fixed-window counter per key, local to this process.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) Decision {
	if rl.limit <= 0 {
		return Decision{Allowed: true}
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		rl.sweep(now)
		rl.clients[key] = &clientBucket{count: 1, windowEnd: now.Add(rl.window)}
		return Decision{Allowed: true}
	}

	if b.count >= rl.limit {
		return Decision{Allowed: false, RetryAfter: b.windowEnd.Sub(now)}
	}

	b.count++
	return Decision{Allowed: true}
}

// sweep drops expired buckets; called with mu held.
func (rl *MemoryLimiter) sweep(now time.Time) {
	for k, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, k)
		}
	}
}

type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter shares counters between instances. It fails open: when the
// counter backend errors the request is allowed and the error logged.
type RedisLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
	timeout time.Duration
}

func NewRedisLimiter(counter WindowCounter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	if rl.limit <= 0 {
		return Decision{Allowed: true}
	}

	cctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	count, ttl, err := rl.counter.IncrWindow(cctx, "ratelimit:"+key, rl.window)
	if err != nil {
		slog.Default().ErrorContext(ctx, "redis rate limiter error", "err", err)
		return Decision{Allowed: true}
	}

	if int(count) > rl.limit {
		return Decision{Allowed: false, RetryAfter: ttl}
	}

	return Decision{Allowed: true}
}

// RateLimit rejects with 429 once l refuses the key. onLimited may be nil.
func RateLimit(l Limiter, keyFn func(*gin.Context) string, onLimited func(route string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		d := l.Allow(c.Request.Context(), c.FullPath()+"|"+key)

		if d.Allowed {
			c.Next()
			return
		}

		if onLimited != nil {
			onLimited(c.FullPath())
		}

		retryAfter := int(d.RetryAfter.Round(time.Second) / time.Second)
		if retryAfter < 1 {
			retryAfter = 1
		}

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
	}
}

// KeyByIP is for unauthenticated endpoints such as signup and signin.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// ClientIP honours X-Forwarded-For / X-Real-IP only for trusted proxies.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
