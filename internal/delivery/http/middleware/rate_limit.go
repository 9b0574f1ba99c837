package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/apperror"
	"contact-form-backend/pkg/logger"
	"contact-form-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// Counter counts hits per key inside a fixed window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// SubmissionLimit configures the limiter in front of the contact handler.
type SubmissionLimit struct {
	Max    int
	Window time.Duration
	Prefix string
	// Counter defaults to Redis when connected and memory otherwise.
	Counter Counter
}

// ContactSubmissionLimit allows perMinute submissions per client IP.
func ContactSubmissionLimit(perMinute int) SubmissionLimit {
	return SubmissionLimit{
		Max:    perMinute,
		Window: time.Minute,
		Prefix: "rl:contact:",
	}
}

// LimitSubmissions rejects callers over the limit with 429. A failing
// store never blocks the form: hits fall back to a local counter.
func LimitSubmissions(limit SubmissionLimit) gin.HandlerFunc {
	primary := limit.Counter
	if primary == nil {
		primary = RedisCounter{}
	}
	local := NewMemoryCounter()

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := limit.Prefix + c.ClientIP()

		count, resetAt, err := primary.Hit(ctx, key, limit.Window)
		if err != nil {
			if !errors.Is(err, errNoRedis) {
				logger.Log.WarnContext(ctx, "Rate limit store unavailable", "error", err.Error())
			}
			count, resetAt, _ = local.Hit(ctx, key, limit.Window)
		}

		remaining := limit.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count <= limit.Max {
			c.Next()
			return
		}

		wait := int(time.Until(resetAt).Seconds())
		c.Header("Retry-After", strconv.Itoa(max(wait, 1)))
		logger.Log.WarnContext(ctx, "Contact submissions throttled",
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		)
		c.Error(apperror.TooManyRequests(domain.MsgTooManyRequests))
		c.Abort()
	}
}

var errNoRedis = errors.New("redis not connected")

// hitScript increments KEYS[1], starting its ttl on the first hit, and
// returns {count, ttl}.
var hitScript = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('TTL', KEYS[1])}
`)

// RedisCounter keeps windows in the shared Redis client.
type RedisCounter struct{}

func (RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	client := redis.Client()
	if client == nil {
		return 0, time.Time{}, errNoRedis
	}

	vals, err := hitScript.Run(ctx, client, []string{key}, int(window.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script: got %d values", len(vals))
	}
	return int(vals[0]), time.Now().Add(time.Duration(vals[1]) * time.Second), nil
}

// MemoryCounter keeps windows in process. Expired windows are swept at
// most once per minute, during a hit.
type MemoryCounter struct {
	mu        sync.Mutex
	windows   map[string]*hitWindow
	lastSweep time.Time
}

type hitWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*hitWindow),
	}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastSweep) > time.Minute {
		for k, w := range m.windows {
			if !now.Before(w.resetAt) {
				delete(m.windows, k)
			}
		}
		m.lastSweep = now
	}

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &hitWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}
