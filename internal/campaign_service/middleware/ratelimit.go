package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts hits in fixed windows. When a request is not allowed
// retryAfter is the number of seconds until the window resets.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter int, err error)
}

// RedisRateLimitStore shares counters between instances through Redis.
type RedisRateLimitStore struct {
	rc redis.Scripter
}

func NewRedisRateLimitStore(rc redis.Scripter) *RedisRateLimitStore {
	return &RedisRateLimitStore{rc: rc}
}

var luaFixedWindow = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
local ttl = redis.call('PTTL', KEYS[1])
return {current, ttl}
`)

func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	res, err := luaFixedWindow.Run(ctx, s.rc, []string{"rl:" + key}, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, err
	}
	current, ttlMillis := parseWindowResult(res)
	return decide(current, ttlMillis, limit)
}

func parseWindowResult(res any) (current, ttlMillis int64) {
	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return 0, 0
	}
	return toInt64(arr[0]), toInt64(arr[1])
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	}
	return 0
}

func decide(current, ttlMillis int64, limit int) (bool, int, error) {
	if current <= int64(limit) {
		return true, 0, nil
	}
	if ttlMillis <= 0 {
		return false, 1, nil
	}
	return false, int((ttlMillis + 999) / 1000), nil
}

// MemoryRateLimitStore is a process-local store used when Redis is not configured.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	start time.Time
	count int64
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{buckets: make(map[string]*bucket), now: time.Now}
}

func (s *MemoryRateLimitStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || now.Sub(b.start) >= window {
		b = &bucket{start: now}
		s.buckets[key] = b
	}
	b.count++
	remaining := window - now.Sub(b.start)
	return decide(b.count, remaining.Milliseconds(), limit)
}

// RateLimitMiddleware applies a fixed-window limit per key. Store failures
// are logged and the request is let through.
func RateLimitMiddleware(store RateLimitStore, name string, limit int, window time.Duration, key func(*http.Request) string, logger *slog.Logger) func(next http.Handler) http.Handler {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := name + ":" + key(r)
			allowed, retryAfter, err := store.Allow(r.Context(), k, limit, window)
			if err != nil {
				logger.ErrorContext(r.Context(), "rate limit store failed", "policy", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded", "policy", name, "key", k, "retry_after", retryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TenantKey buckets requests by the authenticated tenant.
func TenantKey(r *http.Request) string {
	if u, ok := UserFromContext(r.Context()); ok {
		return u.TenantID.String()
	}
	return "anonymous"
}
