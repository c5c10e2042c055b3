// Package ratelimit holds the fixed-window limiters used by HTTP middleware and
// the mail throttle, plus the escalating cooldown guard used by auth flows.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter admits at most limit events per key in each window. When it denies,
// retryAfter reports when the current window closes.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

var errNilRedisClient = errors.New("redis client is nil")

type window struct {
	count int
	start time.Time
}

// MemoryLimiter is a process-local fixed-window limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	now      func() time.Time
	windows  map[string]*window
	sweepDue time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, windows: make(map[string]*window)}
}

// WithClock replaces the time source.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, time.Duration, error) {
	win = normalizeWindow(win)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.sweepDue) {
		for k, w := range l.windows {
			if now.Sub(w.start) >= win {
				delete(l.windows, k)
			}
		}
		l.sweepDue = now.Add(win)
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= win {
		l.windows[key] = &window{count: 1, start: now}
		return limit >= 1, win, nil
	}
	w.count++
	remaining := max(win-now.Sub(w.start), 0)
	return w.count <= limit, remaining, nil
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter shares fixed windows across replicas.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLimiter(client redis.UniversalClient, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, win time.Duration) (bool, time.Duration, error) {
	win = normalizeWindow(win)
	if l.client == nil {
		return false, win, errNilRedisClient
	}
	if key == "" {
		key = "unknown"
	}

	raw, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, win.Milliseconds()).Result()
	if err != nil {
		return false, win, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, win, fmt.Errorf("unexpected fixed window reply %T", raw)
	}
	count, err := toInt64(values[0])
	if err != nil {
		return false, win, err
	}
	ttlMS, err := toInt64(values[1])
	if err != nil {
		return false, win, err
	}
	retryAfter := win
	if ttlMS > 0 {
		retryAfter = time.Duration(ttlMS) * time.Millisecond
	}
	return count <= int64(limit), retryAfter, nil
}

func normalizeWindow(win time.Duration) time.Duration {
	if win < time.Millisecond {
		return time.Second
	}
	return win
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected redis integer type %T", v)
	}
}
