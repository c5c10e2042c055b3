package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scope separates cooldown counters per auth flow.
type Scope string

const (
	ScopeLogin  Scope = "login"
	ScopeVerify Scope = "verify"
	ScopeReset  Scope = "reset"
)

// Subject is the pair of dimensions a failure is charged against.
type Subject struct {
	Scope    Scope
	Identity string
	IP       string
}

type dimension struct {
	name  string
	value string
}

func (s Subject) keys() [2]dimension {
	identity := strings.ToLower(strings.TrimSpace(s.Identity))
	if identity == "" {
		identity = "anonymous"
	}
	ip := strings.TrimSpace(s.IP)
	if ip == "" {
		ip = "unknown"
	}
	return [2]dimension{
		{name: string(s.Scope) + ":id", value: identity},
		{name: string(s.Scope) + ":ip", value: ip},
	}
}

// CooldownPolicy grants FreeAttempts failures, then waits BaseDelay and grows
// by Multiplier per further failure up to MaxDelay. Counters reset after
// ResetWindow without failures.
type CooldownPolicy struct {
	FreeAttempts int
	BaseDelay    time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	ResetWindow  time.Duration
}

func (p CooldownPolicy) normalized() CooldownPolicy {
	if p.FreeAttempts < 0 {
		p.FreeAttempts = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 2 * time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = 5 * time.Minute
	}
	if p.ResetWindow <= 0 {
		p.ResetWindow = 30 * time.Minute
	}
	return p
}

func (p CooldownPolicy) delayFor(failures int) time.Duration {
	over := failures - p.FreeAttempts
	if over <= 0 {
		return 0
	}
	delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(over-1)))
	return min(delay, p.MaxDelay)
}

// CooldownGuard slows down repeated auth failures for an identity or an IP.
type CooldownGuard interface {
	Remaining(ctx context.Context, subject Subject) (time.Duration, error)
	Fail(ctx context.Context, subject Subject) (time.Duration, error)
	Clear(ctx context.Context, subject Subject) error
}

type NoopCooldownGuard struct{}

func (NoopCooldownGuard) Remaining(context.Context, Subject) (time.Duration, error) { return 0, nil }
func (NoopCooldownGuard) Fail(context.Context, Subject) (time.Duration, error)      { return 0, nil }
func (NoopCooldownGuard) Clear(context.Context, Subject) error                      { return nil }

type cooldownState struct {
	failures int
	lastFail time.Time
	until    time.Time
}

type MemoryCooldownGuard struct {
	mu     sync.Mutex
	policy CooldownPolicy
	now    func() time.Time
	states map[dimension]cooldownState
}

func NewMemoryCooldownGuard(policy CooldownPolicy) *MemoryCooldownGuard {
	return &MemoryCooldownGuard{policy: policy.normalized(), now: time.Now, states: make(map[dimension]cooldownState)}
}

func (g *MemoryCooldownGuard) WithClock(now func() time.Time) *MemoryCooldownGuard {
	g.now = now
	return g
}

func (g *MemoryCooldownGuard) Remaining(_ context.Context, subject Subject) (time.Duration, error) {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	var remaining time.Duration
	for _, key := range subject.keys() {
		st, ok := g.states[key]
		if !ok {
			continue
		}
		if now.Sub(st.lastFail) > g.policy.ResetWindow {
			delete(g.states, key)
			continue
		}
		if st.until.After(now) {
			remaining = max(remaining, st.until.Sub(now))
		}
	}
	return remaining, nil
}

func (g *MemoryCooldownGuard) Fail(_ context.Context, subject Subject) (time.Duration, error) {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	var delay time.Duration
	for _, key := range subject.keys() {
		st := g.states[key]
		if now.Sub(st.lastFail) > g.policy.ResetWindow {
			st.failures = 0
		}
		st.failures++
		st.lastFail = now
		d := g.policy.delayFor(st.failures)
		st.until = now.Add(d)
		g.states[key] = st
		delay = max(delay, d)
	}
	return delay, nil
}

func (g *MemoryCooldownGuard) Clear(_ context.Context, subject Subject) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, key := range subject.keys() {
		delete(g.states, key)
	}
	return nil
}

// failScript bumps a hash of {failures, last_ms, until_ms}. The delay formula
// mirrors CooldownPolicy.delayFor.
var failScript = redis.NewScript(`
local now_ms = tonumber(ARGV[1])
local base_ms = tonumber(ARGV[2])
local multiplier = tonumber(ARGV[3])
local max_ms = tonumber(ARGV[4])
local reset_ms = tonumber(ARGV[5])
local free = tonumber(ARGV[6])

local failures = tonumber(redis.call("HGET", KEYS[1], "failures") or "0")
local last_ms = tonumber(redis.call("HGET", KEYS[1], "last_ms") or "0")
if last_ms == 0 or (now_ms - last_ms) > reset_ms then
  failures = 0
end
failures = failures + 1

local delay = 0
if failures > free then
  delay = math.floor(base_ms * (multiplier ^ (failures - free - 1)))
  if delay > max_ms then
    delay = max_ms
  end
end

redis.call("HSET", KEYS[1], "failures", tostring(failures), "last_ms", tostring(now_ms), "until_ms", tostring(now_ms + delay))
redis.call("PEXPIRE", KEYS[1], tostring(reset_ms + delay))
return delay
`)

// RedisCooldownGuard keeps cooldown state in Redis so replicas agree.
type RedisCooldownGuard struct {
	client redis.UniversalClient
	prefix string
	policy CooldownPolicy
	now    func() time.Time
}

func NewRedisCooldownGuard(client redis.UniversalClient, prefix string, policy CooldownPolicy) *RedisCooldownGuard {
	if prefix == "" {
		prefix = "abuse"
	}
	return &RedisCooldownGuard{client: client, prefix: prefix, policy: policy.normalized(), now: time.Now}
}

func (g *RedisCooldownGuard) Remaining(ctx context.Context, subject Subject) (time.Duration, error) {
	nowMS := g.now().UnixMilli()
	var remaining time.Duration
	for _, key := range subject.keys() {
		vals, err := g.client.HMGet(ctx, g.storeKey(key), "last_ms", "until_ms").Result()
		if err != nil {
			return 0, err
		}
		if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
			continue
		}
		lastMS, err := parseHashInt(vals[0])
		if err != nil {
			return 0, err
		}
		untilMS, err := parseHashInt(vals[1])
		if err != nil {
			return 0, err
		}
		if nowMS-lastMS > g.policy.ResetWindow.Milliseconds() || untilMS <= nowMS {
			continue
		}
		remaining = max(remaining, time.Duration(untilMS-nowMS)*time.Millisecond)
	}
	return remaining, nil
}

func (g *RedisCooldownGuard) Fail(ctx context.Context, subject Subject) (time.Duration, error) {
	nowMS := g.now().UnixMilli()
	var delay time.Duration
	for _, key := range subject.keys() {
		raw, err := failScript.Run(ctx, g.client, []string{g.storeKey(key)},
			nowMS,
			g.policy.BaseDelay.Milliseconds(),
			g.policy.Multiplier,
			g.policy.MaxDelay.Milliseconds(),
			g.policy.ResetWindow.Milliseconds(),
			g.policy.FreeAttempts,
		).Result()
		if err != nil {
			return 0, err
		}
		ms, err := toInt64(raw)
		if err != nil {
			return 0, err
		}
		delay = max(delay, time.Duration(ms)*time.Millisecond)
	}
	return delay, nil
}

func (g *RedisCooldownGuard) Clear(ctx context.Context, subject Subject) error {
	keys := subject.keys()
	return g.client.Del(ctx, g.storeKey(keys[0]), g.storeKey(keys[1])).Err()
}

// storeKey hashes the dimension value so emails never land in Redis verbatim.
func (g *RedisCooldownGuard) storeKey(d dimension) string {
	sum := sha256.Sum256([]byte(d.value))
	return g.prefix + ":" + d.name + ":" + hex.EncodeToString(sum[:12])
}

func parseHashInt(v interface{}) (int64, error) {
	if s, ok := v.(string); ok {
		return strconv.ParseInt(s, 10, 64)
	}
	return toInt64(v)
}
