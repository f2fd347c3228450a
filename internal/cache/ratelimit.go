package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agendacitas/agenda/internal/ratelimit"
)

const (
	// loginPrefix is the key prefix of per-IP login buckets.
	loginPrefix = keyNamespace + "login:"
	// rateLimitLoginTTL is the TTL for login bucket keys.
	rateLimitLoginTTL = 10 * time.Minute
)

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// LoginLimiter is a Redis token bucket shared by every instance.
type LoginLimiter struct {
	client        *redis.Client
	ratePerMinute int
	burst         int
}

var _ ratelimit.Limiter = (*LoginLimiter)(nil)

// LoginLimiter returns a limiter allowing ratePerMinute attempts per client
// with the given burst.
func (c *Cache) LoginLimiter(ratePerMinute, burst int) *LoginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &LoginLimiter{client: c.client, ratePerMinute: ratePerMinute, burst: burst}
}

// Allow consumes one attempt for the client address ip. The address is
// hashed before it is used as a key. Redis errors fail open.
func (l *LoginLimiter) Allow(ctx context.Context, ip string) (ratelimit.Result, error) {
	if l.ratePerMinute <= 0 {
		return ratelimit.Result{Allowed: true}, nil
	}

	key := loginKey(ip)
	rate := float64(l.ratePerMinute) / 60.0

	result, err := tokenBucketScript.Run(ctx, l.client,
		[]string{key},
		rate, l.burst, time.Now().Unix(), int(rateLimitLoginTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return ratelimit.Result{Allowed: true}, err
	}

	return ratelimit.Result{
		Allowed:    result[0] == 1,
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// loginKey keys a bucket by a truncated SHA-256 of the client address so
// raw IPs never reach Redis.
func loginKey(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return loginPrefix + hex.EncodeToString(sum[:8])
}
