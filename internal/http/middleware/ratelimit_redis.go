package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterScript bumps a per-key counter and sets the window expiry when the
// key is fresh; a single round trip keeps the check atomic across instances.
const counterScript = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if n > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares rate limit state across instances. It fails open: a
// Redis outage must not take request handling down with it.
type RedisLimiter struct {
	client  *redis.Client
	script  *redis.Script
	timeout time.Duration
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(counterScript),
		timeout: 250 * time.Millisecond,
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{"ratelimit:" + key}, ttl, limit).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}
