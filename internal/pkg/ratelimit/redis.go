package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the key and arms its expiry on the first hit, atomically, so
// the window opens at the first event on every instance sharing the Redis.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Redis is a Store shared across server instances.
type Redis struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

// NewRedis creates a Redis store; keys are "<prefix>:<key>".
func NewRedis(rdb *redis.Client, prefix string, window time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, window: window}
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

func (r *Redis) Hit(ctx context.Context, key string) (int64, error) {
	return hitScript.Run(ctx, r.rdb, []string{r.key(key)}, r.window.Milliseconds()).Int64()
}

func (r *Redis) Count(ctx context.Context, key string) (int64, error) {
	val, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}
