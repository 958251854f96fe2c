package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Redis-backed fixed-window limiter (INCR + EXPIRE on first hit). Shared
// across instances, unlike the in-process one.
type RedisRateLimiter struct {
	rdb    *redis.Client
	window time.Duration
	limit  int
	prefix string
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		window: window,
		limit:  limit,
		prefix: "ratelimit:",
	}
}

func (rl *RedisRateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		rkey := rl.prefix + key
		ctx := c.Request.Context()

		count, err := rl.rdb.Incr(ctx, rkey).Result()

		if err != nil {
			// Redis being down must not take auth down with it
			c.Next()
			return
		}

		if count == 1 {
			_ = rl.rdb.Expire(ctx, rkey, rl.window).Err()
		}

		if count > int64(rl.limit) {
			ttl, err := rl.rdb.TTL(ctx, rkey).Result()

			retryAfter := int(rl.window.Seconds())

			if err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			respondRateLimited(c, retryAfter)
			return
		}

		c.Next()
	}
}
