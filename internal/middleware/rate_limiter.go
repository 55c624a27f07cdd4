package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimiter applies a per-IP request budget backed by Redis. Websocket
// upgrades get a tighter budget since each one holds a connection open.
func RateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if strings.HasPrefix(c.Request.URL.Path, "/ws/") {
			key := "rate_limit:ws:" + clientIP
			handleRateLimit(c, rdb, key, 10, time.Minute)
			return
		}

		key := "rate_limit:api:" + clientIP
		handleRateLimit(c, rdb, key, 120, time.Minute)
	}
}

func handleRateLimit(c *gin.Context, rdb *redis.Client, key string, limit int, window time.Duration) {
	ctx := c.Request.Context()

	count, err := rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		rdb.Set(ctx, key, 1, window)
		count = 1
	} else if err != nil {
		// limiter backend down: let traffic through
		c.Next()
		return
	} else {
		count = int(rdb.Incr(ctx, key).Val())
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(limit-count))

	if count > limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	c.Next()
}
