package middlewares

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateWindow is how long a client's submission count lives.
const RateWindow = 24 * time.Hour

// RateCounter is a keyed counter whose keys expire.
type RateCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisCounter adapts a go-redis client to RateCounter.
type RedisCounter struct {
	Client redis.Cmdable
}

func (r RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return r.Client.Incr(ctx, key).Result()
}

func (r RedisCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.Client.Expire(ctx, key, ttl).Err()
}

func (r RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.Client.TTL(ctx, key).Result()
}

// IssueRateLimiter caps issue submissions per client IP per RateWindow.
func IssueRateLimiter(counter RateCounter, limit int, prefix string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Create individual key for each client
		clientKey := prefix + ":" + c.ClientIP()

		count, err := counter.Incr(ctx, clientKey)
		if err != nil {
			log.Error("rate limiter increment failed", zap.String("key", clientKey), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := counter.Expire(ctx, clientKey, RateWindow); err != nil {
				log.Error("rate limiter expire failed", zap.String("key", clientKey), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := counter.TTL(ctx, clientKey)
			if retryAfter < 0 {
				retryAfter = 0
			}
			seconds := int64(retryAfter.Seconds())
			c.Header("Retry-After", strconv.FormatInt(seconds, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "Too many issues reported, please try again later",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}
