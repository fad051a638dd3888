package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	domainerror "github.com/cashbook/cashbook/internal/domain/error"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/dto"
)

const rateLimitKeyPrefix = "login_attempts:"

// RateLimiter provides IP-based login rate limiting backed by Redis, using a
// fixed window counter (INCR + EXPIRE).
type RateLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRateLimiter creates a new rate limiter instance.
func NewRateLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Middleware returns a Gin middleware handler that enforces rate limiting.
// The limiter fails open: when Redis is unreachable, logins proceed and the
// outage is logged.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting in test environment
		if os.Getenv("ENV") == "test" {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.Request.RemoteAddr
		}

		allowed, err := rl.allow(c, clientIP)
		if err != nil {
			slog.Warn("Rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Msg:  "Too many login attempts. Please try again later.",
				Code: string(domainerror.ErrCodeRateLimited),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// allow increments the fixed-window counter for the key and reports whether
// the request is under the limit.
func (rl *RateLimiter) allow(c *gin.Context, key string) (bool, error) {
	ctx := c.Request.Context()
	redisKey := rateLimitKeyPrefix + key

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(rl.maxAttempts), nil
}
