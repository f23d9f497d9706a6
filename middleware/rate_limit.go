package middleware

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/services"
	"github.com/gin-gonic/gin"
)

// MsgRateLimited is rendered when a client exceeds its request budget.
const MsgRateLimited = "Too many requests. Please try again later."

// RateLimiter allows limit requests per client IP and route in each fixed window.
// When the limiter fails requests are let through. Client IPs come from gin's
// ClientIP, so only configured trusted proxies can set them.
func RateLimiter(limiter services.RateLimiterInterface, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateLimitKey(c)

		result, err := limiter.CheckLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.GetLogger().Warnw("Rate limit check failed, allowing request",
				"key", key,
				"error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(result.ResetIn).Unix(), 10))

		if !result.Allowed {
			retryAfter := int(result.ResetIn.Round(time.Second).Seconds())
			_ = c.Error(apperrors.RateLimitExceeded(MsgRateLimited, retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return fmt.Sprintf("%s:%s", route, c.ClientIP())
}
