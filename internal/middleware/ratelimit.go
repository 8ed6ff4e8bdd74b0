package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/pkg/ratelimit"
	"github.com/tsystem/portal/internal/pkg/response"
	"go.uber.org/zap"
)

// RateLimit caps requests per client IP at max per store window and answers 429 past it.
// Store errors let the request through.
func RateLimit(store ratelimit.Store, max int, retryAfterSeconds int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		count, err := store.Hit(c.Request.Context(), "ip:"+ip)
		if err != nil {
			logger.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
