package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uxlens/backend/internal/infrastructure/cache"
	"github.com/uxlens/backend/internal/infrastructure/logger"
	"github.com/uxlens/backend/internal/interfaces/http/dto"
)

// RateLimitConfig holds fixed-window rate limit settings
type RateLimitConfig struct {
	Limit  int64         // Maximum requests per window
	Window time.Duration // Window length
}

// DefaultRateLimitConfig allows 30 requests per minute per client IP
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  30,
		Window: time.Minute,
	}
}

// RateLimit returns a fixed-window rate limiting middleware keyed by client
// IP. The store is injected so single-process deployments use the in-memory
// counter and multi-process ones share a Redis counter. A store error fails
// open: an audit request is never rejected because the limiter is down.
func RateLimit(store cache.RateLimitStore, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.Incr(c.Request.Context(), c.ClientIP(), cfg.Window)
		if err != nil {
			logger.FromGin(c).Warn("Rate limit store unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		remaining := cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(cfg.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > cfg.Limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithDetail(
				"Too many requests. Please try again later.",
				dto.CodeRateLimited,
				c.GetString("correlation_id"),
			))
			return
		}

		c.Next()
	}
}
