package middleware

import (
	"strconv"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	"github.com/gin-gonic/gin"
)

// UploadRateLimiter enforces the per-business document upload quota.
// It expects the business ID as a route parameter and fails open when
// Redis is unavailable, so uploads keep working during a cache outage.
func UploadRateLimiter(limiter services.RateLimiterInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID := c.Param("id")
		if businessID == "" {
			c.Next()
			return
		}

		allowed, retryAfter, err := limiter.CheckUploadLimit(c.Request.Context(), businessID)
		if err != nil {
			logger.GetLogger().Warnw("Upload rate limit check failed",
				"error", err,
				"business_id", businessID,
			)
			c.Next()
			return
		}

		if !allowed {
			retrySeconds := int(retryAfter.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retrySeconds))
			_ = c.Error(apperrors.RateLimitExceeded("Too many document uploads", retrySeconds))
			c.Abort()
			return
		}

		c.Next()
	}
}
