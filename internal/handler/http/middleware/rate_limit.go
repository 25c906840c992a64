package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/utils/metrics"
)

// RequestLimiter is the slice of the rate limiter the middleware needs.
type RequestLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware throttles a route group per client IP. The scope keeps
// counters for different route groups independent, so hammering login does
// not consume the registration budget.
func RateLimitMiddleware(limiter RequestLimiter, scope string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", scope, c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Error("Rate limit check failed",
				zap.String("scope", scope),
				zap.Error(err),
			)
		}
		if !allowed {
			metrics.RateLimitExceededTotal.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later",
				"code":  string(domainErrors.CodeRateLimited),
			})
			return
		}

		c.Next()
	}
}
