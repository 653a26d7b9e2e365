package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/shared/ratelimiter"
)

// RateLimitObserver is notified of rejected requests.
type RateLimitObserver interface {
	ObserveRateLimited(rule string)
}

// RateLimit limits requests per client IP under rule. Limiter failures are
// logged and the request is let through.
func RateLimit(rule string, l ratelimiter.Limiter, obs RateLimitObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		d, err := l.Allow(c.Request.Context(), rule+":"+c.ClientIP())
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limit check failed", "rule", rule, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			if obs != nil {
				obs.ObserveRateLimited(rule)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}
