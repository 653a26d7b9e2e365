package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/platform/logging"
)

// Logger emits one access log record per request with a masked client IP.
func Logger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", logging.MaskIP(c.ClientIP()),
		}
		if ua := c.Request.UserAgent(); ua != "" {
			attrs = append(attrs, "user_agent", ua)
		}

		ctx := c.Request.Context()
		switch {
		case len(c.Errors) > 0:
			log.ErrorContext(ctx, "request failed", append(attrs, "errors", c.Errors.String())...)
		case c.Writer.Status() >= 500:
			log.ErrorContext(ctx, "request completed", attrs...)
		default:
			log.InfoContext(ctx, "request completed", attrs...)
		}
	}
}
