// Package middleware holds the cross-cutting gin middleware of the service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"internship_backend/internal/platform/logging"
)

const requestIDHeader = "X-Request-ID"

// ContextRequestID is the gin context key of the request id.
const ContextRequestID = "request_id"

// RequestID reuses a caller supplied X-Request-ID or generates one, and puts it
// on the response, the gin context and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		c.Set(ContextRequestID, reqID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), reqID))

		c.Next()
	}
}
