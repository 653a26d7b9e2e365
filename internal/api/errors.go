package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError writes the first matching case. Unmatched errors are
// logged and answered with 500 without leaking the cause.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase) {
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			c.JSON(cs.Status, ErrorResponse{Error: cs.Message})
			return
		}
	}
	slog.ErrorContext(c.Request.Context(), "request failed",
		"error", err, "method", c.Request.Method, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
