package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/api"
	"internship_backend/internal/platform/upload"
)

// Files streams stored uploads: GET /uploads/:name
func Files(store upload.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if !upload.ValidName(name) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "file not found"})
			return
		}

		rc, info, err := store.Open(c.Request.Context(), name)
		if err != nil {
			if errors.Is(err, upload.ErrNotFound) || errors.Is(err, upload.ErrInvalidName) {
				c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "file not found"})
				return
			}
			slog.ErrorContext(c.Request.Context(), "failed to open upload", "error", err, "file", name)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
			return
		}
		defer rc.Close()

		contentType := info.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, info.Size, contentType, rc, map[string]string{
			"Cache-Control":           "private, max-age=300",
			"X-Content-Type-Options":  "nosniff",
			"Content-Security-Policy": "default-src 'none'; sandbox",
			"Content-Disposition":     disposition(contentType) + `; filename="` + name + `"`,
		})
	}
}

// inlineTypes は表示してもスクリプトが動かない型
var inlineTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// disposition serves only passive types inline; anything else downloads.
func disposition(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err == nil && inlineTypes[mt] {
		return "inline"
	}
	return "attachment"
}
