// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先（DB・Redis）の疎通確認です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health は /healthz を処理します。依存先がすべて応答すれば200、
// いずれかが失敗すれば503を返します。キャッシュは常に防止します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				slog.Warn("health check failed", "check", chk.Name, "error", err)
				failed[chk.Name] = "unavailable"
			}
		}

		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}
		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if len(failed) > 0 {
			c.JSON(status, gin.H{"status": "degraded", "checks": failed})
			return
		}
		c.JSON(status, gin.H{"status": "ok"})
	}
}
