// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readyTimeout bounds each dependency probe in /readyz.
const readyTimeout = 2 * time.Second

// Check probes one dependency (database, cache) for /readyz.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// プロセスが応答できることだけを示し、依存先は確認しません。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Ready は /readyz を処理するハンドラーを返します。
// すべての Check が成功した場合のみ200、いずれかが失敗した場合は503を返します。
func Ready(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		results := make(map[string]string, len(checks))
		status := http.StatusOK
		for _, chk := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			err := chk.Ping(ctx)
			cancel()
			if err != nil {
				results[chk.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[chk.Name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
