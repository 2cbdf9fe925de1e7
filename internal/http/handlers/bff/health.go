package bff

import (
	"context"
	"time"

	"github.com/booky-next/internal/cache"
	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/models"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// Health 健康检查：启用的 Redis 与审计库需可连通
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if client := cache.Client(); client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			shared.RespondErrorWithMsg(c, response.CodeUnavailable, "Redis unavailable", err)
			return
		}
	}
	if models.DB != nil {
		sqlDB, err := models.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			shared.RespondErrorWithMsg(c, response.CodeUnavailable, "Audit database unavailable", err)
			return
		}
	}

	response.Success(c, gin.H{
		"status": "ok",
		"redis":  cache.Enabled(),
		"queue":  h.Container != nil && h.QueueClient.Enabled(),
	})
}
