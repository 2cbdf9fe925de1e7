package bff

import (
	"context"
	"time"

	"github.com/booky-next/internal/cache"
	"github.com/booky-next/internal/provider"
	"github.com/booky-next/internal/queue"

	"github.com/hibiken/asynq"
)

// loanAuditEnqueuer 借阅审计投递
type loanAuditEnqueuer interface {
	EnqueueLoanAudit(payload queue.LoanAuditPayload, opts ...asynq.Option) error
}

// responseCache 代理响应缓存
type responseCache interface {
	Enabled() bool
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// redisResponseCache 基于全局 Redis 客户端
type redisResponseCache struct{}

func (redisResponseCache) Enabled() bool { return cache.Enabled() }

func (redisResponseCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return cache.GetJSON(ctx, key, dest)
}

func (redisResponseCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return cache.SetJSON(ctx, key, value, ttl)
}

// Handler BFF 代理处理器入口
// 说明：每个路由对应一个上游接口，成功响应原样转发，错误统一为 {error: ...}。
type Handler struct {
	*provider.Container
	audits    loanAuditEnqueuer
	responses responseCache
	cacheTTL  time.Duration
	now       func() time.Time
}

// New 创建 BFF 处理器
func New(c *provider.Container) *Handler {
	h := &Handler{Container: c, responses: redisResponseCache{}, now: time.Now}
	if c != nil {
		if c.QueueClient != nil {
			h.audits = c.QueueClient
		}
		if c.Config != nil && c.Config.Cache.ProxyTTLSeconds > 0 {
			h.cacheTTL = time.Duration(c.Config.Cache.ProxyTTLSeconds) * time.Second
		}
	}
	return h
}
