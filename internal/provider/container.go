package provider

import (
	"github.com/booky-next/internal/cache"
	"github.com/booky-next/internal/config"
	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/proxy"
	"github.com/booky-next/internal/queue"
	"github.com/booky-next/internal/repository"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Upstream    proxy.Forwarder

	// Repositories
	LoanAuditRepo repository.LoanAuditRepository
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化上游转发
	c.initUpstream()

	return c
}

// Close 释放容器持有的连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	if db == nil {
		logger.Warnw("provider_init_repositories_skip_nil_db")
		return
	}
	c.LoanAuditRepo = repository.NewLoanAuditRepository(db)
}

func (c *Container) initUpstream() {
	upstream, err := proxy.New(c.Config.Upstream, nil)
	if err != nil {
		logger.Errorw("provider_init_upstream_failed", "base_url", c.Config.Upstream.BaseURL, "error", err)
		panic(err)
	}
	c.Upstream = upstream
}
