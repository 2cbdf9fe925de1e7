package worker

import (
	"context"
	"errors"
	"time"

	"github.com/booky-next/internal/config"
	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultAuditPurgeInterval = time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	audit    config.AuditConfig
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, audit config.AuditConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		audit:    audit,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.audit.RetentionDays > 0 && s.consumer != nil && s.consumer.Container != nil && s.consumer.LoanAuditRepo != nil {
		go s.runAuditPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runAuditPurgeLoop(ctx context.Context) {
	interval := defaultAuditPurgeInterval
	if s.audit.PurgeIntervalMinutes > 0 {
		interval = time.Duration(s.audit.PurgeIntervalMinutes) * time.Minute
	}
	runOnce := func() {
		purgeLoanAudits(s.consumer, s.audit.RetentionDays, time.Now())
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// purgeLoanAudits 清理超过保留期的审计记录
func purgeLoanAudits(consumer *Consumer, retentionDays int, now time.Time) int64 {
	if consumer == nil || consumer.Container == nil || consumer.LoanAuditRepo == nil || retentionDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	deleted, err := consumer.LoanAuditRepo.DeleteBefore(cutoff)
	if err != nil {
		logger.Warnw("worker_loan_audit_purge_failed", "cutoff", cutoff, "error", err)
		return 0
	}
	if deleted > 0 {
		logger.Infow("worker_loan_audit_purged", "cutoff", cutoff, "deleted", deleted)
	}
	return deleted
}
